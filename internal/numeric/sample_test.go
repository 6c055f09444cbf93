package numeric

import (
	"math"
	"testing"
)

func TestArithmetic(t *testing.T) {
	a := FromFloat64(1.5)
	b := FromFloat64(2.25)

	if got := a.Add(b).Float64(); math.Abs(got-3.75) > 1e-3 {
		t.Errorf("Add: got %v, want 3.75", got)
	}
	if got := b.Sub(a).Float64(); math.Abs(got-0.75) > 1e-3 {
		t.Errorf("Sub: got %v, want 0.75", got)
	}
	if got := a.Mul(b).Float64(); math.Abs(got-3.375) > 1e-3 {
		t.Errorf("Mul: got %v, want 3.375", got)
	}
	if got := b.Div(a).Float64(); math.Abs(got-1.5) > 1e-3 {
		t.Errorf("Div: got %v, want 1.5", got)
	}
	if got := a.Neg().Float64(); math.Abs(got+1.5) > 1e-3 {
		t.Errorf("Neg: got %v, want -1.5", got)
	}
	if got := a.Neg().Abs().Float64(); math.Abs(got-1.5) > 1e-3 {
		t.Errorf("Abs: got %v, want 1.5", got)
	}
}

func TestSin(t *testing.T) {
	cases := []float64{0, math.Pi / 6, math.Pi / 2, math.Pi, -math.Pi / 2, 2.5, -2.5}
	for _, v := range cases {
		got := FromFloat64(v).Sin().Float64()
		want := math.Sin(v)
		if math.Abs(got-want) > 5e-3 {
			t.Errorf("Sin(%v): got %v, want %v", v, got, want)
		}
	}
}

func TestFromIntRoundTrip(t *testing.T) {
	for _, v := range []int{0, 1, -1, 42, -1000} {
		if got := FromInt(v).Float64(); math.Abs(got-float64(v)) > 1e-6 {
			t.Errorf("FromInt(%d): got %v", v, got)
		}
	}
}

func TestSum(t *testing.T) {
	xs := FromFloat64Slice([]float64{1, 2, 3, 4})
	if got := Sum(xs).Float64(); math.Abs(got-10) > 1e-6 {
		t.Errorf("Sum: got %v, want 10", got)
	}
}
