//go:build !fixedpoint

package numeric

import "math"

// Sample is a real-valued DSP scalar backed by float64. This is the default
// backing; the module's hot paths assume an FPU is present.
type Sample float64

// Zero and One are the additive and multiplicative identities.
const (
	Zero Sample = 0
	One  Sample = 1
)

// Pi is the Sample-typed value of math.Pi.
const Pi Sample = Sample(math.Pi)

func (a Sample) Add(b Sample) Sample { return a + b }
func (a Sample) Sub(b Sample) Sample { return a - b }
func (a Sample) Mul(b Sample) Sample { return a * b }
func (a Sample) Div(b Sample) Sample { return a / b }
func (a Sample) Neg() Sample         { return -a }

func (a Sample) Abs() Sample {
	if a < 0 {
		return -a
	}
	return a
}

// Sin returns the sine of a, a in radians.
func (a Sample) Sin() Sample { return Sample(math.Sin(float64(a))) }

// Less reports whether a < b.
func (a Sample) Less(b Sample) bool { return a < b }

// Float64 converts a to float64 losslessly.
func (a Sample) Float64() float64 { return float64(a) }

// FromFloat64 converts a float64 to a Sample losslessly.
func FromFloat64(v float64) Sample { return Sample(v) }

// FromInt converts an int to a Sample losslessly for any value representable
// in a float64 mantissa.
func FromInt(v int) Sample { return Sample(v) }
