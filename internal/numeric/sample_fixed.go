//go:build fixedpoint

package numeric

import (
	"math"
	"math/big"
)

// Sample is a real-valued DSP scalar backed by a Q32.32 fixed-point integer,
// for targets without an FPU. The raw int64 stores value * 2^fracBits.
type Sample int64

const fracBits = 32

const (
	Zero Sample = 0
	One  Sample = 1 << fracBits
)

var Pi Sample = FromFloat64(math.Pi)

func (a Sample) Add(b Sample) Sample { return a + b }
func (a Sample) Sub(b Sample) Sample { return a - b }
func (a Sample) Neg() Sample         { return -a }

func (a Sample) Abs() Sample {
	if a < 0 {
		return -a
	}
	return a
}

func (a Sample) Less(b Sample) bool { return a < b }

// Mul multiplies two Q32.32 values via a 128-bit intermediate product to
// avoid overflowing int64 before the shift.
func (a Sample) Mul(b Sample) Sample {
	prod := new(big.Int).Mul(big.NewInt(int64(a)), big.NewInt(int64(b)))
	prod.Rsh(prod, fracBits)
	return Sample(prod.Int64())
}

// Div divides two Q32.32 values via a 128-bit intermediate shift.
func (a Sample) Div(b Sample) Sample {
	num := new(big.Int).Lsh(big.NewInt(int64(a)), fracBits)
	num.Quo(num, big.NewInt(int64(b)))
	return Sample(num.Int64())
}

func (a Sample) Float64() float64 {
	return float64(a) / float64(int64(1)<<fracBits)
}

func FromFloat64(v float64) Sample {
	return Sample(v * float64(int64(1)<<fracBits))
}

func FromInt(v int) Sample {
	return Sample(int64(v) << fracBits)
}

// cordicGain is the product correction factor K = prod(1/sqrt(1+2^-2i)),
// precomputed for the iteration count below.
var cordicGain = FromFloat64(0.6072529350088812561694)

var atanTable [32]Sample

func init() {
	for i := range atanTable {
		atanTable[i] = FromFloat64(math.Atan(math.Pow(2, -float64(i))))
	}
}

const twoPi = 2 * math.Pi

// Sin computes sin(a) via the classic shift-add CORDIC rotation algorithm,
// valid for any real a (reduced into [-pi, pi] first, then folded into the
// CORDIC's native [-pi/2, pi/2] domain by the standard reflection identity).
func (a Sample) Sin() Sample {
	r := math.Mod(a.Float64(), twoPi)
	if r > math.Pi {
		r -= twoPi
	} else if r < -math.Pi {
		r += twoPi
	}

	sign := 1.0
	if r > math.Pi/2 {
		r = math.Pi - r
	} else if r < -math.Pi/2 {
		r = r + math.Pi
		sign = -1.0
	}

	x := cordicGain
	y := Zero
	z := FromFloat64(r)

	for i := 0; i < len(atanTable); i++ {
		xShift := Sample(int64(x) >> uint(i))
		yShift := Sample(int64(y) >> uint(i))
		if z >= 0 {
			x, y, z = x.Sub(yShift), y.Add(xShift), z.Sub(atanTable[i])
		} else {
			x, y, z = x.Add(yShift), y.Sub(xShift), z.Add(atanTable[i])
		}
	}

	if sign < 0 {
		return y.Neg()
	}
	return y
}
