package modem

import (
	"math"

	"github.com/anptech/anp/internal/numeric"
)

const (
	pskBitPerSymbol          = 1
	pskSymbolRate            = 1000.0
	pskCarrierFrequency      = 1600.0
	pskPreferredPayloadBytes = 16
	pskMinModulateBytes      = 16
)

// PSK is a binary phase-shift-keying modem: one bit per symbol, the two
// standard symbols being a carrier-frequency sine chunk and its negation
// (a phase shift of pi). Demodulation correlates each received chunk
// against both standard chunks and picks the argmax.
type PSK struct {
	sampleRate int
	symbolLen  int
	standard   [2][]float64 // standard[bit] is one symbol's worth of samples
}

// NewPSK constructs a PSK modem tuned to sampleRate.
func NewPSK(sampleRate int) *PSK {
	symbolLen := int(float64(sampleRate) / pskSymbolRate)

	chunk0 := make([]float64, symbolLen)
	for i := range chunk0 {
		t := float64(i) / float64(sampleRate)
		chunk0[i] = math.Sin(2 * math.Pi * pskCarrierFrequency * t)
	}
	chunk1 := make([]float64, symbolLen)
	for i, v := range chunk0 {
		chunk1[i] = -v
	}

	return &PSK{
		sampleRate: sampleRate,
		symbolLen:  symbolLen,
		standard:   [2][]float64{chunk0, chunk1},
	}
}

func (p *PSK) MinModulateBytes() int      { return pskMinModulateBytes }
func (p *PSK) PreferredPayloadBytes() int { return pskPreferredPayloadBytes }
func (p *PSK) PreambleFrequencyRange() (float64, float64) {
	return 900, 3000
}

// Modulate maps each bit of data (LSB first per byte) to one of the two
// standard symbol chunks and concatenates them.
func (p *PSK) Modulate(data []byte) []numeric.Sample {
	if len(data)%pskMinModulateBytes != 0 {
		panic("psk: modulate requires a multiple of MinModulateBytes")
	}

	bits := BytesToBits(data)
	out := make([]numeric.Sample, 0, len(bits)*p.symbolLen)
	for _, bit := range bits {
		for _, v := range p.standard[bit&1] {
			out = append(out, numeric.FromFloat64(v))
		}
	}
	return out
}

// Demodulate slices samples into symbol-length chunks, correlates each
// against both standard chunks, and emits the argmax bit.
func (p *PSK) Demodulate(samples []numeric.Sample) []byte {
	if len(samples)%p.symbolLen != 0 {
		panic("psk: demodulate requires a multiple of the symbol length")
	}

	numSymbols := len(samples) / p.symbolLen
	bits := make([]byte, numSymbols)

	for s := 0; s < numSymbols; s++ {
		chunk := samples[s*p.symbolLen : (s+1)*p.symbolLen]

		var best int
		var bestScore float64 = math.Inf(-1)
		for bit := 0; bit < 2; bit++ {
			var score float64
			for i, v := range chunk {
				score += v.Float64() * p.standard[bit][i]
			}
			if score > bestScore {
				bestScore = score
				best = bit
			}
		}
		bits[s] = byte(best)
	}

	return BitsToBytes(bits)
}
