package modem

import (
	"math/cmplx"

	"github.com/anptech/anp/internal/numeric"
)

const (
	ofdmBitPerSymbol         = 4
	ofdmDataSymbolPerPacket  = 48
	ofdmDataSamples          = 128
	ofdmCyclicPrefixSamples  = 12
	ofdmSamplesPerSymbol     = ofdmDataSamples + ofdmCyclicPrefixSamples // 140
	ofdmFFTEnergyZoom        = 0.25
	ofdmStartSubcarrierIndex = 18
	ofdmSymbolPerPacket      = ofdmDataSymbolPerPacket + 1                    // 49, incl. training symbol
	ofdmPacketSamples        = ofdmSymbolPerPacket * ofdmSamplesPerSymbol     // 6860
	ofdmPacketDataBytes      = ofdmBitPerSymbol * ofdmDataSymbolPerPacket / 8 // 24
	ofdmPreferredPayload     = 48
)

// ofdmStandardPhase is the complex value placed on a subcarrier for bit 0 and
// bit 1 respectively, before the inverse FFT.
var ofdmStandardPhase = [2]complex128{
	complex(ofdmFFTEnergyZoom, 0),
	complex(-ofdmFFTEnergyZoom, 0),
}

// OFDM is an orthogonal frequency-division multiplexing modem. Every packet
// carries one all-zero training symbol used purely as a per-subcarrier
// phase reference, followed by 48 data symbols each encoding 4 bits across
// 4 adjacent subcarriers starting at index 18.
type OFDM struct{}

// NewOFDM constructs an OFDM modem. The sample rate does not affect the
// algorithm (subcarrier spacing is defined in FFT bins, not Hz); it is
// accepted to satisfy the common modem constructor shape.
func NewOFDM(sampleRate int) *OFDM {
	return &OFDM{}
}

func (o *OFDM) MinModulateBytes() int      { return ofdmPreferredPayload }
func (o *OFDM) PreferredPayloadBytes() int { return ofdmPreferredPayload }
func (o *OFDM) PreambleFrequencyRange() (float64, float64) {
	return 900, 3000
}

// Modulate accepts any multiple of the per-packet data size (24 bytes;
// PreferredPayloadBytes covers two such packets) and encodes each packet
// independently.
func (o *OFDM) Modulate(data []byte) []numeric.Sample {
	if len(data)%ofdmPacketDataBytes != 0 {
		panic("ofdm: modulate requires a multiple of the packet data size")
	}

	out := make([]numeric.Sample, 0, (len(data)/ofdmPacketDataBytes)*ofdmPacketSamples)
	for i := 0; i < len(data); i += ofdmPacketDataBytes {
		out = append(out, o.encodePacket(data[i:i+ofdmPacketDataBytes])...)
	}
	return out
}

func (o *OFDM) encodePacket(chunk []byte) []numeric.Sample {
	trainBits := make([]byte, ofdmBitPerSymbol)
	dataBits := BytesToBits(chunk)
	bits := append(trainBits, dataBits...)

	out := make([]numeric.Sample, 0, ofdmPacketSamples)
	for s := 0; s < len(bits); s += ofdmBitPerSymbol {
		group := bits[s : s+ofdmBitPerSymbol]
		buffer := make([]complex128, ofdmDataSamples)
		for k, bit := range group {
			buffer[ofdmStartSubcarrierIndex+k] = ofdmStandardPhase[bit&1]
		}

		ifftOut := IFFT(buffer)
		// IFFT divides by the transform size; scale back up so each
		// subcarrier goes on the air at ofdmFFTEnergyZoom amplitude.
		for i := range ifftOut {
			ifftOut[i] *= ofdmDataSamples
		}

		samples := make([]numeric.Sample, 0, ofdmSamplesPerSymbol)
		samples = append(samples, RealSamples(ifftOut[ofdmDataSamples-ofdmCyclicPrefixSamples:])...)
		samples = append(samples, RealSamples(ifftOut)...)
		out = append(out, samples...)
	}
	return out
}

// Demodulate accepts any multiple of ofdmPacketSamples and decodes each
// packet independently.
func (o *OFDM) Demodulate(samples []numeric.Sample) []byte {
	if len(samples)%ofdmPacketSamples != 0 {
		panic("ofdm: demodulate requires a multiple of the packet sample count")
	}

	bits := make([]byte, 0, (len(samples)/ofdmPacketSamples)*ofdmBitPerSymbol*ofdmDataSymbolPerPacket)
	for i := 0; i < len(samples); i += ofdmPacketSamples {
		bits = append(bits, o.decodePacket(samples[i:i+ofdmPacketSamples])...)
	}
	return BitsToBytes(bits)
}

func (o *OFDM) decodePacket(chunk []numeric.Sample) []byte {
	trainSamples := chunk[:ofdmSamplesPerSymbol]
	dataSamples := chunk[ofdmSamplesPerSymbol:]

	trainArgs := make([]float64, ofdmBitPerSymbol)
	{
		buffer := make([]complex128, ofdmDataSamples)
		copy(buffer, ComplexSamples(trainSamples[ofdmCyclicPrefixSamples:]))
		spectrum := FFT(buffer)
		for k := 0; k < ofdmBitPerSymbol; k++ {
			trainArgs[k] = cmplx.Phase(spectrum[ofdmStartSubcarrierIndex+k])
		}
	}

	bits := make([]byte, 0, ofdmBitPerSymbol*ofdmDataSymbolPerPacket)
	for s := 0; s < len(dataSamples); s += ofdmSamplesPerSymbol {
		symbol := dataSamples[s : s+ofdmSamplesPerSymbol]

		buffer := make([]complex128, ofdmDataSamples)
		copy(buffer, ComplexSamples(symbol[ofdmCyclicPrefixSamples:]))
		spectrum := FFT(buffer)

		for k := 0; k < ofdmBitPerSymbol; k++ {
			offset := cmplx.Exp(complex(0, -trainArgs[k]))
			rotated := spectrum[ofdmStartSubcarrierIndex+k] * offset
			if real(rotated) < 0 {
				bits = append(bits, 1)
			} else {
				bits = append(bits, 0)
			}
		}
	}
	return bits
}
