// Package modem implements the three physical-layer encodings this link
// supports — PSK, OFDM, and the 4B6B/NRZI line code "BitWave" — behind a
// single Modem interface, plus the shared bit/byte bridge they all use.
package modem

import "github.com/anptech/anp/internal/numeric"

// Modem is the capability set required of every physical-layer variant.
// modulate/demodulate operate on whole packets: modulate rejects any input
// whose length is not a multiple of the modem's packet data size, and
// demodulate rejects any input whose length is not a multiple of the
// modem's sample count per packet.
type Modem interface {
	// MinModulateBytes is the packet size the frame manager pads frames to
	// before calling Modulate; every multiple of it is accepted. For PSK and
	// BitWave it equals the modem's packet data size; OFDM's packet data
	// size is 24 bytes, half its MinModulateBytes, so OFDM's Modulate also
	// accepts odd multiples of 24.
	MinModulateBytes() int
	// PreferredPayloadBytes is the payload unit this modem is tuned for at
	// the MAC layer.
	PreferredPayloadBytes() int
	// PreambleFrequencyRange reports the (min, max) Hz this modem expects
	// its preamble to sweep.
	PreambleFrequencyRange() (min, max float64)

	Modulate(data []byte) []numeric.Sample
	Demodulate(samples []numeric.Sample) []byte
}
