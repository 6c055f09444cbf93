package modem

import (
	"math/rand"
	"testing"

	"github.com/anptech/anp/internal/numeric"
)

func TestBitWaveRoundTrip(t *testing.T) {
	data := make([]byte, 100)
	for i := range data {
		data[i] = byte(rand.Intn(256))
	}

	bw := NewBitWave(48000)
	modulated := bw.Modulate(data)

	for i := range modulated {
		modulated[i] = modulated[i].Add(numeric.FromFloat64(rand.Float64() / 2))
	}

	demodulated := bw.Demodulate(modulated)
	if len(demodulated) != len(data) {
		t.Fatalf("length = %d, want %d", len(demodulated), len(data))
	}
	for i := range data {
		if demodulated[i] != data[i] {
			t.Fatalf("byte %d: got %#x, want %#x", i, demodulated[i], data[i])
		}
	}
}

func TestBitWaveSampleCount(t *testing.T) {
	bw := NewBitWave(48000)
	out := bw.Modulate(make([]byte, bitwaveBytesPerPacket))
	if len(out) != bitwaveSamplesPerPacket {
		t.Fatalf("got %d samples, want %d", len(out), bitwaveSamplesPerPacket)
	}
}
