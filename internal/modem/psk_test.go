package modem

import (
	"math/rand"
	"testing"

	"github.com/anptech/anp/internal/numeric"
)

func TestPSKRoundTrip(t *testing.T) {
	data := make([]byte, 100)
	for i := range data {
		data[i] = byte(rand.Intn(256))
	}

	// 100 is not a multiple of MinModulateBytes (16); pad to the next
	// multiple as the frame manager would before handing bytes to modulate.
	padded := make([]byte, (len(data)+pskMinModulateBytes-1)/pskMinModulateBytes*pskMinModulateBytes)
	copy(padded, data)

	p := NewPSK(48000)
	modulated := p.Modulate(padded)

	for i := range modulated {
		modulated[i] = modulated[i].Add(numeric.FromFloat64(rand.Float64() / 2))
	}

	demodulated := p.Demodulate(modulated)
	if len(demodulated) != len(padded) {
		t.Fatalf("length = %d, want %d", len(demodulated), len(padded))
	}
	for i := range padded {
		if demodulated[i] != padded[i] {
			t.Fatalf("byte %d: got %#x, want %#x", i, demodulated[i], padded[i])
		}
	}
}

func TestPSKModulateRejectsBadLength(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on bad length")
		}
	}()
	NewPSK(48000).Modulate(make([]byte, pskMinModulateBytes+1))
}
