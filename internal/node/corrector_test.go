package node

import (
	"math/rand"
	"testing"
)

// TestErrorCorrectorRoundTrip ports the original corrector.rs
// test_reed_solomon scenario: corrupt two bytes of one block and confirm the
// decoded data still matches.
func TestErrorCorrectorRoundTrip(t *testing.T) {
	const dataBytes = 100

	data := make([]byte, dataBytes)
	for i := range data {
		data[i] = byte(rand.Intn(256))
	}

	c, err := NewErrorCorrector()
	if err != nil {
		t.Fatalf("NewErrorCorrector: %v", err)
	}

	encoded, err := c.Encode(data)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	encoded[0] = 0
	encoded[1] = 0

	decoded := c.Decode(encoded)
	decoded = decoded[:dataBytes]

	for i := range data {
		if decoded[i] != data[i] {
			t.Fatalf("byte %d: got %#x, want %#x", i, decoded[i], data[i])
		}
	}
}

func TestErrorCorrectorBlockSizes(t *testing.T) {
	c, err := NewErrorCorrector()
	if err != nil {
		t.Fatalf("NewErrorCorrector: %v", err)
	}

	data := make([]byte, rsDataShards+1)
	encoded, err := c.Encode(data)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(encoded) != 2*rsTotalShards {
		t.Fatalf("encoded length = %d, want %d", len(encoded), 2*rsTotalShards)
	}
}
