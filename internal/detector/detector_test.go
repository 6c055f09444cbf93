package detector

import (
	"math/rand"
	"testing"

	"github.com/anptech/anp/internal/numeric"
	"github.com/anptech/anp/internal/preamble"
)

func TestUpdateEmitsExactlyOnce(t *testing.T) {
	pre := preamble.Generate(preamble.Acoustic, 48000)
	const payloadLen = 37

	payload := make([]numeric.Sample, payloadLen)
	for i := range payload {
		payload[i] = numeric.FromFloat64(rand.Float64()*2 - 1)
	}

	stream := make([]numeric.Sample, 0, len(pre)+payloadLen+len(pre))
	stream = append(stream, pre...)
	stream = append(stream, payload...)

	det := New(Acoustic, pre, payloadLen)

	var emissions [][]numeric.Sample
	for _, s := range stream {
		if out, ok := det.Update(s); ok {
			emissions = append(emissions, out)
		}
	}

	if len(emissions) != 1 {
		t.Fatalf("got %d emissions, want 1", len(emissions))
	}
	if len(emissions[0]) != payloadLen {
		t.Fatalf("emission length = %d, want %d", len(emissions[0]), payloadLen)
	}
	for i := range payload {
		if emissions[0][i] != payload[i] {
			t.Fatalf("payload mismatch at %d", i)
		}
	}
}

func TestUpdateIgnoresNoiseFloor(t *testing.T) {
	det := New(Acoustic, preamble.Generate(preamble.Acoustic, 48000), 10)
	for i := 0; i < 2000; i++ {
		if _, ok := det.Update(numeric.FromFloat64(rand.Float64()*0.01 - 0.005)); ok {
			t.Fatalf("spurious emission on pure noise at sample %d", i)
		}
	}
}

func TestUpdateTriggersWithModerateNoise(t *testing.T) {
	pre := preamble.Generate(preamble.Acoustic, 48000)
	noisy := make([]numeric.Sample, len(pre))
	for i, s := range pre {
		noisy[i] = s.Add(numeric.FromFloat64(rand.Float64() * 0.5))
	}
	const payloadLen = 20
	payload := make([]numeric.Sample, payloadLen)

	det := New(Acoustic, pre, payloadLen)
	var hit bool
	for _, s := range append(noisy, payload...) {
		if _, ok := det.Update(s); ok {
			hit = true
		}
	}
	if !hit {
		t.Fatal("detector failed to trigger on preamble with 0.5x amplitude noise")
	}
}
