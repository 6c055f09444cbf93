package framemanager

import (
	"testing"

	"pgregory.net/rapid"
)

// TestManagerRoundTripProperty checks the quantified invariant: for every
// frame with 0 < len(frame) <= 65535, concatenating Construct(frame) and
// feeding the packets one by one through a fresh Manager yields exactly one
// emission equal to frame.
func TestManagerRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		packetLength := rapid.SampledFrom([]int{16, 24, 48, 100}).Draw(rt, "packetLength")
		frame := rapid.SliceOfN(rapid.Byte(), 1, 2000).Draw(rt, "frame")

		m := New(packetLength)
		packets := Construct(packetLength, frame)

		var emissions int
		var got []byte
		for _, p := range packets {
			if out, ok := m.Update(p); ok {
				emissions++
				got = out
			}
		}

		if emissions != 1 {
			rt.Fatalf("got %d emissions, want 1", emissions)
		}
		if len(got) != len(frame) {
			rt.Fatalf("length = %d, want %d", len(got), len(frame))
		}
		for i := range frame {
			if got[i] != frame[i] {
				rt.Fatalf("byte %d mismatch", i)
			}
		}
	})
}
