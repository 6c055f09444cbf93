// Package preamble generates the chirp sequence used to mark frame
// boundaries on the air. The sequence is a pure function of sample rate and
// frequency band: a linear up-chirp through the first half, a linear
// down-chirp symmetric about the midpoint through the second half.
package preamble

import (
	"math"

	"github.com/anptech/anp/internal/numeric"
)

// Profile bundles the tunable constants that differ between an acoustic
// (speaker/microphone) link and a cable/wired link. The original
// implementation selected between these at compile time via a Cargo feature
// flag; here they are plain data passed to the constructors, since nothing
// about the algorithm itself changes between the two — only the numbers.
type Profile struct {
	Length  int
	FreqMin float64
	FreqMax float64
}

// Acoustic is the default profile for a speaker/microphone link.
var Acoustic = Profile{Length: 480, FreqMin: 900, FreqMax: 3000}

// Wired is the profile for a direct cable link, where a shorter, cleaner
// preamble suffices.
var Wired = Profile{Length: 240, FreqMin: 900, FreqMax: 3000}

// Generate returns PREAMBLE_LENGTH samples of the chirp described by the
// profile at the given sample rate. It is a pure function: the same
// arguments always produce the same sequence.
func Generate(profile Profile, sampleRate int) []numeric.Sample {
	n := profile.Length
	center := n / 2
	freqMin := profile.FreqMin
	deltaF := profile.FreqMax - profile.FreqMin

	out := make([]numeric.Sample, n)
	phase := 0.0
	sr := float64(sampleRate)

	for i := 0; i < n; i++ {
		var f float64
		if i < center {
			f = freqMin + deltaF*(float64(i)/float64(center))
		} else {
			f = profile.FreqMax - deltaF*(float64(i-center)/float64(center))
		}
		phase += f / sr
		out[i] = numeric.FromFloat64(phase * 2 * math.Pi).Sin()
	}
	return out
}
