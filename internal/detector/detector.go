// Package detector implements the online matched-filter state machine that
// finds preamble-marked packets inside a continuous stream of captured
// samples, one sample at a time and without allocating on the hot path.
package detector

import (
	"gonum.org/v1/gonum/floats"

	"github.com/anptech/anp/internal/numeric"
)

// Profile bundles the detection thresholds that differ between an acoustic
// link and a cable link, mirroring preamble.Profile.
type Profile struct {
	ThresholdMin   float64
	ThresholdRatio float64
}

// Acoustic is the default profile for a speaker/microphone link.
var Acoustic = Profile{ThresholdMin: 20.0, ThresholdRatio: 5.0}

// Wired is the profile for a direct cable link, which runs cleaner and needs
// a higher floor to reject line noise.
var Wired = Profile{ThresholdMin: 75.0, ThresholdRatio: 5.0}

type state int

const (
	waiting state = iota
	maybePayload
	payload
)

// Detector is the 3-state packet boundary finder described in the frame
// layer design: Waiting watches for a correlation peak against the known
// preamble, MaybePayload confirms the peak landed on the previous sample,
// and Payload collects exactly payloadCapacity samples before emitting.
//
// The sliding window and correlation history are kept as plain float64
// rings so the hot-path correlation can go through gonum's floats.Dot/Sum
// instead of a hand-rolled loop; the public surface still speaks
// numeric.Sample.
//
// Detector is not safe for concurrent use; it is owned by a single receiver
// worker.
type Detector struct {
	profile    Profile
	preamble   []float64
	window     []float64 // fixed length len(preamble), oldest-first
	absHistory []float64 // fixed length len(preamble), oldest-first
	payloadBuf []numeric.Sample

	payloadCapacity int
	historyFilled   int

	state         state
	incumbentPeak float64
}

// New constructs a Detector against the given preamble sequence. payloadCapacity
// is the number of samples a modem-sized packet occupies on the air, as
// measured by modulating a zero-filled packet of MIN_MODULATE_BYTES.
func New(profile Profile, preamble []numeric.Sample, payloadCapacity int) *Detector {
	n := len(preamble)
	return &Detector{
		profile:         profile,
		preamble:        numeric.ToFloat64Slice(preamble),
		window:          make([]float64, n),
		absHistory:      make([]float64, n),
		payloadBuf:      make([]numeric.Sample, 0, payloadCapacity),
		payloadCapacity: payloadCapacity,
		state:           waiting,
	}
}

func (d *Detector) shiftWindow(sample float64) {
	copy(d.window, d.window[1:])
	d.window[len(d.window)-1] = sample
}

func (d *Detector) pushAbsHistory(c float64) {
	copy(d.absHistory, d.absHistory[1:])
	v := c
	if v < 0 {
		v = -v
	}
	d.absHistory[len(d.absHistory)-1] = v
	if d.historyFilled < len(d.absHistory) {
		d.historyFilled++
	}
}

func (d *Detector) correlation() float64 {
	return floats.Dot(d.window, d.preamble)
}

func (d *Detector) averageCorrelation() float64 {
	if d.historyFilled == 0 {
		return 0
	}
	return floats.Sum(d.absHistory) / float64(len(d.preamble))
}

// Update feeds one new captured sample into the state machine. It returns
// the collected payload samples and true the instant payloadCapacity samples
// have been gathered following a confirmed preamble hit; otherwise it
// returns nil, false. Update never grows its working buffers past the sizes
// established at construction and completes in O(len(preamble)).
func (d *Detector) Update(sample numeric.Sample) ([]numeric.Sample, bool) {
	s := sample.Float64()
	d.shiftWindow(s)

	// A MaybePayload entered on the previous call resolves here, against
	// the freshly shifted window, before anything below looks at d.state -
	// so the resulting Waiting/Payload transition takes effect within this
	// same call rather than the next one.
	if d.state == maybePayload {
		if d.correlation() > d.incumbentPeak {
			// The peak has not yet occurred: re-arm and keep watching.
			d.state = waiting
		} else {
			// The previous sample was the peak.
			d.state = payload
		}
	}

	switch d.state {
	case waiting:
		c := d.correlation()
		d.pushAbsHistory(c)
		avg := d.averageCorrelation()

		if c > d.profile.ThresholdMin && c > avg*d.profile.ThresholdRatio {
			d.payloadBuf = d.payloadBuf[:0]
			d.incumbentPeak = c
			d.state = maybePayload
		}
		return nil, false

	case payload:
		d.payloadBuf = append(d.payloadBuf, sample)
		if len(d.payloadBuf) == d.payloadCapacity {
			out := make([]numeric.Sample, d.payloadCapacity)
			copy(out, d.payloadBuf)
			d.state = waiting
			return out, true
		}
		return nil, false
	}
	return nil, false
}
