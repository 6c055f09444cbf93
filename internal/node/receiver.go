package node

import (
	"sync"

	"github.com/anptech/anp/internal/detector"
	"github.com/anptech/anp/internal/framemanager"
	"github.com/anptech/anp/internal/modem"
	"github.com/anptech/anp/internal/numeric"
	"github.com/anptech/anp/internal/preamble"
)

// averagePower tracks an exponential running estimate of captured signal
// power, used to flag a likely collision (someone else transmitting at the
// same time) on a shared acoustic channel.
type averagePower struct {
	mu    sync.Mutex
	value float64
}

const (
	averagePowerRefreshFactor  = 0.85
	averagePowerCollisionLimit = 2.5e-4
)

func newAveragePower() *averagePower {
	return &averagePower{value: 1.0}
}

func (a *averagePower) update(sample float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.value *= 1 - averagePowerRefreshFactor
	a.value += sample * sample * averagePowerRefreshFactor
}

// Colliding reports whether the running power estimate is high enough to
// suggest another transmitter is active on the channel right now.
func (a *averagePower) Colliding() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.value > averagePowerCollisionLimit
}

// Receiver pulls samples off a Host's capture callback, finds packet
// boundaries with a detector.Detector, demodulates each packet, and
// reassembles frames with a framemanager.Manager.
type Receiver struct {
	AveragePower *averagePower

	modem   modem.Modem
	samples chan float64

	detector *detector.Detector
	frames   *framemanager.Manager
}

// NewReceiver registers a capture callback on host.
func NewReceiver(host Host, m modem.Modem, detProfile detector.Profile, preProfile preamble.Profile) *Receiver {
	preambleSamples := preamble.Generate(preProfile, host.SampleRate())

	empty := m.Modulate(make([]byte, m.MinModulateBytes()))
	payloadCapacity := len(empty)

	r := &Receiver{
		AveragePower: newAveragePower(),
		modem:        m,
		samples:      make(chan float64, host.BufferSize()*8),
		detector:     detector.New(detProfile, preambleSamples, payloadCapacity),
		frames:       framemanager.New(m.MinModulateBytes()),
	}

	host.Register(func(capture, _ []float64) {
		for _, sample := range capture {
			r.AveragePower.update(sample)
			select {
			case r.samples <- sample:
			default:
			}
		}
	})

	return r
}

// Recv blocks until a complete frame has been reassembled from the captured
// stream.
func (r *Receiver) Recv() []byte {
	for {
		sample := <-r.samples
		packet, ok := r.detector.Update(numeric.FromFloat64(sample))
		if !ok {
			continue
		}
		if frame, ok := r.frames.Update(r.modem.Demodulate(packet)); ok {
			return frame
		}
	}
}
