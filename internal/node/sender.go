// Package node wires a Modem, a detector, and a frame manager onto an
// audio.Host to form a full transmit/receive path for one physical link, plus
// the Reed-Solomon ErrorCorrector that protects frames on their way across
// it.
package node

import (
	"math/rand"
	"sync"

	"github.com/anptech/anp/internal/audio"
	"github.com/anptech/anp/internal/framemanager"
	"github.com/anptech/anp/internal/modem"
	"github.com/anptech/anp/internal/numeric"
	"github.com/anptech/anp/internal/preamble"
)

// Host is the subset of *audio.Host a Sender or Receiver needs: enough to
// register a callback against a known sample rate and buffer size, without
// depending on the concrete portaudio-backed type. Satisfied by *audio.Host;
// tests substitute a fake.
type Host interface {
	SampleRate() int
	BufferSize() int
	Register(cb audio.Callback)
}

// Sender modulates frames and feeds the resulting samples to a Host's
// playback callback through a bounded channel, so the real-time audio
// goroutine never blocks on anything but a channel receive.
type Sender struct {
	modem    modem.Modem
	preamble []numeric.Sample
	samples  chan float64

	// queueMu serializes queue calls so the warm-up burst and a concurrent
	// Send can never interleave their samples mid-symbol on the channel.
	queueMu sync.Mutex
}

// NewSender registers a playback callback on host and queues a warm-up
// burst (one modulated packet of random bytes, without a preamble) through
// it immediately.
func NewSender(host Host, m modem.Modem, profile preamble.Profile) *Sender {
	s := &Sender{
		modem:    m,
		preamble: preamble.Generate(profile, host.SampleRate()),
		samples:  make(chan float64, host.BufferSize()*8),
	}

	host.Register(func(_, playback []float64) {
		for i := range playback {
			select {
			case v := <-s.samples:
				playback[i] += v
			default:
			}
		}
	})

	// One modem-sized packet of random bytes, queued asynchronously so a
	// channel buffer smaller than the burst can't deadlock construction:
	// primes the playback device past its initial buffer-fill transient
	// before a frame's preamble has to be heard cleanly.
	warmup := make([]byte, m.MinModulateBytes())
	for i := range warmup {
		warmup[i] = byte(rand.Intn(256))
	}
	go s.queue(m.Modulate(warmup))

	return s
}

// Send packetizes frame through framemanager.Construct and queues each
// packet's preamble-plus-modulated-payload samples for playback.
func (s *Sender) Send(frame []byte) {
	for _, packet := range framemanager.Construct(s.modem.MinModulateBytes(), frame) {
		s.queue(s.preamble)
		s.queue(s.modem.Modulate(packet))
	}
}

func (s *Sender) queue(samples []numeric.Sample) {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	for _, sample := range samples {
		s.samples <- sample.Float64()
	}
}
