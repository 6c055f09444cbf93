package node

import (
	"testing"

	"github.com/anptech/anp/internal/audio"
	"github.com/anptech/anp/internal/detector"
	"github.com/anptech/anp/internal/modem"
	"github.com/anptech/anp/internal/preamble"
)

// fakeHost satisfies the Host interface without touching any real audio
// device; pump drives buffer cycles through every registered callback, with
// each cycle's capture being the previous cycle's playback and playback
// appended to a log.
type fakeHost struct {
	sampleRate int
	bufferSize int
	callbacks  []audio.Callback
	played     []float64
}

func newFakeHost(sampleRate, bufferSize int) *fakeHost {
	return &fakeHost{sampleRate: sampleRate, bufferSize: bufferSize}
}

func (h *fakeHost) SampleRate() int { return h.sampleRate }
func (h *fakeHost) BufferSize() int { return h.bufferSize }
func (h *fakeHost) Register(cb audio.Callback) {
	h.callbacks = append(h.callbacks, cb)
}

// pump runs cycles buffer cycles, feeding each sender's queued playback
// sample straight back in as the next cycle's capture sample (a direct
// loopback channel).
func (h *fakeHost) pump(cycles int) {
	capture := make([]float64, h.bufferSize)
	playback := make([]float64, h.bufferSize)
	for c := 0; c < cycles; c++ {
		for i := range playback {
			playback[i] = 0
		}
		for _, cb := range h.callbacks {
			cb(capture, playback)
		}
		h.played = append(h.played, playback...)
		for i, v := range playback {
			capture[i] = v
		}
	}
}

func TestSenderReceiverLoopback(t *testing.T) {
	const sampleRate = 48000
	host := newFakeHost(sampleRate, 256)

	m := modem.NewBitWave(sampleRate)
	sender := NewSender(host, m, preamble.Acoustic)
	receiver := NewReceiver(host, m, detector.Acoustic, preamble.Acoustic)

	frame := make([]byte, m.MinModulateBytes()*2+5)
	for i := range frame {
		frame[i] = byte(i)
	}

	done := make(chan []byte, 1)
	go func() { done <- receiver.Recv() }()
	go sender.Send(frame)

	// Enough cycles to flush the queued samples through the loopback host;
	// pumping concurrently with the goroutine above drains the bounded
	// sample channel as Send fills it.
	host.pump(4000)

	select {
	case got := <-done:
		if len(got) != len(frame) {
			t.Fatalf("length = %d, want %d", len(got), len(frame))
		}
		for i := range frame {
			if got[i] != frame[i] {
				t.Fatalf("byte %d: got %#x, want %#x", i, got[i], frame[i])
			}
		}
	default:
		t.Fatal("receiver did not produce a frame within the pumped cycles")
	}
}
