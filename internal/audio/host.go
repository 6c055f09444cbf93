// Package audio adapts a JACK-like process-callback contract onto
// github.com/gordonklaus/portaudio's blocking stream API: components register
// a callback before Activate, and each buffer cycle every registered callback
// sees the same capture slice and writes into the same playback slice.
package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// Init initializes the underlying PortAudio library; call once before
// constructing any Host.
func Init() error {
	return portaudio.Initialize()
}

// Terminate releases the underlying PortAudio library.
func Terminate() error {
	return portaudio.Terminate()
}

// Callback is invoked once per buffer cycle. capture holds BufferSize
// read-only samples just captured from the input device; playback is a
// BufferSize slice the callback may add its own signal into before it is
// written to the output device. Callbacks run in registration order, all
// writing into the same playback slice, so a sender callback and a receiver
// callback can share one Host without stepping on each other's concern.
type Callback func(capture, playback []float64)

// Host owns one portaudio duplex stream and fans its buffer cycle out to all
// registered callbacks. It is an ordinary value with ordinary Go lifetime —
// callers keep the *Host alive themselves, and Deactivate cleans it up —
// rather than a 'static-lifetime singleton a detached processing thread holds
// onto forever.
type Host struct {
	sampleRate int
	bufferSize int

	mu        sync.Mutex
	callbacks []Callback
	active    bool

	stream  *portaudio.Stream
	capture []float32
	play    []float32
	capF64  []float64
	playF64 []float64

	stop chan struct{}
	done chan struct{}
}

// NewHost constructs a Host bound to the default input and output devices.
func NewHost(sampleRate, bufferSize int) *Host {
	return &Host{
		sampleRate: sampleRate,
		bufferSize: bufferSize,
		capture:    make([]float32, bufferSize),
		play:       make([]float32, bufferSize),
		capF64:     make([]float64, bufferSize),
		playF64:    make([]float64, bufferSize),
	}
}

// SampleRate reports the host's fixed sample rate.
func (h *Host) SampleRate() int { return h.sampleRate }

// BufferSize reports the number of samples a callback sees per cycle.
func (h *Host) BufferSize() int { return h.bufferSize }

// Register adds cb to the set of callbacks invoked every buffer cycle. Must
// be called before Activate; registering after the stream is running panics,
// matching the original's register-before-activate contract.
func (h *Host) Register(cb Callback) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.active {
		panic("audio: Register called after Activate")
	}
	h.callbacks = append(h.callbacks, cb)
}

// Activate opens the default duplex stream and starts a goroutine that pumps
// capture/playback buffers through every registered callback until
// Deactivate is called.
func (h *Host) Activate() error {
	h.mu.Lock()
	if h.active {
		h.mu.Unlock()
		return fmt.Errorf("audio: already active")
	}
	stream, err := portaudio.OpenDefaultStream(1, 1, float64(h.sampleRate), h.bufferSize, h.capture, h.play)
	if err != nil {
		h.mu.Unlock()
		return fmt.Errorf("open duplex stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		h.mu.Unlock()
		return fmt.Errorf("start stream: %w", err)
	}
	h.stream = stream
	h.stop = make(chan struct{})
	h.done = make(chan struct{})
	h.active = true
	h.mu.Unlock()

	go h.processLoop()
	return nil
}

func (h *Host) processLoop() {
	defer close(h.done)
	for {
		select {
		case <-h.stop:
			return
		default:
		}

		if err := h.stream.Read(); err != nil {
			return
		}
		for i, s := range h.capture {
			h.capF64[i] = float64(s)
		}
		for i := range h.playF64 {
			h.playF64[i] = 0
		}

		h.mu.Lock()
		callbacks := h.callbacks
		h.mu.Unlock()
		for _, cb := range callbacks {
			cb(h.capF64, h.playF64)
		}

		for i, s := range h.playF64 {
			h.play[i] = float32(s)
		}
		if err := h.stream.Write(); err != nil {
			return
		}
	}
}

// Deactivate stops the processing loop and closes the stream, blocking until
// the in-flight buffer cycle (if any) completes.
func (h *Host) Deactivate() error {
	h.mu.Lock()
	if !h.active {
		h.mu.Unlock()
		return nil
	}
	close(h.stop)
	stream := h.stream
	h.active = false
	h.mu.Unlock()

	<-h.done
	return stream.Close()
}
