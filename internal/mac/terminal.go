// Package mac implements the CSMA-style terminal that sits above one
// physical node.Sender/node.Receiver pair: addressed frames, a CRC-16/USB
// integrity wrapper, and stop-and-wait ARQ with retransmission.
package mac

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/anptech/anp/internal/detector"
	"github.com/anptech/anp/internal/modem"
	"github.com/anptech/anp/internal/node"
	"github.com/anptech/anp/internal/preamble"
)

const (
	retransmitTick = 600 * time.Millisecond
	ackTimeout     = 2000 * time.Millisecond
	sendPacing     = 300 * time.Millisecond

	// seqDedupCapacity bounds the received-sequence-number dedup set. The
	// original kept an unbounded Vec<u32>, growing for the life of the
	// process; bounded to a ring here so a long-lived terminal doesn't leak
	// memory.
	seqDedupCapacity = 4096

	// collisionBackoffMaxMillis bounds the random wait between checks of
	// the channel's collision signal before (re)transmitting.
	collisionBackoffMaxMillis = 20
)

type pendingFrame struct {
	isAck bool
	frame TerminalDataFrame
}

// Telemetry receives ARQ events for an operator console; nil by default, so
// reporting it costs nothing unless a caller wires one in. Satisfied by
// *monitor.Hub without this package importing monitor.
type Telemetry interface {
	BroadcastFrame(sequence uint32, destination string, event string)
	BroadcastCollision(colliding bool)
}

type noopTelemetry struct{}

func (noopTelemetry) BroadcastFrame(uint32, string, string) {}
func (noopTelemetry) BroadcastCollision(bool)               {}

// seqDedup is a bounded FIFO set of recently seen sequence numbers, used to
// suppress delivering a data frame more than once when its ACK is lost and
// the sender retransmits. Duplicates are still acknowledged.
type seqDedup struct {
	mu    sync.Mutex
	seen  map[uint32]struct{}
	order []uint32
}

func newSeqDedup() *seqDedup {
	return &seqDedup{seen: make(map[uint32]struct{}, seqDedupCapacity)}
}

func (d *seqDedup) containsAndAdd(seq uint32) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[seq]; ok {
		return true
	}
	d.seen[seq] = struct{}{}
	d.order = append(d.order, seq)
	if len(d.order) > seqDedupCapacity {
		oldest := d.order[0]
		d.order = d.order[1:]
		delete(d.seen, oldest)
	}
	return false
}

// ackTracker records which sequence numbers have been acknowledged.
type ackTracker struct {
	mu    sync.Mutex
	acked map[uint32]struct{}
}

func newAckTracker() *ackTracker {
	return &ackTracker{acked: make(map[uint32]struct{})}
}

func (t *ackTracker) mark(seq uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.acked[seq] = struct{}{}
}

func (t *ackTracker) has(seq uint32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.acked[seq]
	return ok
}

// Terminal is one addressed endpoint on a shared acoustic or wired channel:
// it frames application data, retransmits until acknowledged, deduplicates
// incoming retransmissions, and answers with ACKs of its own.
type Terminal struct {
	address          MacAddress
	sender           *node.Sender
	receiver         *node.Receiver
	validPacketBytes int
	dataFrameBytes   int
	avoidCollision   bool

	running   atomic.Bool
	sequence  atomic.Uint32
	toSend    chan pendingFrame
	delivered chan TerminalDataFrame
	acks      *ackTracker
	dedup     *seqDedup
	telemetry Telemetry
}

// SetTelemetry wires an operator-console sink for ARQ events. Must be called
// before Activate.
func (t *Terminal) SetTelemetry(telemetry Telemetry) {
	t.telemetry = telemetry
}

// NewTerminal builds a Terminal bound to one modem/profile pair over host.
// avoidCollision enables a pre-send check against the receiver's collision
// signal before every (re)transmission, backing off with a short random
// delay while the channel looks busy.
func NewTerminal(address MacAddress, host node.Host, m modem.Modem, detProfile detector.Profile, preProfile preamble.Profile, avoidCollision bool) *Terminal {
	validPacketBytes := ValidPacketBytes(m.PreferredPayloadBytes())
	return &Terminal{
		address:          address,
		sender:           node.NewSender(host, m, preProfile),
		receiver:         node.NewReceiver(host, m, detProfile, preProfile),
		validPacketBytes: validPacketBytes,
		dataFrameBytes:   DataFrameBytes(m.PreferredPayloadBytes()),
		avoidCollision:   avoidCollision,
		toSend:           make(chan pendingFrame),
		delivered:        make(chan TerminalDataFrame),
		acks:             newAckTracker(),
		dedup:            newSeqDedup(),
		telemetry:        noopTelemetry{},
	}
}

// ValidPacketBytes is the application payload capacity of one frame.
func (t *Terminal) ValidPacketBytes() int { return t.validPacketBytes }

// Send queues data (padded/truncated to ValidPacketBytes) for delivery to
// destination. It blocks until the sender worker takes the frame, which
// happens once the worker has finished with the previous frame (ACKed or
// timed out); it does not wait for this frame's own ACK. It paces itself at
// sendPacing between calls, matching the original's fixed inter-send delay.
func (t *Terminal) Send(data []byte, destination MacAddress) {
	payload := make([]byte, t.validPacketBytes)
	copy(payload, data)

	sequence := t.sequence.Add(1) - 1
	frame := NewTerminalDataFrame(t.address, destination, sequence, payload, t.validPacketBytes)

	time.Sleep(sendPacing)
	t.toSend <- pendingFrame{frame: frame}
}

// Recv blocks until the next data frame addressed to this terminal arrives.
func (t *Terminal) Recv() TerminalDataFrame {
	return <-t.delivered
}

// Activate starts the send and receive worker goroutines.
func (t *Terminal) Activate() {
	t.running.Store(true)
	go t.runSender()
	go t.runReceiver()
}

// Deactivate signals both workers to stop after their current operation.
func (t *Terminal) Deactivate() {
	t.running.Store(false)
}

func (t *Terminal) awaitClearChannel() {
	if !t.avoidCollision {
		return
	}
	for t.receiver.AveragePower.Colliding() {
		t.telemetry.BroadcastCollision(true)
		time.Sleep(time.Duration(rand.Intn(collisionBackoffMaxMillis)) * time.Millisecond)
	}
}

func addressString(a MacAddress) string {
	const hexDigits = "0123456789abcdef"
	b := make([]byte, 0, len(a)*2)
	for _, x := range a {
		b = append(b, hexDigits[x>>4], hexDigits[x&0xF])
	}
	return string(b)
}

func (t *Terminal) runSender() {
	var wrapper CrcWrapper
	for t.running.Load() {
		pending := <-t.toSend
		dest := addressString(pending.frame.Destination)

		if pending.isAck {
			t.awaitClearChannel()
			t.sender.Send(wrapper.Encode(pending.frame.ToBytes()))
			continue
		}

		t.awaitClearChannel()
		t.sender.Send(wrapper.Encode(pending.frame.ToBytes()))
		t.telemetry.BroadcastFrame(pending.frame.Sequence, dest, "sent")

		ticker := time.NewTicker(retransmitTick)
		timeout := time.NewTimer(ackTimeout)

	retry:
		for {
			select {
			case <-ticker.C:
				if t.acks.has(pending.frame.Sequence) {
					t.telemetry.BroadcastFrame(pending.frame.Sequence, dest, "acked")
					break retry
				}
				t.awaitClearChannel()
				t.sender.Send(wrapper.Encode(pending.frame.ToBytes()))
				t.telemetry.BroadcastFrame(pending.frame.Sequence, dest, "retried")
			case <-timeout.C:
				t.telemetry.BroadcastFrame(pending.frame.Sequence, dest, "timeout")
				t.running.Store(false)
				break retry
			}
		}
		ticker.Stop()
		timeout.Stop()
	}
}

func (t *Terminal) runReceiver() {
	var wrapper CrcWrapper
	for t.running.Load() {
		received := t.receiver.Recv()

		body, ok := wrapper.Decode(received)
		if !ok {
			continue
		}
		frame, ok := TerminalDataFrameFromBytes(body, t.dataFrameBytes)
		if !ok || frame.Destination != t.address {
			continue
		}

		if IsAck(frame) {
			t.acks.mark(frame.Sequence)
			continue
		}

		if !t.dedup.containsAndAdd(frame.Sequence) {
			t.delivered <- frame
		}

		ackPayload := CreateAckPayload(t.validPacketBytes, randomBytes)
		ackFrame := NewTerminalDataFrame(t.address, frame.Source, frame.Sequence, ackPayload, t.validPacketBytes)
		t.toSend <- pendingFrame{isAck: true, frame: ackFrame}
	}
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(rand.Intn(256))
	}
	return b
}
