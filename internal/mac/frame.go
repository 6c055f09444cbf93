package mac

import (
	"encoding/binary"
	"fmt"
)

const (
	// AddressBytes is the width of one MacAddress.
	AddressBytes = 2
	// sequenceBytes is the width of TerminalDataFrame's sequence field.
	sequenceBytes = 4

	// ackMagicBytes is the width of the fixed pattern an AckPayload's
	// payload begins with.
	ackMagicBytes = 6
)

// ackMagicNumber marks a data frame's payload as carrying an acknowledgment
// rather than application data — a fixed, vanishingly-unlikely-by-chance
// byte pattern rather than a separate frame type tag, so ACKs travel inside
// the same TerminalDataFrame wire shape as everything else.
var ackMagicNumber = [ackMagicBytes]byte{0x11, 0x45, 0x14, 0x19, 0x19, 0x81}

// MacAddress identifies one terminal on the link.
type MacAddress [AddressBytes]byte

// DataFrameBytes is the wire size of one TerminalDataFrame (before the CRC
// trailer CrcWrapper adds around it), sized to the given modem's preferred
// payload.
func DataFrameBytes(preferredPayloadBytes int) int {
	return preferredPayloadBytes - CRCBytes
}

// ValidPacketBytes is the application payload capacity left over once the
// frame header (two addresses and a sequence number) is accounted for.
func ValidPacketBytes(preferredPayloadBytes int) int {
	return DataFrameBytes(preferredPayloadBytes) - AddressBytes*2 - sequenceBytes
}

// TerminalDataFrame is the fixed-size addressed frame carried over one
// physical packet: source address, destination address, a sequence number
// used both for ARQ matching and duplicate-frame detection, and a
// payload exactly validPacketBytes long.
type TerminalDataFrame struct {
	Source      MacAddress
	Destination MacAddress
	Sequence    uint32
	Payload     []byte
}

// NewTerminalDataFrame builds a frame, panicking if payload is not exactly
// validPacketBytes long — the same hard invariant the original's
// TerminalDataFrame::new asserts.
func NewTerminalDataFrame(source, destination MacAddress, sequence uint32, payload []byte, validPacketBytes int) TerminalDataFrame {
	if len(payload) != validPacketBytes {
		panic(fmt.Sprintf("mac: payload length %d != %d", len(payload), validPacketBytes))
	}
	p := make([]byte, len(payload))
	copy(p, payload)
	return TerminalDataFrame{Source: source, Destination: destination, Sequence: sequence, Payload: p}
}

// ToBytes serializes the frame: source, destination, big-endian sequence,
// then the payload.
func (f TerminalDataFrame) ToBytes() []byte {
	out := make([]byte, 0, AddressBytes*2+sequenceBytes+len(f.Payload))
	out = append(out, f.Source[:]...)
	out = append(out, f.Destination[:]...)
	var seq [sequenceBytes]byte
	binary.BigEndian.PutUint32(seq[:], f.Sequence)
	out = append(out, seq[:]...)
	out = append(out, f.Payload...)
	return out
}

// TerminalDataFrameFromBytes parses a frame of exactly dataFrameBytes bytes;
// ok is false if the length doesn't match.
func TerminalDataFrameFromBytes(data []byte, dataFrameBytes int) (TerminalDataFrame, bool) {
	if len(data) != dataFrameBytes {
		return TerminalDataFrame{}, false
	}

	var f TerminalDataFrame
	copy(f.Source[:], data[:AddressBytes])
	data = data[AddressBytes:]
	copy(f.Destination[:], data[:AddressBytes])
	data = data[AddressBytes:]
	f.Sequence = binary.BigEndian.Uint32(data[:sequenceBytes])
	f.Payload = append([]byte(nil), data[sequenceBytes:]...)
	return f, true
}

// CreateAckPayload builds an ACK payload of exactly validPacketBytes bytes:
// the magic number followed by random padding.
func CreateAckPayload(validPacketBytes int, rand func(n int) []byte) []byte {
	return append(append([]byte(nil), ackMagicNumber[:]...), rand(validPacketBytes-ackMagicBytes)...)
}

// IsAck reports whether frame's payload begins with the ACK magic number.
// A data payload that happens to begin with the same six bytes is also
// reported as an ACK.
func IsAck(frame TerminalDataFrame) bool {
	if len(frame.Payload) < ackMagicBytes {
		return false
	}
	for i, b := range ackMagicNumber {
		if frame.Payload[i] != b {
			return false
		}
	}
	return true
}
