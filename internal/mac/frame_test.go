package mac

import "testing"

func TestTerminalDataFrameRoundTrip(t *testing.T) {
	const preferredPayloadBytes = 48
	validPacketBytes := ValidPacketBytes(preferredPayloadBytes)
	dataFrameBytes := DataFrameBytes(preferredPayloadBytes)

	payload := make([]byte, validPacketBytes)
	for i := range payload {
		payload[i] = byte(i * 3)
	}

	src := MacAddress{0x01, 0x02}
	dst := MacAddress{0x03, 0x04}
	frame := NewTerminalDataFrame(src, dst, 42, payload, validPacketBytes)

	encoded := frame.ToBytes()
	if len(encoded) != dataFrameBytes {
		t.Fatalf("encoded length = %d, want %d", len(encoded), dataFrameBytes)
	}

	decoded, ok := TerminalDataFrameFromBytes(encoded, dataFrameBytes)
	if !ok {
		t.Fatal("expected successful decode")
	}
	if decoded.Source != src || decoded.Destination != dst || decoded.Sequence != 42 {
		t.Fatalf("header mismatch: %+v", decoded)
	}
	for i := range payload {
		if decoded.Payload[i] != payload[i] {
			t.Fatalf("payload byte %d mismatch", i)
		}
	}
}

func TestAckPayloadRoundTrip(t *testing.T) {
	const preferredPayloadBytes = 48
	validPacketBytes := ValidPacketBytes(preferredPayloadBytes)

	ack := CreateAckPayload(validPacketBytes, func(n int) []byte { return make([]byte, n) })
	if len(ack) != validPacketBytes {
		t.Fatalf("ack length = %d, want %d", len(ack), validPacketBytes)
	}

	src := MacAddress{0x05, 0x06}
	dst := MacAddress{0x07, 0x08}
	frame := NewTerminalDataFrame(src, dst, 7, ack, validPacketBytes)
	if !IsAck(frame) {
		t.Fatal("expected IsAck true for an ack-shaped payload")
	}

	notAck := make([]byte, validPacketBytes)
	dataFrame := NewTerminalDataFrame(src, dst, 7, notAck, validPacketBytes)
	if IsAck(dataFrame) {
		t.Fatal("expected IsAck false for a zeroed payload")
	}
}
