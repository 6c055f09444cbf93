package mac

import "testing"

// TestCrcWrapperRoundTrip ports the original corrupted.rs test_crc_wrapper.
func TestCrcWrapperRoundTrip(t *testing.T) {
	data := make([]byte, 1920)
	for i := range data {
		data[i] = byte(i * 7)
	}

	var w CrcWrapper
	encoded := w.Encode(data)
	decoded, ok := w.Decode(encoded)
	if !ok {
		t.Fatal("expected Decode to succeed")
	}
	if len(decoded) != len(data) {
		t.Fatalf("length = %d, want %d", len(decoded), len(data))
	}
	for i := range data {
		if decoded[i] != data[i] {
			t.Fatalf("byte %d: got %#x, want %#x", i, decoded[i], data[i])
		}
	}
}

// TestCrcWrapperCorrupted ports test_crc_wrapper_corrupted.
func TestCrcWrapperCorrupted(t *testing.T) {
	data := make([]byte, 1920)
	for i := range data {
		data[i] = byte(i * 11)
	}

	var w CrcWrapper
	encoded := w.Encode(data)
	encoded[0]++

	if _, ok := w.Decode(encoded); ok {
		t.Fatal("expected Decode to fail on corrupted data")
	}
}
