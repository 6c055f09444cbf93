package node

import (
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// Reed-Solomon over GF(2^8): 159 data bytes plus 96 parity bytes per block,
// one byte per shard, matching a 255-byte RS(255,159) block.
const (
	rsDataShards   = 159
	rsParityShards = 96
	rsTotalShards  = rsDataShards + rsParityShards
)

// ErrorCorrector adds and strips Reed-Solomon parity one 255-byte block at a
// time (159 data bytes + 96 parity bytes). Decode detects corrupted blocks
// but does not correct byte errors: the codec rebuilds only missing shards,
// and Decode never marks a shard as missing.
type ErrorCorrector struct {
	enc reedsolomon.Encoder
}

// NewErrorCorrector builds a corrector for the fixed 159/96 shard split.
func NewErrorCorrector() (*ErrorCorrector, error) {
	enc, err := reedsolomon.New(rsDataShards, rsParityShards)
	if err != nil {
		return nil, fmt.Errorf("new reed-solomon encoder: %w", err)
	}
	return &ErrorCorrector{enc: enc}, nil
}

// Encode splits data into rsDataShards-byte blocks (the final block
// zero-padded) and appends rsParityShards parity bytes to each, producing
// rsTotalShards bytes of wire data per block.
func (c *ErrorCorrector) Encode(data []byte) ([]byte, error) {
	blockCount := (len(data) + rsDataShards - 1) / rsDataShards
	if blockCount == 0 {
		blockCount = 1
	}
	out := make([]byte, 0, blockCount*rsTotalShards)

	for b := 0; b < blockCount; b++ {
		start := b * rsDataShards
		end := start + rsDataShards
		shards := make([][]byte, rsTotalShards)
		for i := 0; i < rsDataShards; i++ {
			shards[i] = make([]byte, 1)
			if start+i < len(data) && start+i < end {
				shards[i][0] = data[start+i]
			}
		}
		for i := rsDataShards; i < rsTotalShards; i++ {
			shards[i] = make([]byte, 1)
		}

		if err := c.enc.Encode(shards); err != nil {
			return nil, fmt.Errorf("encode block %d: %w", b, err)
		}
		for _, s := range shards {
			out = append(out, s[0])
		}
	}
	return out, nil
}

// Decode reverses Encode, reconstructing each rsTotalShards-byte block and
// returning its rsDataShards data bytes. A block whose parity does not
// verify is returned as received, uncorrected, rather than aborting the
// whole decode.
func (c *ErrorCorrector) Decode(encoded []byte) []byte {
	blockCount := len(encoded) / rsTotalShards
	out := make([]byte, 0, blockCount*rsDataShards)

	for b := 0; b < blockCount; b++ {
		block := encoded[b*rsTotalShards : (b+1)*rsTotalShards]
		shards := make([][]byte, rsTotalShards)
		for i := range shards {
			shards[i] = []byte{block[i]}
		}

		if err := c.enc.Reconstruct(shards); err != nil {
			out = append(out, block[:rsDataShards]...)
			continue
		}
		if ok, _ := c.enc.Verify(shards); !ok {
			out = append(out, block[:rsDataShards]...)
			continue
		}
		for i := 0; i < rsDataShards; i++ {
			out = append(out, shards[i][0])
		}
	}
	return out
}
