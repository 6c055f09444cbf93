package audio

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavBitDepth = 16

// WriteWAV encodes samples (in [-1, 1]) as a mono 16-bit PCM WAV file at
// sampleRate, for use as a recorded fixture in tests that exercise a modem or
// detector against captured audio instead of the live Host.
func WriteWAV(path string, samples []float64, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, wavBitDepth, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: wavBitDepth,
		Data:           make([]int, len(samples)),
	}
	scale := float64(int(1) << (wavBitDepth - 1))
	for i, s := range samples {
		v := int(s * scale)
		// +1.0 would scale to 2^15, one past the largest 16-bit sample.
		if v > int(scale)-1 {
			v = int(scale) - 1
		} else if v < -int(scale) {
			v = -int(scale)
		}
		buf.Data[i] = v
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return enc.Close()
}

// ReadWAV decodes a mono 16-bit PCM WAV file back into samples in [-1, 1].
func ReadWAV(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode wav: %w", err)
	}

	scale := float64(int(1) << (wavBitDepth - 1))
	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float64(v) / scale
	}
	return samples, buf.Format.SampleRate, nil
}
