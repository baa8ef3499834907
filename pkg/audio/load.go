package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

var ErrUnsupportedFormat = errors.New("unsupported sound format")

// LoadFile decodes a .wav or .mp3 file into a mono Sample, keeping the
// left channel of stereo sources.
func LoadFile(path string) (Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return Sample{}, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return LoadWAV(f)
	case ".mp3":
		return LoadMP3(f)
	default:
		return Sample{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func LoadWAV(r io.ReadSeeker) (Sample, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Sample{}, fmt.Errorf("wav: not a valid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Sample{}, fmt.Errorf("wav: %w", err)
	}

	chans := int(dec.NumChans)
	if chans < 1 {
		chans = 1
	}
	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = int(dec.BitDepth)
	}
	if depth == 0 {
		return Sample{}, fmt.Errorf("wav: unknown bit depth")
	}
	scale := float32(int64(1) << (depth - 1))

	s := Sample{
		Rate: float64(dec.SampleRate),
		Data: make([]float32, 0, len(buf.Data)/chans),
	}
	// first channel only
	for i := 0; i < len(buf.Data); i += chans {
		s.Data = append(s.Data, float32(buf.Data[i])/scale)
	}
	return s, nil
}

// LoadMP3 decodes an MP3 stream. The decoder always yields 16-bit little
// endian stereo.
func LoadMP3(r io.Reader) (Sample, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return Sample{}, fmt.Errorf("mp3: %w", err)
	}

	s := Sample{Rate: float64(dec.SampleRate())}
	chunk := make([]byte, 4096)
	for {
		n, err := dec.Read(chunk)
		// four bytes per frame, left channel first
		for i := 0; i+1 < n; i += 4 {
			v := int16(uint16(chunk[i]) | uint16(chunk[i+1])<<8)
			s.Data = append(s.Data, float32(v)/32768)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return Sample{}, fmt.Errorf("mp3: %w", err)
		}
	}
	return s, nil
}
