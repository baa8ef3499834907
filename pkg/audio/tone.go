package audio

import (
	"encoding/binary"
	"math"
	"time"
)

const (
	// SampleRate is the rate of the playback context and of every buffer
	// this package produces.
	SampleRate = 44100

	BeepDuration = 100 * time.Millisecond

	// amplitude of the synthesized tone, 4096 of a 16-bit full scale
	toneAmplitude = 4096.0 / 32768.0
)

// Sample is mono audio with values in [-1, 1].
type Sample struct {
	Rate float64
	Data []float32
}

// Duration is the playing time of the sample.
func (s Sample) Duration() time.Duration {
	if s.Rate <= 0 {
		return 0
	}
	return time.Duration(float64(len(s.Data)) / s.Rate * float64(time.Second))
}

// Tone synthesizes a sine wave of freq Hz lasting d.
func Tone(freq float64, d time.Duration) Sample {
	n := int(d.Seconds() * SampleRate)
	data := make([]float32, n)
	for i := range data {
		data[i] = float32(toneAmplitude * math.Sin(2*math.Pi*freq*float64(i)/SampleRate))
	}
	return Sample{Rate: SampleRate, Data: data}
}

// Resample converts s to rate using linear interpolation.
func (s Sample) Resample(rate float64) Sample {
	if s.Rate == rate || len(s.Data) == 0 || s.Rate <= 0 {
		return Sample{Rate: rate, Data: s.Data}
	}

	n := int(float64(len(s.Data)) * rate / s.Rate)
	out := make([]float32, n)
	step := s.Rate / rate
	last := len(s.Data) - 1
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= last {
			out[i] = s.Data[last]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = s.Data[j]*(1-frac) + s.Data[j+1]*frac
	}
	return Sample{Rate: rate, Data: out}
}

// Truncate shortens s to at most d.
func (s Sample) Truncate(d time.Duration) Sample {
	n := int(d.Seconds() * s.Rate)
	if n < len(s.Data) {
		s.Data = s.Data[:n]
	}
	return s
}

// PCM16 encodes s as interleaved little endian signed 16-bit stereo, the
// layout the playback context expects.
func (s Sample) PCM16() []byte {
	out := make([]byte, len(s.Data)*4)
	for i, f := range s.Data {
		v := uint16(toInt16(f))
		binary.LittleEndian.PutUint16(out[i*4:], v)
		binary.LittleEndian.PutUint16(out[i*4+2:], v)
	}
	return out
}

func toInt16(f float32) int16 {
	switch {
	case f >= 1:
		return math.MaxInt16
	case f <= -1:
		return math.MinInt16 + 1
	default:
		return int16(f * math.MaxInt16)
	}
}
