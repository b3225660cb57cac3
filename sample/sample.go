// Package sample provides the multi-channel audio buffer the tracing
// engine writes impulse contributions into. Channels grow on demand so a
// capture binding can extend its target as reflections arrive later in
// time; persistence of the buffers is the caller's concern.
package sample

import "github.com/chewxy/math32"

type Sample struct {
	rate     int
	channels [][]float32
}

// Create a sample with the given rate and channel count.
func New(rate, channels int) *Sample {
	return &Sample{
		rate:     rate,
		channels: make([][]float32, channels),
	}
}

// Get the sample rate.
func (s *Sample) Rate() int {
	return s.rate
}

// Get the channel count.
func (s *Sample) Channels() int {
	return len(s.channels)
}

// Get the current length of a channel in samples.
func (s *Sample) Len(channel int) int {
	if channel < 0 || channel >= len(s.channels) {
		return 0
	}
	return len(s.channels[channel])
}

// Get the raw data of a channel.
func (s *Sample) Data(channel int) []float32 {
	if channel < 0 || channel >= len(s.channels) {
		return nil
	}
	return s.channels[channel]
}

// Add a weighted value at the given offset, growing the channel as needed.
// Out-of-range channels and negative offsets are ignored.
func (s *Sample) Add(channel, offset int, value float32) {
	if channel < 0 || channel >= len(s.channels) || offset < 0 {
		return
	}
	if offset >= len(s.channels[channel]) {
		grown := make([]float32, offset+1)
		copy(grown, s.channels[channel])
		s.channels[channel] = grown
	}
	s.channels[channel][offset] += value
}

// Peak absolute value across all channels.
func (s *Sample) Peak() float32 {
	var peak float32
	for _, ch := range s.channels {
		for _, v := range ch {
			if a := math32.Abs(v); a > peak {
				peak = a
			}
		}
	}
	return peak
}

// Scale all channels by a constant factor.
func (s *Sample) Scale(k float32) {
	for _, ch := range s.channels {
		for i := range ch {
			ch[i] *= k
		}
	}
}
