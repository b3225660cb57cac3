package rt

import "github.com/lsp-plugins/lsp-dsp-units-sub001/types"

// SampleSink is the narrow surface the engine requires from an audio
// buffer: additive writes at a sample offset (growing as needed) and the
// current capacity. The sample package provides the canonical
// implementation.
type SampleSink interface {
	Add(channel, offset int, value float32)
	Len(channel int) int
}

// A binding routes capture contributions into one channel of a sink,
// filtered by the reflection index of the contributing view. A negative
// bound leaves that side of the range open.
type Binding struct {
	Sink    SampleSink
	Channel int
	RMin    int
	RMax    int
}

func (b *Binding) accepts(reflectIdx int) bool {
	if b.RMin >= 0 && reflectIdx < b.RMin {
		return false
	}
	if b.RMax >= 0 && reflectIdx > b.RMax {
		return false
	}
	return true
}

// A capture is a virtual microphone: a spherical pickup volume around
// Position with an AABB precheck, optionally directional. Captures are
// configured before Process and read concurrently by all workers, so they
// must not be mutated while a run is active.
type Capture struct {
	Position  types.Vec3
	Direction types.Vec3
	Radius    float32

	bbox     types.AABB
	bindings []Binding
}

// Create a capture. A zero direction makes the capture omnidirectional.
func NewCapture(position, direction types.Vec3, radius float32) *Capture {
	c := &Capture{
		Position:  position,
		Direction: direction.Normalize(),
		Radius:    radius,
	}
	c.bbox = types.AABB{
		Min: position.Sub(types.Vec3{radius, radius, radius}),
		Max: position.Add(types.Vec3{radius, radius, radius}),
	}
	return c
}

// Bind a sink channel to this capture for reflections in [rMin, rMax];
// negative bounds accept any reflection index on that side.
func (c *Capture) Bind(sink SampleSink, channel, rMin, rMax int) {
	c.bindings = append(c.bindings, Binding{
		Sink:    sink,
		Channel: channel,
		RMin:    rMin,
		RMax:    rMax,
	})
}

// Directional pickup weight for sound arriving along dir; omnidirectional
// captures weigh every direction at 1.
func (c *Capture) gain(dir types.Vec3) float32 {
	if c.Direction.Len() < 0.5 {
		return 1
	}
	g := -dir.Dot(c.Direction)
	if g < 0 {
		return 0
	}
	return g
}
