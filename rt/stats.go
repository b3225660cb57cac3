package rt

// Per-worker counters merged additively into the engine totals when a
// worker completes. Purely observational.
type Stats struct {
	RootTasks  uint64
	LocalTasks uint64

	Scanned     uint64
	Culled      uint64
	CulledBack  uint64
	Splits      uint64
	Reflections uint64
	Captured    uint64
}

// Merge adds the other block's counters into this one.
func (s *Stats) Merge(other *Stats) {
	s.RootTasks += other.RootTasks
	s.LocalTasks += other.LocalTasks
	s.Scanned += other.Scanned
	s.Culled += other.Culled
	s.CulledBack += other.CulledBack
	s.Splits += other.Splits
	s.Reflections += other.Reflections
	s.Captured += other.Captured
}
