package rt

import (
	"github.com/chewxy/math32"
	"github.com/lsp-plugins/lsp-dsp-units-sub001/rt/bsp"
	"github.com/lsp-plugins/lsp-dsp-units-sub001/types"
)

// A worker owns a private transformed copy of the scene, a LIFO queue of
// view tasks and private contribution buffers, so the hot loop never
// touches shared state. Only claiming root tasks and the final merge
// cross goroutine boundaries.
type worker struct {
	id  int
	eng *Engine

	ctx   *bsp.Context
	queue []View
	cand  []*bsp.Triangle

	// Private accumulation buffers, one per engine binding, folded into
	// the combined run buffers once all workers complete.
	contrib [][]float32

	stats     Stats
	pushed    int
	sawCancel bool
}

func newWorker(eng *Engine, id int) *worker {
	return &worker{id: id, eng: eng}
}

// Build the worker's private scene copy: every object flattened through
// its transform into a fresh partition context.
func (w *worker) prepare() error {
	w.ctx = bsp.NewContext(w.eng.maxTriangles)

	for id, obj := range w.eng.sc.Objects {
		mat := w.eng.materialFor(int32(id))
		tag := types.Vec3{1, 1, 1}.Mul(1 - mat.Absorption)
		if err := w.ctx.AddObject(obj, int32(id), obj.Transform, tag); err != nil {
			return err
		}
	}
	if err := w.ctx.BuildTree(); err != nil {
		return err
	}

	w.contrib = make([][]float32, len(w.eng.runBindings))
	return nil
}

// Seed the local queue with this worker's share of root tasks.
func (w *worker) prepareMainLoop(roots []View) {
	w.queue = append(w.queue, roots...)
	w.stats.RootTasks += uint64(len(roots))
}

// Drain the local queue, stealing unclaimed root tasks from the shared
// pool whenever it runs dry. The engine cancel flag is checked once per
// task iteration.
func (w *worker) run() error {
	for {
		if w.eng.Cancelled() {
			w.sawCancel = true
			return nil
		}

		var v View
		if n := len(w.queue); n > 0 {
			v = w.queue[n-1]
			w.queue = w.queue[:n-1]
		} else {
			var ok bool
			if v, ok = w.eng.claimRoot(); !ok {
				return nil
			}
			w.stats.RootTasks++
		}

		if err := w.processView(&v); err != nil {
			return err
		}
		if v.root {
			w.eng.noteRootDone()
		}
	}
}

func (w *worker) push(v View) error {
	if w.eng.maxTasks > 0 {
		w.pushed++
		if w.pushed > w.eng.maxTasks {
			return ErrOutOfMemory
		}
	}
	w.queue = append(w.queue, v)
	return nil
}

// Run one view through scan, cull, cullback, split, reflect and capture,
// pushing any produced child views onto the local queue.
func (w *worker) processView(v *View) error {
	w.stats.LocalTasks++
	eng := w.eng

	// Scan the depth-ordered triangle stream, rejecting triangles
	// outside the view bounds before any exact test.
	w.cand = w.cand[:0]
	bounds := v.bounds(eng.maxRange)
	w.ctx.Traverse(v.Origin, func(t *bsp.Triangle) bool {
		w.stats.Scanned++
		if t.FaceID == v.LastFaceID {
			return true
		}
		if !bounds.Overlaps(t.BBox()) {
			w.stats.Culled++
			return true
		}
		w.cand = append(w.cand, t)
		return true
	})

	// Back-face elimination: reflections only happen against surfaces
	// facing the propagation direction.
	kept := w.cand[:0]
	for _, tri := range w.cand {
		if tri.Normal.Dot(v.Dir) < -geomEps {
			kept = append(kept, tri)
		} else {
			w.stats.CulledBack++
		}
	}
	w.cand = kept

	// The candidates arrive front-to-back from the partition tree, so
	// the first central-ray intersection is the nearest occluder.
	var hit *bsp.Triangle
	hitT := eng.maxRange
	for _, tri := range w.cand {
		if d, ok := intersectRayTriangle(v.Origin, v.Dir, tri.V[0], tri.V[1], tri.V[2]); ok {
			if d < hitT {
				hit = tri
				hitT = d
			}
			break
		}
	}

	w.capture(v, hitT)

	if hit == nil {
		return nil
	}

	mat := eng.materialFor(hit.ObjectID)
	hitPoint := v.Origin.Add(v.Dir.Mul(hitT))
	coverage := coneCoverage(hit.Area(), hitT, v.HalfAngle)

	// Partial occlusion: the uncovered remainder of the bundle keeps
	// propagating past the hit plane at the same reflection index.
	if coverage < 1-eng.tolerance {
		passEnergy := v.Energy * (1 - coverage)
		if passEnergy >= eng.energyThreshold {
			w.stats.Splits++
			if err := w.push(View{
				Origin:     hitPoint,
				Dir:        v.Dir,
				HalfAngle:  v.HalfAngle,
				Energy:     passEnergy,
				ReflectIdx: v.ReflectIdx,
				Distance:   v.Distance + hitT,
				LastFaceID: hit.FaceID,
			}); err != nil {
				return err
			}
		}
	} else {
		coverage = 1
	}

	if v.ReflectIdx+1 > eng.maxReflections {
		return nil
	}

	// Energy retained on contact comes from the triangle tag baked while
	// building the worker's scene copy.
	avail := v.Energy * coverage * hit.Color[0]
	reflEnergy := avail * (1 - mat.Transmission)
	tranEnergy := avail * mat.Transmission

	if reflEnergy >= eng.energyThreshold {
		w.stats.Reflections++
		if err := w.push(View{
			Origin:     hitPoint,
			Dir:        v.Dir.Reflect(hit.Normal).Normalize(),
			HalfAngle:  widen(v.HalfAngle, mat.Diffusion),
			Energy:     reflEnergy,
			ReflectIdx: v.ReflectIdx + 1,
			Distance:   v.Distance + hitT,
			LastFaceID: hit.FaceID,
		}); err != nil {
			return err
		}
	}

	if tranEnergy >= eng.energyThreshold {
		if err := w.push(View{
			Origin:     hitPoint,
			Dir:        v.Dir,
			HalfAngle:  widen(v.HalfAngle, mat.Dispersion),
			Energy:     tranEnergy,
			ReflectIdx: v.ReflectIdx + 1,
			Distance:   v.Distance + hitT,
			LastFaceID: hit.FaceID,
		}); err != nil {
			return err
		}
	}

	return nil
}

// Widen a cone half-angle towards the hemisphere by the given scatter
// coefficient.
func widen(halfAngle, scatter float32) float32 {
	return halfAngle + scatter*(math32.Pi/2-halfAngle)
}

// Test the view segment up to the hit distance against every binding and
// accumulate energy contributions into the worker's private buffers.
func (w *worker) capture(v *View, limit float32) {
	for i := range w.eng.runBindings {
		ref := &w.eng.runBindings[i]
		cpt := ref.capture

		if !cpt.bbox.Contains(v.Origin) && !cpt.bbox.IntersectsRay(v.Origin, v.Dir) {
			continue
		}
		if !ref.binding.accepts(v.ReflectIdx) {
			continue
		}

		// Closest approach of the segment to the capture center.
		tc := cpt.Position.Sub(v.Origin).Dot(v.Dir)
		if tc < 0 {
			tc = 0
		} else if tc > limit {
			tc = limit
		}
		approach := v.Origin.Add(v.Dir.Mul(tc)).Sub(cpt.Position).Len()
		if approach > cpt.Radius {
			continue
		}

		gain := cpt.gain(v.Dir)
		if gain <= 0 {
			continue
		}

		norm := approach / cpt.Radius
		value := v.Energy * gain * (1 - norm*norm)
		offset := int((v.Distance+tc)/SpeedOfSound*float32(w.eng.sampleRate) + 0.5)

		w.addContribution(i, offset, value)
		w.stats.Captured++
	}
}

func (w *worker) addContribution(binding, offset int, value float32) {
	if offset < 0 {
		return
	}
	buf := w.contrib[binding]
	if offset >= len(buf) {
		grown := make([]float32, offset+1)
		copy(grown, buf)
		buf = grown
		w.contrib[binding] = buf
	}
	buf[offset] += value
}

// Fold this worker's contribution buffers into the combined per-binding
// run buffers, growing them as needed.
func (w *worker) foldInto(combined [][]float32) {
	for i, buf := range w.contrib {
		if len(buf) > len(combined[i]) {
			grown := make([]float32, len(buf))
			copy(grown, combined[i])
			combined[i] = grown
		}
		for offset, value := range buf {
			combined[i][offset] += value
		}
	}
}
