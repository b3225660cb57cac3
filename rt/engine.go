package rt

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/chewxy/math32"
	"github.com/lsp-plugins/lsp-dsp-units-sub001/log"
	"github.com/lsp-plugins/lsp-dsp-units-sub001/scene"
)

// Progress callback invoked with the completed fraction of root-task
// work. Returning false requests cancellation.
type ProgressFunc func(fraction float32) bool

type bindingRef struct {
	capture *Capture
	binding *Binding
}

// Engine propagates sound energy from the configured sources through the
// bound scene and accumulates reflections into the capture bindings.
//
// Configuration must not be mutated while Process is running; this is a
// caller-enforced invariant. Cancel and Cancelled are lock-free and safe
// to call from any goroutine, including a real-time audio thread.
type Engine struct {
	logger log.Logger
	mu     sync.Mutex

	sc        *scene.Scene
	materials map[int32]Material
	sources   []Source
	captures  []*Capture

	sampleRate      int
	energyThreshold float32
	detalization    int
	tolerance       float32
	maxReflections  int
	maxRange        float32
	maxTriangles    int
	maxTasks        int
	normalize       bool

	progress   ProgressFunc
	progressMu sync.Mutex

	cancelFlag atomic.Bool

	// Per-run state.
	runBindings []bindingRef
	rootPool    []View
	rootMu      sync.Mutex
	rootTotal   int
	rootDone    atomic.Int64
	totalStats  Stats
}

// Create an engine with default parameters: 48 kHz output, energy
// threshold 1e-4, detalization 4, tolerance 0.1, at most 8 reflections
// within a 680 m propagation range.
func New() *Engine {
	return &Engine{
		logger:          log.New("rt"),
		materials:       make(map[int32]Material),
		sampleRate:      48000,
		energyThreshold: 1e-4,
		detalization:    4,
		tolerance:       0.1,
		maxReflections:  8,
		maxRange:        2 * SpeedOfSound,
		maxTasks:        1 << 22,
	}
}

// Bind the scene to trace. The scene is read-only for the duration of any
// Process call.
func (e *Engine) SetScene(sc *scene.Scene) {
	e.sc = sc
}

// Assign an acoustic material to an object id.
func (e *Engine) SetMaterial(objectID int32, m Material) {
	e.materials[objectID] = m
}

// Get the material assigned to an object id, falling back to the default.
func (e *Engine) GetMaterial(objectID int32) Material {
	return e.materialFor(objectID)
}

func (e *Engine) materialFor(objectID int32) Material {
	if m, ok := e.materials[objectID]; ok {
		return m
	}
	return DefaultMaterial()
}

// Add a sound source.
func (e *Engine) AddSource(src Source) {
	e.sources = append(e.sources, src)
}

// Add a capture and return its index for binding.
func (e *Engine) AddCapture(c *Capture) int {
	e.captures = append(e.captures, c)
	return len(e.captures) - 1
}

// Bind a sink channel to a capture; rMin/rMax bound the accepted
// reflection indices, negative values leave a bound open.
func (e *Engine) BindCapture(captureIdx int, sink SampleSink, channel, rMin, rMax int) error {
	if captureIdx < 0 || captureIdx >= len(e.captures) {
		return ErrBadState
	}
	e.captures[captureIdx].Bind(sink, channel, rMin, rMax)
	return nil
}

// Drop all captures and their bindings.
func (e *Engine) ClearCaptures() {
	e.captures = nil
}

func (e *Engine) SetSampleRate(rate int)            { e.sampleRate = rate }
func (e *Engine) SetEnergyThreshold(th float32)     { e.energyThreshold = th }
func (e *Engine) SetDetalization(d int)             { e.detalization = d }
func (e *Engine) SetTolerance(tol float32)          { e.tolerance = tol }
func (e *Engine) SetMaxReflections(n int)           { e.maxReflections = n }
func (e *Engine) SetMaxRange(meters float32)        { e.maxRange = meters }
func (e *Engine) SetTriangleBudget(n int)           { e.maxTriangles = n }
func (e *Engine) SetTaskBudget(n int)               { e.maxTasks = n }
func (e *Engine) SetNormalize(enabled bool)         { e.normalize = enabled }
func (e *Engine) SetProgress(progress ProgressFunc) { e.progress = progress }

// Request cooperative cancellation. Lock-free; safe from any goroutine.
func (e *Engine) Cancel() {
	e.cancelFlag.Store(true)
}

// Report whether cancellation has been requested.
func (e *Engine) Cancelled() bool {
	return e.cancelFlag.Load()
}

// Statistics accumulated by the most recent Process call.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalStats
}

// Process traces the configured sources through the scene using
// threadCount workers (0 or 1 runs synchronously in the calling
// goroutine) and merges the resulting impulse contributions into the
// capture bindings. Partial results of a cancelled run are still merged.
func (e *Engine) Process(threadCount int, initialEnergy float32) error {
	if e.sc == nil {
		return ErrBadState
	}
	if threadCount < 1 {
		threadCount = 1
	}

	e.cancelFlag.Store(false)
	e.rootDone.Store(0)
	e.totalStats = Stats{}

	// Snapshot the capture bindings for this run.
	e.runBindings = e.runBindings[:0]
	for _, c := range e.captures {
		for i := range c.bindings {
			e.runBindings = append(e.runBindings, bindingRef{capture: c, binding: &c.bindings[i]})
		}
	}

	roots := e.buildRootTasks(initialEnergy)
	e.rootTotal = len(roots)
	e.logger.Infof("tracing %d root tasks across %d workers (%d triangles, %d bindings)",
		len(roots), threadCount, e.sc.TriangleCount(), len(e.runBindings))

	start := time.Now()
	workers := make([]*worker, threadCount)
	errs := make([]error, threadCount)

	// Each worker gets a small initial share; the remainder stays in the
	// shared pool for stealing once a local queue drains.
	seed := len(roots) / (threadCount * 4)
	if seed < 1 {
		seed = 1
	}
	next := 0
	for i := range workers {
		workers[i] = newWorker(e, i)
		if errs[i] = workers[i].prepare(); errs[i] != nil {
			return errs[i]
		}
		if next < len(roots) {
			share := seed
			if next+share > len(roots) {
				share = len(roots) - next
			}
			workers[i].prepareMainLoop(roots[next : next+share])
			next += share
		}
	}
	e.rootPool = roots[next:]

	if threadCount == 1 {
		errs[0] = workers[0].run()
	} else {
		var wg sync.WaitGroup
		for i := range workers {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = workers[i].run()
			}(i)
		}
		wg.Wait()
	}

	// Fold the per-worker buffers into combined per-binding buffers first:
	// workers contribute at overlapping offsets, so the normalization peak
	// must be taken over the summed run result, not per worker.
	combined := make([][]float32, len(e.runBindings))
	sawCancel := false
	e.mu.Lock()
	for i, w := range workers {
		if errs[i] != nil {
			continue
		}
		w.foldInto(combined)
		e.totalStats.Merge(&w.stats)
		sawCancel = sawCancel || w.sawCancel
	}
	e.mu.Unlock()

	scale := float32(1)
	if e.normalize {
		var peak float32
		for _, buf := range combined {
			for _, v := range buf {
				if a := math32.Abs(v); a > peak {
					peak = a
				}
			}
		}
		if peak > 0 {
			scale = 1 / peak
		}
	}

	e.mu.Lock()
	for i, buf := range combined {
		ref := &e.runBindings[i]
		for offset, value := range buf {
			if value != 0 {
				ref.binding.Sink.Add(ref.binding.Channel, offset, value*scale)
			}
		}
	}
	e.mu.Unlock()

	e.logger.Infof("traced %d tasks in %d ms",
		e.Stats().LocalTasks, time.Since(start).Nanoseconds()/1e6)

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	if sawCancel {
		return ErrCancelled
	}

	if e.progress != nil {
		e.progressMu.Lock()
		e.progress(1)
		e.progressMu.Unlock()
	}
	return nil
}

// Build the root view set: one view per sampled emission direction of
// every source.
func (e *Engine) buildRootTasks(initialEnergy float32) []View {
	var roots []View
	for _, src := range e.sources {
		halfAngle := src.rootHalfAngle(e.detalization)
		for _, dir := range src.emitDirections(e.detalization) {
			roots = append(roots, View{
				Origin:     src.Position,
				Dir:        dir,
				HalfAngle:  halfAngle,
				Energy:     initialEnergy,
				LastFaceID: -1,
				root:       true,
			})
		}
	}
	return roots
}

// Claim an unclaimed root task from the shared pool.
func (e *Engine) claimRoot() (View, bool) {
	e.rootMu.Lock()
	defer e.rootMu.Unlock()

	n := len(e.rootPool)
	if n == 0 {
		return View{}, false
	}
	v := e.rootPool[n-1]
	e.rootPool = e.rootPool[:n-1]
	return v, true
}

// Record a completed root task and report progress. A callback returning
// false is an implicit cancellation request.
func (e *Engine) noteRootDone() {
	done := e.rootDone.Add(1)
	if e.progress == nil || e.rootTotal == 0 {
		return
	}

	e.progressMu.Lock()
	cont := e.progress(float32(done) / float32(e.rootTotal))
	e.progressMu.Unlock()
	if !cont {
		e.Cancel()
	}
}
