package livetext

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/text/unicode/norm"

	vimaging "github.com/ironsheep/livetext-viewer/internal/imaging"
)

var (
	// ErrNoImage is returned by Analyze before any image was set.
	ErrNoImage = errors.New("livetext: no image set")

	// ErrClosed is returned by Analyze after Close.
	ErrClosed = errors.New("livetext: analyzer closed")
)

// Result is the immutable outcome of one analysis pass.
type Result struct {
	// Generation identifies the image the result was computed for.
	Generation uint64 `json:"generation"`

	// Blocks is ordered as reported by the backend. Indices are stable for
	// this Result only.
	Blocks []TextBlock `json:"blocks"`
}

// Completion is delivered to listeners when a pass ends without being
// superseded.
type Completion struct {
	Generation uint64
	Result     *Result

	// Err is set when the backend failed or the pass was broken off. After
	// a backend failure Result is empty; after cancellation it is nil and
	// the previous result stays published.
	Err error
}

// FinishedListener receives completions. It runs on the worker goroutine.
type FinishedListener func(Completion)

// snapshot pairs a published result with the bitmap it was computed from so
// readers never mix geometry from one image with pixels of another.
type snapshot struct {
	result *Result
	source *image.RGBA
	frame  Frame
	chars  []charSlot
}

type charSlot struct {
	once  sync.Once
	boxes []CharBox
}

// Analyzer runs live text detection off the caller's goroutine and serves
// queries against the latest completed result.
//
// Each SetImage bumps a generation counter. Analyze cancels any pass still
// in flight and starts a new one tagged with the current generation and a
// request sequence; results whose tag is no longer current are dropped.
//
// Analyzer is safe for concurrent use.
type Analyzer struct {
	backend  Backend
	hardware Hardware
	logger   *slog.Logger

	mu         sync.RWMutex
	generation uint64
	seq        uint64
	source     *image.RGBA
	frame      Frame
	current    *snapshot
	cancel     context.CancelFunc
	running    bool
	closed     bool
	listeners  []listenerEntry
	nextID     int

	wg sync.WaitGroup
}

type listenerEntry struct {
	id int
	fn FinishedListener
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithHardware sets the acceleration preference passed to the backend.
func WithHardware(hw Hardware) Option {
	return func(a *Analyzer) {
		a.hardware = hw
	}
}

// New creates an Analyzer over backend.
func New(backend Backend, opts ...Option) *Analyzer {
	a := &Analyzer{
		backend:  backend,
		hardware: Hardware{Accelerator: AcceleratorNone},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.current = emptySnapshot(0)
	return a
}

func emptySnapshot(gen uint64) *snapshot {
	return &snapshot{result: &Result{Generation: gen, Blocks: []TextBlock{}}}
}

// SetImage replaces the analyzed bitmap with an owned copy of img and
// clears the published result. It does not start an analysis. A nil, typed
// nil or empty image clears the analyzer.
func (a *Analyzer) SetImage(img image.Image) {
	var (
		source *image.RGBA
		frame  Frame
	)
	if !vimaging.IsEmpty(img) {
		source = ownedCopy(img)
		frame = frameFromRGBA(source)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	// The superseded worker exits through the stale branch of run and never
	// clears this itself.
	a.running = false
	a.generation++
	a.source = source
	a.frame = frame
	a.current = emptySnapshot(a.generation)
	a.logger.Debug("live text image set", "generation", a.generation, "width", frame.Width, "height", frame.Height)
}

// Generation returns the generation of the most recent SetImage.
func (a *Analyzer) Generation() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.generation
}

// Busy reports whether a pass is in flight.
func (a *Analyzer) Busy() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.running
}

// OnFinished registers l for completions and returns a function removing it.
func (a *Analyzer) OnFinished(l FinishedListener) (unsubscribe func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	id := a.nextID
	a.listeners = append(a.listeners, listenerEntry{id: id, fn: l})
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		for i, e := range a.listeners {
			if e.id == id {
				a.listeners = append(a.listeners[:i], a.listeners[i+1:]...)
				return
			}
		}
	}
}

// Analyze starts a detection pass over the current image and returns the
// generation it is tagged with. It never blocks on the pass itself: a pass
// still in flight is cancelled and the new one starts immediately.
//
// ctx bounds the pass; cancelling it has the same effect as BreakAnalyze.
func (a *Analyzer) Analyze(ctx context.Context) (uint64, error) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return 0, ErrClosed
	}
	if a.source == nil {
		a.mu.Unlock()
		return 0, ErrNoImage
	}
	if a.cancel != nil {
		a.cancel()
		a.logger.Debug("superseding live text pass", "generation", a.generation, "seq", a.seq)
	}
	a.seq++
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.running = true
	seq, gen := a.seq, a.generation
	snap := &snapshot{source: a.source, frame: a.frame}
	a.wg.Add(1)
	a.mu.Unlock()

	go a.run(runCtx, cancel, seq, gen, snap)
	return gen, nil
}

// BreakAnalyze asks the in-flight pass to stop. It is best effort: the
// backend notices at its next cancellation check.
func (a *Analyzer) BreakAnalyze() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
}

// Close cancels any pass in flight and waits for workers to exit.
func (a *Analyzer) Close() error {
	a.mu.Lock()
	a.closed = true
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.running = false
	a.mu.Unlock()
	a.wg.Wait()
	return nil
}

func (a *Analyzer) run(ctx context.Context, cancel context.CancelFunc, seq, gen uint64, snap *snapshot) {
	defer a.wg.Done()
	defer cancel()

	det, err := a.detect(ctx, snap.frame)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}

	a.mu.Lock()
	if seq != a.seq || gen != a.generation {
		a.mu.Unlock()
		a.logger.Debug("discarding stale live text result", "generation", gen, "seq", seq)
		return
	}
	a.cancel = nil
	a.running = false

	done := Completion{Generation: gen, Err: err}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		a.logger.Debug("live text pass cancelled", "generation", gen)
	case err != nil:
		a.logger.Warn("live text backend failed", "generation", gen, "error", err)
		published := emptySnapshot(gen)
		a.current = published
		done.Result = published.result
	default:
		snap.result = &Result{Generation: gen, Blocks: normalizeBlocks(det)}
		snap.chars = make([]charSlot, len(snap.result.Blocks))
		a.current = snap
		done.Result = snap.result
		a.logger.Debug("live text pass finished", "generation", gen, "blocks", len(snap.result.Blocks))
	}
	listeners := make([]FinishedListener, 0, len(a.listeners))
	for _, l := range a.listeners {
		listeners = append(listeners, l.fn)
	}
	a.mu.Unlock()

	for _, l := range listeners {
		l(done)
	}
}

// detect calls the backend, turning a missing backend or a panic into an
// error so a faulty backend cannot take the process down.
func (a *Analyzer) detect(ctx context.Context, f Frame) (det *Detection, err error) {
	if a.backend == nil {
		return nil, ErrNoBackend
	}
	defer func() {
		if r := recover(); r != nil {
			det, err = nil, fmt.Errorf("livetext: backend panic: %v", r)
		}
	}()
	det, err = a.backend.Analyze(ctx, f, a.hardware)
	if err == nil && det == nil {
		det = &Detection{}
	}
	return det, err
}

// normalizeBlocks copies the backend output so later backend mutations
// cannot leak into a published Result, and puts text into NFC so rune
// offsets line up with what a user sees.
func normalizeBlocks(det *Detection) []TextBlock {
	blocks := make([]TextBlock, len(det.Blocks))
	for i, b := range det.Blocks {
		b.Text = norm.NFC.String(b.Text)
		if b.Chars != nil {
			chars := make([]CharBox, len(b.Chars))
			copy(chars, b.Chars)
			b.Chars = chars
		}
		blocks[i] = b
	}
	return blocks
}

func (a *Analyzer) snapshot() *snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}

// Result returns the latest published result. Callers must not modify it.
func (a *Analyzer) Result() *Result {
	return a.snapshot().result
}
