package itemscan

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/kestrelcv/itemscan/internal/analyze"
	"github.com/kestrelcv/itemscan/internal/geometry"
	"github.com/kestrelcv/itemscan/internal/pixel"
)

// State names one phase of the detection pipeline. Complete and Failed
// are the only terminal states.
type State string

// Pipeline states, in execution order.
const (
	StateIdle            State = "idle"
	StateLoading         State = "loading"
	StateRegionDetecting State = "region_detecting"
	StateCellEnumerating State = "cell_enumerating"
	StateCellScoring     State = "cell_scoring"
	StateSuppressing     State = "suppressing"
	StateVerifying       State = "verifying"
	StateComplete        State = "complete"
	StateFailed          State = "failed"
)

// ProgressFunc receives coarse-grained pipeline milestones. percent is
// monotonically non-decreasing and always reaches 100 before Detect
// returns successfully. Cache hits return without invoking it at all.
type ProgressFunc func(percent int, status string)

// IoU threshold applied during the suppression stage.
const suppressionIoU = 0.3

// Result is the outcome of one detection call.
type Result struct {
	// Detections in cell-enumeration order, after suppression and
	// verification filtering. Filtering removes, never reorders.
	Detections []Detection `json:"detections"`

	// GridParams is the verified lattice, nil when no lattice could be
	// inferred.
	GridParams *GridParams `json:"grid_params,omitempty"`

	ScreenType string          `json:"screen_type"`
	Regions    map[string]Rect `json:"regions"`

	// Warnings carries non-fatal anomalies (degenerate_input,
	// budget_exceeded). An empty detection list with no error is the
	// normal "nothing recognized" outcome.
	Warnings []string `json:"warnings,omitempty"`

	CacheHit bool          `json:"cache_hit"`
	State    State         `json:"state"`
	Duration time.Duration `json:"duration_ns"`
}

// Option configures a Detector.
type Option func(*Detector)

// WithTuning installs a hook that can adjust the per-resolution Config
// before each run. Intended for tests and diagnostics.
func WithTuning(fn func(Config) Config) Option {
	return func(d *Detector) { d.tuning = fn }
}

// Detector is the detection pipeline orchestrator. It owns the content-
// addressed result cache and the cumulative metrics; construct isolated
// instances in tests to assert cache behavior deterministically.
//
// A Detector is safe for concurrent use. Concurrent calls for the same
// image content share one computation via the cache's in-flight
// de-duplication.
type Detector struct {
	catalog *Catalog
	cache   *resultCache
	metrics *metricsCollector
	tuning  func(Config) Config
}

// New constructs a Detector over the given entity catalog. The catalog
// is read-only from the detector's perspective and is typically loaded
// once at application start.
func New(catalog *Catalog, opts ...Option) *Detector {
	d := &Detector{
		catalog: catalog,
		cache:   newResultCache(),
		metrics: &metricsCollector{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Config returns the detection tunables that would apply to a frame of
// the given size, including any installed tuning hook. Zero dimensions
// select the 1080p defaults.
func (d *Detector) Config(width, height int) Config {
	cfg := ConfigFor(width, height)
	if d.tuning != nil {
		cfg = d.tuning(cfg)
	}
	return cfg
}

// ClearCache drops all cached detection results.
func (d *Detector) ClearCache() {
	d.cache.clear()
}

// Metrics returns cumulative telemetry across all runs of this detector.
func (d *Detector) Metrics() Metrics {
	return d.metrics.snapshot()
}

// Detect runs the full pipeline on one input image.
//
// The result cache is consulted first by content fingerprint; on a hit
// the cached result is returned immediately without progress callbacks.
// On a miss the pipeline walks Loading -> RegionDetecting ->
// CellEnumerating -> CellScoring -> Suppressing -> Verifying ->
// Complete, reporting coarse progress milestones and finishing with
// progress(100, ...) before returning. The finished result is committed
// to the cache before return, so an identical second call is guaranteed
// to be a cache hit.
//
// Degenerate inputs (blank frames, odd aspect ratios) complete normally
// with an empty or low-confidence detection list; only undecodable input
// (ErrDecode) and a missing catalog (ErrCatalogUnavailable) fail the
// call. Cancellation via ctx aborts between cells with ctx's error.
func (d *Detector) Detect(ctx context.Context, src Source, progress ProgressFunc) (*Result, error) {
	if d.catalog == nil {
		return nil, ErrCatalogUnavailable
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", ErrDecode)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	fp, err := src.fingerprint()
	if err != nil {
		return nil, err
	}

	cached, hit, commit := d.cache.begin(fp)
	if hit {
		d.metrics.recordHit()
		cached.CacheHit = true
		return cached, nil
	}
	committed := false
	defer func() {
		if !committed {
			commit(nil)
		}
	}()

	report := func(pct int, status string) {
		if progress != nil {
			progress(pct, status)
		}
	}
	start := time.Now()

	// Loading.
	frame, err := src.decode()
	if err != nil {
		return nil, err
	}
	report(5, string(StateLoading))

	cfg := d.Config(frame.Width, frame.Height)
	var warnings []string

	// RegionDetecting.
	screenType := geometry.DetectScreenType(frame)
	uiRegions := geometry.DetectUIRegions(frame)
	report(15, string(StateRegionDetecting))

	// CellEnumerating.
	scale := geometry.DetectIconScale(frame)
	cells := geometry.DetectGridPositions(frame, scale.IconSize)
	if len(cells) > cfg.MaxCells {
		cells = cells[:cfg.MaxCells]
	}
	report(20, string(StateCellEnumerating))

	if len(cells) == 0 || analyze.ColorVariance(sampleFrame(frame)) < 1 {
		warnings = append(warnings, WarnDegenerateInput)
	}

	// CellScoring: sequential, in enumeration order, so the final
	// detection list is deterministic regardless of completion timing.
	scorer := newCellScorer(d.catalog, cfg)
	gridOriginX, gridSpacing := 0.0, 0.0
	if len(cells) > 0 {
		gridOriginX = float64(cells[0].X)
		if len(cells) > 1 {
			gridSpacing = float64(cells[1].X - cells[0].X)
		}
	}

	detections := make([]Detection, 0, len(cells))
	lastMilestone := 20
	scored := 0
	deadline := start.Add(cfg.ScoringBudget)
	for i, cell := range cells {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if time.Now().After(deadline) {
			warnings = append(warnings, WarnBudgetExceeded)
			break
		}
		if det, ok := scorer.score(frame, cell, gridOriginX, gridSpacing); ok {
			detections = append(detections, det)
		}
		scored++
		// Report roughly every 10% block of cell scoring.
		pct := 20 + 60*(i+1)/len(cells)
		if pct >= lastMilestone+6 {
			lastMilestone = pct
			report(pct, string(StateCellScoring))
		}
	}

	// Suppressing.
	report(85, string(StateSuppressing))
	detections = NonMaxSuppression(detections, suppressionIoU)

	// Verifying.
	report(95, string(StateVerifying))
	expectedSpacing := gridSpacing
	verification := VerifyGridPattern(detections, expectedSpacing)

	result := &Result{
		Detections: verification.FilteredDetections,
		GridParams: verification.GridParams,
		ScreenType: string(screenType),
		Regions:    convertRegions(uiRegions),
		Warnings:   warnings,
		State:      StateComplete,
		Duration:   time.Since(start),
	}

	d.metrics.recordRun(result.Duration, scored, result.Detections)
	commit(result)
	committed = true
	report(100, string(StateComplete))
	return result, nil
}

// GridCells enumerates candidate inventory slots for an image without
// running detection. cellSize selects the slot edge length; pass 0 to
// use the adaptively estimated icon scale. Useful for feeding
// RenderGridOverlay.
func (d *Detector) GridCells(img image.Image, cellSize int) []Cell {
	frame := pixel.FromImage(img)
	if cellSize <= 0 {
		cellSize = geometry.DetectIconScale(frame).IconSize
	}
	cells := geometry.DetectGridPositions(frame, cellSize)
	out := make([]Cell, len(cells))
	for i, c := range cells {
		out[i] = Cell{X: c.X, Y: c.Y, Width: c.Width, Height: c.Height, Label: c.Label}
	}
	return out
}

// sampleFrame downsamples large frames before the whole-frame variance
// probe so degenerate-input classification stays cheap at 4K and above.
func sampleFrame(frame *pixel.Block) *pixel.Block {
	if frame.Width*frame.Height <= 256*256 {
		return frame
	}
	return pixel.Resize(frame, 128, 128)
}

func convertRegions(in map[string]geometry.Region) map[string]Rect {
	out := make(map[string]Rect, len(in))
	for name, r := range in {
		out[name] = Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
	}
	return out
}
