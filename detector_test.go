package itemscan

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidIcon(c color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func testEntities() []Entity {
	return []Entity{
		{ID: "relic_sword", Name: "Relic Sword", Category: CategoryWeapon,
			Icon: solidIcon(color.NRGBA{R: 230, G: 30, B: 30, A: 255})},
		{ID: "tower_shield", Name: "Tower Shield", Category: CategoryItem,
			Icon: solidIcon(color.NRGBA{R: 40, G: 90, B: 230, A: 255})},
		{ID: "moss_tome", Name: "Moss Tome", Category: CategoryTome,
			Icon: solidIcon(color.NRGBA{R: 40, G: 200, B: 60, A: 255})},
	}
}

// syntheticScreenshot builds a 1280x720 frame with a solid red hotbar
// band placed where the fallback band geometry puts the slot row, so
// every enumerated cell crops pure sword-icon color.
func syntheticScreenshot() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 1280, 720))
	dark := color.NRGBA{R: 0x14, G: 0x14, B: 0x14, A: 255}
	red := color.NRGBA{R: 230, G: 30, B: 30, A: 255}
	for y := 0; y < 720; y++ {
		c := dark
		if y >= 661 && y < 693 {
			c = red
		}
		for x := 0; x < 1280; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDetect_SyntheticScreenshot(t *testing.T) {
	d := New(NewCatalog(testEntities()))

	var percents []int
	progress := func(pct int, status string) {
		percents = append(percents, pct)
	}

	res, err := d.Detect(context.Background(), FromImage(syntheticScreenshot()), progress)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, StateComplete, res.State)
	assert.False(t, res.CacheHit)
	assert.Empty(t, res.Warnings)
	assert.Greater(t, res.Duration.Nanoseconds(), int64(0))

	require.Len(t, res.Detections, 30)
	for _, det := range res.Detections {
		assert.Equal(t, "relic_sword", det.EntityID)
		assert.Equal(t, CategoryWeapon, det.Type)
		assert.Equal(t, MethodTemplateMatch, det.Method)
		assert.InDelta(t, 0.95, det.Confidence, 0.02)
		require.NotNil(t, det.Position)
		assert.Equal(t, 32, det.Position.Width)
		assert.Equal(t, 32, det.Position.Height)
	}

	// One row of slots cannot pin down a 2-D lattice.
	assert.Nil(t, res.GridParams)
	assert.Contains(t, res.Regions, "hotbar")
	assert.Equal(t, "gameplay", res.ScreenType)

	// Progress is monotonic and finishes at 100.
	require.NotEmpty(t, percents)
	for i := 1; i < len(percents); i++ {
		assert.GreaterOrEqual(t, percents[i], percents[i-1])
	}
	assert.Equal(t, 100, percents[len(percents)-1])
}

func TestDetect_CacheIdempotence(t *testing.T) {
	d := New(NewCatalog(testEntities()))
	src := FromBytes(encodePNG(t, syntheticScreenshot()))

	first, err := d.Detect(context.Background(), src, nil)
	require.NoError(t, err)
	require.False(t, first.CacheHit)

	called := false
	second, err := d.Detect(context.Background(), src, func(int, string) { called = true })
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.False(t, called, "cache hits must not report progress")
	assert.Equal(t, first.Detections, second.Detections)

	m := d.Metrics()
	assert.Equal(t, 1, m.Runs)
	assert.Equal(t, 1, m.CacheHits)
	assert.Equal(t, 30, m.Aggregated.CellsScored)
	assert.Equal(t, 30, m.Aggregated.TotalDetections)
	assert.InDelta(t, 0.95, m.Aggregated.AvgConfidence, 0.02)

	d.ClearCache()
	third, err := d.Detect(context.Background(), src, nil)
	require.NoError(t, err)
	assert.False(t, third.CacheHit)
	assert.Equal(t, 2, d.Metrics().Runs)
}

func TestDetect_ConcurrentDeduplication(t *testing.T) {
	d := New(NewCatalog(testEntities()))
	data := encodePNG(t, syntheticScreenshot())

	const workers = 4
	results := make([]*Result, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = d.Detect(context.Background(), FromBytes(data), nil)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		assert.Equal(t, results[0].Detections, results[i].Detections)
	}

	m := d.Metrics()
	assert.Equal(t, 1, m.Runs, "identical concurrent inputs must share one computation")
	assert.Equal(t, workers-1, m.CacheHits)
}

func TestDetect_Errors(t *testing.T) {
	t.Run("missing catalog", func(t *testing.T) {
		d := New(nil)
		_, err := d.Detect(context.Background(), FromBytes([]byte{1}), nil)
		assert.ErrorIs(t, err, ErrCatalogUnavailable)
	})

	d := New(NewCatalog(testEntities()))

	t.Run("nil source", func(t *testing.T) {
		_, err := d.Detect(context.Background(), nil, nil)
		assert.ErrorIs(t, err, ErrDecode)
	})

	t.Run("undecodable bytes", func(t *testing.T) {
		_, err := d.Detect(context.Background(), FromBytes([]byte("not an image")), nil)
		assert.ErrorIs(t, err, ErrDecode)
	})

	t.Run("malformed data url", func(t *testing.T) {
		_, err := d.Detect(context.Background(), FromDataURL("data:image/png;base64,@@@"), nil)
		assert.ErrorIs(t, err, ErrDecode)

		// A failed run must not poison the cache for this fingerprint.
		_, err = d.Detect(context.Background(), FromDataURL("data:image/png;base64,@@@"), nil)
		assert.ErrorIs(t, err, ErrDecode)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := d.Detect(context.Background(), FromFile("/nonexistent/screen.png"), nil)
		assert.ErrorIs(t, err, ErrDecode)
	})

	t.Run("nil image", func(t *testing.T) {
		_, err := d.Detect(context.Background(), FromImage(nil), nil)
		assert.ErrorIs(t, err, ErrDecode)
	})
}

func TestDetect_Cancellation(t *testing.T) {
	d := New(NewCatalog(testEntities()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Detect(ctx, FromImage(syntheticScreenshot()), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetect_EmptyCatalog(t *testing.T) {
	d := New(NewCatalog(nil))

	res, err := d.Detect(context.Background(), FromImage(syntheticScreenshot()), nil)
	require.NoError(t, err)
	assert.Equal(t, StateComplete, res.State)
	assert.Empty(t, res.Detections)
}

func TestDetect_BlankFrameDegenerate(t *testing.T) {
	d := New(NewCatalog(testEntities()))

	blank := image.NewNRGBA(image.Rect(0, 0, 1280, 720))
	res, err := d.Detect(context.Background(), FromImage(blank), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Detections)
	assert.Contains(t, res.Warnings, WarnDegenerateInput)
}

func TestDetect_ScoringBudgetExceeded(t *testing.T) {
	d := New(NewCatalog(testEntities()), WithTuning(func(cfg Config) Config {
		cfg.ScoringBudget = 0
		return cfg
	}))

	res, err := d.Detect(context.Background(), FromImage(syntheticScreenshot()), nil)
	require.NoError(t, err)

	// An exhausted budget is a partial result, not a failure.
	assert.Equal(t, StateComplete, res.State)
	assert.Contains(t, res.Warnings, WarnBudgetExceeded)
	assert.Empty(t, res.Detections)

	m := d.Metrics()
	assert.Equal(t, 1, m.Runs)
	assert.Equal(t, 0, m.Aggregated.CellsScored,
		"cells skipped by the budget break must not count as scored")
}

func TestDetect_TuningHook(t *testing.T) {
	d := New(NewCatalog(testEntities()), WithTuning(func(cfg Config) Config {
		cfg.DynamicThreshold = 0.99
		return cfg
	}))

	assert.Equal(t, 0.99, d.Config(1280, 720).DynamicThreshold)

	res, err := d.Detect(context.Background(), FromImage(syntheticScreenshot()), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Detections, "raised threshold should reject every cell")
}

func TestGridCells(t *testing.T) {
	d := New(NewCatalog(testEntities()))
	cells := d.GridCells(syntheticScreenshot(), 0)

	require.NotEmpty(t, cells)
	assert.LessOrEqual(t, len(cells), 30)
	for _, c := range cells {
		assert.Equal(t, 32, c.Width)
		assert.Equal(t, 32, c.Height)
	}
}
