package geometry

import (
	"math"
	"sort"

	"github.com/anthonynsimon/bild/blur"
	"gonum.org/v1/gonum/stat"

	"github.com/kestrelcv/itemscan/internal/pixel"
)

// IconScale is the estimated pixel size of one inventory icon.
type IconScale struct {
	IconSize   int     `json:"icon_size"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"` // "edge_spacing" or "resolution_fallback"
}

// Icon size clamp range, shared by edge-based estimation and the
// resolution fallback.
const (
	minIconSize = 24
	maxIconSize = 96
)

// Cap on edge positions collected in one scan; guards against runaway
// enumeration on noisy input.
const maxIconEdges = 128

// DetectIconEdges performs 1-D edge detection along the vertical midline
// of the hotbar band and returns the x positions of detected edges in
// ascending order.
//
// The band is Gaussian-smoothed first to suppress icon-art texture, then
// a central-difference gradient is thresholded at mean + 1.5 sigma with
// local-maximum filtering. A featureless region yields an empty slice,
// never an error.
func DetectIconEdges(b *pixel.Block, hotbar HotbarRegion) []int {
	if b.Empty() || b.Width < 8 {
		return nil
	}
	top, bottom := hotbar.TopY, hotbar.BottomY
	if top < 0 {
		top = 0
	}
	if bottom > b.Height {
		bottom = b.Height
	}
	if bottom-top < 2 {
		return nil
	}

	band := b.Sub(0, top, b.Width, bottom-top)
	smoothed := pixel.FromImage(blur.Gaussian(band.ToImage(), 1.5))

	mid := smoothed.Height / 2
	lums := make([]float64, smoothed.Width)
	for x := 0; x < smoothed.Width; x++ {
		lums[x] = smoothed.Luminance(x, mid)
	}

	grads := make([]float64, smoothed.Width)
	for x := 1; x < smoothed.Width-1; x++ {
		grads[x] = math.Abs(lums[x+1] - lums[x-1])
	}

	mean := stat.Mean(grads, nil)
	sigma := stat.StdDev(grads, nil)
	threshold := mean + 1.5*sigma
	if threshold < 8 {
		// Near-flat profile; nothing here is a real edge.
		return nil
	}

	edges := make([]int, 0, 32)
	for x := 1; x < smoothed.Width-1 && len(edges) < maxIconEdges; x++ {
		if grads[x] < threshold {
			continue
		}
		if grads[x] < grads[x-1] || grads[x] < grads[x+1] {
			continue
		}
		// Merge maxima closer than 4px into one edge.
		if n := len(edges); n > 0 && x-edges[n-1] < 4 {
			continue
		}
		edges = append(edges, x)
	}
	return edges
}

// DetectIconScale estimates the pixel size of one inventory icon from the
// repeating edge spacing inside the hotbar band.
//
// The median gap between adjacent icon edges becomes the icon size, with
// confidence derived from gap consistency. When edge detection is
// inconclusive (fewer than three plausible gaps) the estimate falls back
// to a resolution-proportional heuristic of width/40 clamped to [24, 96],
// tagged method "resolution_fallback" with confidence 0.
func DetectIconScale(b *pixel.Block) IconScale {
	fallback := IconScale{
		IconSize:   clampIconSize(safeWidth(b) / 40),
		Confidence: 0,
		Method:     "resolution_fallback",
	}
	if b.Empty() {
		return fallback
	}

	hotbar := DetectHotbarRegion(b)
	edges := DetectIconEdges(b, hotbar)
	if len(edges) < 4 {
		return fallback
	}

	gaps := make([]float64, 0, len(edges)-1)
	for i := 1; i < len(edges); i++ {
		gap := float64(edges[i] - edges[i-1])
		if gap >= 16 && gap <= 128 {
			gaps = append(gaps, gap)
		}
	}
	if len(gaps) < 3 {
		return fallback
	}

	sort.Float64s(gaps)
	median := gaps[len(gaps)/2]

	mean := stat.Mean(gaps, nil)
	sigma := stat.StdDev(gaps, nil)
	consistency := 0.0
	if mean > 0 {
		consistency = 1 - sigma/mean
	}
	if consistency < 0 {
		consistency = 0
	}
	if consistency > 1 {
		consistency = 1
	}

	return IconScale{
		IconSize:   clampIconSize(int(median)),
		Confidence: consistency,
		Method:     "edge_spacing",
	}
}

// AdaptiveIconSizes returns three icon-size presets (small, medium,
// large) for the given resolution. Presets are monotonically increasing
// with resolution tier: 720p-class, 1080p/1440p-class, 4K-class.
func AdaptiveIconSizes(width, height int) [3]int {
	switch {
	case width < 1600:
		return [3]int{24, 32, 40}
	case width < 2560:
		return [3]int{32, 48, 64}
	default:
		return [3]int{48, 64, 96}
	}
}

func clampIconSize(size int) int {
	if size < minIconSize {
		return minIconSize
	}
	if size > maxIconSize {
		return maxIconSize
	}
	return size
}

func safeWidth(b *pixel.Block) int {
	if b == nil {
		return 0
	}
	return b.Width
}
