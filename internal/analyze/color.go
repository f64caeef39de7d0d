package analyze

import (
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/stat"

	"github.com/kestrelcv/itemscan/internal/pixel"
)

// Category is a named hue bucket for dominant-color classification.
type Category string

// Hue buckets. Low-saturation or extreme-lightness pixels classify as
// CategoryNeutral regardless of hue.
const (
	CategoryRed     Category = "red"
	CategoryOrange  Category = "orange"
	CategoryYellow  Category = "yellow"
	CategoryGreen   Category = "green"
	CategoryBlue    Category = "blue"
	CategoryPurple  Category = "purple"
	CategoryNeutral Category = "neutral"
)

// categoryOrder fixes the tie-break order when two buckets accumulate the
// same pixel weight.
var categoryOrder = []Category{
	CategoryRed, CategoryOrange, CategoryYellow,
	CategoryGreen, CategoryBlue, CategoryPurple, CategoryNeutral,
}

// classifyHue maps an HSL triple onto a hue bucket.
//
// Saturation below 0.18 or lightness outside (0.06, 0.94) counts as
// neutral: icon backgrounds and UI chrome are mostly dark gray, and
// letting them vote for a hue would swamp the icon art.
func classifyHue(h, s, l float64) Category {
	if s < 0.18 || l < 0.06 || l > 0.94 {
		return CategoryNeutral
	}
	switch {
	case h < 20 || h >= 345:
		return CategoryRed
	case h < 45:
		return CategoryOrange
	case h < 70:
		return CategoryYellow
	case h < 170:
		return CategoryGreen
	case h < 260:
		return CategoryBlue
	case h < 345:
		return CategoryPurple
	}
	return CategoryNeutral
}

// DominantColor classifies a block by its dominant hue bucket.
//
// Every pixel votes for one bucket; the bucket with the largest cumulative
// pixel weight wins. Fully transparent pixels do not vote. Ties resolve in
// a fixed bucket order so the result is deterministic. Empty blocks
// classify as CategoryNeutral.
func DominantColor(b *pixel.Block) Category {
	if b.Empty() {
		return CategoryNeutral
	}

	counts := make(map[Category]int, len(categoryOrder))
	voted := 0
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			r, g, bl, a := b.At(x, y)
			if a == 0 {
				continue
			}
			c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(bl) / 255}
			h, s, l := c.Hsl()
			counts[classifyHue(h, s, l)]++
			voted++
		}
	}
	if voted == 0 {
		return CategoryNeutral
	}

	best := CategoryNeutral
	bestCount := -1
	for _, cat := range categoryOrder {
		if counts[cat] > bestCount {
			best = cat
			bestCount = counts[cat]
		}
	}
	return best
}

// ColorVariance computes the mean per-channel variance across all pixels,
// a cheap texture/complexity proxy. Solid fills score near zero;
// checkerboards and gradients score large. Values are in 8-bit units
// squared (a full black/white checkerboard scores around 16k).
func ColorVariance(b *pixel.Block) float64 {
	if b.Empty() || b.Width*b.Height < 2 {
		return 0
	}
	n := b.Width * b.Height
	rs := make([]float64, 0, n)
	gs := make([]float64, 0, n)
	bs := make([]float64, 0, n)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			r, g, bl, _ := b.At(x, y)
			rs = append(rs, float64(r))
			gs = append(gs, float64(g))
			bs = append(bs, float64(bl))
		}
	}
	return (stat.Variance(rs, nil) + stat.Variance(gs, nil) + stat.Variance(bs, nil)) / 3
}

// MeanBrightness returns the mean luma of the block in [0, 255].
// Empty blocks score 0.
func MeanBrightness(b *pixel.Block) float64 {
	if b.Empty() {
		return 0
	}
	var sum float64
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			sum += b.Luminance(x, y)
		}
	}
	return sum / float64(b.Width*b.Height)
}

// Empty-cell thresholds: an unoccupied inventory slot renders as a
// near-uniform dark well. Both conditions must hold.
const (
	emptyVarianceMax   = 220.0
	emptyBrightnessMax = 60.0
)

// IsEmptyCell reports whether a block looks like an unoccupied inventory
// slot: near-uniform content (low variance) that is also dark (low mean
// brightness). Empty blocks report true.
func IsEmptyCell(b *pixel.Block) bool {
	if b.Empty() {
		return true
	}
	return ColorVariance(b) < emptyVarianceMax && MeanBrightness(b) < emptyBrightnessMax
}

// ColorCount is one quantized color cluster and its pixel population.
type ColorCount struct {
	Hex   string  `json:"hex"`
	R     uint8   `json:"r"`
	G     uint8   `json:"g"`
	B     uint8   `json:"b"`
	Count int     `json:"count"`
	Share float64 `json:"share"` // fraction of sampled pixels, 0-1
}

// ExtractDominantColors returns the top-k most frequent color clusters in
// the block, ordered by pixel count descending.
//
// Clustering is a simple k-bucket quantization: each channel is truncated
// to its upper four bits, grouping colors within 16 units per channel.
// Ties order lexicographically by hex so results are stable.
func ExtractDominantColors(b *pixel.Block, k int) []ColorCount {
	if b.Empty() || k <= 0 {
		return nil
	}

	type rgbKey [3]uint8
	counts := make(map[rgbKey]int)
	total := 0
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			r, g, bl, a := b.At(x, y)
			if a == 0 {
				continue
			}
			key := rgbKey{r &^ 0x0F, g &^ 0x0F, bl &^ 0x0F}
			counts[key]++
			total++
		}
	}
	if total == 0 {
		return nil
	}

	out := make([]ColorCount, 0, len(counts))
	for key, cnt := range counts {
		out = append(out, ColorCount{
			Hex:   hexRGB(key[0], key[1], key[2]),
			R:     key[0],
			G:     key[1],
			B:     key[2],
			Count: cnt,
			Share: float64(cnt) / float64(total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Hex < out[j].Hex
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}

func hexRGB(r, g, b uint8) string {
	const digits = "0123456789ABCDEF"
	return string([]byte{
		'#',
		digits[r>>4], digits[r&0x0F],
		digits[g>>4], digits[g&0x0F],
		digits[b>>4], digits[b&0x0F],
	})
}
