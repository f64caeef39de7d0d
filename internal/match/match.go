// Package match compares cropped cell pixel data against reference icon
// templates, producing normalized similarity scores.
//
// The matcher deliberately does not resize inputs itself: callers bring
// both blocks to common dimensions first (pixel.Resize), keeping the
// resampling decision with the orchestration layer. Comparing blocks of
// mismatched dimensions is a contract violation reported as an error.
package match

import (
	"fmt"

	"github.com/kestrelcv/itemscan/internal/pixel"
)

// Similarity computes a normalized pixel-wise similarity between two
// equal-sized blocks, in [0, 1].
//
// Per channel, the score is the inverted, scaled mean absolute difference
// (1 - MAD/255); the overall score is the weakest color channel, so a
// template cannot match on two channels while disagreeing badly on the
// third. Alpha differences contribute at half weight: a half-transparent
// variant of the same art scores strictly below 1 but well above
// unrelated content.
//
// Identical blocks score 1. Mismatched dimensions are a contract
// violation and return an error; callers must resize first.
func Similarity(a, b *pixel.Block) (float64, error) {
	if a.Empty() || b.Empty() {
		return 0, fmt.Errorf("similarity requires non-empty blocks")
	}
	if a.Width != b.Width || a.Height != b.Height {
		return 0, fmt.Errorf("similarity dimension mismatch: %dx%d vs %dx%d",
			a.Width, a.Height, b.Width, b.Height)
	}

	n := a.Width * a.Height
	var sumR, sumG, sumB, sumA float64
	for i := 0; i < n*4; i += 4 {
		sumR += absDiff(a.Pix[i], b.Pix[i])
		sumG += absDiff(a.Pix[i+1], b.Pix[i+1])
		sumB += absDiff(a.Pix[i+2], b.Pix[i+2])
		sumA += absDiff(a.Pix[i+3], b.Pix[i+3])
	}

	fn := float64(n)
	score := 1 - sumR/fn/255
	if s := 1 - sumG/fn/255; s < score {
		score = s
	}
	if s := 1 - sumB/fn/255; s < score {
		score = s
	}
	if s := 1 - 0.5*sumA/fn/255; s < score {
		score = s
	}
	if score < 0 {
		score = 0
	}
	return score, nil
}

// GraySimilarity is a cheaper single-channel variant of Similarity
// operating on luminance only. Used for coarse pre-filtering where the
// full per-channel comparison would be wasted on obvious non-matches.
func GraySimilarity(a, b *pixel.Block) (float64, error) {
	if a.Empty() || b.Empty() {
		return 0, fmt.Errorf("similarity requires non-empty blocks")
	}
	if a.Width != b.Width || a.Height != b.Height {
		return 0, fmt.Errorf("similarity dimension mismatch: %dx%d vs %dx%d",
			a.Width, a.Height, b.Width, b.Height)
	}

	var sum float64
	for y := 0; y < a.Height; y++ {
		for x := 0; x < a.Width; x++ {
			d := a.Luminance(x, y) - b.Luminance(x, y)
			if d < 0 {
				d = -d
			}
			sum += d
		}
	}
	score := 1 - sum/float64(a.Width*a.Height)/255
	if score < 0 {
		score = 0
	}
	return score, nil
}

func absDiff(a, b uint8) float64 {
	if a > b {
		return float64(a - b)
	}
	return float64(b - a)
}
