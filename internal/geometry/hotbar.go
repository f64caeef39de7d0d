package geometry

import (
	"gonum.org/v1/gonum/stat"

	"github.com/kestrelcv/itemscan/internal/pixel"
)

// HotbarRegion is the detected vertical extent of the hotbar band.
type HotbarRegion struct {
	TopY       int     `json:"top_y"`
	BottomY    int     `json:"bottom_y"`
	Confidence float64 `json:"confidence"`
}

// Proportion of the frame height used for the fixed fallback band when no
// variance band is found.
const hotbarFallbackShare = 0.12

// DetectHotbarRegion scans the bottom half of the frame for a horizontal
// band of elevated color variance, which indicates icon art rendered
// against a darker background.
//
// The scan samples row luminance variance from 50% height downward. A
// contiguous run of rows whose variance clears an adaptive threshold
// becomes the hotbar band. When no clear band exists (blank or uniform
// input), the bottom 12% of the frame is returned with low confidence.
//
// The result always satisfies BottomY <= height and BottomY > TopY.
func DetectHotbarRegion(b *pixel.Block) HotbarRegion {
	if b.Empty() || b.Height < 8 {
		h := 1
		if b != nil && b.Height > 1 {
			h = b.Height
		}
		return HotbarRegion{TopY: 0, BottomY: h, Confidence: 0}
	}

	startY := b.Height / 2
	rowStep := b.Height / 200
	if rowStep < 1 {
		rowStep = 1
	}
	colStep := b.Width / 120
	if colStep < 1 {
		colStep = 1
	}

	type rowStat struct {
		y        int
		variance float64
	}
	rows := make([]rowStat, 0, (b.Height-startY)/rowStep+1)
	variances := make([]float64, 0, cap(rows))
	lums := make([]float64, 0, b.Width/colStep+1)

	for y := startY; y < b.Height; y += rowStep {
		lums = lums[:0]
		for x := 0; x < b.Width; x += colStep {
			lums = append(lums, b.Luminance(x, y))
		}
		v := 0.0
		if len(lums) >= 2 {
			v = stat.Variance(lums, nil)
		}
		rows = append(rows, rowStat{y: y, variance: v})
		variances = append(variances, v)
	}

	// Adaptive threshold: a band must stand out against the scanned
	// region as a whole and carry enough absolute texture to be icon art.
	mean := stat.Mean(variances, nil)
	threshold := mean * 1.4
	if threshold < 120 {
		threshold = 120
	}

	bestStart, bestEnd, bestSum := -1, -1, 0.0
	runStart, runSum := -1, 0.0
	for i, rs := range rows {
		if rs.variance >= threshold {
			if runStart < 0 {
				runStart = i
				runSum = 0
			}
			runSum += rs.variance
		} else if runStart >= 0 {
			if runSum > bestSum {
				bestStart, bestEnd, bestSum = runStart, i-1, runSum
			}
			runStart = -1
		}
	}
	if runStart >= 0 && runSum > bestSum {
		bestStart, bestEnd, bestSum = runStart, len(rows)-1, runSum
	}

	minBandRows := 24 / rowStep
	if minBandRows < 2 {
		minBandRows = 2
	}
	if bestStart >= 0 && bestEnd-bestStart+1 >= minBandRows {
		top := rows[bestStart].y
		bottom := rows[bestEnd].y + rowStep
		if bottom > b.Height {
			bottom = b.Height
		}
		if bottom > top {
			conf := 0.5 + 0.5*float64(bestEnd-bestStart+1)/float64(len(rows))
			if conf > 0.95 {
				conf = 0.95
			}
			return HotbarRegion{TopY: top, BottomY: bottom, Confidence: conf}
		}
	}

	top := b.Height - int(float64(b.Height)*hotbarFallbackShare)
	if top >= b.Height {
		top = b.Height - 1
	}
	return HotbarRegion{TopY: top, BottomY: b.Height, Confidence: 0.2}
}
