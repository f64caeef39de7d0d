package geometry

import (
	"gonum.org/v1/gonum/stat"

	"github.com/kestrelcv/itemscan/internal/pixel"
)

// Region is a named rectangular screen region.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Well-known region keys returned by DetectUIRegions.
const (
	RegionHotbar    = "hotbar"
	RegionEquipment = "equipment"
	RegionMinimap   = "minimap"
)

// DetectUIRegions composes the band and proportional heuristics into a
// named-region map. The result always contains at least the hotbar key,
// even on totally blank input.
func DetectUIRegions(b *pixel.Block) map[string]Region {
	regions := make(map[string]Region, 3)

	if b.Empty() {
		regions[RegionHotbar] = Region{X: 0, Y: 0, Width: 1, Height: 1}
		return regions
	}

	hotbar := DetectHotbarRegion(b)
	regions[RegionHotbar] = Region{
		X:      0,
		Y:      hotbar.TopY,
		Width:  b.Width,
		Height: hotbar.BottomY - hotbar.TopY,
	}

	// Equipment pane: right-hand column, middle of the frame.
	// Minimap: top-right corner. Both are proportional placements
	// common to HUD layouts; confidence lives with the hotbar only.
	if b.Width >= 64 && b.Height >= 64 {
		eqW := b.Width * 18 / 100
		eqH := b.Height / 2
		regions[RegionEquipment] = Region{
			X:      b.Width - eqW,
			Y:      b.Height / 4,
			Width:  eqW,
			Height: eqH,
		}
		mmSize := b.Width * 15 / 100
		if mmSize > b.Height/3 {
			mmSize = b.Height / 3
		}
		regions[RegionMinimap] = Region{
			X:      b.Width - mmSize,
			Y:      0,
			Width:  mmSize,
			Height: mmSize,
		}
	}
	return regions
}

// ScreenType is the coarse classification of a screenshot.
type ScreenType string

// Screen classifications.
const (
	ScreenGameplay  ScreenType = "gameplay"
	ScreenInventory ScreenType = "inventory"
	ScreenPauseMenu ScreenType = "pause_menu"
	ScreenUnknown   ScreenType = "unknown"
)

// DetectScreenType classifies a screenshot from its brightness and
// variance distribution.
//
// A mid-frame region busier than the bottom band suggests an open
// inventory; a busy bottom band over quieter content suggests gameplay
// with a hotbar. Only frames with no busy band at all are considered for
// the pause-menu classification, so a mostly dark gameplay frame whose
// hotbar is the single bright element is not mistaken for a menu.
// Anything else is unknown.
func DetectScreenType(b *pixel.Block) ScreenType {
	if b.Empty() {
		return ScreenUnknown
	}

	sampleVariance := func(y0, y1 int) (variance, brightness float64) {
		colStep := b.Width / 96
		if colStep < 1 {
			colStep = 1
		}
		rowStep := (y1 - y0) / 24
		if rowStep < 1 {
			rowStep = 1
		}
		lums := make([]float64, 0, 96*24)
		for y := y0; y < y1; y += rowStep {
			for x := 0; x < b.Width; x += colStep {
				lums = append(lums, b.Luminance(x, y))
			}
		}
		if len(lums) < 2 {
			return 0, 0
		}
		return stat.Variance(lums, nil), stat.Mean(lums, nil)
	}

	fullVar, fullMean := sampleVariance(0, b.Height)
	midVar, _ := sampleVariance(b.Height*3/10, b.Height*7/10)
	bottomVar, _ := sampleVariance(b.Height*85/100, b.Height)

	switch {
	case midVar > 1500 && midVar > bottomVar*1.2:
		return ScreenInventory
	case bottomVar > 800:
		return ScreenGameplay
	case fullMean < 40 && fullVar < 400:
		return ScreenPauseMenu
	default:
		return ScreenUnknown
	}
}
