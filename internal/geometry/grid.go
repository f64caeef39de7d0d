package geometry

import (
	"fmt"
	"math"

	"github.com/kestrelcv/itemscan/internal/pixel"
)

// Cell is one candidate inventory slot: a rectangle plus a stable label
// assigned in enumeration order. Cells are immutable once created and
// always have positive width and height.
type Cell struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Label  string `json:"label"`
}

// Upper bound on cells enumerated for one frame. Corrupt or degenerate
// geometry must not produce runaway cell counts.
const MaxGridCells = 30

// DetectGridPositions lays out a regular lattice of candidate cells
// across the hotbar band.
//
// cellSize selects the slot edge length; pass 0 to use the adaptively
// estimated icon scale. Cells are enumerated left to right with labels
// "slot_0", "slot_1", ... and the count is capped at MaxGridCells.
// A block too small to hold a single cell yields an empty slice.
func DetectGridPositions(b *pixel.Block, cellSize int) []Cell {
	if b.Empty() {
		return nil
	}
	if cellSize <= 0 {
		cellSize = DetectIconScale(b).IconSize
	}
	if cellSize <= 0 || cellSize > b.Width || cellSize > b.Height {
		return nil
	}

	hotbar := DetectHotbarRegion(b)
	gap := cellSize / 8
	spacing := cellSize + gap

	count := (b.Width - gap) / spacing
	if count < 1 {
		count = 1
	}
	if count > MaxGridCells {
		count = MaxGridCells
	}

	// Center the run horizontally and the cells vertically in the band.
	runWidth := count*spacing - gap
	originX := (b.Width - runWidth) / 2
	bandMid := (hotbar.TopY + hotbar.BottomY) / 2
	y := bandMid - cellSize/2
	if y < 0 {
		y = 0
	}
	if y+cellSize > b.Height {
		y = b.Height - cellSize
	}

	cells := make([]Cell, 0, count)
	for i := 0; i < count; i++ {
		cells = append(cells, Cell{
			X:      originX + i*spacing,
			Y:      y,
			Width:  cellSize,
			Height: cellSize,
			Label:  fmt.Sprintf("slot_%d", i),
		})
	}
	return cells
}

// FitsGrid reports whether value lies within tolerance of some point
// start + n*spacing for a non-negative integer n.
//
// A spacing of 0 is the degenerate single-column case and always fits.
func FitsGrid(value, start, spacing, tolerance float64) bool {
	if spacing == 0 {
		return true
	}
	n := math.Round((value - start) / spacing)
	if n < 0 {
		n = 0
	}
	nearest := start + n*spacing
	return math.Abs(value-nearest) <= tolerance
}
