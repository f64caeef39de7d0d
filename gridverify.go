package itemscan

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/kestrelcv/itemscan/internal/geometry"
)

// GridParams describes the inferred regular lattice underlying a
// detection set.
type GridParams struct {
	OriginX  float64 `json:"origin_x"`
	OriginY  float64 `json:"origin_y"`
	SpacingX float64 `json:"spacing_x"`
	SpacingY float64 `json:"spacing_y"`
	Rows     int     `json:"rows"`
	Cols     int     `json:"cols"`
}

// GridVerification is the outcome of checking detections against an
// inferred lattice.
type GridVerification struct {
	// IsValid reports whether a majority of positional detections fit
	// the inferred lattice.
	IsValid bool `json:"is_valid"`

	// GridParams is populated when at least two consistent rows exist;
	// nil otherwise.
	GridParams *GridParams `json:"grid_params,omitempty"`

	// FilteredDetections is the input minus lattice outliers, in input
	// order. Never longer than the input; never contains detections the
	// input did not.
	FilteredDetections []Detection `json:"filtered_detections"`
}

// gridRow is one y-cluster of positional detections. meanY is a running
// mean so a slightly sloped run still lands in a single cluster.
type gridRow struct {
	meanY   float64
	members []int // indices into the detection slice
}

// VerifyGridPattern checks a detection set for grid consistency.
//
// Detections cluster into rows by approximate y position; within each
// row, x positions are checked against the row's inferred origin using
// expectedSpacing. Detections with irregular spacing are dropped from
// the filtered list. Zero or one detections are trivially valid and echo
// the input unchanged; detections without positions are exempt and
// always kept.
//
// Verification only ever removes: it never invents synthetic detections
// to fill implied slots.
func VerifyGridPattern(detections []Detection, expectedSpacing float64) GridVerification {
	positional := make([]int, 0, len(detections))
	for i, d := range detections {
		if d.Position != nil {
			positional = append(positional, i)
		}
	}

	if len(positional) <= 1 {
		return GridVerification{IsValid: true, FilteredDetections: detections}
	}

	rowTol := expectedSpacing * 0.25
	if rowTol < 8 {
		rowTol = 8
	}
	xTol := expectedSpacing * 0.15
	if xTol < 5 {
		xTol = 5
	}

	var rows []*gridRow
	for _, i := range positional {
		y := float64(detections[i].Position.Y)
		var target *gridRow
		for _, r := range rows {
			if absf(y-r.meanY) <= rowTol {
				target = r
				break
			}
		}
		if target == nil {
			target = &gridRow{meanY: y}
			rows = append(rows, target)
		}
		target.members = append(target.members, i)
		target.meanY += (y - target.meanY) / float64(len(target.members))
	}

	keep := make(map[int]bool, len(positional))
	kept := 0
	for _, r := range rows {
		originX := float64(detections[r.members[0]].Position.X)
		for _, i := range r.members {
			if x := float64(detections[i].Position.X); x < originX {
				originX = x
			}
		}
		for _, i := range r.members {
			x := float64(detections[i].Position.X)
			if geometry.FitsGrid(x, originX, expectedSpacing, xTol) {
				keep[i] = true
				kept++
			}
		}
	}

	filtered := make([]Detection, 0, len(detections))
	for i, d := range detections {
		if d.Position == nil || keep[i] {
			filtered = append(filtered, d)
		}
	}

	return GridVerification{
		IsValid:            kept*2 >= len(positional),
		GridParams:         inferGridParams(detections, rows, keep, expectedSpacing),
		FilteredDetections: filtered,
	}
}

// inferGridParams derives lattice parameters from the rows that retained
// at least one member. Returns nil unless two or more such rows exist,
// since a single row cannot pin down a vertical spacing.
func inferGridParams(detections []Detection, rows []*gridRow, keep map[int]bool, expectedSpacing float64) *GridParams {
	type keptRow struct {
		y  float64
		xs []float64
	}
	var consistent []keptRow
	for _, r := range rows {
		kr := keptRow{y: r.meanY}
		for _, i := range r.members {
			if keep[i] {
				kr.xs = append(kr.xs, float64(detections[i].Position.X))
			}
		}
		if len(kr.xs) > 0 {
			consistent = append(consistent, kr)
		}
	}
	if len(consistent) < 2 {
		return nil
	}

	sort.Slice(consistent, func(i, j int) bool { return consistent[i].y < consistent[j].y })

	yGaps := make([]float64, 0, len(consistent)-1)
	for i := 1; i < len(consistent); i++ {
		yGaps = append(yGaps, consistent[i].y-consistent[i-1].y)
	}

	originX := consistent[0].xs[0]
	cols := 0
	var xGaps []float64
	for _, r := range consistent {
		sort.Float64s(r.xs)
		if r.xs[0] < originX {
			originX = r.xs[0]
		}
		if len(r.xs) > cols {
			cols = len(r.xs)
		}
		for i := 1; i < len(r.xs); i++ {
			xGaps = append(xGaps, r.xs[i]-r.xs[i-1])
		}
	}

	spacingX := expectedSpacing
	if len(xGaps) > 0 {
		spacingX = stat.Mean(xGaps, nil)
	}

	return &GridParams{
		OriginX:  originX,
		OriginY:  consistent[0].y,
		SpacingX: spacingX,
		SpacingY: stat.Mean(yGaps, nil),
		Rows:     len(consistent),
		Cols:     cols,
	}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
