package itemscan

import (
	"github.com/kestrelcv/itemscan/internal/analyze"
	"github.com/kestrelcv/itemscan/internal/geometry"
	"github.com/kestrelcv/itemscan/internal/match"
	"github.com/kestrelcv/itemscan/internal/pixel"
)

// cellScorer combines template similarity, dominant-color agreement,
// border-rarity agreement, and grid-fit plausibility into one detection
// candidate per cell.
//
// A scorer lives for one pipeline run. It keeps a per-run cache of
// resized templates keyed by catalog index and target size, since every
// cell in a run shares the same dimensions.
type cellScorer struct {
	catalog *Catalog
	cfg     Config

	resized map[resizeKey]*pixel.Block
}

type resizeKey struct {
	entry  int
	width  int
	height int
}

func newCellScorer(catalog *Catalog, cfg Config) *cellScorer {
	return &cellScorer{
		catalog: catalog,
		cfg:     cfg,
		resized: make(map[resizeKey]*pixel.Block),
	}
}

// template returns the catalog entry's icon resized to the given cell
// dimensions, cached per run.
func (s *cellScorer) template(entry int, width, height int) *pixel.Block {
	key := resizeKey{entry: entry, width: width, height: height}
	if t, ok := s.resized[key]; ok {
		return t
	}
	t := pixel.Resize(s.catalog.entries[entry].icon, width, height)
	s.resized[key] = t
	return t
}

// score evaluates one cell and returns its best detection candidate.
//
// Cells classified as empty short-circuit to no detection without
// running template matching. Candidates are prefiltered by dominant
// color to bound cost; when no catalog entry shares the cell's bucket
// the whole catalog is considered (capped at TopN either way). A cell
// whose best confidence falls below the dynamic threshold is silently
// dropped. An empty catalog yields no detections, never an error.
func (s *cellScorer) score(frame *pixel.Block, cell geometry.Cell, gridOriginX, gridSpacing float64) (Detection, bool) {
	if s.catalog.Len() == 0 {
		return Detection{}, false
	}

	block := frame.Sub(cell.X, cell.Y, cell.Width, cell.Height)
	if analyze.IsEmptyCell(block) {
		return Detection{}, false
	}

	dominant := analyze.DominantColor(block)
	border := analyze.DetectBorderRarity(block)

	candidates := make([]int, 0, s.cfg.Scoring.TopN)
	for i, entry := range s.catalog.entries {
		if entry.icon == nil {
			continue
		}
		if entry.dominant == dominant {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		for i, entry := range s.catalog.entries {
			if entry.icon != nil {
				candidates = append(candidates, i)
			}
		}
	}
	if len(candidates) > s.cfg.Scoring.TopN {
		candidates = candidates[:s.cfg.Scoring.TopN]
	}

	gridFit := 0.3
	if geometry.FitsGrid(float64(cell.X), gridOriginX, gridSpacing, gridSpacing*0.15+1) {
		gridFit = 1.0
	}

	w := s.cfg.Scoring
	best := Detection{}
	bestConfidence := 0.0
	bestSimilarity := 0.0
	found := false

	for _, idx := range candidates {
		entry := s.catalog.entries[idx]
		tmpl := s.template(idx, block.Width, block.Height)
		similarity, err := match.Similarity(block, tmpl)
		if err != nil {
			continue
		}

		colorAgreement := 0.0
		switch {
		case entry.dominant == dominant && dominant != analyze.CategoryNeutral:
			colorAgreement = 1.0
		case entry.dominant == analyze.CategoryNeutral || dominant == analyze.CategoryNeutral:
			colorAgreement = 0.5
		}

		borderAgreement := 0.5
		if border != analyze.RarityNone && entry.entity.Rarity != "" {
			if string(border) == entry.entity.Rarity {
				borderAgreement = 1.0
			} else {
				borderAgreement = 0.0
			}
		}

		confidence := w.TemplateWeight*similarity +
			w.ColorWeight*colorAgreement +
			w.BorderWeight*borderAgreement +
			w.GridWeight*gridFit
		confidence = clamp01(confidence)

		if confidence > bestConfidence {
			bestConfidence = confidence
			bestSimilarity = similarity
			best = Detection{
				Type:       entry.entity.Category,
				EntityID:   entry.entity.ID,
				EntityName: entry.entity.Name,
				Confidence: confidence,
				Position: &Rect{
					X:      cell.X,
					Y:      cell.Y,
					Width:  cell.Width,
					Height: cell.Height,
				},
				Method: MethodTemplateMatch,
			}
			found = true
		}
	}

	if !found || bestConfidence < s.cfg.DynamicThreshold {
		return Detection{}, false
	}
	if bestSimilarity < 0.5 {
		// Template evidence was weak; the auxiliary color signals
		// carried the score.
		best.Method = MethodColorMatch
	}
	return best, true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
