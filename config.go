package itemscan

import "time"

// ResolutionTier buckets input resolutions into the classes the scoring
// thresholds are calibrated for.
type ResolutionTier string

// Resolution tiers, by frame width.
const (
	Tier720p  ResolutionTier = "720p"
	Tier1080p ResolutionTier = "1080p"
	Tier1440p ResolutionTier = "1440p"
	Tier4K    ResolutionTier = "4k"
)

// ScoringConfig holds the ensemble weights and candidate bounds.
//
// The exact weighting of template similarity against the auxiliary
// signals is an empirical tunable, not a fixed law; the values here are
// the calibrated defaults and are exposed so diagnostics and tests can
// inspect or override them.
type ScoringConfig struct {
	// Weighted contribution of each signal to the final confidence.
	// The weights sum to 1.
	TemplateWeight float64 `json:"template_weight"`
	ColorWeight    float64 `json:"color_weight"`
	BorderWeight   float64 `json:"border_weight"`
	GridWeight     float64 `json:"grid_weight"`

	// TopN bounds how many catalog candidates survive the dominant-color
	// prefilter per cell.
	TopN int `json:"top_n"`
}

// Config is the full set of detection tunables for one resolution.
type Config struct {
	// DynamicThreshold is the minimum ensemble confidence for a cell to
	// emit a detection. Higher resolutions render crisper icons and can
	// afford stricter thresholds.
	DynamicThreshold float64 `json:"dynamic_threshold"`

	ResolutionTier ResolutionTier `json:"resolution_tier"`
	Scoring        ScoringConfig  `json:"scoring_config"`

	// MaxCells caps grid enumeration per frame.
	MaxCells int `json:"max_cells"`

	// ScoringBudget bounds the cell-scoring phase; when exhausted the
	// pipeline returns partial detections with a budget_exceeded warning.
	ScoringBudget time.Duration `json:"scoring_budget_ns"`
}

// ConfigFor returns the detection tunables for the given frame size.
// Zero or negative dimensions select the 1080p defaults.
func ConfigFor(width, height int) Config {
	if width <= 0 || height <= 0 {
		width, height = 1920, 1080
	}

	tier := Tier1080p
	threshold := 0.55
	switch {
	case width < 1600:
		tier, threshold = Tier720p, 0.52
	case width < 2200:
		tier, threshold = Tier1080p, 0.55
	case width < 3000:
		tier, threshold = Tier1440p, 0.58
	default:
		tier, threshold = Tier4K, 0.60
	}

	return Config{
		DynamicThreshold: threshold,
		ResolutionTier:   tier,
		Scoring: ScoringConfig{
			TemplateWeight: 0.6,
			ColorWeight:    0.2,
			BorderWeight:   0.1,
			GridWeight:     0.1,
			TopN:           8,
		},
		MaxCells:      30,
		ScoringBudget: 60 * time.Second,
	}
}
