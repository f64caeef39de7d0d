package itemscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigFor(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantTier      ResolutionTier
		wantThreshold float64
	}{
		{"720p", 1280, 720, Tier720p, 0.52},
		{"1080p", 1920, 1080, Tier1080p, 0.55},
		{"1440p", 2560, 1440, Tier1440p, 0.58},
		{"4k", 3840, 2160, Tier4K, 0.60},
		{"ultrawide 1440p", 2999, 1250, Tier1440p, 0.58},
		{"zero dims default to 1080p", 0, 0, Tier1080p, 0.55},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ConfigFor(tt.width, tt.height)
			assert.Equal(t, tt.wantTier, cfg.ResolutionTier)
			assert.Equal(t, tt.wantThreshold, cfg.DynamicThreshold)
		})
	}
}

func TestConfigFor_Defaults(t *testing.T) {
	cfg := ConfigFor(1920, 1080)

	w := cfg.Scoring
	assert.InDelta(t, 1.0, w.TemplateWeight+w.ColorWeight+w.BorderWeight+w.GridWeight, 1e-9,
		"ensemble weights must sum to 1")
	assert.Greater(t, w.TemplateWeight, w.ColorWeight,
		"template similarity is the primary signal")
	assert.Equal(t, 8, w.TopN)
	assert.Equal(t, 30, cfg.MaxCells)
	assert.Greater(t, cfg.ScoringBudget.Seconds(), 0.0)
}
