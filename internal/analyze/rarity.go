package analyze

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/kestrelcv/itemscan/internal/pixel"
)

// Rarity is the quality tier signalled by an item's border color.
type Rarity string

// Rarity tiers, ordered common to legendary. RarityNone means no border
// color cleared the confidence floor.
const (
	RarityNone      Rarity = "none"
	RarityUncommon  Rarity = "uncommon"  // green border
	RarityRare      Rarity = "rare"      // blue border
	RarityEpic      Rarity = "epic"      // purple border
	RarityLegendary Rarity = "legendary" // orange border
)

// rarityReference maps each tier to its canonical border color.
var rarityReference = []struct {
	tier Rarity
	c    colorful.Color
}{
	{RarityUncommon, colorful.Color{R: 0.18, G: 0.80, B: 0.25}},
	{RarityRare, colorful.Color{R: 0.16, G: 0.45, B: 0.95}},
	{RarityEpic, colorful.Color{R: 0.64, G: 0.21, B: 0.93}},
	{RarityLegendary, colorful.Color{R: 1.00, G: 0.55, B: 0.10}},
}

const (
	// Max CIE-Lab distance between a ring pixel and a reference color
	// for the pixel to vote for that tier.
	rarityLabTolerance = 0.24

	// Fraction of ring pixels that must agree on one tier.
	rarityVoteFloor = 0.22
)

// DetectBorderRarity samples a thin perimeter ring of the block and
// matches it against known rarity border colors.
//
// Each ring pixel votes for the nearest reference color within a Lab
// distance tolerance; a tier wins when its vote share clears the
// confidence floor. Blocks too small to have a distinct border
// (under 4x4) return RarityNone.
func DetectBorderRarity(b *pixel.Block) Rarity {
	if b.Empty() || b.Width < 4 || b.Height < 4 {
		return RarityNone
	}

	ring := b.Width / 16
	if ring < 1 {
		ring = 1
	}

	votes := make(map[Rarity]int, len(rarityReference))
	total := 0

	vote := func(x, y int) {
		r, g, bl, a := b.At(x, y)
		if a == 0 {
			return
		}
		total++
		c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(bl) / 255}
		bestTier := RarityNone
		bestDist := rarityLabTolerance
		for _, ref := range rarityReference {
			if d := c.DistanceLab(ref.c); d < bestDist {
				bestDist = d
				bestTier = ref.tier
			}
		}
		if bestTier != RarityNone {
			votes[bestTier]++
		}
	}

	for y := 0; y < b.Height; y++ {
		onEdgeRow := y < ring || y >= b.Height-ring
		for x := 0; x < b.Width; x++ {
			if onEdgeRow || x < ring || x >= b.Width-ring {
				vote(x, y)
			}
		}
	}
	if total == 0 {
		return RarityNone
	}

	best := RarityNone
	bestVotes := 0
	for _, ref := range rarityReference {
		if v := votes[ref.tier]; v > bestVotes {
			best = ref.tier
			bestVotes = v
		}
	}
	if float64(bestVotes)/float64(total) < rarityVoteFloor {
		return RarityNone
	}
	return best
}
