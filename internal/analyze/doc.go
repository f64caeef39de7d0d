// Package analyze classifies the content of pixel blocks for the detection
// pipeline: dominant hue, color variance, empty-slot detection, and rarity
// border matching.
//
// All functions are best-effort and never return errors. Degenerate inputs
// (empty blocks, 1x1 crops, fully transparent regions) produce neutral
// classifications: CategoryNeutral, variance 0, RarityNone.
package analyze
