// Package geometry derives screen-space structure from raw screenshots:
// the hotbar band, icon scale, candidate grid cells, and coarse screen
// classification.
//
// Estimators are heuristic and degrade gracefully. When a signal cannot be
// extracted (featureless or blank input), each function falls back to a
// resolution-proportional default tagged with low or zero confidence
// rather than failing.
package geometry
