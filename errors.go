package itemscan

import "errors"

// Sentinel errors returned by Detector.Detect. Both are fatal for the
// call that produced them; degenerate input and exhausted scan budgets
// are reported through Result.Warnings instead of errors, so callers can
// always render an empty-detections state without special-casing.
var (
	// ErrDecode indicates the input image bytes could not be decoded.
	ErrDecode = errors.New("itemscan: image decode failed")

	// ErrCatalogUnavailable indicates detection was invoked before an
	// entity catalog was supplied.
	ErrCatalogUnavailable = errors.New("itemscan: entity catalog not initialized")
)

// Warning markers carried in Result.Warnings.
const (
	// WarnDegenerateInput marks a blank or near-blank frame that produced
	// no usable signal.
	WarnDegenerateInput = "degenerate_input"

	// WarnBudgetExceeded marks a run that hit its internal scan budget
	// and returned partial detections.
	WarnBudgetExceeded = "budget_exceeded"
)
