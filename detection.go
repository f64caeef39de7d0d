// Package itemscan detects known inventory items in game screenshots.
//
// The pipeline runs multi-stage image analysis over arbitrary-resolution
// frames: hotbar/UI region detection, adaptive icon-scale estimation,
// per-cell template matching against a reference entity catalog, ensemble
// confidence scoring, duplicate suppression, and grid-pattern
// verification. Results for a given frame are cached by content
// fingerprint so repeat queries are cheap.
//
// Typical usage:
//
//	catalog := itemscan.NewCatalog(entities)
//	det := itemscan.New(catalog)
//	res, err := det.Detect(ctx, itemscan.FromFile("screen.png"), nil)
package itemscan

// Category classifies a catalog entity.
type Category string

// Entity categories.
const (
	CategoryItem      Category = "item"
	CategoryWeapon    Category = "weapon"
	CategoryTome      Category = "tome"
	CategoryCharacter Category = "character"
)

// Method tags the technique that contributed most to a detection.
// Carrying the tag on the detection itself lets suppression and
// verification handle all techniques uniformly.
type Method string

// Detection methods.
const (
	MethodTemplateMatch Method = "template_match"
	MethodColorMatch    Method = "color_match"
	MethodGridFallback  Method = "grid_fallback"
)

// Rect is an axis-aligned bounding box in screen pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns the box area in square pixels; degenerate boxes have
// area 0.
func (r Rect) Area() int {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// IoU computes the Intersection-over-Union of two boxes, in [0, 1].
// It is symmetric, scores identical boxes as 1, and disjoint boxes as 0.
func IoU(a, b Rect) float64 {
	ix1 := max(a.X, b.X)
	iy1 := max(a.Y, b.Y)
	ix2 := min(a.X+a.Width, b.X+b.Width)
	iy2 := min(a.Y+a.Height, b.Y+b.Height)

	iw := ix2 - ix1
	ih := iy2 - iy1
	if iw <= 0 || ih <= 0 {
		return 0
	}
	inter := iw * ih
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Cell is one candidate inventory slot produced by grid enumeration.
type Cell struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Label  string `json:"label"`
}

// Detection is one recognized entity occurrence.
//
// Confidence always lies in [0, 1]; the scorer clamps before emitting.
// A Detection without a Position is a global (non-positional) match and
// is exempt from overlap-based suppression.
type Detection struct {
	Type       Category `json:"type"`
	EntityID   string   `json:"entity_id"`
	EntityName string   `json:"entity_name"`
	Confidence float64  `json:"confidence"`
	Position   *Rect    `json:"position,omitempty"`
	Method     Method   `json:"method"`
}
