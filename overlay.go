package itemscan

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// OverlayResult is a rendered diagnostic visual. The drawn image is
// available directly and as a base64 PNG for tooling that wants to embed
// it.
type OverlayResult struct {
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	ImageBase64 string      `json:"image_base64"`
	MimeType    string      `json:"mime_type"`
	Image       image.Image `json:"-"`
}

// methodColors assigns a stroke color per detection method so overlay
// readers can see at a glance which technique produced each box.
var methodColors = map[Method][3]float64{
	MethodTemplateMatch: {0.10, 0.85, 0.25},
	MethodColorMatch:    {0.20, 0.55, 1.00},
	MethodGridFallback:  {1.00, 0.85, 0.10},
}

// CreateDebugOverlay draws detection bounding boxes and confidence
// labels over a copy of the source image. Detections without positions
// are skipped. Consumed by developer tooling only; produces no detection
// logic of its own.
func CreateDebugOverlay(img image.Image, detections []Detection) (*OverlayResult, error) {
	dc, err := newOverlayContext(img)
	if err != nil {
		return nil, err
	}

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetLineWidth(2)
	for _, det := range detections {
		if det.Position == nil {
			continue
		}
		c, ok := methodColors[det.Method]
		if !ok {
			c = [3]float64{1, 1, 1}
		}
		p := det.Position
		dc.SetRGB(c[0], c[1], c[2])
		dc.DrawRectangle(float64(p.X), float64(p.Y), float64(p.Width), float64(p.Height))
		dc.Stroke()

		label := fmt.Sprintf("%s %.2f", det.EntityID, det.Confidence)
		dc.SetRGB(0, 0, 0)
		w, h := dc.MeasureString(label)
		dc.DrawRectangle(float64(p.X), float64(p.Y)-h-4, w+4, h+4)
		dc.Fill()
		dc.SetRGB(c[0], c[1], c[2])
		dc.DrawString(label, float64(p.X)+2, float64(p.Y)-4)
	}

	return finishOverlay(dc)
}

// RenderGridOverlay draws candidate cell outlines with their slot labels.
func RenderGridOverlay(img image.Image, cells []Cell) (*OverlayResult, error) {
	dc, err := newOverlayContext(img)
	if err != nil {
		return nil, err
	}

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetLineWidth(1)
	dc.SetRGBA(1, 0.2, 0.2, 0.9)
	for _, cell := range cells {
		dc.DrawRectangle(float64(cell.X), float64(cell.Y), float64(cell.Width), float64(cell.Height))
		dc.Stroke()
		dc.DrawString(cell.Label, float64(cell.X)+2, float64(cell.Y)+12)
	}

	return finishOverlay(dc)
}

// RenderConfidenceHeatmap fills each detection's box with a translucent
// color graded from red (low confidence) to green (high confidence).
func RenderConfidenceHeatmap(img image.Image, detections []Detection) (*OverlayResult, error) {
	dc, err := newOverlayContext(img)
	if err != nil {
		return nil, err
	}

	for _, det := range detections {
		if det.Position == nil {
			continue
		}
		conf := clamp01(det.Confidence)
		p := det.Position
		dc.SetRGBA(1-conf, conf, 0, 0.35)
		dc.DrawRectangle(float64(p.X), float64(p.Y), float64(p.Width), float64(p.Height))
		dc.Fill()
	}

	return finishOverlay(dc)
}

func newOverlayContext(img image.Image) (*gg.Context, error) {
	if img == nil {
		return nil, fmt.Errorf("overlay requires a non-nil image")
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("overlay requires a non-empty image")
	}
	return gg.NewContextForImage(img), nil
}

func finishOverlay(dc *gg.Context) (*OverlayResult, error) {
	out := dc.Image()
	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode overlay: %w", err)
	}
	b := out.Bounds()
	return &OverlayResult{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		Image:       out,
	}, nil
}
