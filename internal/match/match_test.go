package match

import (
	"image/color"
	"testing"

	"github.com/kestrelcv/itemscan/internal/pixel"
)

func solidBlock(width, height int, c color.NRGBA) *pixel.Block {
	b := pixel.New(width, height)
	for i := 0; i < width*height*4; i += 4 {
		b.Pix[i] = c.R
		b.Pix[i+1] = c.G
		b.Pix[i+2] = c.B
		b.Pix[i+3] = c.A
	}
	return b
}

func TestSimilarity_Identical(t *testing.T) {
	a := solidBlock(16, 16, color.NRGBA{R: 120, G: 80, B: 40, A: 255})
	b := solidBlock(16, 16, color.NRGBA{R: 120, G: 80, B: 40, A: 255})

	score, err := Similarity(a, b)
	if err != nil {
		t.Fatalf("Similarity failed: %v", err)
	}
	if score != 1 {
		t.Errorf("identical blocks: got %v, want 1", score)
	}
}

func TestSimilarity_Unrelated(t *testing.T) {
	red := solidBlock(16, 16, color.NRGBA{R: 230, G: 30, B: 30, A: 255})
	blue := solidBlock(16, 16, color.NRGBA{R: 30, G: 60, B: 230, A: 255})

	score, err := Similarity(red, blue)
	if err != nil {
		t.Fatalf("Similarity failed: %v", err)
	}
	// Weakest channel dominates: the red channel differs by 200.
	if score > 0.5 {
		t.Errorf("unrelated colors: got %v, want well below 0.5", score)
	}
}

func TestSimilarity_AlphaHalfWeight(t *testing.T) {
	opaque := solidBlock(16, 16, color.NRGBA{R: 120, G: 80, B: 40, A: 255})
	faded := solidBlock(16, 16, color.NRGBA{R: 120, G: 80, B: 40, A: 128})

	score, err := Similarity(opaque, faded)
	if err != nil {
		t.Fatalf("Similarity failed: %v", err)
	}
	// Alpha differs by 127 at half weight: 1 - 0.5*127/255.
	if score < 0.7 || score >= 1 {
		t.Errorf("faded variant: got %v, want strictly between 0.7 and 1", score)
	}
}

func TestSimilarity_DimensionMismatch(t *testing.T) {
	a := solidBlock(16, 16, color.NRGBA{A: 255})
	b := solidBlock(8, 16, color.NRGBA{A: 255})
	if _, err := Similarity(a, b); err == nil {
		t.Error("expected an error for mismatched dimensions")
	}
	if _, err := Similarity(a, pixel.New(0, 0)); err == nil {
		t.Error("expected an error for an empty block")
	}
}

func TestSimilarity_Ordering(t *testing.T) {
	base := solidBlock(16, 16, color.NRGBA{R: 100, G: 100, B: 100, A: 255})
	near := solidBlock(16, 16, color.NRGBA{R: 110, G: 100, B: 100, A: 255})
	far := solidBlock(16, 16, color.NRGBA{R: 220, G: 100, B: 100, A: 255})

	sNear, err := Similarity(base, near)
	if err != nil {
		t.Fatalf("Similarity failed: %v", err)
	}
	sFar, err := Similarity(base, far)
	if err != nil {
		t.Fatalf("Similarity failed: %v", err)
	}
	if sNear <= sFar {
		t.Errorf("closer content must score higher: near=%v far=%v", sNear, sFar)
	}
}

func TestGraySimilarity(t *testing.T) {
	a := solidBlock(8, 8, color.NRGBA{R: 50, G: 50, B: 50, A: 255})
	b := solidBlock(8, 8, color.NRGBA{R: 50, G: 50, B: 50, A: 255})
	c := solidBlock(8, 8, color.NRGBA{R: 240, G: 240, B: 240, A: 255})

	same, err := GraySimilarity(a, b)
	if err != nil {
		t.Fatalf("GraySimilarity failed: %v", err)
	}
	if same < 0.999 {
		t.Errorf("identical luminance: got %v, want 1", same)
	}

	diff, err := GraySimilarity(a, c)
	if err != nil {
		t.Fatalf("GraySimilarity failed: %v", err)
	}
	if diff >= same {
		t.Error("dark vs bright should score below identical")
	}

	if _, err := GraySimilarity(a, solidBlock(4, 8, color.NRGBA{A: 255})); err == nil {
		t.Error("expected an error for mismatched dimensions")
	}
}
