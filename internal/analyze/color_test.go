package analyze

import (
	"image/color"
	"testing"

	"github.com/kestrelcv/itemscan/internal/pixel"
)

// solidBlock creates a block filled with a single color.
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

// splitBlock creates a block whose left half is one color and right half
// another.
func splitBlock(width, height int, left, right color.NRGBA) *pixel.Block {
	b := pixel.New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := left
			if x >= width/2 {
				c = right
			}
			off := (y*width + x) * 4
			b.Pix[off] = c.R
			b.Pix[off+1] = c.G
			b.Pix[off+2] = c.B
			b.Pix[off+3] = c.A
		}
	}
	return b
}

func TestDominantColor(t *testing.T) {
	tests := []struct {
		name string
		c    color.NRGBA
		want Category
	}{
		{"pure red", color.NRGBA{R: 230, G: 30, B: 30, A: 255}, CategoryRed},
		{"orange", color.NRGBA{R: 240, G: 140, B: 20, A: 255}, CategoryOrange},
		{"yellow", color.NRGBA{R: 230, G: 220, B: 30, A: 255}, CategoryYellow},
		{"green", color.NRGBA{R: 40, G: 200, B: 60, A: 255}, CategoryGreen},
		{"blue", color.NRGBA{R: 40, G: 90, B: 230, A: 255}, CategoryBlue},
		{"purple", color.NRGBA{R: 160, G: 50, B: 220, A: 255}, CategoryPurple},
		{"gray", color.NRGBA{R: 120, G: 120, B: 120, A: 255}, CategoryNeutral},
		{"near-black", color.NRGBA{R: 8, G: 8, B: 8, A: 255}, CategoryNeutral},
		{"near-white", color.NRGBA{R: 250, G: 250, B: 250, A: 255}, CategoryNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DominantColor(solidBlock(16, 16, tt.c)); got != tt.want {
				t.Errorf("DominantColor: got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDominantColor_MajorityWins(t *testing.T) {
	// Two thirds red, one third blue.
	b := pixel.New(12, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 12; x++ {
			off := (y*12 + x) * 4
			if x < 8 {
				b.Pix[off] = 230
				b.Pix[off+1] = 30
				b.Pix[off+2] = 30
			} else {
				b.Pix[off] = 30
				b.Pix[off+1] = 60
				b.Pix[off+2] = 230
			}
			b.Pix[off+3] = 255
		}
	}
	if got := DominantColor(b); got != CategoryRed {
		t.Errorf("DominantColor: got %s, want red", got)
	}
}

func TestDominantColor_Degenerate(t *testing.T) {
	if got := DominantColor(pixel.New(0, 0)); got != CategoryNeutral {
		t.Errorf("empty block: got %s, want neutral", got)
	}
	if got := DominantColor(solidBlock(2, 2, color.NRGBA{})); got != CategoryNeutral {
		t.Errorf("fully transparent block: got %s, want neutral", got)
	}
}

func TestColorVariance(t *testing.T) {
	solid := solidBlock(8, 8, color.NRGBA{R: 90, G: 90, B: 90, A: 255})
	if v := ColorVariance(solid); v != 0 {
		t.Errorf("solid fill variance: got %v, want 0", v)
	}

	checker := splitBlock(8, 8, color.NRGBA{A: 255}, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	if v := ColorVariance(checker); v < 10000 {
		t.Errorf("black/white split variance: got %v, want large", v)
	}

	if v := ColorVariance(pixel.New(1, 1)); v != 0 {
		t.Errorf("1x1 block variance: got %v, want 0", v)
	}
}

func TestIsEmptyCell(t *testing.T) {
	// Uniformly dark slot background (#1a1a1a).
	dark := solidBlock(16, 16, color.NRGBA{R: 0x1a, G: 0x1a, B: 0x1a, A: 255})
	if !IsEmptyCell(dark) {
		t.Error("uniform dark block should classify as empty")
	}

	split := splitBlock(16, 16, color.NRGBA{R: 20, G: 20, B: 20, A: 255},
		color.NRGBA{R: 240, G: 240, B: 240, A: 255})
	if IsEmptyCell(split) {
		t.Error("two-color half-split block should not classify as empty")
	}

	// Bright uniform content is not an empty slot either.
	bright := solidBlock(16, 16, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	if IsEmptyCell(bright) {
		t.Error("bright uniform block should not classify as empty")
	}

	if !IsEmptyCell(pixel.New(0, 0)) {
		t.Error("degenerate block should classify as empty")
	}
}

func TestExtractDominantColors(t *testing.T) {
	// 3/4 red, 1/4 blue.
	b := pixel.New(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			off := (y*8 + x) * 4
			if x < 6 {
				b.Pix[off] = 0xE0
				b.Pix[off+1] = 0x20
				b.Pix[off+2] = 0x20
			} else {
				b.Pix[off] = 0x20
				b.Pix[off+1] = 0x20
				b.Pix[off+2] = 0xE0
			}
			b.Pix[off+3] = 255
		}
	}

	colors := ExtractDominantColors(b, 5)
	if len(colors) != 2 {
		t.Fatalf("cluster count: got %d, want 2", len(colors))
	}
	if colors[0].Hex != "#E02020" {
		t.Errorf("top cluster: got %s, want #E02020", colors[0].Hex)
	}
	if colors[0].Count <= colors[1].Count {
		t.Error("clusters must be ordered by count descending")
	}

	if got := ExtractDominantColors(b, 1); len(got) != 1 {
		t.Errorf("k=1: got %d clusters, want 1", len(got))
	}
	if got := ExtractDominantColors(pixel.New(0, 0), 3); got != nil {
		t.Error("empty block should yield no clusters")
	}
}
