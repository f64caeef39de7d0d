package pixel

import (
	"image"
	"image/color"
)

// Block is a decoded raster: a width, a height, and a flat RGBA byte
// sequence (4 bytes per pixel, row-major, non-premultiplied).
//
// Blocks are the common currency of the detection pipeline. Analysis
// components treat them as read-only; any operation that needs to modify
// pixel data works on a copy. A Block is cheap to slice into sub-regions
// via Sub, which copies the region so the original stays untouched.
type Block struct {
	Width  int
	Height int
	Pix    []uint8 // RGBA, length Width*Height*4
}

// New allocates a zeroed (fully transparent black) block.
// Non-positive dimensions yield an empty 0x0 block rather than panicking.
func New(width, height int) *Block {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Block{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
}

// FromImage converts any image.Image into a Block.
//
// Color values are converted through the NRGBA model so that alpha stays
// non-premultiplied. The fast path copies *image.NRGBA pixel rows directly.
func FromImage(img image.Image) *Block {
	if img == nil {
		return New(0, 0)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	b := New(w, h)

	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < h; y++ {
			srcOff := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(b.Pix[y*w*4:(y+1)*w*4], src.Pix[srcOff:srcOff+w*4])
		}
		return b
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			off := (y*w + x) * 4
			b.Pix[off] = c.R
			b.Pix[off+1] = c.G
			b.Pix[off+2] = c.B
			b.Pix[off+3] = c.A
		}
	}
	return b
}

// Empty reports whether the block contains no pixels.
func (b *Block) Empty() bool {
	return b == nil || b.Width <= 0 || b.Height <= 0
}

// At returns the RGBA components at (x, y). Out-of-range coordinates
// return zero values; analysis callers are expected to stay in bounds,
// but degenerate inputs must never panic.
func (b *Block) At(x, y int) (r, g, bl, a uint8) {
	if b.Empty() || x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return 0, 0, 0, 0
	}
	off := (y*b.Width + x) * 4
	return b.Pix[off], b.Pix[off+1], b.Pix[off+2], b.Pix[off+3]
}

// Sub copies a rectangular region into a new block.
//
// The requested rectangle is clipped to the block bounds. A request that
// falls entirely outside the block yields an empty 0x0 block.
func (b *Block) Sub(x, y, width, height int) *Block {
	if b.Empty() {
		return New(0, 0)
	}
	if x < 0 {
		width += x
		x = 0
	}
	if y < 0 {
		height += y
		y = 0
	}
	if x+width > b.Width {
		width = b.Width - x
	}
	if y+height > b.Height {
		height = b.Height - y
	}
	if width <= 0 || height <= 0 {
		return New(0, 0)
	}

	out := New(width, height)
	for row := 0; row < height; row++ {
		srcOff := ((y+row)*b.Width + x) * 4
		copy(out.Pix[row*width*4:(row+1)*width*4], b.Pix[srcOff:srcOff+width*4])
	}
	return out
}

// ToImage converts the block back into an *image.NRGBA, copying the pixel
// data so the block remains immutable.
func (b *Block) ToImage() *image.NRGBA {
	if b.Empty() {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	copy(img.Pix, b.Pix)
	return img
}

// Luminance returns the ITU-R BT.601 luma of the pixel at (x, y),
// in the range [0, 255].
func (b *Block) Luminance(x, y int) float64 {
	r, g, bl, _ := b.At(x, y)
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(bl)
}
