package pixel

import (
	"github.com/disintegration/imaging"
)

// Resize resamples a block to exactly targetWidth x targetHeight using
// bilinear interpolation.
//
// The output dimensions are exact for upscales, downscales, and aspect
// changes alike. Non-positive target dimensions, or an empty source,
// yield an empty 0x0 block.
func Resize(src *Block, targetWidth, targetHeight int) *Block {
	if src.Empty() || targetWidth <= 0 || targetHeight <= 0 {
		return New(0, 0)
	}
	if targetWidth == src.Width && targetHeight == src.Height {
		out := New(src.Width, src.Height)
		copy(out.Pix, src.Pix)
		return out
	}
	resized := imaging.Resize(src.ToImage(), targetWidth, targetHeight, imaging.Linear)
	return FromImage(resized)
}
