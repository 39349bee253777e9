// SPDX-License-Identifier: Unlicense OR MIT

package viewport

import (
	"image"

	"golang.org/x/image/draw"
)

// maxIconSide caps the icon resolution handed to the window system.
// Larger sources are downscaled; window managers only display small
// sizes anyway.
const maxIconSide = 64

// IconFromImage converts an image into window icon data, downscaling
// oversized sources. A nil image yields a nil icon.
func IconFromImage(img image.Image) *IconData {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	if b.Empty() {
		return nil
	}
	w, h := b.Dx(), b.Dy()
	if w > maxIconSide || h > maxIconSide {
		scale := float64(maxIconSide) / float64(max(w, h))
		w = int(float64(w) * scale)
		h = int(float64(h) * scale)
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return &IconData{
		RGBA:   dst.Pix,
		Width:  w,
		Height: h,
	}
}
