package pyramid

import (
	"image"
	"image/draw"
)

// framedAxis reports whether a single dimension is already an exact
// power-of-two multiple of the tile size. The two axes of an image are
// checked independently: a 256x512 image needs no border even though its
// axes differ.
func framedAxis(dim int) bool {
	if dim < TileSize || dim%TileSize != 0 {
		return false
	}
	k := dim / TileSize
	return k&(k-1) == 0
}

// Frame centers src on a white square canvas sized by CanvasEdge. If both
// dimensions already pass framedAxis the source image is returned
// unchanged, same value, no new allocation; framing an already-framed
// image is a no-op.
func Frame(src image.Image) image.Image {
	b := src.Bounds()
	if framedAxis(b.Dx()) && framedAxis(b.Dy()) {
		return src
	}

	edge := CanvasEdge(b.Dx(), b.Dy())
	off := CenterOffset(b.Dx(), b.Dy())

	canvas := image.NewRGBA(image.Rect(0, 0, edge, edge))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	region := image.Rectangle{Min: off, Max: off.Add(b.Size())}
	draw.Draw(canvas, region, src, b.Min, draw.Src)

	return canvas
}
