package pyramid

import "image"

// CanvasEdge returns the edge of the smallest square canvas that encloses
// a w x h image and whose edge is 256 * 2^n for some n >= 0. The canvas
// never shrinks below a single tile, so even a 1x1 image gets a 256 pixel
// canvas. The computation is pure integer doubling and cannot drift the
// way a floating-point log2 would.
func CanvasEdge(w, h int) int {
	longest := w
	if h > longest {
		longest = h
	}
	edge := TileSize
	for edge < longest {
		edge <<= 1
	}
	return edge
}

// CenterOffset returns the placement of the top-left corner of a w x h
// image when centered on its canvas. Both components are non-negative;
// odd leftovers round down.
func CenterOffset(w, h int) image.Point {
	edge := CanvasEdge(w, h)
	return image.Pt((edge-w)/2, (edge-h)/2)
}
