// Package pyramid turns a single raster image into a tile pyramid: a set
// of 256x256 PNG tiles at successive zoom levels, suitable for display in
// a pannable/zoomable viewer.
//
// The source image is centered on the smallest white square canvas whose
// edge is a power-of-two multiple of 256. From that canvas a series of
// progressively downscaled copies is derived, one per zoom level, and each
// copy is sliced into a grid of fixed-size tiles named {z}_{x}_{y}.png.
// Zoom level 0 is the most zoomed-out (a single tile), the highest level
// is the unscaled canvas.
package pyramid

import (
	"errors"
	"fmt"
	"image"
)

// TileSize is the edge length of every tile in pixels.
const TileSize = 256

// ErrDegenerateSize is returned when the source image has a width or
// height of zero. The canvas arithmetic is undefined for empty images, so
// they are rejected up front.
var ErrDegenerateSize = errors.New("pyramid: image width and height must be at least one pixel")

// Tile addresses one 256x256 block of a zoom level. X and Y count tiles,
// not pixels, and range over [0, 2^Z).
type Tile struct {
	Z int
	X int
	Y int
}

// Bounds returns the pixel box the tile covers within its level raster.
func (t Tile) Bounds() image.Rectangle {
	return image.Rect(t.X*TileSize, t.Y*TileSize, (t.X+1)*TileSize, (t.Y+1)*TileSize)
}

// Filename returns the flat file name the tile is stored under.
func (t Tile) Filename() string {
	return fmt.Sprintf("%d_%d_%d.png", t.Z, t.X, t.Y)
}

func (t Tile) String() string {
	return fmt.Sprintf("tile(z:%d, x:%d, y:%d)", t.Z, t.X, t.Y)
}

// Result is what downstream consumers of a generated pyramid need: the
// displacement applied when the source was centered on its canvas, and
// the index of the largest zoom level. Marker coordinates defined in
// source-image space translate into tile space by adding the offset; a
// viewer bounds its zoom control to [0, MaxZoom].
type Result struct {
	Offset  image.Point `json:"offset"`
	MaxZoom int         `json:"maxZoom"`
}
