package pyramid

import (
	"image"
	"image/draw"
)

// Cut slices every zoom level into its 256x256 tiles. The returned
// structure is indexed [z][y][x]; level z holds 2^z rows of 2^z tiles
// that partition the level raster with no gaps or overlaps.
func Cut(levels []image.Image) [][][]image.Image {
	out := make([][][]image.Image, len(levels))
	for z, level := range levels {
		n := 1 << z
		rows := make([][]image.Image, n)
		for y := 0; y < n; y++ {
			row := make([]image.Image, n)
			for x := 0; x < n; x++ {
				row[x] = cutTile(level, Tile{Z: z, X: x, Y: y})
			}
			rows[y] = row
		}
		out[z] = rows
	}
	return out
}

// cutTile extracts one tile box from a level raster. Rasters that support
// sub-imaging share pixel memory with the level; anything else is copied.
func cutTile(level image.Image, t Tile) image.Image {
	type subImager interface {
		SubImage(r image.Rectangle) image.Image
	}
	if si, ok := level.(subImager); ok {
		return si.SubImage(t.Bounds())
	}

	dst := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))
	draw.Draw(dst, dst.Bounds(), level, t.Bounds().Min, draw.Src)
	return dst
}
