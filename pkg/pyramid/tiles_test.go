package pyramid

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileBoundsAndFilename(t *testing.T) {
	tile := Tile{Z: 1, X: 1, Y: 0}
	assert.Equal(t, image.Rect(256, 0, 512, 256), tile.Bounds())
	assert.Equal(t, "1_1_0.png", tile.Filename())

	tile = Tile{Z: 2, X: 3, Y: 2}
	assert.Equal(t, image.Rect(768, 512, 1024, 768), tile.Bounds())
	assert.Equal(t, "2_3_2.png", tile.Filename())
}

// gradientImage gives every pixel a position-dependent color so that any
// mix-up of tile boxes is caught by pixel comparison.
func gradientImage(edge int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, edge, edge))
	for y := 0; y < edge; y++ {
		for x := 0; x < edge; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x), uint8(y), uint8(x ^ y), 255})
		}
	}
	return img
}

func TestCutGridShape(t *testing.T) {
	levels := BuildLevels(gradientImage(1024))
	grids := Cut(levels)

	require.Len(t, grids, 3)
	for z, rows := range grids {
		n := 1 << z
		require.Len(t, rows, n, "level %d rows", z)
		for y, row := range rows {
			require.Len(t, row, n, "level %d row %d", z, y)
			for x, tile := range row {
				size := tile.Bounds().Size()
				assert.Equal(t, image.Pt(TileSize, TileSize), size, "tile (%d,%d,%d)", z, x, y)
			}
		}
	}
}

func TestCutTilesMatchLevelBoxes(t *testing.T) {
	level := gradientImage(512)
	grids := Cut([]image.Image{gradientImage(256), level})

	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			tile := grids[1][y][x]
			box := Tile{Z: 1, X: x, Y: y}.Bounds()

			want := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))
			draw.Draw(want, want.Bounds(), level, box.Min, draw.Src)
			samePixels(t, want, tile)
		}
	}
}

func TestCutRoundTrip(t *testing.T) {
	// Reassembling all tiles of the largest level at their boxes must
	// reproduce the framed canvas exactly.
	framed := Frame(solidImage(400, 300, color.RGBA{250, 80, 0, 255}))
	grids := Cut(BuildLevels(framed))

	z := len(grids) - 1
	edge := TileSize << z
	rebuilt := image.NewRGBA(image.Rect(0, 0, edge, edge))
	for y, row := range grids[z] {
		for x, tile := range row {
			draw.Draw(rebuilt, Tile{Z: z, X: x, Y: y}.Bounds(), tile, tile.Bounds().Min, draw.Src)
		}
	}

	samePixels(t, framed, rebuilt)
}
