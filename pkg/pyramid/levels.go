package pyramid

import (
	"image"
	"sync"

	"golang.org/x/image/draw"
)

// scaler is the resampling filter used for every downscale. Catmull-Rom
// is the slowest kernel x/image offers but gives the smoothest result,
// and the pyramid is built once per image, not on a hot path.
var scaler draw.Scaler = draw.CatmullRom

// MaxZoom returns the zoom level index of an unscaled canvas with the
// given edge, i.e. log2(edge/256).
func MaxZoom(edge int) int {
	z := 0
	for e := TileSize; e < edge; e <<= 1 {
		z++
	}
	return z
}

// BuildLevels produces the zoom level rasters for a framed canvas,
// ordered smallest to largest. Level i is a 256*2^i downscale of the
// input; the final level is the input itself, unscaled. The input must
// come from Frame; the level count derives from its width.
//
// The downscales are independent of each other and run concurrently, one
// goroutine per level. The slice order is fixed regardless.
func BuildLevels(framed image.Image) []image.Image {
	maxZoom := MaxZoom(framed.Bounds().Dx())

	levels := make([]image.Image, maxZoom+1)
	levels[maxZoom] = framed

	var wg sync.WaitGroup
	for z := 0; z < maxZoom; z++ {
		wg.Add(1)
		go func(z int) {
			defer wg.Done()
			edge := TileSize << z
			dst := image.NewRGBA(image.Rect(0, 0, edge, edge))
			scaler.Scale(dst, dst.Bounds(), framed, framed.Bounds(), draw.Src, nil)
			levels[z] = dst
		}(z)
	}
	wg.Wait()

	return levels
}
