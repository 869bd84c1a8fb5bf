package pyramid

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxZoom(t *testing.T) {
	for edge, z := range map[int]int{
		256:  0,
		512:  1,
		1024: 2,
		4096: 4,
	} {
		assert.Equal(t, z, MaxZoom(edge), "edge %d", edge)
	}
}

func TestBuildLevelsCountAndEdges(t *testing.T) {
	framed := solidImage(1024, 1024, color.RGBA{200, 10, 10, 255})
	levels := BuildLevels(framed)

	require.Len(t, levels, 3, "log2(1024/256)+1 levels expected")
	for z, level := range levels {
		edge := TileSize << z
		assert.Equal(t, edge, level.Bounds().Dx(), "level %d width", z)
		assert.Equal(t, edge, level.Bounds().Dy(), "level %d height", z)
	}
}

func TestBuildLevelsLastLevelIsUnscaledInput(t *testing.T) {
	framed := solidImage(512, 512, color.RGBA{0, 128, 0, 255})
	levels := BuildLevels(framed)

	require.Len(t, levels, 2)
	assert.Same(t, framed, levels[1])
}

func TestBuildLevelsSingleLevel(t *testing.T) {
	framed := solidImage(256, 256, color.White)
	levels := BuildLevels(framed)

	require.Len(t, levels, 1)
	assert.Same(t, framed, levels[0])
}

func TestBuildLevelsPreservesUniformColor(t *testing.T) {
	// A uniform canvas must stay uniform through the resampling kernel;
	// any ringing or edge bleed would show up here.
	c := color.RGBA{40, 80, 120, 255}
	framed := solidImage(1024, 1024, c)
	levels := BuildLevels(framed)

	for z, level := range levels {
		samePixels(t, solidImage(TileSize<<z, TileSize<<z, c), level)
	}
}

func TestBuildLevelsDeterministic(t *testing.T) {
	framed := Frame(solidImage(400, 300, color.RGBA{10, 200, 30, 255}))

	a := BuildLevels(framed)
	b := BuildLevels(framed)
	require.Equal(t, len(a), len(b))
	for z := range a {
		samePixels(t, a[z], b[z])
	}
}
