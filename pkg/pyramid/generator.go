package pyramid

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	pb "gopkg.in/cheggaaa/pb.v1"
)

// Options tune a Generator. The zero value is usable.
type Options struct {
	// Workers bounds the tile encode/write pool. Defaults to 4.
	Workers int
	// Progress renders a progress bar on stderr while tiles are written.
	Progress bool
}

// Generator drives the full pipeline: load, frame, build levels, cut
// tiles, write tiles. Output is deterministic: the same source image
// yields byte-identical tile files regardless of the worker count.
type Generator struct {
	opts Options
	log  logrus.FieldLogger
}

// New returns a Generator. A nil logger discards all output.
func New(logger logrus.FieldLogger, opts Options) *Generator {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Generator{opts: opts, log: logger}
}

// Generate converts the image at imagePath into a tile pyramid written
// flat into targetDir, which must already exist and be writable. It
// returns the centering offset of the original source size and the
// largest zoom level index.
//
// On failure the target directory may be left partially populated; the
// caller owns cleanup and retry.
func (g *Generator) Generate(ctx context.Context, imagePath, targetDir string) (Result, error) {
	start := time.Now()

	src, err := loadImage(imagePath)
	if err != nil {
		return Result{}, err
	}

	b := src.Bounds()
	if b.Dx() < 1 || b.Dy() < 1 {
		return Result{}, ErrDegenerateSize
	}

	g.log.WithFields(logrus.Fields{
		"width":  b.Dx(),
		"height": b.Dy(),
		"canvas": CanvasEdge(b.Dx(), b.Dy()),
	}).Info("framing image")
	framed := Frame(src)

	levels := BuildLevels(framed)
	g.log.Infof("built %d zoom levels", len(levels))

	tiles := Cut(levels)
	if err := g.writeTiles(ctx, tiles, targetDir); err != nil {
		return Result{}, err
	}

	g.log.Infof("pyramid finished in %.3fs", time.Since(start).Seconds())
	return Result{
		Offset:  CenterOffset(b.Dx(), b.Dy()),
		MaxZoom: len(levels) - 1,
	}, nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode source image %s: %w", path, err)
	}
	return img, nil
}

type tileJob struct {
	tile Tile
	img  image.Image
}

// writeTiles fans the tiles of every level out to a bounded worker pool.
// Each (z, x, y) write is independent, so ordering does not matter; a
// failed write cancels the producer and surfaces the first error.
func (g *Generator) writeTiles(ctx context.Context, grids [][][]image.Image, targetDir string) error {
	total := 0
	for z := range grids {
		n := 1 << z
		total += n * n
	}

	var bar *pb.ProgressBar
	if g.opts.Progress {
		bar = pb.New(total).Prefix("tiles: ")
		bar.SetRefreshRate(time.Second)
		bar.Start()
		defer bar.Finish()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan tileJob)
	go func() {
		defer close(jobs)
		for z, rows := range grids {
			for y, row := range rows {
				for x, img := range row {
					select {
					case jobs <- tileJob{tile: Tile{Z: z, X: x, Y: y}, img: img}:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	errcs := make([]<-chan error, 0, g.opts.Workers)
	for i := 0; i < g.opts.Workers; i++ {
		errcs = append(errcs, g.tileWriter(jobs, targetDir, bar))
	}

	if err := waitForPipeline(errcs...); err != nil {
		return err
	}
	// A cancelled context stops the producer without an error from the
	// workers; the tile set is incomplete and the run must fail.
	return ctx.Err()
}

func (g *Generator) tileWriter(jobs <-chan tileJob, targetDir string, bar *pb.ProgressBar) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for job := range jobs {
			if err := writeTile(targetDir, job); err != nil {
				errc <- err
				return
			}
			if bar != nil {
				bar.Increment()
			}
			g.log.Debugf("wrote %s", job.tile)
		}
	}()
	return errc
}

func writeTile(targetDir string, job tileJob) error {
	name := filepath.Join(targetDir, job.tile.Filename())

	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", job.tile, err)
	}

	if err := png.Encode(f, job.img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", job.tile, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", job.tile, err)
	}
	return nil
}

func waitForPipeline(errcs ...<-chan error) error {
	for err := range mergeErrors(errcs...) {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			defer wg.Done()
			for err := range c {
				out <- err
			}
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
