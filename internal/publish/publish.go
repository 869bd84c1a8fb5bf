// Package publish drives a full conversion run: it prepares the target
// folder layout, generates the tile pyramid, extracts markers from the
// optional diagram XML and installs the viewer shell. It is the run-level
// orchestration around pkg/pyramid; the core stays usable on its own.
package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/sbessler/pyra/internal/markers"
	"github.com/sbessler/pyra/internal/viewer"
	"github.com/sbessler/pyra/pkg/pyramid"
)

// ErrTargetExists is returned when the target directory is already
// present and Force was not set. A conversion never silently overwrites
// earlier output.
var ErrTargetExists = errors.New("publish: target directory already exists")

// Params configures one conversion run.
type Params struct {
	// ImagePath is the source raster image.
	ImagePath string
	// DiagramPath is the optional diagram XML to extract markers from.
	DiagramPath string
	// TargetDir receives the whole output tree.
	TargetDir string

	Title  string
	Author string

	// Workers bounds the tile-write pool; zero picks the default.
	Workers int
	// Progress shows a progress bar during tile writes.
	Progress bool
	// Force allows writing into an existing target directory.
	Force bool
}

// subdirs of the target folder, created up front.
var subdirs = []string{"tiles", "xml", "css", "scripts"}

// Publisher runs conversions.
type Publisher struct {
	log logrus.FieldLogger
}

func New(logger logrus.FieldLogger) *Publisher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Publisher{log: logger}
}

// Run executes the pipeline and returns the pyramid result. On failure
// the target directory may be left partially populated; callers that want
// a clean retry should remove it first.
func (p *Publisher) Run(ctx context.Context, params Params) (*pyramid.Result, error) {
	if err := p.createLayout(params); err != nil {
		return nil, err
	}

	p.log.WithFields(logrus.Fields{
		"image":  params.ImagePath,
		"target": params.TargetDir,
	}).Info("creating zoom levels")

	gen := pyramid.New(p.log, pyramid.Options{
		Workers:  params.Workers,
		Progress: params.Progress,
	})
	res, err := gen.Generate(ctx, params.ImagePath, filepath.Join(params.TargetDir, "tiles"))
	if err != nil {
		return nil, err
	}

	if params.DiagramPath != "" {
		p.log.Info("extracting markers")
		set, err := markers.ExtractFile(params.DiagramPath, res.Offset)
		if err != nil {
			return nil, err
		}
		if err := set.WriteFile(filepath.Join(params.TargetDir, "xml", "markers.xml")); err != nil {
			return nil, fmt.Errorf("write markers: %w", err)
		}
		p.log.Infof("placed %d markers", len(set.Markers))
	}

	p.log.Info("installing viewer")
	page := viewer.Page{
		Title:   params.Title,
		Author:  params.Author,
		MaxZoom: res.MaxZoom,
	}
	if params.DiagramPath != "" {
		page.MarkersURL = "xml/markers.xml"
	}
	if err := viewer.Install(params.TargetDir, page); err != nil {
		return nil, err
	}

	p.log.WithFields(logrus.Fields{
		"offset":  res.Offset,
		"maxZoom": res.MaxZoom,
	}).Info("conversion finished")

	return &res, nil
}

func (p *Publisher) createLayout(params Params) error {
	if _, err := os.Stat(params.TargetDir); err == nil {
		if !params.Force {
			return fmt.Errorf("%w: %s", ErrTargetExists, params.TargetDir)
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	for _, sub := range subdirs {
		if err := os.MkdirAll(filepath.Join(params.TargetDir, sub), 0o755); err != nil {
			return fmt.Errorf("create target layout: %w", err)
		}
	}
	return nil
}
