// Package viewer renders the HTML shell and static assets for browsing a
// generated tile pyramid. The shell is a single index.html wired to a
// small Leaflet-based script that reads tiles from tiles/{z}_{x}_{y}.png
// and marker pins from xml/markers.xml.
package viewer

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
)

//go:embed templates/index.html.tmpl assets
var content embed.FS

var indexTemplate = template.Must(template.ParseFS(content, "templates/index.html.tmpl"))

// Page carries everything the shell template needs.
type Page struct {
	Title   string
	Author  string
	MaxZoom int
	// TileURL is the tile URL template relative to index.html.
	TileURL string
	// MarkersURL is empty when the diagram had no marker source.
	MarkersURL string
}

// Render writes the index.html for the page.
func Render(w io.Writer, p Page) error {
	if p.TileURL == "" {
		p.TileURL = "tiles/{z}_{x}_{y}.png"
	}
	return indexTemplate.Execute(w, p)
}

// assetFiles maps embedded assets to their location in the target folder.
var assetFiles = map[string]string{
	"assets/style.css": "css/style.css",
	"assets/viewer.js": "scripts/viewer.js",
}

// Install writes index.html and the static assets into targetDir. The
// css/ and scripts/ subdirectories must already exist.
func Install(targetDir string, p Page) error {
	f, err := os.Create(filepath.Join(targetDir, "index.html"))
	if err != nil {
		return fmt.Errorf("create index.html: %w", err)
	}
	if err := Render(f, p); err != nil {
		f.Close()
		return fmt.Errorf("render index.html: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	for src, dst := range assetFiles {
		b, err := content.ReadFile(src)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(targetDir, dst), b, 0o644); err != nil {
			return fmt.Errorf("install %s: %w", dst, err)
		}
	}
	return nil
}
