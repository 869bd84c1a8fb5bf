// Package markers extracts marker positions from a diagram description
// file. The input is the XML exported alongside a pathway diagram: every
// species carries a display name and a class, and a species alias places
// it on the diagram with a bounding box. A marker pins the species at a
// class-dependent point of that box, shifted by the framing offset of the
// generated tile pyramid, and carries the species notes as popup HTML.
package markers

import (
	"encoding/xml"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"regexp"
	"sort"
	"strings"
)

// classComplex marks container species. Their pin sits at the top-right
// corner of the box so it stays clickable above the members drawn inside.
const classComplex = "COMPLEX"

// diagram mirrors just the parts of the exported XML we care about. The
// elements live in vendor namespaces in the real files; matching on local
// names keeps the parser independent of the prefix in use.
type diagram struct {
	Species       []species `xml:"model>listOfSpecies>species"`
	Aliases       []alias   `xml:"model>annotation>extension>listOfSpeciesAliases>speciesAlias"`
	Proteins      []entity  `xml:"model>annotation>extension>listOfProteins>protein"`
	Genes         []entity  `xml:"model>annotation>extension>listOfGenes>gene"`
	RNAs          []entity  `xml:"model>annotation>extension>listOfRNAs>rna"`
	AntisenseRNAs []entity  `xml:"model>annotation>extension>listOfAntisenseRNAs>antisenseRNA"`
}

type species struct {
	ID           string     `xml:"id,attr"`
	Name         string     `xml:"name,attr"`
	Class        string     `xml:"annotation>extension>speciesIdentity>class"`
	ProteinRef   string     `xml:"annotation>extension>speciesIdentity>proteinReference"`
	GeneRef      string     `xml:"annotation>extension>speciesIdentity>geneReference"`
	RNARef       string     `xml:"annotation>extension>speciesIdentity>rnaReference"`
	AntisenseRef string     `xml:"annotation>extension>speciesIdentity>antisensernaReference"`
	Notes        noteHolder `xml:"notes"`
}

// entityRef returns the id of the protein/gene/rna entity the species
// identity points at, if any. At most one reference is set per species.
func (s species) entityRef() string {
	for _, ref := range []string{s.ProteinRef, s.GeneRef, s.RNARef, s.AntisenseRef} {
		if ref != "" {
			return ref
		}
	}
	return ""
}

// entity is a protein, gene or rna definition that species identities
// reference. Only the attached notes matter here.
type entity struct {
	ID    string     `xml:"id,attr"`
	Notes noteHolder `xml:"notes"`
}

type alias struct {
	ID      string `xml:"id,attr"`
	Species string `xml:"species,attr"`
	Bounds  bounds `xml:"bounds"`
}

type bounds struct {
	X float64 `xml:"x,attr"`
	Y float64 `xml:"y,attr"`
	W float64 `xml:"w,attr"`
	H float64 `xml:"h,attr"`
}

// noteHolder captures the HTML body of a notes element. Species notes
// nest the body directly, entity notes wrap it in a full html document;
// both shapes occur in exported files.
type noteHolder struct {
	Body     noteBody `xml:"body"`
	HTMLBody noteBody `xml:"html>body"`
}

type noteBody struct {
	InnerXML string `xml:",innerxml"`
}

func (n noteHolder) text() string {
	if s := strings.TrimSpace(n.Body.InnerXML); s != "" {
		return s
	}
	return strings.TrimSpace(n.HTMLBody.InnerXML)
}

// Marker is one pin on the diagram, in canvas pixel coordinates.
type Marker struct {
	ID    string  `xml:"id,attr"`
	Name  string  `xml:"name,attr"`
	Class string  `xml:"class,attr,omitempty"`
	X     int     `xml:"x,attr"`
	Y     int     `xml:"y,attr"`
	Notes []Notes `xml:"notes"`
}

// Notes is one block of popup HTML carried over from the diagram.
type Notes struct {
	Text string `xml:",cdata"`
}

// Set is the markers document consumed by the viewer.
type Set struct {
	XMLName xml.Name `xml:"markers"`
	Markers []Marker `xml:"marker"`
}

var lineBreaks = regexp.MustCompile(`\n+`)

// Extract reads the diagram XML and returns one marker per placed
// species, sorted by name. Species that never appear on the diagram (no
// alias with bounds) are skipped. The offset is the displacement the
// framing step applied to the source image.
//
// Complex species are pinned just inside their top-right corner; all
// other classes at 80% of the width and 20% of the height of their box.
// Notes attached to the species, and to the entity its identity
// references, travel along as popup HTML.
func Extract(r io.Reader, offset image.Point) (*Set, error) {
	var d diagram
	if err := xml.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("parse diagram: %w", err)
	}

	byID := make(map[string]species, len(d.Species))
	for _, s := range d.Species {
		byID[s.ID] = s
	}

	entities := make(map[string]entity)
	for _, group := range [][]entity{d.Proteins, d.Genes, d.RNAs, d.AntisenseRNAs} {
		for _, e := range group {
			entities[e.ID] = e
		}
	}

	set := &Set{}
	for _, a := range d.Aliases {
		sp, ok := byID[a.Species]
		if !ok || (a.Bounds.W == 0 && a.Bounds.H == 0) {
			continue
		}

		m := Marker{ID: a.ID, Name: sp.Name, Class: sp.Class}
		if sp.Class == classComplex {
			m.X = int(math.Round(a.Bounds.X+a.Bounds.W)) - 5 + offset.X
			m.Y = int(math.Round(a.Bounds.Y)) + 5 + offset.Y
		} else {
			m.X = int(math.Round(a.Bounds.X+0.8*a.Bounds.W)) + offset.X
			m.Y = int(math.Round(a.Bounds.Y+0.2*a.Bounds.H)) + offset.Y
		}

		if text := sp.Notes.text(); text != "" {
			m.Notes = append(m.Notes, Notes{Text: breakLines(text)})
		}
		if ref := sp.entityRef(); ref != "" {
			if e, ok := entities[ref]; ok {
				if text := e.Notes.text(); text != "" {
					m.Notes = append(m.Notes, Notes{Text: breakLines(text)})
				}
			}
		}

		set.Markers = append(set.Markers, m)
	}

	sort.Slice(set.Markers, func(i, j int) bool {
		if set.Markers[i].Name != set.Markers[j].Name {
			return set.Markers[i].Name < set.Markers[j].Name
		}
		return set.Markers[i].ID < set.Markers[j].ID
	})

	return set, nil
}

// breakLines turns raw line breaks into HTML breaks so multi-line notes
// keep their shape inside a popup.
func breakLines(s string) string {
	return lineBreaks.ReplaceAllString(s, "<br/>\n")
}

// ExtractFile is Extract over a file path.
func ExtractFile(path string, offset image.Point) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open diagram: %w", err)
	}
	defer f.Close()
	return Extract(f, offset)
}

// WriteFile serializes the marker set as indented XML.
func (s *Set) WriteFile(path string) error {
	b, err := xml.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append([]byte(xml.Header), append(b, '\n')...), 0o644)
}
