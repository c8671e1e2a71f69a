// Package converter provides conversion between LilyPond notation, YAML bar
// sequences, Strudel scripts, strudel-repl embed pages and MIDI files
package converter

// Format represents a file format
type Format string

const (
	FormatLilyPond Format = "lilypond"
	FormatSequence Format = "sequence"
	FormatScript   Format = "script"
	FormatHTML     Format = "html"
	FormatMIDI     Format = "midi"
	FormatUnknown  Format = "unknown"
)

// Converter handles format conversions. Libraries lists the pattern library
// roots used to resolve sequence input; Title names generated embed pages.
type Converter struct {
	Libraries []string
	Title     string
}

// New creates a new Converter
func New() *Converter {
	return &Converter{Title: "lily2strudel"}
}

// SetLibraries sets the pattern library roots for sequence input
func (c *Converter) SetLibraries(roots []string) {
	c.Libraries = roots
}

// SetTitle sets the page title for generated HTML output
func (c *Converter) SetTitle(title string) {
	c.Title = title
}
