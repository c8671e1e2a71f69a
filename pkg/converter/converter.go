package converter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/strudelkit/lily2strudel/pkg/lily"
	"github.com/strudelkit/lily2strudel/pkg/score"
	"github.com/strudelkit/lily2strudel/pkg/sequencer"
	"github.com/strudelkit/lily2strudel/pkg/strudel"
)

// DetectFormat detects the format of a file based on extension
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".ly", ".ily":
		return FormatLilyPond
	case ".yml", ".yaml":
		return FormatSequence
	case ".js":
		return FormatScript
	case ".html", ".htm":
		return FormatHTML
	case ".mid", ".midi":
		return FormatMIDI
	default:
		return FormatUnknown
	}
}

// DetectFormatFromContent detects format from file content
func DetectFormatFromContent(data []byte) Format {
	if len(data) >= 4 && string(data[:4]) == "MThd" {
		return FormatMIDI
	}
	text := string(data)
	switch {
	case strings.Contains(text, "\\score") || strings.Contains(text, "\\tempo") || strings.Contains(text, "\\version"):
		return FormatLilyPond
	case strings.Contains(text, "<!DOCTYPE") || strings.Contains(text, "<html"):
		return FormatHTML
	case strings.Contains(text, "sequence:"):
		return FormatSequence
	default:
		return FormatUnknown
	}
}

// ParseLy parses LilyPond source into a document, resolving \include
// references relative to baseDir.
func (c *Converter) ParseLy(data []byte, baseDir string) (*score.Document, error) {
	src, err := lily.ExpandIncludes(string(data), lily.DirLookup{Base: baseDir})
	if err != nil {
		return nil, err
	}
	return lily.NewParser().Parse(src)
}

// LyToScript converts LilyPond source to a Strudel script
func (c *Converter) LyToScript(data []byte, baseDir string) ([]byte, error) {
	doc, err := c.ParseLy(data, baseDir)
	if err != nil {
		return nil, err
	}
	return []byte(strudel.Script(doc)), nil
}

// LyToHTML converts LilyPond source to a strudel-repl embed page
func (c *Converter) LyToHTML(data []byte, baseDir string) ([]byte, error) {
	doc, err := c.ParseLy(data, baseDir)
	if err != nil {
		return nil, err
	}
	return []byte(strudel.HTML(doc, c.Title)), nil
}

// LyToMIDI converts LilyPond source to a standard MIDI file
func (c *Converter) LyToMIDI(data []byte, baseDir string) ([]byte, error) {
	doc, err := c.ParseLy(data, baseDir)
	if err != nil {
		return nil, err
	}
	return GenerateMIDI(doc)
}

func (c *Converter) library() sequencer.Library {
	return sequencer.DirLibrary{Roots: c.Libraries}
}

// SeqToLy converts a YAML bar sequence to LilyPond source
func (c *Converter) SeqToLy(data []byte) ([]byte, error) {
	seq, err := sequencer.LoadSequence(data)
	if err != nil {
		return nil, err
	}
	out, err := sequencer.LilyPond(seq, c.library())
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// SeqToScript converts a YAML bar sequence to a Strudel script
func (c *Converter) SeqToScript(data []byte) ([]byte, error) {
	seq, err := sequencer.LoadSequence(data)
	if err != nil {
		return nil, err
	}
	out, err := sequencer.Strudel(seq, c.library())
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// SeqToHTML converts a YAML bar sequence to a strudel-repl embed page
func (c *Converter) SeqToHTML(data []byte) ([]byte, error) {
	seq, err := sequencer.LoadSequence(data)
	if err != nil {
		return nil, err
	}
	out, err := sequencer.StrudelHTML(seq, c.library(), c.Title)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// ConvertFile converts a file from one format to another
func (c *Converter) ConvertFile(inputPath, outputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	inputFormat := DetectFormat(inputPath)
	if inputFormat == FormatUnknown {
		inputFormat = DetectFormatFromContent(data)
	}
	outputFormat := DetectFormat(outputPath)
	if outputFormat == FormatUnknown {
		return errors.New("cannot determine output format from filename")
	}

	baseDir := filepath.Dir(inputPath)

	var outputData []byte

	switch {
	case inputFormat == FormatLilyPond && outputFormat == FormatScript:
		outputData, err = c.LyToScript(data, baseDir)
	case inputFormat == FormatLilyPond && outputFormat == FormatHTML:
		outputData, err = c.LyToHTML(data, baseDir)
	case inputFormat == FormatLilyPond && outputFormat == FormatMIDI:
		outputData, err = c.LyToMIDI(data, baseDir)
	case inputFormat == FormatSequence && outputFormat == FormatLilyPond:
		outputData, err = c.SeqToLy(data)
	case inputFormat == FormatSequence && outputFormat == FormatScript:
		outputData, err = c.SeqToScript(data)
	case inputFormat == FormatSequence && outputFormat == FormatHTML:
		outputData, err = c.SeqToHTML(data)
	default:
		return fmt.Errorf("unsupported conversion: %s to %s", inputFormat, outputFormat)
	}

	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	if err := os.WriteFile(outputPath, outputData, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	return nil
}

// GetSupportedConversions returns a list of supported conversion paths
func GetSupportedConversions() []string {
	return []string{
		"lilypond -> script",
		"lilypond -> html",
		"lilypond -> midi",
		"sequence -> lilypond",
		"sequence -> script",
		"sequence -> html",
	}
}
