package sequencer

import (
	"fmt"
	"strings"

	"github.com/strudelkit/lily2strudel/pkg/lily"
	"github.com/strudelkit/lily2strudel/pkg/score"
	"github.com/strudelkit/lily2strudel/pkg/strudel"
)

var voiceCommands = []string{"\\voiceOne", "\\voiceTwo", "\\voiceThree", "\\voiceFour"}

// Snippet renders patterns as bare simultaneous DrumVoice blocks, one
// << ... >> per pattern, for previewing library fragments.
func Snippet(patterns []Pattern) string {
	blocks := make([]string, 0, len(patterns))
	for _, p := range patterns {
		voices := make([]string, 0, len(p.Voices))
		for _, v := range p.Voices {
			voices = append(voices, fmt.Sprintf("  \\new DrumVoice { %s }", strings.TrimSpace(v)))
		}
		blocks = append(blocks, fmt.Sprintf("<<\n%s\n>>", strings.Join(voices, "\n")))
	}
	return strings.Join(blocks, "\n")
}

type voiceEmitter struct {
	lib      Library
	voiceIdx int
	lines    []string
	needSep  bool
}

func (e *voiceEmitter) voiceOf(name string) (string, error) {
	p, err := e.lib.Find(name)
	if err != nil {
		return "", err
	}
	if len(p.Voices) == 0 {
		return "", &EmptyVoicesError{Name: name}
	}
	if e.voiceIdx >= len(p.Voices) {
		return "", fmt.Errorf("pattern %q has %d voices, expected at least %d", name, len(p.Voices), e.voiceIdx+1)
	}
	return strings.TrimSpace(p.Voices[e.voiceIdx]), nil
}

func (e *voiceEmitter) sepAndComment(indent, comment string) {
	if e.needSep {
		e.lines = append(e.lines, indent+"|")
	}
	if comment != "" {
		e.lines = append(e.lines, indent+"% "+lily.DirectiveTag+" comment "+comment)
	}
}

// emit renders one item. The comment attaches to the first bar the item
// produces; needSep tracks whether a bar separator is due before the next
// single bar.
func (e *voiceEmitter) emit(it Item, indent, comment string) error {
	switch {
	case it.Group == nil && it.Times() == 1:
		content, err := e.voiceOf(it.Pattern)
		if err != nil {
			return err
		}
		e.sepAndComment(indent, comment)
		e.lines = append(e.lines, indent+content)
		e.needSep = true
	case it.Group == nil:
		content, err := e.voiceOf(it.Pattern)
		if err != nil {
			return err
		}
		e.sepAndComment(indent, comment)
		e.lines = append(e.lines, fmt.Sprintf("%s\\repeat volta %d {", indent, it.Times()))
		e.lines = append(e.lines, indent+"  "+content)
		e.lines = append(e.lines, indent+"}")
		e.needSep = false
	case it.Times() == 1:
		for i, child := range it.Group {
			c := ""
			if i == 0 {
				c = comment
			}
			if err := e.emit(child, indent, c); err != nil {
				return err
			}
		}
	default:
		e.sepAndComment(indent, comment)
		e.lines = append(e.lines, fmt.Sprintf("%s\\repeat volta %d {", indent, it.Times()))
		inner := &voiceEmitter{lib: e.lib, voiceIdx: e.voiceIdx}
		for _, child := range it.Group {
			if err := inner.emit(child, indent+"  ", ""); err != nil {
				return err
			}
		}
		e.lines = append(e.lines, inner.lines...)
		e.lines = append(e.lines, indent+"}")
		e.needSep = false
	}
	return nil
}

// LilyPond renders a bar sequence as a full LilyPond score: one DrumStaff
// with the library patterns' voices as simultaneous DrumVoice blocks,
// repeated groups as native \repeat volta constructs and descriptions as
// directive comments.
func LilyPond(seq *Sequence, lib Library) (string, error) {
	const indent = "            "

	items := make([]Item, 0, len(seq.Sequence))
	for _, si := range seq.Sequence {
		items = append(items, si.Item)
	}

	first := firstPattern(items)
	if first == "" {
		return "", fmt.Errorf("empty sequence")
	}
	firstPat, err := lib.Find(first)
	if err != nil {
		return "", err
	}
	numVoices := len(firstPat.Voices)
	if numVoices == 0 {
		return "", &EmptyVoicesError{Name: first}
	}

	var voiceBlocks []string
	for voiceIdx := 0; voiceIdx < numVoices; voiceIdx++ {
		e := &voiceEmitter{lib: lib, voiceIdx: voiceIdx}
		for _, si := range seq.Sequence {
			if err := e.emit(si.Item, indent, si.Description); err != nil {
				return "", err
			}
		}

		command := ""
		if voiceIdx < len(voiceCommands) {
			command = voiceCommands[voiceIdx]
		}
		voiceBlocks = append(voiceBlocks, fmt.Sprintf(
			"        \\new DrumVoice {\n          %s\n%s\n        }",
			command, strings.Join(e.lines, "\n")))
	}

	return fmt.Sprintf(`\version "2.24.4"

\paper {
  indent = 0\mm
  line-width = 180\mm
  oddHeaderMarkup = ""
  evenHeaderMarkup = ""
  oddFooterMarkup = ""
  evenFooterMarkup = ""
}

\score {
  <<
    \tempo 4 = %d

    \new DrumStaff {
      <<
%s
      >>
    }
  >>

  \layout {}
}
`, seq.Tempo, strings.Join(voiceBlocks, "\n")), nil
}

// Strudel renders a bar sequence as a Strudel script by round-tripping
// the emitted LilyPond through the parser and generator, so both outputs
// always agree.
func Strudel(seq *Sequence, lib Library) (string, error) {
	doc, err := document(seq, lib)
	if err != nil {
		return "", err
	}
	return strudel.Script(doc), nil
}

// StrudelHTML renders a bar sequence as a strudel-repl embed page.
func StrudelHTML(seq *Sequence, lib Library, title string) (string, error) {
	doc, err := document(seq, lib)
	if err != nil {
		return "", err
	}
	return strudel.HTML(doc, title), nil
}

func document(seq *Sequence, lib Library) (*score.Document, error) {
	ly, err := LilyPond(seq, lib)
	if err != nil {
		return nil, err
	}
	doc, err := lily.NewParser().Parse(ly)
	if err != nil {
		return nil, fmt.Errorf("generated LilyPond failed to parse: %w", err)
	}
	return doc, nil
}
