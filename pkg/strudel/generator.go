// Package strudel generates Strudel pattern code from a resolved document.
// Generation is a pure traversal: the same document always yields the same
// text, and the document is never mutated.
package strudel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/strudelkit/lily2strudel/pkg/score"
)

// formatWeight maps a duration denominator to the explicit Strudel weight
// suffix. The quarter note is the unit and needs no weight. The table is
// canonical, not derived: whole=4, half=2, eighth=0.5, sixteenth=0.25.
func formatWeight(duration int) string {
	switch duration {
	case 1:
		return "4"
	case 2:
		return "2"
	case 4:
		return ""
	case 8:
		return "0.5"
	case 16:
		return "0.25"
	default:
		return strconv.FormatFloat(4/float64(duration), 'g', -1, 64)
	}
}

func withWeight(text string, duration int) string {
	if w := formatWeight(duration); w != "" {
		return text + "@" + w
	}
	return text
}

func formatNote(n score.Note) string {
	acc := ""
	switch n.Accidental {
	case score.Sharp:
		acc = "#"
	case score.Flat:
		acc = "b"
	}
	return fmt.Sprintf("%c%s%d", n.Letter, acc, n.Octave)
}

// formatRest renders a rest as quarter-note rests. The parser already
// expands half and whole rests, so one "~" is the common case.
func formatRest(duration int) string {
	quarters := 4 / duration
	if quarters <= 1 {
		return "~"
	}
	return strings.TrimSpace(strings.Repeat("~ ", quarters))
}

func formatEvent(ev score.Event) string {
	switch e := ev.(type) {
	case score.Note:
		return withWeight(formatNote(e), e.Duration)
	case score.Chord:
		names := make([]string, len(e.Notes))
		for i, n := range e.Notes {
			names[i] = formatNote(n)
		}
		return withWeight("["+strings.Join(names, ",")+"]", e.Duration)
	case score.Rest:
		return formatRest(e.Duration)
	case score.DrumHit:
		return withWeight(score.StrudelDrumName(e.Name), e.Duration)
	}
	return ""
}

func formatBar(b score.Bar) string {
	parts := make([]string, 0, len(b.Events))
	for _, ev := range b.Events {
		parts = append(parts, formatEvent(ev))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// voicePattern renders a voice's bars, one bracket group per bar joined by
// newlines. Preserved repeats compress: a repeated single bar becomes
// [[bar]]!N, a repeated group [[bars]!N]@total where total is the unfolded
// bar count (the playback length in bar slots).
func voicePattern(v score.Voice) string {
	var bars []string
	for _, seg := range v.Segments {
		switch s := seg.(type) {
		case score.Bar:
			if len(s.Events) == 0 {
				continue
			}
			bars = append(bars, formatBar(s))
		case score.Repeat:
			inner := make([]string, 0, len(s.Bars))
			for _, b := range s.Bars {
				inner = append(inner, formatBar(b))
			}
			body := strings.Join(inner, "\n")
			if len(s.Bars) > 1 {
				total := len(s.Bars) * s.Count
				bars = append(bars, fmt.Sprintf("[[%s]!%d]@%d", body, s.Count, total))
			} else {
				bars = append(bars, fmt.Sprintf("[%s]!%d", body, s.Count))
			}
		}
	}
	return strings.Join(bars, "\n")
}

// formatPatternValue wraps a modifier value in quotes when it is itself a
// bracket pattern such as <0 .5 1>.
func formatPatternValue(value string) string {
	if strings.Contains(value, "<") {
		return `"` + value + `"`
	}
	return value
}

// modifierChain renders the per-voice modifier calls in their fixed order:
// gain, pan, color, punchcard marker.
func modifierChain(m score.Modifiers, indent string) string {
	var b strings.Builder
	if m.Gain != "" {
		b.WriteString("\n" + indent + ".gain(" + formatPatternValue(m.Gain) + ")")
	}
	if m.Pan != "" {
		b.WriteString("\n" + indent + ".pan(" + formatPatternValue(m.Pan) + ")")
	}
	if m.PunchcardColor != "" {
		b.WriteString("\n" + indent + ".color(\"" + m.PunchcardColor + "\")")
		b.WriteString("\n" + indent + "._punchcard()")
	}
	return b.String()
}

func hasEvents(v score.Voice) bool {
	for _, seg := range v.Segments {
		switch s := seg.(type) {
		case score.Bar:
			for _, ev := range s.Events {
				if _, ok := ev.(score.Rest); !ok {
					return true
				}
			}
		case score.Repeat:
			for _, b := range s.Bars {
				for _, ev := range b.Events {
					if _, ok := ev.(score.Rest); !ok {
						return true
					}
				}
			}
		}
	}
	return false
}

func cpmSuffix(nbars int) string {
	if nbars <= 0 {
		return ""
	}
	return fmt.Sprintf("\n  .cpm(tempo/4/%d)", nbars)
}

func pitchedStatement(v score.Voice) string {
	if !hasEvents(v) {
		return "// No notes to convert"
	}
	base := "note(`\n" + voicePattern(v) + "`)" + modifierChain(v.Modifiers, "")
	base += "\n  .s(\"piano\")"
	return base + cpmSuffix(v.NBars())
}

func drumStatement(voices []score.Voice) string {
	if len(voices) == 0 {
		return "// No drum hits to convert"
	}
	if len(voices) == 1 {
		v := voices[0]
		if !hasEvents(v) {
			return "// No drum hits to convert"
		}
		base := "sound(`\n" + voicePattern(v) + "`)" + modifierChain(v.Modifiers, "")
		return base + cpmSuffix(v.NBars())
	}

	// Simultaneous voices stack, each carrying its own modifiers; the
	// playback rate follows the longest voice.
	parts := make([]string, 0, len(voices))
	maxBars := 0
	for _, v := range voices {
		parts = append(parts, "sound(`\n"+voicePattern(v)+"`)"+modifierChain(v.Modifiers, "  "))
		if n := v.NBars(); n > maxBars {
			maxBars = n
		}
	}
	stacked := "stack(\n  " + strings.Join(parts, ",\n  ") + ",\n)"
	return stacked + cpmSuffix(maxBars)
}

// StaffStatement renders one staff as a single pattern statement.
func StaffStatement(staff score.Staff) string {
	switch staff.Kind {
	case score.Drums:
		return drumStatement(staff.Voices)
	default:
		if len(staff.Voices) == 0 {
			return "// No notes to convert"
		}
		return pitchedStatement(staff.Voices[0])
	}
}

// Statements renders every staff, each prefixed with the $: play marker,
// joined by blank lines.
func Statements(doc *score.Document) string {
	if len(doc.Staves) == 0 {
		return "// No staves to convert"
	}
	parts := make([]string, 0, len(doc.Staves))
	for _, staff := range doc.Staves {
		parts = append(parts, "$: "+StaffStatement(staff))
	}
	return strings.Join(parts, "\n\n")
}

// TempoConst renders the shared tempo constant the cpm expressions refer to.
func TempoConst(doc *score.Document) string {
	return fmt.Sprintf("const tempo = %d;", doc.Tempo.BPM)
}

// Script renders the full Strudel program: tempo constant plus statements.
func Script(doc *score.Document) string {
	return TempoConst(doc) + "\n\n" + Statements(doc)
}
