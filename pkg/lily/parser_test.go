package lily

import (
	"errors"
	"testing"

	"github.com/strudelkit/lily2strudel/pkg/score"
)

func parseDoc(t *testing.T, src string) *score.Document {
	t.Helper()
	doc, err := NewParser().Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func singleVoice(t *testing.T, doc *score.Document) score.Voice {
	t.Helper()
	if len(doc.Staves) != 1 {
		t.Fatalf("got %d staves, want 1", len(doc.Staves))
	}
	if len(doc.Staves[0].Voices) != 1 {
		t.Fatalf("got %d voices, want 1", len(doc.Staves[0].Voices))
	}
	return doc.Staves[0].Voices[0]
}

func barEvents(t *testing.T, v score.Voice, i int) []score.Event {
	t.Helper()
	if i >= len(v.Segments) {
		t.Fatalf("voice has %d segments, want at least %d", len(v.Segments), i+1)
	}
	bar, ok := v.Segments[i].(score.Bar)
	if !ok {
		t.Fatalf("segment %d is %T, want Bar", i, v.Segments[i])
	}
	return bar.Events
}

func TestParseSimpleMelody(t *testing.T) {
	doc := parseDoc(t, "\\tempo 4 = 60\n{ c4 d4 e4 | }")

	if doc.Tempo.BeatUnit != 4 || doc.Tempo.BPM != 60 {
		t.Errorf("tempo = %+v, want {4 60}", doc.Tempo)
	}
	v := singleVoice(t, doc)
	events := barEvents(t, v, 0)
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	first, ok := events[0].(score.Note)
	if !ok {
		t.Fatalf("event 0 is %T, want Note", events[0])
	}
	if first.Letter != 'c' || first.Octave != 3 || first.Duration != 4 {
		t.Errorf("first note = %+v", first)
	}
}

func TestParseMissingTempo(t *testing.T) {
	_, err := NewParser().Parse("{ c4 d4 }")
	if !errors.Is(err, ErrMissingTempo) {
		t.Fatalf("error = %v, want ErrMissingTempo", err)
	}
}

func TestParseNoMusic(t *testing.T) {
	_, err := NewParser().Parse("\\tempo 4 = 120")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %T, want *ParseError", err)
	}
}

func TestParseDurationCarryOver(t *testing.T) {
	doc := parseDoc(t, "\\tempo 4 = 120\n{ c8 d e4 f | }")

	events := barEvents(t, singleVoice(t, doc), 0)
	want := []int{8, 8, 4, 4}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i, w := range want {
		n := events[i].(score.Note)
		if n.Duration != w {
			t.Errorf("event %d duration = %d, want %d", i, n.Duration, w)
		}
	}
}

func TestParsePitches(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		letter byte
		acc    score.Accidental
		octave int
		midi   int
	}{
		{"reference octave", "c4", 'c', score.Natural, 3, 48},
		{"middle C", "c'4", 'c', score.Natural, 4, 60},
		{"sharp below", "fis,4", 'f', score.Sharp, 2, 42},
		{"flat", "ges4", 'g', score.Flat, 3, 54},
		{"double up", "a''4", 'a', score.Natural, 5, 81},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseDoc(t, "\\tempo 4 = 120\n{ "+tt.token+" | }")
			events := barEvents(t, singleVoice(t, doc), 0)
			n := events[0].(score.Note)
			if n.Letter != tt.letter || n.Accidental != tt.acc || n.Octave != tt.octave {
				t.Errorf("note = %+v", n)
			}
			if n.MIDI != tt.midi {
				t.Errorf("MIDI = %d, want %d", n.MIDI, tt.midi)
			}
		})
	}
}

func TestParseRestExpansion(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		rests int // quarter rest events in the first bar
	}{
		{"quarter rest", "r4 |", 1},
		{"half rest expands", "r2 |", 2},
		{"whole rest expands", "r1 |", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseDoc(t, "\\tempo 4 = 120\n{ "+tt.body+" }")
			events := barEvents(t, singleVoice(t, doc), 0)
			if len(events) != tt.rests {
				t.Fatalf("got %d events, want %d", len(events), tt.rests)
			}
			for i, ev := range events {
				r, ok := ev.(score.Rest)
				if !ok {
					t.Fatalf("event %d is %T, want Rest", i, ev)
				}
				if r.Duration != 4 {
					t.Errorf("event %d duration = %d, want 4", i, r.Duration)
				}
			}
		})
	}
}

func TestParseRestInheritsDuration(t *testing.T) {
	doc := parseDoc(t, "\\tempo 4 = 120\n{ c2 r | }")
	events := barEvents(t, singleVoice(t, doc), 0)
	// c2 then a half rest expanded into two quarter rests.
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if _, ok := events[1].(score.Rest); !ok {
		t.Fatalf("event 1 is %T, want Rest", events[1])
	}
}

func TestParseChord(t *testing.T) {
	doc := parseDoc(t, "\\tempo 4 = 120\n{ < c e g >2 c | }")
	events := barEvents(t, singleVoice(t, doc), 0)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	chord, ok := events[0].(score.Chord)
	if !ok {
		t.Fatalf("event 0 is %T, want Chord", events[0])
	}
	if len(chord.Notes) != 3 || chord.Duration != 2 {
		t.Errorf("chord = %+v", chord)
	}
	// The chord duration participates in carry-over.
	if n := events[1].(score.Note); n.Duration != 2 {
		t.Errorf("following note duration = %d, want 2", n.Duration)
	}
}

func TestParseChordErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty chord", "< >4 |"},
		{"member duration", "< c4 e g > |"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().Parse("\\tempo 4 = 120\n{ " + tt.body + " }")
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("error = %v, want *ParseError", err)
			}
		})
	}
}

func TestParseVariables(t *testing.T) {
	src := `
melody = { c4 d4 | e4 f4 | }
\tempo 4 = 100
\score {
  <<
    \new Staff { \melody }
  >>
}`
	doc := parseDoc(t, src)
	v := singleVoice(t, doc)
	if doc.Staves[0].Kind != score.Pitched {
		t.Errorf("staff kind = %v, want Pitched", doc.Staves[0].Kind)
	}
	if v.NBars() != 2 {
		t.Errorf("NBars() = %d, want 2", v.NBars())
	}
}

func TestParseVariableCycle(t *testing.T) {
	src := `
a = { \b }
b = { \a }
\tempo 4 = 100
\score { << \new Staff { \a } >> }`
	_, err := NewParser().Parse(src)
	var cycleErr *DefinitionCycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("error = %v, want *DefinitionCycleError", err)
	}
}

func TestParseTempoVariable(t *testing.T) {
	// The definition may follow the marking.
	doc := parseDoc(t, "\\tempo 4 = \\bpm\nbpm = 132\n{ c4 | }")
	if doc.Tempo.BPM != 132 {
		t.Errorf("BPM = %d, want 132", doc.Tempo.BPM)
	}
}

func TestParseTempoInsideScore(t *testing.T) {
	src := `
\score {
  <<
    \tempo 4 = 84
    \new Staff { c4 | }
  >>
}`
	doc := parseDoc(t, src)
	if doc.Tempo.BPM != 84 {
		t.Errorf("BPM = %d, want 84", doc.Tempo.BPM)
	}
}

func TestParseDrumStaffVoices(t *testing.T) {
	src := `
\tempo 4 = 120
\score {
  <<
    \new DrumStaff {
      <<
        \new DrumVoice { bd4 r4 bd4 r4 | }
        \new DrumVoice { hh8 hh8 hh8 hh8 hh8 hh8 hh8 hh8 | }
      >>
    }
  >>
}`
	doc := parseDoc(t, src)
	if len(doc.Staves) != 1 {
		t.Fatalf("got %d staves, want 1", len(doc.Staves))
	}
	staff := doc.Staves[0]
	if staff.Kind != score.Drums {
		t.Errorf("staff kind = %v, want Drums", staff.Kind)
	}
	if len(staff.Voices) != 2 {
		t.Fatalf("got %d voices, want 2", len(staff.Voices))
	}
	hit := barEvents(t, staff.Voices[0], 0)[0].(score.DrumHit)
	if hit.Name != "bd" || hit.Duration != 4 {
		t.Errorf("first hit = %+v", hit)
	}
}

func TestParseDrumVariableInStaff(t *testing.T) {
	src := `
beat = \drummode { bd4 sn4 bd4 sn4 | }
\tempo 4 = 90
\score { << \new Staff { \beat } >> }`
	doc := parseDoc(t, src)
	if doc.Staves[0].Kind != score.Drums {
		t.Errorf("staff kind = %v, want Drums", doc.Staves[0].Kind)
	}
}

func TestParseUnknownDrumWordSkipped(t *testing.T) {
	src := `
beat = \drummode { bd4 wiggle sn4 | }
\tempo 4 = 90
\score { << \beat >> }`
	doc := parseDoc(t, src)
	events := barEvents(t, doc.Staves[0].Voices[0], 0)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
}

func TestParseUnknownStaffType(t *testing.T) {
	_, err := NewParser().Parse("\\score { << \\new FooStaff { c4 } >> }")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
}

func TestParseRepeatUnfold(t *testing.T) {
	doc := parseDoc(t, "\\tempo 4 = 120\n{ \\repeat unfold 2 { c4 | d4 | } }")
	v := singleVoice(t, doc)
	if len(v.Segments) != 4 {
		t.Fatalf("got %d segments, want 4", len(v.Segments))
	}
	for i, seg := range v.Segments {
		if _, ok := seg.(score.Bar); !ok {
			t.Errorf("segment %d is %T, want Bar", i, seg)
		}
	}
	if v.NBars() != 4 {
		t.Errorf("NBars() = %d, want 4", v.NBars())
	}
}

func TestParseRepeatVoltaPreserved(t *testing.T) {
	doc := parseDoc(t, "\\tempo 4 = 120\n{ \\repeat volta 3 { c4 | d4 | } }")
	v := singleVoice(t, doc)
	if len(v.Segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(v.Segments))
	}
	rep, ok := v.Segments[0].(score.Repeat)
	if !ok {
		t.Fatalf("segment is %T, want Repeat", v.Segments[0])
	}
	if rep.Count != 3 || len(rep.Bars) != 2 {
		t.Errorf("repeat = count %d with %d bars, want 3 with 2", rep.Count, len(rep.Bars))
	}
	if v.NBars() != 6 {
		t.Errorf("NBars() = %d, want 6", v.NBars())
	}
}

func TestParseRepeatClosesOpenBar(t *testing.T) {
	doc := parseDoc(t, "\\tempo 4 = 120\n{ c4 \\repeat volta 2 { d4 | } }")
	v := singleVoice(t, doc)
	if len(v.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(v.Segments))
	}
	if _, ok := v.Segments[0].(score.Bar); !ok {
		t.Errorf("segment 0 is %T, want Bar", v.Segments[0])
	}
	if _, ok := v.Segments[1].(score.Repeat); !ok {
		t.Errorf("segment 1 is %T, want Repeat", v.Segments[1])
	}
}

func TestParseDirectives(t *testing.T) {
	src := `
\tempo 4 = 120
{
  % ` + DirectiveTag + ` blue punchcard
  % ` + DirectiveTag + ` gain 0.8
  % ` + DirectiveTag + ` pan <0 .5 1>
  % ` + DirectiveTag + ` comment just a note to self
  c4 d4 |
}`
	doc := parseDoc(t, src)
	mods := singleVoice(t, doc).Modifiers
	if mods.PunchcardColor != "blue" {
		t.Errorf("PunchcardColor = %q, want %q", mods.PunchcardColor, "blue")
	}
	if mods.Gain != "0.8" {
		t.Errorf("Gain = %q, want %q", mods.Gain, "0.8")
	}
	if mods.Pan != "<0 .5 1>" {
		t.Errorf("Pan = %q, want %q", mods.Pan, "<0 .5 1>")
	}
}
