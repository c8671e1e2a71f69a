// Package score defines the document model shared between the LilyPond
// parser and the Strudel generator. A Document is built once by the parser
// and read-only afterwards; generation never mutates it.
package score

// Accidental is a pitch alteration parsed from a LilyPond suffix
// ("is" = sharp, "es" = flat).
type Accidental int

const (
	Natural Accidental = iota
	Sharp
	Flat
)

// Suffix returns the LilyPond spelling of the accidental.
func (a Accidental) Suffix() string {
	switch a {
	case Sharp:
		return "is"
	case Flat:
		return "es"
	default:
		return ""
	}
}

// ReferenceOctave is the octave of an unmarked LilyPond pitch:
// c = C3, c' = C4 (middle C).
const ReferenceOctave = 3

// Event is one element of a bar: Note, Chord, Rest or DrumHit.
type Event interface {
	isEvent()
}

// Note is a single pitched event. Duration is a LilyPond denominator
// (1 = whole, 2 = half, 4 = quarter, ...). MIDI is the derived semitone
// index (C4 = 60).
type Note struct {
	Letter     byte // 'a'..'g'
	Accidental Accidental
	Octave     int
	Duration   int
	MIDI       int
}

// Chord is an ordered set of simultaneous notes sharing one duration.
type Chord struct {
	Notes    []Note
	Duration int
}

// Rest is a silent event.
type Rest struct {
	Duration int
}

// DrumHit is a percussion event. Name is the LilyPond drum name as written;
// remapping to Strudel names happens at generation time.
type DrumHit struct {
	Name     string
	Duration int
}

func (Note) isEvent()    {}
func (Chord) isEvent()   {}
func (Rest) isEvent()    {}
func (DrumHit) isEvent() {}

var noteSemitones = map[byte]int{
	'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11,
}

// Semitone returns the semitone index of a pitch letter within an octave,
// or -1 for a non-pitch letter.
func Semitone(letter byte) int {
	s, ok := noteSemitones[letter]
	if !ok {
		return -1
	}
	return s
}

// NewNote builds a Note and derives its MIDI number.
func NewNote(letter byte, acc Accidental, octave, duration int) Note {
	midi := Semitone(letter)
	switch acc {
	case Sharp:
		midi++
	case Flat:
		midi--
	}
	midi += (octave + 1) * 12 // MIDI octave offset: C4 = 60
	return Note{Letter: letter, Accidental: acc, Octave: octave, Duration: duration, MIDI: midi}
}

// Bar is one measure: an ordered event sequence terminated by a bar line
// in the source.
type Bar struct {
	Events []Event
}

// Segment is one top-level element of a voice: either a literal Bar or a
// Repeat preserved from a \repeat volta construct.
type Segment interface {
	isSegment()
}

func (Bar) isSegment() {}

// Repeat is a group of bars played Count times, kept as a marker so the
// generator can emit the compressed !N form instead of duplicating bars.
type Repeat struct {
	Count int
	Bars  []Bar
}

func (Repeat) isSegment() {}

// Modifiers are per-voice attributes parsed from directive comments.
// Empty string means unset. Gain and Pan may themselves be bracket
// patterns like "<0 .5 1>".
type Modifiers struct {
	PunchcardColor string
	Gain           string
	Pan            string
}

// Voice is one independent stream of bars within a staff.
type Voice struct {
	Segments  []Segment
	Modifiers Modifiers
}

// NBars counts the bars of the voice with repeats unfolded: a literal bar
// counts once, a Repeat contributes len(Bars) * Count.
func (v Voice) NBars() int {
	n := 0
	for _, seg := range v.Segments {
		switch s := seg.(type) {
		case Bar:
			n++
		case Repeat:
			n += len(s.Bars) * s.Count
		}
	}
	return n
}

// StaffKind selects the staff variant.
type StaffKind int

const (
	Pitched StaffKind = iota
	Drums
)

// Staff is a named line of music. A pitched staff has exactly one voice;
// a drum staff has one or more simultaneous voices, order preserved.
type Staff struct {
	Kind   StaffKind
	Voices []Voice
}

// NewPitched wraps a single voice in a pitched staff.
func NewPitched(v Voice) Staff {
	return Staff{Kind: Pitched, Voices: []Voice{v}}
}

// NewDrums wraps simultaneous drum voices in a drum staff.
func NewDrums(voices []Voice) Staff {
	return Staff{Kind: Drums, Voices: voices}
}

// Tempo is a \tempo marking: beat unit denominator and beats per minute.
type Tempo struct {
	BeatUnit int
	BPM      int
}

// Document is the fully resolved score: no variable references and no
// unfold-style repeats remain.
type Document struct {
	Staves []Staff
	Tempo  Tempo
}
