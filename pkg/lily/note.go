package lily

import (
	"strings"

	"github.com/strudelkit/lily2strudel/pkg/score"
)

// Event resolution: a word token is classified as a rest, note or drum hit
// and combined with the carry-over duration state of the enclosing body.
// The carry-over rule: an event without an explicit duration inherits the
// most recent explicit one; the state starts at quarter (4) for each
// top-level body.

const defaultDuration = 4

// splitDuration separates the trailing digit run of a token from its head,
// ignoring dots and ties after the digits. Returns -1 when no explicit
// duration is present.
func splitDuration(tok string) (head string, dur int) {
	tok = strings.TrimRight(tok, ".~")
	i := len(tok)
	for i > 0 && tok[i-1] >= '0' && tok[i-1] <= '9' {
		i--
	}
	if i == len(tok) {
		return tok, -1
	}
	dur = 0
	for _, c := range tok[i:] {
		dur = dur*10 + int(c-'0')
	}
	return tok[:i], dur
}

// parseRestWord recognizes rest tokens: "r" with an optional duration.
func parseRestWord(tok string, curDur *int) (int, bool) {
	head, dur := splitDuration(tok)
	if head != "r" {
		return 0, false
	}
	if dur > 0 {
		*curDur = dur
	} else {
		dur = *curDur
	}
	return dur, true
}

// appendRest adds a rest to the bar, expanding rests longer than a quarter
// into quarter-rest events (a half rest becomes two quarter rests, a whole
// rest four) so bar grouping stays quarter-granular.
func appendRest(events []score.Event, dur int) []score.Event {
	if dur >= defaultDuration {
		return append(events, score.Rest{Duration: dur})
	}
	for i := 0; i < defaultDuration/dur; i++ {
		events = append(events, score.Rest{Duration: defaultDuration})
	}
	return events
}

// parsePitch reads letter, accidental suffix and net octave marks from the
// head of a note token. Reports ok=false for anything that is not a pitch.
func parsePitch(head string) (letter byte, acc score.Accidental, octave int, ok bool) {
	if head == "" {
		return 0, score.Natural, 0, false
	}
	letter = head[0]
	if letter < 'a' || letter > 'g' {
		return 0, score.Natural, 0, false
	}
	rest := head[1:]
	acc = score.Natural
	if strings.HasPrefix(rest, "is") {
		acc = score.Sharp
		rest = rest[2:]
	} else if strings.HasPrefix(rest, "es") {
		acc = score.Flat
		rest = rest[2:]
	}
	octave = score.ReferenceOctave
	for len(rest) > 0 {
		switch rest[0] {
		case '\'':
			octave++
		case ',':
			octave--
		default:
			return 0, score.Natural, 0, false
		}
		rest = rest[1:]
	}
	return letter, acc, octave, true
}

// parseNoteWord recognizes pitched note tokens like c'4, fis,,8 or e
// (duration carried over).
func parseNoteWord(tok string, curDur *int) (score.Note, bool) {
	head, dur := splitDuration(tok)
	letter, acc, octave, ok := parsePitch(head)
	if !ok {
		return score.Note{}, false
	}
	if dur > 0 {
		*curDur = dur
	} else {
		dur = *curDur
	}
	return score.NewNote(letter, acc, octave, dur), true
}

// parseChordNote parses a chord member: pitch only, duration supplied by
// the chord as a whole.
func parseChordNote(tok string) (byte, score.Accidental, int, bool) {
	head, dur := splitDuration(tok)
	if dur > 0 {
		// Chord members carry no individual durations.
		return 0, score.Natural, 0, false
	}
	return parsePitch(head)
}

// parseDrumWord recognizes drum hit tokens like bd4, sn or hh8. The name
// must be a known LilyPond drum name; other words inside a drum body are
// skipped by the caller.
func parseDrumWord(tok string, curDur *int) (score.DrumHit, bool) {
	head, dur := splitDuration(tok)
	if !score.IsDrumName(head) {
		return score.DrumHit{}, false
	}
	if dur > 0 {
		*curDur = dur
	} else {
		dur = *curDur
	}
	return score.DrumHit{Name: head, Duration: dur}, true
}
