package converter

import (
	"bytes"
	"errors"
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/strudelkit/lily2strudel/pkg/score"
)

const ticksPerQuarter = 480

// General MIDI percussion notes, keyed by LilyPond drum name.
var gmDrumNotes = map[string]uint8{
	"bd":    36,
	"sn":    38,
	"ss":    37,
	"hh":    42,
	"hhc":   42,
	"hho":   46,
	"hhp":   44,
	"cymc":  49,
	"cymr":  51,
	"cyms":  55,
	"tomh":  50,
	"tommh": 48,
	"tomm":  47,
	"tomml": 45,
	"toml":  43,
	"tomfh": 41,
	"tomfl": 41,
	"cb":    56,
	"cp":    39,
	"cl":    39,
	"hc":    39,
	"tamb":  54,
	"cab":   69,
	"mar":   70,
	"gui":   74,
}

// durationTicks converts a duration denominator to ticks (4 = one quarter).
func durationTicks(duration int) uint32 {
	if duration <= 0 {
		return ticksPerQuarter
	}
	return uint32(4 * ticksPerQuarter / duration)
}

// GenerateMIDI renders a document as a standard MIDI file: one track per
// voice, pitched voices on channel 0 and drum voices on the General MIDI
// percussion channel, with repeats unrolled into literal bars.
func GenerateMIDI(doc *score.Document) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("nil document")
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	first := true
	for _, staff := range doc.Staves {
		channel := uint8(0)
		if staff.Kind == score.Drums {
			channel = 9
		}
		for _, voice := range staff.Voices {
			track := voiceTrack(voice, channel, first, doc.Tempo)
			first = false
			if err := s.Add(track); err != nil {
				return nil, fmt.Errorf("failed to add track: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}

func voiceTrack(voice score.Voice, channel uint8, withMeta bool, tempo score.Tempo) smf.Track {
	var track smf.Track

	if withMeta {
		bpm := tempo.BPM
		if bpm <= 0 {
			bpm = 120
		}
		microsecondsPerBeat := uint32(60000000 / bpm)
		track.Add(0, smf.Message([]byte{
			0xFF, 0x51, 0x03,
			byte(microsecondsPerBeat >> 16),
			byte(microsecondsPerBeat >> 8),
			byte(microsecondsPerBeat),
		}))
		// 4/4 time signature
		track.Add(0, smf.Message([]byte{0xFF, 0x58, 0x04, 0x04, 0x02, 0x18, 0x08}))
	}

	const velocity = 100
	var cur, last uint32
	add := func(at uint32, msg smf.Message) {
		track.Add(at-last, msg)
		last = at
	}

	for _, bar := range unrollBars(voice.Segments) {
		for _, ev := range bar.Events {
			switch e := ev.(type) {
			case score.Note:
				d := durationTicks(e.Duration)
				add(cur, smf.Message(midi.NoteOn(channel, uint8(e.MIDI), velocity)))
				add(cur+d, smf.Message(midi.NoteOff(channel, uint8(e.MIDI))))
				cur += d
			case score.Chord:
				d := durationTicks(e.Duration)
				for _, n := range e.Notes {
					add(cur, smf.Message(midi.NoteOn(channel, uint8(n.MIDI), velocity)))
				}
				for _, n := range e.Notes {
					add(cur+d, smf.Message(midi.NoteOff(channel, uint8(n.MIDI))))
				}
				cur += d
			case score.Rest:
				cur += durationTicks(e.Duration)
			case score.DrumHit:
				d := durationTicks(e.Duration)
				if note, ok := gmDrumNotes[e.Name]; ok {
					add(cur, smf.Message(midi.NoteOn(channel, note, velocity)))
					add(cur+d, smf.Message(midi.NoteOff(channel, note)))
				}
				cur += d
			}
		}
	}

	track.Close(cur - last)
	return track
}

// unrollBars flattens segments into literal bars, expanding repeats.
func unrollBars(segments []score.Segment) []score.Bar {
	var bars []score.Bar
	for _, seg := range segments {
		switch s := seg.(type) {
		case score.Bar:
			bars = append(bars, s)
		case score.Repeat:
			for i := 0; i < s.Count; i++ {
				bars = append(bars, s.Bars...)
			}
		}
	}
	return bars
}
