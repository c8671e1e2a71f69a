package converter

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/strudelkit/lily2strudel/pkg/lily"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
	}{
		{"song.ly", FormatLilyPond},
		{"defs.ily", FormatLilyPond},
		{"set.yml", FormatSequence},
		{"set.yaml", FormatSequence},
		{"out.js", FormatScript},
		{"page.html", FormatHTML},
		{"track.mid", FormatMIDI},
		{"track.midi", FormatMIDI},
		{"mystery.bin", FormatUnknown},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.filename); got != tt.want {
			t.Errorf("DetectFormat(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestDetectFormatFromContent(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Format
	}{
		{"midi header", "MThd\x00\x00\x00\x06", FormatMIDI},
		{"lilypond score", "\\score { { c4 } }", FormatLilyPond},
		{"lilypond tempo", "\\tempo 4 = 120\n{ c4 }", FormatLilyPond},
		{"html page", "<!DOCTYPE html><html></html>", FormatHTML},
		{"sequence yaml", "tempo: 120\nsequence:\n  - item:\n      pattern: beat\n", FormatSequence},
		{"garbage", "hello world", FormatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormatFromContent([]byte(tt.data)); got != tt.want {
				t.Errorf("DetectFormatFromContent() = %v, want %v", got, tt.want)
			}
		})
	}
}

const melodySrc = "\\tempo 4 = 60\n{ c4 d4 e4 | }"

func TestLyToScript(t *testing.T) {
	conv := New()
	out, err := conv.LyToScript([]byte(melodySrc), ".")
	if err != nil {
		t.Fatalf("LyToScript() error = %v", err)
	}
	script := string(out)
	for _, want := range []string{"const tempo = 60;", "$: note(`", ".cpm(tempo/4/1)"} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q:\n%s", want, script)
		}
	}
}

func TestLyToScriptResolvesIncludes(t *testing.T) {
	dir := t.TempDir()
	defs := "melody = { c4 d4 | }\n"
	if err := os.WriteFile(filepath.Join(dir, "defs.ly"), []byte(defs), 0644); err != nil {
		t.Fatal(err)
	}
	src := "\\include \"defs.ly\"\n\\tempo 4 = 120\n\\score { << \\new Staff { \\melody } >> }"

	conv := New()
	out, err := conv.LyToScript([]byte(src), dir)
	if err != nil {
		t.Fatalf("LyToScript() error = %v", err)
	}
	if !strings.Contains(string(out), "[c3 d3]") {
		t.Errorf("script missing included melody:\n%s", out)
	}
}

func TestLyToHTML(t *testing.T) {
	conv := New()
	conv.SetTitle("My Tune")
	out, err := conv.LyToHTML([]byte(melodySrc), ".")
	if err != nil {
		t.Fatalf("LyToHTML() error = %v", err)
	}
	page := string(out)
	for _, want := range []string{"<!DOCTYPE html>", "My Tune", "strudel"} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestLyToMIDI(t *testing.T) {
	conv := New()
	out, err := conv.LyToMIDI([]byte(melodySrc), ".")
	if err != nil {
		t.Fatalf("LyToMIDI() error = %v", err)
	}
	if len(out) < 4 || string(out[:4]) != "MThd" {
		t.Errorf("output does not start with MThd: % x", out[:min(len(out), 8)])
	}
}

func TestLyToMIDIDrums(t *testing.T) {
	src := `
\tempo 4 = 120
\score {
  <<
    \new DrumStaff {
      <<
        \new DrumVoice { bd4 sn4 bd4 sn4 | }
      >>
    }
  >>
}`
	conv := New()
	out, err := conv.LyToMIDI([]byte(src), ".")
	if err != nil {
		t.Fatalf("LyToMIDI() error = %v", err)
	}
	if string(out[:4]) != "MThd" {
		t.Error("output is not a MIDI file")
	}
}

func TestLyParseError(t *testing.T) {
	conv := New()
	_, err := conv.LyToScript([]byte("{ c4 }"), ".")
	if err == nil {
		t.Fatal("expected error for missing tempo, got nil")
	}
	if !errors.Is(err, lily.ErrMissingTempo) {
		t.Errorf("error = %v, want ErrMissingTempo", err)
	}
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "song.ly")
	if err := os.WriteFile(input, []byte(melodySrc), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("ly to js", func(t *testing.T) {
		output := filepath.Join(dir, "song.js")
		conv := New()
		if err := conv.ConvertFile(input, output); err != nil {
			t.Fatalf("ConvertFile() error = %v", err)
		}
		data, err := os.ReadFile(output)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "const tempo = 60;") {
			t.Errorf("output missing tempo constant:\n%s", data)
		}
	})

	t.Run("unknown output format", func(t *testing.T) {
		conv := New()
		if err := conv.ConvertFile(input, filepath.Join(dir, "song.xyz")); err == nil {
			t.Fatal("expected error for unknown output format, got nil")
		}
	})
}

func TestConvertFileSequence(t *testing.T) {
	dir := t.TempDir()
	libDir := filepath.Join(dir, "patterns")
	if err := os.Mkdir(libDir, 0755); err != nil {
		t.Fatal(err)
	}
	pattern := "description: basic beat\nvoices:\n  - bd4 r4 sn4 r4\n"
	if err := os.WriteFile(filepath.Join(libDir, "beat.yml"), []byte(pattern), 0644); err != nil {
		t.Fatal(err)
	}
	seq := "tempo: 100\nsequence:\n  - description: intro\n    item:\n      pattern: beat\n"
	input := filepath.Join(dir, "set.yml")
	if err := os.WriteFile(input, []byte(seq), 0644); err != nil {
		t.Fatal(err)
	}

	conv := New()
	conv.SetLibraries([]string{libDir})

	output := filepath.Join(dir, "set.ly")
	if err := conv.ConvertFile(input, output); err != nil {
		t.Fatalf("ConvertFile() error = %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"\\tempo 4 = 100", "bd4 r4 sn4 r4", "\\new DrumStaff"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("output missing %q:\n%s", want, data)
		}
	}
}

func TestGenerateMIDINilDocument(t *testing.T) {
	if _, err := GenerateMIDI(nil); err == nil {
		t.Fatal("expected error for nil document, got nil")
	}
}
