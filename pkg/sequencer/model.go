// Package sequencer composes reusable named pattern fragments from a
// library into full compositions, emitting both LilyPond source and
// Strudel pattern output.
package sequencer

// Pattern is a reusable multi-voice bar fragment loaded from a library.
// Each voice holds the LilyPond drum content of one bar.
type Pattern struct {
	Description string   `yaml:"description"`
	Voices      []string `yaml:"voices"`
}

// Item is one element of a sequence: a single bar, a repeated bar, a group
// of items, or a repeated group. Exactly one of Pattern or Group is set;
// Count above 1 turns the item into its repeated form.
type Item struct {
	Pattern string `yaml:"pattern,omitempty"`
	Count   int    `yaml:"count,omitempty"`
	Group   []Item `yaml:"group,omitempty"`
}

// Times is the effective repeat count (a zero Count means once).
func (it Item) Times() int {
	if it.Count < 1 {
		return 1
	}
	return it.Count
}

// Single references one library pattern played once.
func Single(name string) Item {
	return Item{Pattern: name}
}

// RepeatBar references one library pattern played count times.
func RepeatBar(count int, name string) Item {
	return Item{Pattern: name, Count: count}
}

// Group composes items in order.
func Group(items ...Item) Item {
	return Item{Group: items}
}

// RepeatGroup composes items in order and repeats the whole group as a
// unit, rendered as a native repeat construct rather than duplicated bars.
func RepeatGroup(count int, items ...Item) Item {
	return Item{Group: items, Count: count}
}

// SequenceItem is a described element of a sequence. The description is
// carried into the LilyPond output as a directive comment.
type SequenceItem struct {
	Item        Item   `yaml:"item"`
	Description string `yaml:"description"`
}

// Sequence is an ordered list of described items plus a tempo in BPM.
type Sequence struct {
	Tempo    int            `yaml:"tempo"`
	Sequence []SequenceItem `yaml:"sequence"`
}
