package sequencer

// Run is a flattened pattern reference: one library bar played Count times.
type Run struct {
	Pattern string
	Count   int
}

// Expansion is the flat form of an item: Runs in order, with the whole
// list repeated Repeat times as a unit when the item is a repeated group.
// The outer repeat is kept as a marker so generation can emit a native
// repeat construct instead of duplicating bars.
type Expansion struct {
	Runs   []Run
	Repeat int
}

// Expand flattens an item recursively. Nested repeated groups inside a
// larger group fold into literal runs; only the outermost group repeat
// survives as a marker.
func Expand(it Item) Expansion {
	if it.Group == nil {
		return Expansion{Runs: []Run{{Pattern: it.Pattern, Count: it.Times()}}, Repeat: 1}
	}
	var runs []Run
	for _, child := range it.Group {
		sub := Expand(child)
		for i := 0; i < sub.Repeat; i++ {
			runs = append(runs, sub.Runs...)
		}
	}
	return Expansion{Runs: runs, Repeat: it.Times()}
}

// NBars counts the bars an item occupies with repeats unfolded.
func NBars(it Item) int {
	exp := Expand(it)
	n := 0
	for _, r := range exp.Runs {
		n += r.Count
	}
	return n * exp.Repeat
}

// firstPattern returns the first pattern name referenced by the items, or
// "" when the sequence is empty.
func firstPattern(items []Item) string {
	for _, it := range items {
		if it.Group == nil {
			return it.Pattern
		}
		if name := firstPattern(it.Group); name != "" {
			return name
		}
	}
	return ""
}
