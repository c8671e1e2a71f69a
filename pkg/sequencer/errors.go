package sequencer

import (
	"fmt"
	"strings"
)

// PatternNotFoundError reports a sequence referencing a library pattern
// name that no configured library root provides.
type PatternNotFoundError struct {
	Name  string
	Roots []string
}

func (e *PatternNotFoundError) Error() string {
	if len(e.Roots) == 0 {
		return fmt.Sprintf("pattern %q not found", e.Name)
	}
	return fmt.Sprintf("pattern %q not found in libraries: %s", e.Name, strings.Join(e.Roots, ", "))
}

// EmptyVoicesError reports a referenced pattern that declares no voices.
type EmptyVoicesError struct {
	Name string
}

func (e *EmptyVoicesError) Error() string {
	return fmt.Sprintf("pattern %q declares no voices", e.Name)
}
