package lily

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingTempo is returned when a document contains no \tempo directive.
// The tempo is required because generated patterns derive their playback
// rate from it.
var ErrMissingTempo = errors.New("missing tempo: input must include a \\tempo directive (e.g. \\tempo 4 = 120)")

// LexError reports unterminated nesting or a malformed token.
type LexError struct {
	Line, Col int
	Msg       string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// ParseError reports malformed staff, voice or repeat syntax with the
// source position of the offending token.
type ParseError struct {
	Line, Col int
	Msg       string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// IncludeCycleError reports a circular \include chain. Path holds the
// identities along the cycle, ending with the repeated one.
type IncludeCycleError struct {
	Path []string
}

func (e *IncludeCycleError) Error() string {
	return fmt.Sprintf("circular include: %s", strings.Join(e.Path, " -> "))
}

// DefinitionCycleError reports a variable that transitively references
// itself.
type DefinitionCycleError struct {
	Path []string
}

func (e *DefinitionCycleError) Error() string {
	return fmt.Sprintf("circular variable definition: %s", strings.Join(e.Path, " -> "))
}
