package lily

import (
	"strconv"
	"strings"

	"github.com/strudelkit/lily2strudel/pkg/score"
)

// Parser is a recursive-descent parser for the supported LilyPond subset:
// variable definitions, \drummode blocks, \score blocks with simultaneous
// staves, drum voices, \repeat constructs, a required \tempo marking and
// directive comments. Includes must be expanded before parsing (see
// ExpandIncludes).
type Parser struct{}

// NewParser creates a Parser.
func NewParser() *Parser {
	return &Parser{}
}

type varKind int

const (
	varScalar varKind = iota
	varMusic
	varDrums
)

type variable struct {
	kind  varKind
	value int     // varScalar
	body  []Token // varMusic, varDrums: braced body without the braces
}

type parser struct {
	toks []Token
	pos  int
	vars map[string]*variable

	tempo    *score.Tempo
	tempoVar string // BPM given as a variable reference, resolved last
	tempoTok Token
}

// Parse builds the document model from notation text. The returned
// Document contains no unresolved variable references and no unfold-style
// repeats; a missing \tempo anywhere in the document is ErrMissingTempo.
func (p *Parser) Parse(src string) (*score.Document, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	ps := &parser{toks: toks, vars: map[string]*variable{}}
	return ps.parseDocument()
}

func (ps *parser) eof() bool { return ps.pos >= len(ps.toks) }

func (ps *parser) peek() Token { return ps.toks[ps.pos] }

func (ps *parser) peekAt(off int) (Token, bool) {
	if ps.pos+off >= len(ps.toks) {
		return Token{}, false
	}
	return ps.toks[ps.pos+off], true
}

func (ps *parser) next() Token {
	t := ps.toks[ps.pos]
	ps.pos++
	return t
}

func errAt(t Token, msg string) error {
	return &ParseError{Line: t.Line, Col: t.Col, Msg: msg}
}

// captureBraced consumes a balanced { ... } block starting at the current
// token and returns the tokens between the braces.
func (ps *parser) captureBraced() ([]Token, error) {
	open := ps.peek()
	if open.Kind != TokenOpenBrace {
		return nil, errAt(open, "expected '{'")
	}
	ps.next()
	depth := 1
	start := ps.pos
	for !ps.eof() {
		switch ps.peek().Kind {
		case TokenOpenBrace:
			depth++
		case TokenCloseBrace:
			depth--
			if depth == 0 {
				body := ps.toks[start:ps.pos]
				ps.next()
				return body, nil
			}
		}
		ps.next()
	}
	return nil, errAt(open, "unterminated block")
}

// skipOptionalBlock swallows an argument block following a command the
// parser does not interpret, e.g. \paper { ... } or \layout {}.
func (ps *parser) skipOptionalBlock() error {
	if ps.eof() {
		return nil
	}
	switch ps.peek().Kind {
	case TokenOpenBrace:
		_, err := ps.captureBraced()
		return err
	case TokenString, TokenNumber:
		ps.next()
	}
	return nil
}

func (ps *parser) parseDocument() (*score.Document, error) {
	var staves []score.Staff
	var bareBody []Token
	sawScore := false

	for !ps.eof() {
		tok := ps.peek()
		switch tok.Kind {
		case TokenWord:
			if eq, ok := ps.peekAt(1); ok && eq.Kind == TokenEquals {
				if err := ps.parseVariableDef(); err != nil {
					return nil, err
				}
				continue
			}
			ps.next()
		case TokenCommand:
			switch tok.Text {
			case "tempo":
				if err := ps.parseTempo(); err != nil {
					return nil, err
				}
			case "score":
				ps.next()
				s, err := ps.parseScore()
				if err != nil {
					return nil, err
				}
				staves = append(staves, s...)
				sawScore = true
			default:
				ps.next()
				if err := ps.skipOptionalBlock(); err != nil {
					return nil, err
				}
			}
		case TokenOpenBrace:
			body, err := ps.captureBraced()
			if err != nil {
				return nil, err
			}
			if bareBody == nil {
				bareBody = body
			}
		default:
			ps.next()
		}
	}

	tempo, err := ps.resolveTempo()
	if err != nil {
		return nil, err
	}

	// Fallback: a bare { ... } body outside any \score parses as a single
	// pitched staff.
	if !sawScore && bareBody != nil {
		voice, err := ps.parseMusicBody(bareBody)
		if err != nil {
			return nil, err
		}
		staves = append(staves, score.NewPitched(voice))
	}

	if len(staves) == 0 {
		return nil, &ParseError{Line: 1, Col: 1, Msg: "no music found: expected a \\score block or a { ... } body"}
	}
	return &score.Document{Staves: staves, Tempo: tempo}, nil
}

// parseVariableDef handles name = 120, name = { ... } and
// name = \drummode { ... }. Redefinition overwrites.
func (ps *parser) parseVariableDef() error {
	name := ps.next().Text
	ps.next() // '='
	if ps.eof() {
		return errAt(ps.toks[ps.pos-1], "unexpected end of input after '='")
	}
	tok := ps.peek()
	switch tok.Kind {
	case TokenNumber:
		ps.next()
		n, _ := strconv.Atoi(strings.TrimRight(tok.Text, ".~"))
		ps.vars[name] = &variable{kind: varScalar, value: n}
	case TokenOpenBrace:
		body, err := ps.captureBraced()
		if err != nil {
			return err
		}
		ps.vars[name] = &variable{kind: varMusic, body: body}
	case TokenCommand:
		if tok.Text != "drummode" {
			return errAt(tok, "unsupported variable value \\"+tok.Text)
		}
		ps.next()
		body, err := ps.captureBraced()
		if err != nil {
			return err
		}
		ps.vars[name] = &variable{kind: varDrums, body: body}
	default:
		return errAt(tok, "unsupported variable value")
	}
	return nil
}

func (ps *parser) parseTempo() error {
	tempoTok := ps.next() // \tempo
	if ps.eof() || ps.peek().Kind != TokenNumber {
		return errAt(tempoTok, "\\tempo expects a beat unit, e.g. \\tempo 4 = 120")
	}
	unitTok := ps.next()
	unit, _ := strconv.Atoi(strings.TrimRight(unitTok.Text, ".~"))
	if ps.eof() || ps.peek().Kind != TokenEquals {
		return errAt(unitTok, "\\tempo expects '=' after the beat unit")
	}
	ps.next()
	if ps.eof() {
		return errAt(unitTok, "\\tempo expects a BPM value")
	}
	val := ps.next()
	switch val.Kind {
	case TokenNumber:
		bpm, _ := strconv.Atoi(strings.TrimRight(val.Text, ".~"))
		ps.tempo = &score.Tempo{BeatUnit: unit, BPM: bpm}
	case TokenCommand:
		// BPM by reference to a scalar variable, resolved after the whole
		// document parses so the definition may follow the marking.
		ps.tempo = &score.Tempo{BeatUnit: unit}
		ps.tempoVar = val.Text
		ps.tempoTok = val
	default:
		return errAt(val, "\\tempo expects a number or a variable reference")
	}
	return nil
}

func (ps *parser) resolveTempo() (score.Tempo, error) {
	if ps.tempo == nil {
		return score.Tempo{}, ErrMissingTempo
	}
	t := *ps.tempo
	if ps.tempoVar != "" {
		v, ok := ps.vars[ps.tempoVar]
		if !ok || v.kind != varScalar {
			return score.Tempo{}, errAt(ps.tempoTok, "tempo variable \\"+ps.tempoVar+" is not a number")
		}
		t.BPM = v.value
	}
	return t, nil
}

// parseScore handles \score { << ... >> }: staff declarations, direct
// variable references and an optional inner \tempo.
func (ps *parser) parseScore() ([]score.Staff, error) {
	body, err := ps.captureBraced()
	if err != nil {
		return nil, err
	}
	inner := &parser{toks: body, vars: ps.vars}
	staves, err := inner.parseScoreBody()
	if err != nil {
		return nil, err
	}
	if inner.tempo != nil {
		ps.tempo = inner.tempo
		ps.tempoVar = inner.tempoVar
		ps.tempoTok = inner.tempoTok
	}
	return staves, nil
}

func (ps *parser) parseScoreBody() ([]score.Staff, error) {
	var staves []score.Staff
	for !ps.eof() {
		tok := ps.peek()
		switch {
		case tok.Kind == TokenOpenSim || tok.Kind == TokenCloseSim:
			ps.next()
		case tok.Kind == TokenCommand && tok.Text == "tempo":
			if err := ps.parseTempo(); err != nil {
				return nil, err
			}
		case tok.Kind == TokenCommand && tok.Text == "new":
			ps.next()
			s, err := ps.parseStaffDecl()
			if err != nil {
				return nil, err
			}
			staves = append(staves, s)
		case tok.Kind == TokenCommand:
			// Direct variable reference as a staff of its own.
			if v, ok := ps.vars[tok.Text]; ok && v.kind != varScalar {
				ps.next()
				s, err := ps.staffFromVariable(tok, v)
				if err != nil {
					return nil, err
				}
				staves = append(staves, s)
				continue
			}
			ps.next()
			if err := ps.skipOptionalBlock(); err != nil {
				return nil, err
			}
		default:
			ps.next()
		}
	}
	return staves, nil
}

func (ps *parser) staffFromVariable(tok Token, v *variable) (score.Staff, error) {
	if v.kind == varDrums {
		voice, err := ps.parseDrumBody(v.body)
		if err != nil {
			return score.Staff{}, err
		}
		return score.NewDrums([]score.Voice{voice}), nil
	}
	body, err := ps.expandVars(v.body, []string{tok.Text})
	if err != nil {
		return score.Staff{}, err
	}
	voice, err := ps.parseMusicBody(body)
	if err != nil {
		return score.Staff{}, err
	}
	return score.NewPitched(voice), nil
}

// parseStaffDecl handles \new <Type> { ... } inside a score.
func (ps *parser) parseStaffDecl() (score.Staff, error) {
	if ps.eof() {
		return score.Staff{}, &ParseError{Line: 0, Col: 0, Msg: "unexpected end of input after \\new"}
	}
	typeTok := ps.next()
	if typeTok.Kind != TokenWord {
		return score.Staff{}, errAt(typeTok, "expected a staff type after \\new")
	}
	switch typeTok.Text {
	case "Staff", "TabStaff":
		body, err := ps.captureBraced()
		if err != nil {
			return score.Staff{}, err
		}
		// A pitched staff whose body references a \drummode variable is a
		// single-voice drum staff in disguise.
		if ps.referencesDrumVar(body) {
			voice, err := ps.parseDrumBody(body)
			if err != nil {
				return score.Staff{}, err
			}
			return score.NewDrums([]score.Voice{voice}), nil
		}
		voice, err := ps.parseMusicBody(body)
		if err != nil {
			return score.Staff{}, err
		}
		return score.NewPitched(voice), nil
	case "DrumStaff":
		body, err := ps.captureBraced()
		if err != nil {
			return score.Staff{}, err
		}
		voices, err := ps.parseDrumVoices(body)
		if err != nil {
			return score.Staff{}, err
		}
		return score.NewDrums(voices), nil
	default:
		return score.Staff{}, errAt(typeTok, "unknown staff type "+typeTok.Text)
	}
}

func (ps *parser) referencesDrumVar(body []Token) bool {
	for _, t := range body {
		if t.Kind == TokenCommand {
			if v, ok := ps.vars[t.Text]; ok && v.kind == varDrums {
				return true
			}
		}
	}
	return false
}

// expandVars substitutes known music/drum variable references with their
// bodies, recursively. The resolving slice is the active resolution path;
// revisiting a name on it is a DefinitionCycleError.
func (ps *parser) expandVars(body []Token, resolving []string) ([]Token, error) {
	var out []Token
	for _, t := range body {
		if t.Kind == TokenCommand {
			if v, ok := ps.vars[t.Text]; ok && v.kind != varScalar {
				for _, name := range resolving {
					if name == t.Text {
						return nil, &DefinitionCycleError{Path: append(append([]string{}, resolving...), t.Text)}
					}
				}
				inner, err := ps.expandVars(v.body, append(resolving, t.Text))
				if err != nil {
					return nil, err
				}
				out = append(out, inner...)
				continue
			}
		}
		out = append(out, t)
	}
	return out, nil
}

// parseDrumVoices handles a DrumStaff body: either << \new DrumVoice { ... }
// ... >> blocks, direct \drummode variable references inside << >>, or the
// whole body as a single voice.
func (ps *parser) parseDrumVoices(body []Token) ([]score.Voice, error) {
	inner := &parser{toks: body, vars: ps.vars}
	var blockVoices []score.Voice
	var refVoices []score.Voice

	for !inner.eof() {
		tok := inner.peek()
		switch {
		case tok.Kind == TokenCommand && tok.Text == "new":
			inner.next()
			if inner.eof() {
				return nil, errAt(tok, "unexpected end of input after \\new")
			}
			typeTok := inner.next()
			if typeTok.Kind != TokenWord || typeTok.Text != "DrumVoice" {
				return nil, errAt(typeTok, "expected DrumVoice inside a DrumStaff")
			}
			voiceBody, err := inner.captureBraced()
			if err != nil {
				return nil, err
			}
			voice, err := ps.parseDrumBody(voiceBody)
			if err != nil {
				return nil, err
			}
			blockVoices = append(blockVoices, voice)
		case tok.Kind == TokenCommand:
			if v, ok := ps.vars[tok.Text]; ok && v.kind == varDrums {
				inner.next()
				voice, err := ps.parseDrumBody(v.body)
				if err != nil {
					return nil, err
				}
				refVoices = append(refVoices, voice)
				continue
			}
			inner.next()
		default:
			inner.next()
		}
	}

	// DrumVoice blocks win; direct \drummode variable references are the
	// fallback, and a bare body parses as a single voice.
	if len(blockVoices) > 0 {
		return blockVoices, nil
	}
	if len(refVoices) > 0 {
		return refVoices, nil
	}
	voice, err := ps.parseDrumBody(body)
	if err != nil {
		return nil, err
	}
	return []score.Voice{voice}, nil
}

// bodyParser accumulates bars from an event token stream, threading the
// carry-over duration as explicit state so parsing stays reentrant.
type bodyParser struct {
	ps       *parser
	segments []score.Segment
	bar      []score.Event
	curDur   int
	mods     score.Modifiers
}

func (bp *bodyParser) closeBar() {
	if len(bp.bar) > 0 {
		bp.segments = append(bp.segments, score.Bar{Events: bp.bar})
		bp.bar = nil
	}
}

func (bp *bodyParser) directive(payload string) {
	fields := strings.Fields(payload)
	switch {
	case len(fields) >= 2 && fields[1] == "punchcard":
		bp.mods.PunchcardColor = fields[0]
	case len(fields) >= 2 && fields[0] == "gain":
		bp.mods.Gain = strings.TrimSpace(strings.TrimPrefix(payload, "gain"))
	case len(fields) >= 2 && fields[0] == "pan":
		bp.mods.Pan = strings.TrimSpace(strings.TrimPrefix(payload, "pan"))
	default:
		// Unrecognized payloads (including plain comments) are ignored.
	}
}

// parseMusicBody turns a pitched body into a voice. Variable references
// are substituted before event scanning; carry-over starts at a quarter.
func (ps *parser) parseMusicBody(body []Token) (score.Voice, error) {
	expanded, err := ps.expandVars(body, nil)
	if err != nil {
		return score.Voice{}, err
	}
	bp := &bodyParser{ps: ps, curDur: defaultDuration}
	if err := bp.scanPitched(expanded); err != nil {
		return score.Voice{}, err
	}
	bp.closeBar()
	return score.Voice{Segments: bp.segments, Modifiers: bp.mods}, nil
}

func (bp *bodyParser) scanPitched(toks []Token) error {
	inner := &parser{toks: toks, vars: bp.ps.vars}
	for !inner.eof() {
		tok := inner.next()
		switch tok.Kind {
		case TokenBarLine:
			bp.closeBar()
		case TokenDirective:
			bp.directive(tok.Text)
		case TokenWord:
			if dur, ok := parseRestWord(tok.Text, &bp.curDur); ok {
				bp.bar = appendRest(bp.bar, dur)
			} else if note, ok := parseNoteWord(tok.Text, &bp.curDur); ok {
				bp.bar = append(bp.bar, note)
			}
			// Other words (lyrics, markup leftovers) are skipped.
		case TokenOpenAngle:
			chord, err := bp.parseChord(inner, tok)
			if err != nil {
				return err
			}
			bp.bar = append(bp.bar, chord)
		case TokenCommand:
			if tok.Text == "repeat" {
				if err := bp.parseRepeat(inner, tok, false); err != nil {
					return err
				}
			}
			// \voiceOne and friends carry no events.
		}
	}
	return nil
}

// parseChord reads < n n n > with an optional trailing duration token.
// Members share the chord duration, which participates in carry-over.
func (bp *bodyParser) parseChord(inner *parser, open Token) (score.Chord, error) {
	var notes []score.Note
	for {
		if inner.eof() {
			return score.Chord{}, errAt(open, "unterminated chord")
		}
		tok := inner.next()
		if tok.Kind == TokenCloseAngle {
			break
		}
		if tok.Kind != TokenWord {
			return score.Chord{}, errAt(tok, "unexpected token inside chord")
		}
		letter, acc, octave, ok := parseChordNote(tok.Text)
		if !ok {
			return score.Chord{}, errAt(tok, "invalid chord note "+tok.Text)
		}
		notes = append(notes, score.Note{Letter: letter, Accidental: acc, Octave: octave})
	}
	if len(notes) == 0 {
		return score.Chord{}, errAt(open, "empty chord")
	}

	dur := bp.curDur
	if !inner.eof() && inner.peek().Kind == TokenNumber {
		numTok := inner.next()
		n, _ := strconv.Atoi(strings.TrimRight(numTok.Text, ".~"))
		if n > 0 {
			dur = n
			bp.curDur = n
		}
	}
	for i := range notes {
		notes[i] = score.NewNote(notes[i].Letter, notes[i].Accidental, notes[i].Octave, dur)
	}
	return score.Chord{Notes: notes, Duration: dur}, nil
}

// parseRepeat handles \repeat <kind> <count> { ... }. The unfold and
// percent kinds resolve into literal repeated bars here; every other kind
// (volta foremost) is preserved as a Repeat marker for the generator.
func (bp *bodyParser) parseRepeat(inner *parser, repTok Token, drums bool) error {
	if inner.eof() || inner.peek().Kind != TokenWord {
		return errAt(repTok, "\\repeat expects a kind (unfold, percent, volta)")
	}
	kind := inner.next().Text
	if inner.eof() || inner.peek().Kind != TokenNumber {
		return errAt(repTok, "\\repeat expects a count")
	}
	countTok := inner.next()
	count, _ := strconv.Atoi(strings.TrimRight(countTok.Text, ".~"))
	if count < 1 {
		return errAt(countTok, "repeat count must be positive")
	}
	body, err := inner.captureBraced()
	if err != nil {
		return err
	}

	// The repeat body is bar-aligned: close any open bar first.
	bp.closeBar()

	sub := &bodyParser{ps: bp.ps, curDur: bp.curDur}
	if drums {
		err = sub.scanDrums(body)
	} else {
		err = sub.scanPitched(body)
	}
	if err != nil {
		return err
	}
	sub.closeBar()
	bp.curDur = sub.curDur
	mergeModifiers(&bp.mods, sub.mods)

	bars := flattenSegments(sub.segments)
	switch kind {
	case "unfold", "percent":
		for i := 0; i < count; i++ {
			for _, b := range bars {
				bp.segments = append(bp.segments, b)
			}
		}
	default:
		bp.segments = append(bp.segments, score.Repeat{Count: count, Bars: bars})
	}
	return nil
}

func mergeModifiers(dst *score.Modifiers, src score.Modifiers) {
	if dst.PunchcardColor == "" {
		dst.PunchcardColor = src.PunchcardColor
	}
	if dst.Gain == "" {
		dst.Gain = src.Gain
	}
	if dst.Pan == "" {
		dst.Pan = src.Pan
	}
}

// flattenSegments unrolls nested repeats into literal bars. Used for the
// body of a repeat, which the model stores as a plain bar list.
func flattenSegments(segs []score.Segment) []score.Bar {
	var bars []score.Bar
	for _, seg := range segs {
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

// parseDrumBody turns a \drummode body (or DrumVoice body) into one voice.
func (ps *parser) parseDrumBody(body []Token) (score.Voice, error) {
	expanded, err := ps.expandVars(body, nil)
	if err != nil {
		return score.Voice{}, err
	}
	bp := &bodyParser{ps: ps, curDur: defaultDuration}
	if err := bp.scanDrums(expanded); err != nil {
		return score.Voice{}, err
	}
	bp.closeBar()
	return score.Voice{Segments: bp.segments, Modifiers: bp.mods}, nil
}

func (bp *bodyParser) scanDrums(toks []Token) error {
	inner := &parser{toks: toks, vars: bp.ps.vars}
	for !inner.eof() {
		tok := inner.next()
		switch tok.Kind {
		case TokenBarLine:
			bp.closeBar()
		case TokenDirective:
			bp.directive(tok.Text)
		case TokenWord:
			if dur, ok := parseRestWord(tok.Text, &bp.curDur); ok {
				bp.bar = appendRest(bp.bar, dur)
			} else if hit, ok := parseDrumWord(tok.Text, &bp.curDur); ok {
				bp.bar = append(bp.bar, hit)
			}
			// Unknown drum words are skipped, never an error.
		case TokenCommand:
			if tok.Text == "repeat" {
				if err := bp.parseRepeat(inner, tok, true); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
