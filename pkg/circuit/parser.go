package circuit

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/participle/v2/lexer"
)

// Program is the result of parsing one source file. Issues holds the
// accumulated DeclarationErrors and ConnectionErrors; grammar violations
// abort the parse instead and are returned as the error.
type Program struct {
	Statements []Statement
	Symbols    *SymbolTable
	Issues     []error
}

// Parser is a recursive-descent parser over the circuijt token stream.
// Statements are newline delimited; the parser validates references
// against the symbol table as it goes, accumulating non-fatal issues so a
// single run reports as much as possible.
type Parser struct {
	toks   []lexer.Token
	pos    int
	syms   *SymbolTable
	issues []error
}

// ParseString parses a complete source text.
func ParseString(filename, input string) (*Program, error) {
	toks, err := Tokenize(filename, input)
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks, syms: NewSymbolTable()}
	return p.parseProgram()
}

// Parse parses source text from a reader.
func Parse(filename string, r io.Reader) (*Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("circuit: reading %s: %w", filename, err)
	}
	return ParseString(filename, string(data))
}

// ParseFile parses a .circuijt file from disk.
func ParseFile(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("circuit: %w", err)
	}
	return ParseString(path, string(data))
}

// ---- token cursor ----

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		pos := lexer.Position{}
		if n := len(p.toks); n > 0 {
			pos = p.toks[n-1].Pos
		}
		return lexer.Token{Type: lexer.EOF, Pos: pos}
	}
	return p.toks[p.pos]
}

func (p *Parser) peek() lexer.Token {
	save := p.pos
	p.pos++
	t := p.cur()
	p.pos = save
	return t
}

func (p *Parser) at(name string) bool {
	return p.cur().Type == tok(name)
}

func (p *Parser) eat(name string) (lexer.Token, bool) {
	if p.at(name) {
		t := p.cur()
		p.pos++
		return t, true
	}
	return lexer.Token{}, false
}

func (p *Parser) expect(name, what string) (lexer.Token, error) {
	if t, ok := p.eat(name); ok {
		return t, nil
	}
	return lexer.Token{}, p.unexpected(what)
}

func (p *Parser) unexpected(what string) error {
	t := p.cur()
	switch t.Type {
	case tok("RParen"), tok("RBrace"), tok("RBracket"):
		return &ParseError{Pos: t.Pos, Reason: ReasonUnbalanced, Detail: fmt.Sprintf("unexpected %q", t.Value)}
	}
	got := fmt.Sprintf("%q", t.Value)
	if t.EOF() {
		got = "end of input"
	}
	return &ParseError{Pos: t.Pos, Reason: "unexpected token", Detail: fmt.Sprintf("expected %s, got %s", what, got)}
}

func (p *Parser) atEOL() bool {
	return p.at("Newline") || p.cur().EOF()
}

func (p *Parser) addIssue(err error) {
	p.issues = append(p.issues, err)
}

// ---- grammar ----

func (p *Parser) parseProgram() (*Program, error) {
	prog := &Program{Symbols: p.syms}
	for {
		for {
			if _, ok := p.eat("Newline"); !ok {
				break
			}
		}
		if p.cur().EOF() {
			break
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if !p.atEOL() {
			return nil, p.unexpected("end of statement")
		}
		prog.Statements = append(prog.Statements, stmt)
	}
	prog.Issues = p.issues
	return prog, nil
}

func (p *Parser) parseStatement() (Statement, error) {
	t := p.cur()
	switch t.Type {
	case tok("Ident"):
		switch p.peek().Type {
		case tok("Ident"):
			return p.parseDeclaration()
		case tok("LBrace"):
			return p.parseTerminalBlock()
		case tok("Series"), tok("Polarity"):
			return nil, &ParseError{Pos: t.Pos, Reason: ReasonChainStart, Detail: fmt.Sprintf("found %q", t.Value)}
		}
		return nil, p.unexpected("a declaration, terminal block, chain, or assignment")
	case tok("LParen"):
		ref, err := p.parseNodeRef()
		if err != nil {
			return nil, err
		}
		switch {
		case p.at("Colon"):
			return p.parseDirectAssignment(ref)
		case p.at("Series"):
			return p.parseSeriesChain(ref)
		}
		return nil, p.unexpected(`"--" or ":"`)
	}
	return nil, p.unexpected("a statement")
}

func (p *Parser) parseDeclaration() (Statement, error) {
	typeTok, _ := p.eat("Ident")
	nameTok, _ := p.eat("Ident")
	if !p.atEOL() {
		return nil, p.unexpected("end of declaration")
	}
	if err := p.syms.Declare(typeTok.Value, nameTok.Value, typeTok.Pos); err != nil {
		p.addIssue(err)
	}
	return &Declaration{Pos: typeTok.Pos, TypeName: typeTok.Value, Name: nameTok.Value}, nil
}

// parseNodeRef parses `(name)` or `(Instance.Terminal)` and validates
// terminal references against the symbol table.
func (p *Parser) parseNodeRef() (NodeRef, error) {
	open, err := p.expect("LParen", `"("`)
	if err != nil {
		return NodeRef{}, err
	}
	name, err := p.expect("Ident", "a node name")
	if err != nil {
		return NodeRef{}, err
	}
	ref := NodeRef{Pos: open.Pos, Node: name.Value}
	if _, ok := p.eat("Dot"); ok {
		term, _, err := p.parseTerminalName()
		if err != nil {
			return NodeRef{}, err
		}
		ref = NodeRef{Pos: open.Pos, Instance: name.Value, Terminal: term}
		p.checkTerminalRef(ref)
	}
	if _, err := p.expect("RParen", `")"`); err != nil {
		return NodeRef{}, err
	}
	return ref, nil
}

// parseTerminalName reads a terminal identifier, absorbing a trailing
// sign so the opamp terminals IN+ and IN- stay one name.
func (p *Parser) parseTerminalName() (string, lexer.Position, error) {
	t, err := p.expect("Ident", "a terminal name")
	if err != nil {
		return "", lexer.Position{}, err
	}
	name := t.Value
	if _, ok := p.eat("Plus"); ok {
		name += "+"
	} else if _, ok := p.eat("Minus"); ok {
		name += "-"
	}
	return name, t.Pos, nil
}

func (p *Parser) checkTerminalRef(ref NodeRef) {
	info, ok := p.syms.Lookup(ref.Instance)
	if !ok {
		p.addIssue(&DeclarationError{Pos: ref.Pos, Reason: ReasonUndeclaredInstance, Detail: fmt.Sprintf("%q", ref.Instance)})
		return
	}
	if !info.Type.HasTerminal(ref.Terminal) {
		p.addIssue(&ConnectionError{
			Pos:    ref.Pos,
			Reason: ReasonInvalidTerminal,
			Detail: fmt.Sprintf("%q has no terminal %q (type %s)", ref.Instance, ref.Terminal, info.Type),
		})
	}
}

func (p *Parser) checkInstanceRef(name string, pos lexer.Position) {
	if _, ok := p.syms.Lookup(name); !ok {
		p.addIssue(&DeclarationError{Pos: pos, Reason: ReasonUndeclaredInstance, Detail: fmt.Sprintf("%q", name)})
	}
}

func (p *Parser) parseDirectAssignment(from NodeRef) (Statement, error) {
	if _, err := p.expect("Colon", `":"`); err != nil {
		return nil, err
	}
	to, err := p.parseNodeRef()
	if err != nil {
		return nil, err
	}
	return &DirectAssignment{Pos: from.Pos, From: from, To: to}, nil
}

func (p *Parser) parseTerminalBlock() (Statement, error) {
	nameTok, _ := p.eat("Ident")
	p.checkInstanceRef(nameTok.Value, nameTok.Pos)
	info, declared := p.syms.Lookup(nameTok.Value)

	if _, err := p.expect("LBrace", `"{"`); err != nil {
		return nil, err
	}
	block := &TerminalBlock{Pos: nameTok.Pos, Instance: nameTok.Value}
	for {
		if p.at("Newline") {
			return nil, &ParseError{Pos: p.cur().Pos, Reason: ReasonSingleLine}
		}
		if _, ok := p.eat("RBrace"); ok {
			break
		}
		term, termPos, err := p.parseTerminalName()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect("Colon", `":"`); err != nil {
			return nil, err
		}
		target, err := p.parseNodeRef()
		if err != nil {
			return nil, err
		}
		if declared && !info.Type.HasTerminal(term) {
			p.addIssue(&ConnectionError{
				Pos:    termPos,
				Reason: ReasonInvalidTerminal,
				Detail: fmt.Sprintf("%q has no terminal %q (type %s)", nameTok.Value, term, info.Type),
			})
		}
		block.Assigns = append(block.Assigns, TerminalAssign{Pos: termPos, Terminal: term, Target: target})
		if _, ok := p.eat("Comma"); ok {
			continue
		}
	}
	return block, nil
}

func (p *Parser) parseSeriesChain(first NodeRef) (Statement, error) {
	chain := &SeriesChain{Pos: first.Pos, Elements: []ChainElement{&NodeElem{Ref: first}}}
	for {
		if _, ok := p.eat("Series"); !ok {
			break
		}
		elem, err := p.parseChainElement()
		if err != nil {
			return nil, err
		}
		chain.Elements = append(chain.Elements, elem)
	}
	if err := checkCurrentLabels(chain); err != nil {
		return nil, err
	}
	return chain, nil
}

func (p *Parser) parseChainElement() (ChainElement, error) {
	t := p.cur()
	switch t.Type {
	case tok("LParen"):
		ref, err := p.parseNodeRef()
		if err != nil {
			return nil, err
		}
		return &NodeElem{Ref: ref}, nil
	case tok("LBracket"):
		return p.parseParallelBlock()
	case tok("ArrowR"), tok("ArrowL"):
		p.pos++
		name, err := p.expect("Ident", "a current label")
		if err != nil {
			return nil, err
		}
		dir := DirForward
		if t.Type == tok("ArrowL") {
			dir = DirReverse
		}
		return &CurrentLabel{Pos: t.Pos, Direction: dir, Name: name.Value}, nil
	case tok("Ident"):
		return p.parseChainComponent()
	}
	return nil, p.unexpected("a node, instance, parallel block, or current label")
}

func (p *Parser) parseChainComponent() (ChainElement, error) {
	nameTok, _ := p.eat("Ident")
	p.checkInstanceRef(nameTok.Value, nameTok.Pos)
	elem := &ComponentElem{Pos: nameTok.Pos, Name: nameTok.Value}
	if mark, ok := p.eat("Polarity"); ok {
		elem.Polarity = polarityOf(mark.Value)
		if info, declared := p.syms.Lookup(nameTok.Value); declared && !info.Type.IsSource() {
			p.addIssue(&ConnectionError{
				Pos:    mark.Pos,
				Reason: ReasonInvalidTerminal,
				Detail: fmt.Sprintf("polarity marker on non-source %q (type %s)", nameTok.Value, info.Type),
			})
		}
	}
	return elem, nil
}

func (p *Parser) parseParallelBlock() (ChainElement, error) {
	open, _ := p.eat("LBracket")
	block := &ParallelBlock{Pos: open.Pos}
	for {
		if p.at("Newline") || p.cur().EOF() {
			return nil, &ParseError{Pos: open.Pos, Reason: ReasonUnbalanced, Detail: `"[" not closed before end of line`}
		}
		elem, err := p.parseParallelElement()
		if err != nil {
			return nil, err
		}
		block.Elements = append(block.Elements, elem)
		if _, ok := p.eat("Parallel"); ok {
			continue
		}
		if _, err := p.expect("RBracket", `"||" or "]"`); err != nil {
			return nil, err
		}
		break
	}
	return block, nil
}

func (p *Parser) parseParallelElement() (ParallelElement, error) {
	if minus, ok := p.eat("Minus"); ok {
		gain, err := p.expect("Ident", "a gain identifier")
		if err != nil {
			return nil, err
		}
		return p.parseControlledTail(minus.Pos, "-"+gain.Value)
	}
	nameTok, err := p.expect("Ident", "an instance or behavioral element")
	if err != nil {
		return nil, err
	}
	switch p.cur().Type {
	case tok("Star"):
		return p.parseControlledTail(nameTok.Pos, nameTok.Value)
	case tok("LParen"):
		dir, err := p.parseDirectionMarker()
		if err != nil {
			return nil, err
		}
		return &NoiseSource{Pos: nameTok.Pos, ID: nameTok.Value, Direction: dir}, nil
	case tok("Polarity"):
		mark, _ := p.eat("Polarity")
		p.checkInstanceRef(nameTok.Value, nameTok.Pos)
		return &ComponentElem{Pos: nameTok.Pos, Name: nameTok.Value, Polarity: polarityOf(mark.Value)}, nil
	}
	p.checkInstanceRef(nameTok.Value, nameTok.Pos)
	return &ComponentElem{Pos: nameTok.Pos, Name: nameTok.Value}, nil
}

func (p *Parser) parseControlledTail(pos lexer.Position, gain string) (ParallelElement, error) {
	if _, err := p.expect("Star", `"*"`); err != nil {
		return nil, err
	}
	control, err := p.expect("Ident", "a control label")
	if err != nil {
		return nil, err
	}
	dir, err := p.parseDirectionMarker()
	if err != nil {
		return nil, err
	}
	return &ControlledSource{Pos: pos, Gain: gain, Control: control.Value, Direction: dir}, nil
}

func (p *Parser) parseDirectionMarker() (Direction, error) {
	if _, err := p.expect("LParen", `"("`); err != nil {
		return DirForward, err
	}
	dir := DirForward
	if _, ok := p.eat("ArrowR"); !ok {
		if _, ok := p.eat("ArrowL"); !ok {
			return DirForward, p.unexpected(`"->" or "<-"`)
		}
		dir = DirReverse
	}
	if _, err := p.expect("RParen", `")"`); err != nil {
		return DirForward, err
	}
	return dir, nil
}

func polarityOf(lexeme string) Polarity {
	if lexeme == "(+-)" {
		return PolarityPlusMinus
	}
	return PolarityMinusPlus
}

// checkCurrentLabels rejects chains that end on a named-current
// annotation and chains with two annotations back to back.
func checkCurrentLabels(chain *SeriesChain) error {
	for i, elem := range chain.Elements {
		label, ok := elem.(*CurrentLabel)
		if !ok {
			continue
		}
		if i == len(chain.Elements)-1 {
			return &ParseError{Pos: label.Pos, Reason: ReasonDanglingCurrent, Detail: fmt.Sprintf("%s%s", label.Direction, label.Name)}
		}
		if _, ok := chain.Elements[i+1].(*CurrentLabel); ok {
			return &ParseError{Pos: label.Pos, Reason: ReasonDanglingCurrent, Detail: "adjacent current labels"}
		}
	}
	return nil
}
