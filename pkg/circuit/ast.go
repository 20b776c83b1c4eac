package circuit

import "github.com/alecthomas/participle/v2/lexer"

// Direction records the orientation of a behavioral element or named
// current relative to the surrounding chain.
type Direction int

const (
	DirForward Direction = iota // ->
	DirReverse                  // <-
)

// Flip returns the opposite orientation.
func (d Direction) Flip() Direction {
	if d == DirForward {
		return DirReverse
	}
	return DirForward
}

func (d Direction) String() string {
	if d == DirReverse {
		return "<-"
	}
	return "->"
}

// Polarity records which pole of a source faces the preceding chain node.
type Polarity int

const (
	PolarityNone      Polarity = iota
	PolarityMinusPlus          // (-+): negative pole first
	PolarityPlusMinus          // (+-): positive pole first
)

func (p Polarity) String() string {
	switch p {
	case PolarityMinusPlus:
		return "-+"
	case PolarityPlusMinus:
		return "+-"
	}
	return ""
}

// NodeRef names an electrical point: either a plain node name or a
// device terminal written Instance.Terminal.
type NodeRef struct {
	Pos      lexer.Position
	Node     string // plain node name, empty for terminal refs
	Instance string
	Terminal string
}

// IsTerminal reports whether the reference names a device terminal.
func (r NodeRef) IsTerminal() bool { return r.Instance != "" }

func (r NodeRef) String() string {
	if r.IsTerminal() {
		return r.Instance + "." + r.Terminal
	}
	return r.Node
}

// Statement is one parsed logical unit of a circuijt source file.
type Statement interface {
	Position() lexer.Position
	statement()
}

// Declaration registers a typed component instance: `Type Name`.
type Declaration struct {
	Pos      lexer.Position
	TypeName string
	Name     string
}

// TerminalBlock binds named terminals of one instance in a single line:
// `Name { T1:(N1), T2:(N2) }`. Node for node it is equivalent to writing
// each entry as a standalone direct assignment.
type TerminalBlock struct {
	Pos      lexer.Position
	Instance string
	Assigns  []TerminalAssign
}

// TerminalAssign is one `Terminal:(Node)` entry of a TerminalBlock.
type TerminalAssign struct {
	Pos      lexer.Position
	Terminal string
	Target   NodeRef
}

// DirectAssignment is a zero-impedance tie `(A):(B)`.
type DirectAssignment struct {
	Pos  lexer.Position
	From NodeRef
	To   NodeRef
}

// SeriesChain is a `--`-joined sequence of elements. The first element is
// always a node or terminal reference.
type SeriesChain struct {
	Pos      lexer.Position
	Elements []ChainElement
}

func (s *Declaration) Position() lexer.Position      { return s.Pos }
func (s *TerminalBlock) Position() lexer.Position    { return s.Pos }
func (s *DirectAssignment) Position() lexer.Position { return s.Pos }
func (s *SeriesChain) Position() lexer.Position      { return s.Pos }

func (*Declaration) statement()      {}
func (*TerminalBlock) statement()    {}
func (*DirectAssignment) statement() {}
func (*SeriesChain) statement()      {}

// ChainElement is one position in a series chain.
type ChainElement interface {
	Position() lexer.Position
	chainElement()
}

// NodeElem is an explicit node reference in chain position.
type NodeElem struct {
	Ref NodeRef
}

// ComponentElem is a declared instance in chain or parallel position.
// Polarity is set only for sources carrying a marker.
type ComponentElem struct {
	Pos      lexer.Position
	Name     string
	Polarity Polarity
}

// CurrentLabel annotates the current through the next edge in the chain.
type CurrentLabel struct {
	Pos       lexer.Position
	Direction Direction
	Name      string
}

// ParallelBlock is a `[ e1 || e2 || ... ]` group in chain position. All
// elements share the chain's two surrounding nodes.
type ParallelBlock struct {
	Pos      lexer.Position
	Elements []ParallelElement
}

func (e *NodeElem) Position() lexer.Position      { return e.Ref.Pos }
func (e *ComponentElem) Position() lexer.Position { return e.Pos }
func (e *CurrentLabel) Position() lexer.Position  { return e.Pos }
func (e *ParallelBlock) Position() lexer.Position { return e.Pos }

func (*NodeElem) chainElement()      {}
func (*ComponentElem) chainElement() {}
func (*CurrentLabel) chainElement()  {}
func (*ParallelBlock) chainElement() {}

// ParallelElement is one member of a ParallelBlock: a declared instance or
// an inline behavioral element.
type ParallelElement interface {
	Position() lexer.Position
	parallelElement()
}

// ControlledSource is an inline transconductance element `gain*label (dir)`.
// The control label is opaque metadata; resolving it to a device quantity
// is the synthesis consumer's job.
type ControlledSource struct {
	Pos       lexer.Position
	Gain      string
	Control   string
	Direction Direction
}

// NoiseSource is an inline noise element `id (dir)`.
type NoiseSource struct {
	Pos       lexer.Position
	ID        string
	Direction Direction
}

func (e *ControlledSource) Position() lexer.Position { return e.Pos }
func (e *NoiseSource) Position() lexer.Position      { return e.Pos }

func (*ComponentElem) parallelElement()    {}
func (*ControlledSource) parallelElement() {}
func (*NoiseSource) parallelElement()      {}

// Expression returns the controlled source gain expression as written,
// e.g. "gm_1*VGS_1" or "-gm_1*VSG_1".
func (e *ControlledSource) Expression() string {
	return e.Gain + "*" + e.Control
}
