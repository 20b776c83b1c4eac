package circuit

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// ComponentType enumerates the closed set of declarable component kinds.
// Each carries a fixed terminal schema; unknown type names are rejected at
// declaration time and unknown terminal names at every reference.
type ComponentType int

const (
	TypeInvalid ComponentType = iota
	TypeResistor
	TypeCapacitor
	TypeInductor
	TypeNmos
	TypePmos
	TypeVoltage
	TypeCurrent
	TypeOpamp
)

var typeNames = map[ComponentType]string{
	TypeResistor:  "R",
	TypeCapacitor: "C",
	TypeInductor:  "L",
	TypeNmos:      "Nmos",
	TypePmos:      "Pmos",
	TypeVoltage:   "V",
	TypeCurrent:   "I",
	TypeOpamp:     "Opamp",
}

var typesByName = func() map[string]ComponentType {
	m := make(map[string]ComponentType, len(typeNames))
	for t, n := range typeNames {
		m[n] = t
	}
	return m
}()

// ComponentTypeFromName resolves a declaration type name, reporting whether
// it names a known type.
func ComponentTypeFromName(name string) (ComponentType, bool) {
	t, ok := typesByName[name]
	return t, ok
}

func (t ComponentType) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("ComponentType(%d)", int(t))
}

// Arity returns the number of terminals in the type's schema.
func (t ComponentType) Arity() int {
	switch t {
	case TypeNmos, TypePmos:
		return 4
	case TypeOpamp:
		return 3
	case TypeInvalid:
		return 0
	default:
		return 2
	}
}

// Terminals returns the named terminal schema in conventional order.
// Two-terminal passives have positional terminals only, so it returns nil
// for them.
func (t ComponentType) Terminals() []string {
	switch t {
	case TypeNmos, TypePmos:
		return []string{"G", "D", "S", "B"}
	case TypeVoltage, TypeCurrent:
		return []string{"pos", "neg"}
	case TypeOpamp:
		return []string{"IN+", "IN-", "OUT"}
	default:
		return nil
	}
}

// HasTerminal reports whether name is valid for the type's schema.
// Passives accept no named terminals.
func (t ComponentType) HasTerminal(name string) bool {
	for _, term := range t.Terminals() {
		if term == name {
			return true
		}
	}
	return false
}

// IsSource reports whether the type is an independent source and therefore
// accepts a polarity marker in series position.
func (t ComponentType) IsSource() bool {
	return t == TypeVoltage || t == TypeCurrent
}

// MultiTerminal reports whether the type is bound through terminal blocks
// rather than series placement.
func (t ComponentType) MultiTerminal() bool {
	return t == TypeNmos || t == TypePmos || t == TypeOpamp
}

// SymbolInfo records one declared component instance.
type SymbolInfo struct {
	Name string
	Type ComponentType
	Pos  lexer.Position
}

// SymbolTable tracks declared instances in declaration order and enforces
// declare-before-use for every reference the parser encounters.
type SymbolTable struct {
	instances map[string]*SymbolInfo
	order     []string
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{instances: make(map[string]*SymbolInfo)}
}

// Declare registers an instance. It fails with a DeclarationError when the
// type name is unrecognized or the instance name was already declared.
func (st *SymbolTable) Declare(typeName, name string, pos lexer.Position) error {
	t, ok := ComponentTypeFromName(typeName)
	if !ok {
		return &DeclarationError{Pos: pos, Reason: ReasonUnknownType, Detail: fmt.Sprintf("%q for instance %q", typeName, name)}
	}
	if prev, exists := st.instances[name]; exists {
		return &DeclarationError{
			Pos:    pos,
			Reason: ReasonDuplicateInstance,
			Detail: fmt.Sprintf("%q previously declared at line %d", name, prev.Pos.Line),
		}
	}
	st.instances[name] = &SymbolInfo{Name: name, Type: t, Pos: pos}
	st.order = append(st.order, name)
	return nil
}

// Lookup resolves an instance name.
func (st *SymbolTable) Lookup(name string) (*SymbolInfo, bool) {
	info, ok := st.instances[name]
	return info, ok
}

// Names returns instance names in declaration order.
func (st *SymbolTable) Names() []string {
	out := make([]string, len(st.order))
	copy(out, st.order)
	return out
}
