package circuit

import (
	"fmt"
	"strings"
)

// Format renders statements back to canonical circuijt text, one statement
// per line. Formatting a parse result and re-parsing it yields the same
// statements.
func Format(statements []Statement) string {
	var lines []string
	for _, stmt := range statements {
		lines = append(lines, formatStatement(stmt))
	}
	return strings.Join(lines, "\n")
}

func formatStatement(stmt Statement) string {
	switch s := stmt.(type) {
	case *Declaration:
		return fmt.Sprintf("%s %s", s.TypeName, s.Name)
	case *TerminalBlock:
		assigns := make([]string, len(s.Assigns))
		for i, a := range s.Assigns {
			assigns[i] = fmt.Sprintf("%s:(%s)", a.Terminal, a.Target)
		}
		return fmt.Sprintf("%s { %s }", s.Instance, strings.Join(assigns, ", "))
	case *DirectAssignment:
		return fmt.Sprintf("(%s):(%s)", s.From, s.To)
	case *SeriesChain:
		parts := make([]string, len(s.Elements))
		for i, el := range s.Elements {
			parts[i] = formatChainElement(el)
		}
		return strings.Join(parts, " -- ")
	}
	return ""
}

func formatChainElement(el ChainElement) string {
	switch e := el.(type) {
	case *NodeElem:
		return fmt.Sprintf("(%s)", e.Ref)
	case *ComponentElem:
		if e.Polarity != PolarityNone {
			return fmt.Sprintf("%s (%s)", e.Name, e.Polarity)
		}
		return e.Name
	case *CurrentLabel:
		return fmt.Sprintf("%s%s", e.Direction, e.Name)
	case *ParallelBlock:
		return formatParallelBlock(e)
	}
	return ""
}

func formatParallelBlock(block *ParallelBlock) string {
	parts := make([]string, len(block.Elements))
	for i, el := range block.Elements {
		switch e := el.(type) {
		case *ComponentElem:
			parts[i] = formatChainElement(e)
		case *ControlledSource:
			parts[i] = fmt.Sprintf("%s (%s)", e.Expression(), e.Direction)
		case *NoiseSource:
			parts[i] = fmt.Sprintf("%s (%s)", e.ID, e.Direction)
		}
	}
	return fmt.Sprintf("[ %s ]", strings.Join(parts, " || "))
}
