package circuit

import (
	"fmt"
	"sort"
)

// Summary describes the element population of a parsed circuit without
// building the full connectivity graph. Implicit node counts follow the
// same synthesis rule the graph builder applies, so the totals agree.
type Summary struct {
	ExplicitNodes []string
	ImplicitNodes []string
	Components    []string

	Resistors      int
	Capacitors     int
	Inductors      int
	NMOS           int
	PMOS           int
	Voltages       int
	Currents       int
	Opamps         int
	ParallelBlocks int
}

// NodeCount is the number of distinct nodes, explicit plus implicit.
func (s *Summary) NodeCount() int {
	return len(s.ExplicitNodes) + len(s.ImplicitNodes)
}

// Summarize walks the statement list and tallies nodes and components.
func Summarize(statements []Statement) *Summary {
	sum := &Summary{}
	explicit := map[string]bool{}
	components := map[string]bool{}
	implicitCounter := 0

	for _, stmt := range statements {
		switch s := stmt.(type) {
		case *Declaration:
			if components[s.Name] {
				continue
			}
			components[s.Name] = true
			ctype, _ := ComponentTypeFromName(s.TypeName)
			switch ctype {
			case TypeResistor:
				sum.Resistors++
			case TypeCapacitor:
				sum.Capacitors++
			case TypeInductor:
				sum.Inductors++
			case TypeNmos:
				sum.NMOS++
			case TypePmos:
				sum.PMOS++
			case TypeVoltage:
				sum.Voltages++
			case TypeCurrent:
				sum.Currents++
			case TypeOpamp:
				sum.Opamps++
			}
		case *TerminalBlock:
			for _, a := range s.Assigns {
				addRefNode(explicit, a.Target)
				explicit[s.Instance+"."+a.Terminal] = true
			}
		case *DirectAssignment:
			addRefNode(explicit, s.From)
			addRefNode(explicit, s.To)
		case *SeriesChain:
			implicitCounter = summarizeChain(s, sum, explicit, implicitCounter)
		}
	}

	for name := range explicit {
		sum.ExplicitNodes = append(sum.ExplicitNodes, name)
	}
	for name := range components {
		sum.Components = append(sum.Components, name)
	}
	for i := 1; i <= implicitCounter; i++ {
		sum.ImplicitNodes = append(sum.ImplicitNodes, implicitNodeName(i))
	}
	sort.Strings(sum.ExplicitNodes)
	sort.Strings(sum.Components)
	sort.Strings(sum.ImplicitNodes)
	return sum
}

func implicitNodeName(n int) string {
	return fmt.Sprintf("_implicit_%d", n)
}

func addRefNode(explicit map[string]bool, ref NodeRef) {
	if ref.IsTerminal() {
		explicit[ref.Instance+"."+ref.Terminal] = true
		return
	}
	explicit[ref.Node] = true
}

// summarizeChain records explicit nodes and synthesizes implicit node
// names where two structural elements meet without a written node
// between them, or where the chain ends on a non-node.
func summarizeChain(chain *SeriesChain, sum *Summary, explicit map[string]bool, counter int) int {
	var structural []ChainElement
	for _, el := range chain.Elements {
		switch e := el.(type) {
		case *NodeElem:
			addRefNode(explicit, e.Ref)
			structural = append(structural, el)
		case *ComponentElem:
			structural = append(structural, el)
		case *ParallelBlock:
			sum.ParallelBlocks++
			structural = append(structural, el)
		}
	}
	if len(structural) == 0 {
		return counter
	}
	for i := 0; i+1 < len(structural); i++ {
		if !isNodeElem(structural[i]) && !isNodeElem(structural[i+1]) {
			counter++
		}
	}
	if !isNodeElem(structural[len(structural)-1]) {
		counter++
	}
	return counter
}

func isNodeElem(el ChainElement) bool {
	_, ok := el.(*NodeElem)
	return ok
}
