package graph

import (
	"sort"
	"strings"

	"github.com/Kreijstal/circuijts/pkg/circuit"
)

// Reconstruct produces a statement list equivalent to the graph:
// declarations first, then terminal blocks for multi-terminal devices,
// then series/parallel chains for everything spanning two nets, then
// direct assignments covering the remaining aliases. Formatting the
// result and parsing it again builds an isomorphic graph.
func Reconstruct(g *Graph) []circuit.Statement {
	var stmts []circuit.Statement
	emitted := map[string]bool{}

	for _, inst := range g.Instances() {
		stmts = append(stmts, &circuit.Declaration{TypeName: inst.Type.String(), Name: inst.Name})
	}
	stmts = append(stmts, reconstructBlocks(g, emitted)...)
	stmts = append(stmts, reconstructChains(g, emitted)...)
	stmts = append(stmts, reconstructAliases(g)...)
	return stmts
}

// blockTerminalOrder puts schema terminals in conventional order before
// any stragglers.
func blockTerminalOrder(t circuit.ComponentType, present []string) []string {
	var ordered []string
	for _, term := range t.Terminals() {
		for _, p := range present {
			if p == term {
				ordered = append(ordered, term)
			}
		}
	}
	var rest []string
	for _, p := range present {
		found := false
		for _, o := range ordered {
			if o == p {
				found = true
				break
			}
		}
		if !found {
			rest = append(rest, p)
		}
	}
	sort.Strings(rest)
	return append(ordered, rest...)
}

func reconstructBlocks(g *Graph, emitted map[string]bool) []circuit.Statement {
	var stmts []circuit.Statement
	for _, inst := range g.Instances() {
		if !inst.Type.MultiTerminal() || len(inst.Terminals) == 0 {
			continue
		}
		present := make([]string, 0, len(inst.Terminals))
		for term := range inst.Terminals {
			present = append(present, term)
		}
		block := &circuit.TerminalBlock{Instance: inst.Name}
		for _, term := range blockTerminalOrder(inst.Type, present) {
			name := g.PreferredName(inst.Terminals[term])
			block.Assigns = append(block.Assigns, circuit.TerminalAssign{
				Terminal: term,
				Target:   circuit.NodeRef{Node: name},
			})
		}
		stmts = append(stmts, block)
		emitted[inst.Name] = true
	}
	return stmts
}

// netPair is a canonical, ordered two-net key.
type netPair struct {
	a, b NodeID
}

// flipOccupant rewrites an occupant for the reverse traversal order.
func flipOccupant(o *chainOccupant) {
	switch e := o.elem.(type) {
	case *circuit.ComponentElem:
		switch e.Polarity {
		case circuit.PolarityMinusPlus:
			e.Polarity = circuit.PolarityPlusMinus
		case circuit.PolarityPlusMinus:
			e.Polarity = circuit.PolarityMinusPlus
		}
	case *circuit.ControlledSource:
		e.Direction = e.Direction.Flip()
	case *circuit.NoiseSource:
		e.Direction = e.Direction.Flip()
	}
}

// chainGroup collects everything spanning one net pair, oriented the
// way the first occupant crossed it.
type chainGroup struct {
	a, b NodeID
	occ  []chainOccupant
}

type chainOccupant struct {
	elem       circuit.ParallelElement
	behavioral bool
}

// reconstructChains groups two-terminal placements by the canonical net
// pair they span. A pair with one occupant becomes a plain chain; more
// than one becomes a parallel block. Behavioral elements always go
// inside a block since the grammar admits them nowhere else. Occupants
// crossing the pair against the group's orientation have their polarity
// or direction flipped so the written chain means the same thing.
func reconstructChains(g *Graph, emitted map[string]bool) []circuit.Statement {
	groups := map[netPair]*chainGroup{}
	var order []netPair

	add := func(x, y NodeID, o chainOccupant) {
		p := netPair{a: x, b: y}
		if p.a > p.b {
			p.a, p.b = p.b, p.a
		}
		grp, ok := groups[p]
		if !ok {
			grp = &chainGroup{a: x, b: y}
			groups[p] = grp
			order = append(order, p)
		}
		if x != grp.a {
			flipOccupant(&o)
		}
		grp.occ = append(grp.occ, o)
	}

	for _, inst := range g.Instances() {
		if emitted[inst.Name] || inst.Type.MultiTerminal() || len(inst.Terminals) == 0 {
			continue
		}
		a, b, ok := instanceSpan(g, inst)
		if !ok {
			continue
		}
		x, y := g.Canonical(a), g.Canonical(b)
		elem := &circuit.ComponentElem{Name: inst.Name}
		if inst.Type.IsSource() {
			elem.Polarity = sourcePolarity(g, inst, x)
		}
		add(x, y, chainOccupant{elem: elem})
	}

	for i := range g.Edges() {
		edge := &g.Edges()[i]
		if edge.Kind == EdgeComponent {
			continue
		}
		o := chainOccupant{behavioral: true}
		switch edge.Kind {
		case EdgeControlled:
			o.elem = &circuit.ControlledSource{Gain: edge.Gain, Control: edge.Control, Direction: edge.Direction}
		case EdgeNoise:
			o.elem = &circuit.NoiseSource{ID: edge.NoiseID, Direction: edge.Direction}
		}
		add(g.Canonical(edge.A), g.Canonical(edge.B), o)
	}

	var stmts []circuit.Statement
	for _, p := range order {
		grp := groups[p]
		occ := grp.occ
		from := circuit.NodeRef{Node: g.PreferredName(grp.a)}
		to := circuit.NodeRef{Node: g.PreferredName(grp.b)}
		elements := []circuit.ChainElement{&circuit.NodeElem{Ref: from}}
		if len(occ) == 1 && !occ[0].behavioral {
			comp := occ[0].elem.(*circuit.ComponentElem)
			elements = append(elements, comp)
		} else {
			block := &circuit.ParallelBlock{}
			for _, o := range occ {
				block.Elements = append(block.Elements, o.elem)
			}
			elements = append(elements, block)
		}
		elements = append(elements, &circuit.NodeElem{Ref: to})
		stmts = append(stmts, &circuit.SeriesChain{Elements: elements})
	}
	return stmts
}

// instanceSpan finds the two nets a two-terminal instance sits between,
// from whichever terminal pair it was connected with. Both ends can be
// the same net; the degenerate chain keeps a shorted placement visible
// in the reconstructed text.
func instanceSpan(g *Graph, inst *Instance) (NodeID, NodeID, bool) {
	for _, pair := range [][2]string{{"pos", "neg"}, {"t1", "t2"}} {
		a, okA := inst.Terminals[pair[0]]
		b, okB := inst.Terminals[pair[1]]
		if okA && okB {
			return a, b, true
		}
	}
	return 0, 0, false
}

// sourcePolarity orients a source's marker so the written chain, read
// left to right from the lower canonical net, reproduces the original
// pole assignment.
func sourcePolarity(g *Graph, inst *Instance, first NodeID) circuit.Polarity {
	neg, ok := inst.Terminals["neg"]
	if !ok {
		return circuit.PolarityNone
	}
	if g.Canonical(neg) == first {
		return circuit.PolarityMinusPlus
	}
	return circuit.PolarityPlusMinus
}

// reconstructAliases emits one direct assignment per remaining alias,
// each member tied to its class representative. Implicit members are
// skipped when the class has a real name; their identity is not
// expressible in source text.
func reconstructAliases(g *Graph) []circuit.Statement {
	var stmts []circuit.Statement
	for _, class := range g.Classes() {
		if len(class) < 2 {
			continue
		}
		preferred := g.PreferredName(class[0].ID)
		for _, member := range class {
			if member.Name == preferred {
				continue
			}
			if member.Kind == KindImplicit {
				continue
			}
			stmts = append(stmts, &circuit.DirectAssignment{
				From: nodeRefFor(member),
				To:   circuit.NodeRef{Node: preferred},
			})
		}
	}
	return stmts
}

func nodeRefFor(n Node) circuit.NodeRef {
	if n.Kind == KindTerminal {
		if i := strings.IndexByte(n.Name, '.'); i >= 0 {
			return circuit.NodeRef{Instance: n.Name[:i], Terminal: n.Name[i+1:]}
		}
	}
	return circuit.NodeRef{Node: n.Name}
}
