package graph

import (
	"fmt"
	"sort"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/Kreijstal/circuijts/pkg/circuit"
)

// binding records one requested terminal-to-node attachment. Bindings
// are collected during lowering and applied as unions afterwards, so
// statement order cannot influence the final partition.
type binding struct {
	instance string
	terminal string
	target   NodeID
	pos      lexer.Position
}

func (b binding) key() string { return b.instance + "." + b.terminal }

type builder struct {
	g        *Graph
	issues   []error
	bindings []binding
}

// Build lowers a parsed program into an immutable Graph. Non-fatal
// connection problems are accumulated and returned alongside the graph;
// the graph stays usable with the conflicting bindings merged.
func Build(prog *circuit.Program) (*Graph, []error) {
	b := &builder{
		g: &Graph{
			byName: map[string]NodeID{},
			dsu:    NewDSU(),
			insts:  map[string]*Instance{},
			rails:  railNames,
		},
	}
	b.node("GND", KindNamed)

	for _, name := range prog.Symbols.Names() {
		info, _ := prog.Symbols.Lookup(name)
		b.g.insts[name] = &Instance{Name: name, Type: info.Type, Terminals: map[string]NodeID{}}
		b.g.order = append(b.g.order, name)
	}

	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *circuit.TerminalBlock:
			b.lowerTerminalBlock(s)
		case *circuit.DirectAssignment:
			b.lowerDirectAssignment(s)
		case *circuit.SeriesChain:
			b.lowerSeriesChain(s)
		}
	}

	b.resolveBindings()
	b.checkArity(prog.Symbols)
	return b.g, b.issues
}

// node interns a named arena node, creating it on first sight.
func (b *builder) node(name string, kind NodeKind) NodeID {
	if id, ok := b.g.byName[name]; ok {
		return id
	}
	id := b.g.dsu.Add()
	b.g.nodes = append(b.g.nodes, Node{ID: id, Name: name, Kind: kind})
	b.g.byName[name] = id
	return id
}

// implicitNode synthesizes a fresh internal node. The counter is never
// reused, and the underscore prefix keeps the name out of the identifier
// grammar for plain node references.
func (b *builder) implicitNode() NodeID {
	b.g.implCnt++
	return b.node(fmt.Sprintf("_implicit_%d", b.g.implCnt), KindImplicit)
}

// refNode resolves a source-level reference to its arena node. Terminal
// references double as a sighting of that terminal on the instance.
func (b *builder) refNode(ref circuit.NodeRef) NodeID {
	if !ref.IsTerminal() {
		return b.node(ref.Node, KindNamed)
	}
	id := b.node(ref.Instance+"."+ref.Terminal, KindTerminal)
	if inst, ok := b.g.insts[ref.Instance]; ok {
		if _, bound := inst.Terminals[ref.Terminal]; !bound {
			inst.Terminals[ref.Terminal] = id
		}
	}
	return id
}

func (b *builder) bind(instance, terminal string, target NodeID, pos lexer.Position) {
	b.bindings = append(b.bindings, binding{instance: instance, terminal: terminal, target: target, pos: pos})
	// The arena node exists even for undeclared instances, so the
	// binding resolves against a placeholder instead of touching
	// unrelated nets.
	id := b.node(instance+"."+terminal, KindTerminal)
	if inst, ok := b.g.insts[instance]; ok {
		if _, bound := inst.Terminals[terminal]; !bound {
			inst.Terminals[terminal] = id
		}
	}
}

func (b *builder) lowerTerminalBlock(s *circuit.TerminalBlock) {
	for _, a := range s.Assigns {
		target := b.refNode(a.Target)
		b.bind(s.Instance, a.Terminal, target, a.Pos)
	}
}

func (b *builder) lowerDirectAssignment(s *circuit.DirectAssignment) {
	from := b.refNode(s.From)
	to := b.refNode(s.To)
	switch {
	case s.From.IsTerminal() && s.To.IsTerminal():
		b.bind(s.From.Instance, s.From.Terminal, to, s.Pos)
		b.bind(s.To.Instance, s.To.Terminal, from, s.Pos)
	case s.From.IsTerminal():
		b.bind(s.From.Instance, s.From.Terminal, to, s.Pos)
	case s.To.IsTerminal():
		b.bind(s.To.Instance, s.To.Terminal, from, s.Pos)
	default:
		b.g.dsu.Union(from, to)
	}
}

// lowerSeriesChain walks the chain with a moving attach point. Every
// non-node element spans the current attach point and the next one; when
// no explicit node follows, a fresh implicit node is synthesized.
// Current labels are metadata only and never affect attach points; a
// label rides forward over node elements and attaches to the next edge
// lowered after it.
func (b *builder) lowerSeriesChain(s *circuit.SeriesChain) {
	var structural []circuit.ChainElement
	labelFor := map[int]*NamedCurrent{}

	var pendingLabel *NamedCurrent
	for _, el := range s.Elements {
		if lab, ok := el.(*circuit.CurrentLabel); ok {
			pendingLabel = &NamedCurrent{Name: lab.Name, Direction: lab.Direction}
			continue
		}
		if pendingLabel != nil {
			labelFor[len(structural)] = pendingLabel
			pendingLabel = nil
		}
		structural = append(structural, el)
	}
	if len(structural) == 0 {
		return
	}

	first := structural[0].(*circuit.NodeElem)
	attach := b.refNode(first.Ref)

	var carried *NamedCurrent
	for i := 1; i < len(structural); i++ {
		if lab, ok := labelFor[i]; ok {
			carried = lab
		}
		if nodeEl, ok := structural[i].(*circuit.NodeElem); ok {
			attach = b.refNode(nodeEl.Ref)
			continue
		}

		var next NodeID
		if i+1 < len(structural) {
			if nodeEl, ok := structural[i+1].(*circuit.NodeElem); ok {
				next = b.refNode(nodeEl.Ref)
			} else {
				next = b.implicitNode()
			}
		} else {
			next = b.implicitNode()
		}

		switch el := structural[i].(type) {
		case *circuit.ComponentElem:
			b.lowerComponent(el, attach, next, carried, -1)
		case *circuit.ParallelBlock:
			b.lowerParallelBlock(el, attach, next, carried)
		}
		carried = nil
		attach = next
	}
}

// lowerComponent places one declared instance between two nodes. Sources
// carrying a polarity marker get their pos/neg poles bound as real
// terminals; everything else occupies the anonymous t1/t2 pair.
func (b *builder) lowerComponent(el *circuit.ComponentElem, a, z NodeID, current *NamedCurrent, group int) {
	inst, ok := b.g.insts[el.Name]
	if !ok {
		return
	}

	edge := Edge{
		Kind:     EdgeComponent,
		Instance: el.Name,
		A:        a,
		B:        z,
		TermA:    "t1",
		TermB:    "t2",
		Polarity: el.Polarity,
		Current:  current,
		Group:    group,
	}
	if inst.Type.IsSource() && el.Polarity != circuit.PolarityNone {
		edge.TermA, edge.TermB = "neg", "pos"
		if el.Polarity == circuit.PolarityPlusMinus {
			edge.TermA, edge.TermB = "pos", "neg"
		}
		b.bind(el.Name, edge.TermA, a, el.Pos)
		b.bind(el.Name, edge.TermB, z, el.Pos)
	} else {
		if _, bound := inst.Terminals["t1"]; !bound {
			inst.Terminals["t1"] = a
			inst.Terminals["t2"] = z
		}
	}
	b.addEdge(edge, group)
}

func (b *builder) lowerParallelBlock(block *circuit.ParallelBlock, a, z NodeID, current *NamedCurrent) {
	group := len(b.g.groups)
	b.g.groups = append(b.g.groups, ParallelGroup{A: a, B: z})

	for _, el := range block.Elements {
		switch pe := el.(type) {
		case *circuit.ComponentElem:
			b.lowerComponent(pe, a, z, current, group)
		case *circuit.ControlledSource:
			b.addEdge(Edge{
				Kind:      EdgeControlled,
				Gain:      pe.Gain,
				Control:   pe.Control,
				Direction: pe.Direction,
				A:         a,
				B:         z,
				TermA:     "t1",
				TermB:     "t2",
				Current:   current,
				Group:     group,
			}, group)
		case *circuit.NoiseSource:
			b.addEdge(Edge{
				Kind:      EdgeNoise,
				NoiseID:   pe.ID,
				Direction: pe.Direction,
				A:         a,
				B:         z,
				TermA:     "t1",
				TermB:     "t2",
				Current:   current,
				Group:     group,
			}, group)
		}
		current = nil
	}
}

func (b *builder) addEdge(edge Edge, group int) {
	idx := len(b.g.edges)
	b.g.edges = append(b.g.edges, edge)
	if group >= 0 {
		b.g.groups[group].Edges = append(b.g.groups[group].Edges, idx)
	}
}

// resolveBindings turns the collected bindings into unions. Terminals
// bound once merge directly. Terminals bound to several distinct raw
// targets are held back, checked against the partition formed by all
// uncontested merges, and flagged when their targets still disagree;
// the conflicting targets are then merged anyway so downstream passes
// see one net. Evaluating every contested terminal against the same
// intermediate partition keeps the outcome independent of statement
// order.
func (b *builder) resolveBindings() {
	targets := map[string][]binding{}
	for _, bd := range b.bindings {
		targets[bd.key()] = append(targets[bd.key()], bd)
	}

	keys := make([]string, 0, len(targets))
	for k := range targets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	contested := map[string]bool{}
	for _, k := range keys {
		if len(distinctTargets(targets[k])) > 1 {
			contested[k] = true
		}
	}

	for _, k := range keys {
		if contested[k] {
			continue
		}
		tnode := b.g.byName[k]
		b.g.dsu.Union(tnode, targets[k][0].target)
	}

	var conflicted []string
	for _, k := range keys {
		if !contested[k] {
			continue
		}
		distinct := distinctTargets(targets[k])
		agree := true
		for _, t := range distinct[1:] {
			if !b.g.dsu.Same(distinct[0], t) {
				agree = false
				break
			}
		}
		if !agree {
			conflicted = append(conflicted, k)
		}
	}
	for _, k := range conflicted {
		bds := targets[k]
		pos := bds[0].pos
		for _, bd := range bds[1:] {
			if bd.pos.Line < pos.Line || (bd.pos.Line == pos.Line && bd.pos.Column < pos.Column) {
				pos = bd.pos
			}
		}
		b.issues = append(b.issues, &circuit.ConnectionError{
			Pos:    pos,
			Reason: circuit.ReasonTerminalAssigned,
			Detail: fmt.Sprintf("%s bound to %d distinct nodes", k, len(distinctTargets(targets[k]))),
		})
	}
	for _, k := range keys {
		if !contested[k] {
			continue
		}
		tnode := b.g.byName[k]
		for _, bd := range targets[k] {
			b.g.dsu.Union(tnode, bd.target)
		}
	}
}

func distinctTargets(bds []binding) []NodeID {
	seen := map[NodeID]bool{}
	var out []NodeID
	for _, bd := range bds {
		if !seen[bd.target] {
			seen[bd.target] = true
			out = append(out, bd.target)
		}
	}
	return out
}

// checkArity flags instances whose terminal usage does not fit their
// type schema: more distinct terminals than the arity allows, or a
// partially connected device.
func (b *builder) checkArity(syms *circuit.SymbolTable) {
	for _, name := range b.g.order {
		inst := b.g.insts[name]
		info, _ := syms.Lookup(name)
		arity := inst.Type.Arity()
		used := len(inst.Terminals)
		if used > arity {
			b.issues = append(b.issues, &circuit.ConnectionError{
				Pos:    info.Pos,
				Reason: circuit.ReasonInvalidTerminal,
				Detail: fmt.Sprintf("%q (type %s) uses %d distinct terminals, arity is %d", name, inst.Type, used, arity),
			})
		} else if used > 0 && used < arity {
			b.issues = append(b.issues, &circuit.ConnectionError{
				Pos:    info.Pos,
				Reason: "instance not fully connected",
				Detail: fmt.Sprintf("%q (type %s) connects %d of %d terminals", name, inst.Type, used, arity),
			})
		}
	}
}
