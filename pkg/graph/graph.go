package graph

import (
	"sort"

	"github.com/Kreijstal/circuijts/pkg/circuit"
)

// NodeKind classifies how a node came into existence.
type NodeKind int

const (
	// KindNamed is a node written explicitly in the source, like (Vout).
	KindNamed NodeKind = iota
	// KindTerminal is a device-terminal node, like M1.G.
	KindTerminal
	// KindImplicit is a node synthesized between adjacent chain elements.
	KindImplicit
)

func (k NodeKind) String() string {
	switch k {
	case KindNamed:
		return "named"
	case KindTerminal:
		return "terminal"
	case KindImplicit:
		return "implicit"
	}
	return "invalid"
}

// Node is one entry in the node arena. Aliasing never removes nodes;
// merged nodes stay in the arena and share a canonical representative.
type Node struct {
	ID   NodeID
	Name string
	Kind NodeKind
}

// EdgeKind classifies what occupies an edge slot.
type EdgeKind int

const (
	// EdgeComponent is a declared instance placed between two nodes.
	EdgeComponent EdgeKind = iota
	// EdgeControlled is an inline controlled source from a parallel block.
	EdgeControlled
	// EdgeNoise is an inline noise source from a parallel block.
	EdgeNoise
)

// NamedCurrent is a branch-current label attached to an edge.
type NamedCurrent struct {
	Name      string
	Direction circuit.Direction
}

// Edge is a two-terminal placement between nodes A and B, in the order
// the chain encountered them. TermA and TermB name the instance terminals
// occupying each end; behavioral edges carry the expression fields
// instead of an instance name.
type Edge struct {
	Kind     EdgeKind
	Instance string

	Gain    string
	Control string
	NoiseID string

	A, B         NodeID
	TermA, TermB string
	Polarity     circuit.Polarity
	Direction    circuit.Direction
	Current      *NamedCurrent
	Group        int // index into Groups, -1 when not inside []
}

// Expression renders a controlled-source edge as gain*control.
func (e *Edge) Expression() string {
	return e.Gain + "*" + e.Control
}

// ParallelGroup is one [] block: the indices of its edges, all spanning
// the same two endpoint nodes.
type ParallelGroup struct {
	A, B  NodeID
	Edges []int
}

// Instance is a declared component with whatever terminal bindings the
// source established. Terminals maps terminal name to the bound node.
type Instance struct {
	Name      string
	Type      circuit.ComponentType
	Terminals map[string]NodeID
}

// Graph is the lowered, canonicalized circuit. It is immutable once
// Build returns; all accessors are read-only.
type Graph struct {
	nodes   []Node
	byName  map[string]NodeID
	dsu     *DSU
	insts   map[string]*Instance
	order   []string
	edges   []Edge
	groups  []ParallelGroup
	rails   map[string]bool
	implCnt int
}

// Nodes returns the full node arena.
func (g *Graph) Nodes() []Node { return g.nodes }

// Node returns the arena entry for id.
func (g *Graph) Node(id NodeID) Node { return g.nodes[id] }

// LookupNode resolves a source-level name to its arena node.
func (g *Graph) LookupNode(name string) (NodeID, bool) {
	id, ok := g.byName[name]
	return id, ok
}

// Canonical returns the representative of the equivalence class of id.
func (g *Graph) Canonical(id NodeID) NodeID { return g.dsu.Find(id) }

// SameNet reports whether two nodes were aliased together.
func (g *Graph) SameNet(a, b NodeID) bool { return g.dsu.Same(a, b) }

// Edges returns all lowered edges.
func (g *Graph) Edges() []Edge { return g.edges }

// Groups returns all lowered parallel groups.
func (g *Graph) Groups() []ParallelGroup { return g.groups }

// Instances returns declared instances in declaration order.
func (g *Graph) Instances() []*Instance {
	out := make([]*Instance, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.insts[name])
	}
	return out
}

// Instance looks up one declared instance by name.
func (g *Graph) Instance(name string) (*Instance, bool) {
	inst, ok := g.insts[name]
	return inst, ok
}

// Members returns every arena node in the same equivalence class as id,
// sorted by id.
func (g *Graph) Members(id NodeID) []Node {
	root := g.dsu.Find(id)
	var out []Node
	for _, n := range g.nodes {
		if g.dsu.Find(n.ID) == root {
			out = append(out, n)
		}
	}
	return out
}

// Classes returns the node partition as one slice per equivalence class,
// each sorted by id, ordered by the smallest id in the class.
func (g *Graph) Classes() [][]Node {
	byRoot := map[NodeID][]Node{}
	for _, n := range g.nodes {
		root := g.dsu.Find(n.ID)
		byRoot[root] = append(byRoot[root], n)
	}
	roots := make([]NodeID, 0, len(byRoot))
	for root := range byRoot {
		roots = append(roots, root)
	}
	sort.Slice(roots, func(i, j int) bool {
		return byRoot[roots[i]][0].ID < byRoot[roots[j]][0].ID
	})
	out := make([][]Node, 0, len(roots))
	for _, root := range roots {
		out = append(out, byRoot[root])
	}
	return out
}
