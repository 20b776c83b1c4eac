package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Kreijstal/circuijts/pkg/circuit"
)

// FindingKind classifies a short-circuit finding.
type FindingKind int

const (
	// TerminalsCoincide means one instance has two or more of its own
	// terminals resolving to the same net.
	TerminalsCoincide FindingKind = iota
	// SourcesTied means two independent sources span the identical
	// canonical node pair.
	SourcesTied
	// RailShort means two distinct supply rails ended up on one net.
	RailShort
)

// Reason strings carried by findings.
const (
	ReasonTerminalsCoincide = "terminals coincide"
	ReasonSourcesTied       = "independent sources tied across same nodes"
	ReasonRailShort         = "supply rails tied together"
)

// Finding is one detected topological collision. Findings are never
// fatal by themselves; callers decide what to do with them.
type Finding struct {
	Kind      FindingKind
	Reason    string
	Instance  string
	Type      circuit.ComponentType
	Terminals []string
	Net       string
	Instances [2]string
	Rails     [2]string
}

func (f Finding) String() string {
	switch f.Kind {
	case TerminalsCoincide:
		return fmt.Sprintf("component short: %q (type %s) has terminals [%s] on net %q",
			f.Instance, f.Type, strings.Join(f.Terminals, ", "), f.Net)
	case SourcesTied:
		return fmt.Sprintf("source conflict: %q and %q tied across the same nodes", f.Instances[0], f.Instances[1])
	case RailShort:
		return fmt.Sprintf("rail short: %s and %s are connected (net %q)", f.Rails[0], f.Rails[1], f.Net)
	}
	return "unknown finding"
}

// DetectShorts inspects the canonical partition and the edge set for
// topological collisions. It never mutates the graph.
func DetectShorts(g *Graph) []Finding {
	var findings []Finding
	findings = append(findings, detectSelfShorts(g)...)
	findings = append(findings, detectTiedSources(g)...)
	findings = append(findings, detectRailShorts(g)...)
	return findings
}

// detectSelfShorts flags every instance with two or more terminals
// landing on the same canonical net.
func detectSelfShorts(g *Graph) []Finding {
	var findings []Finding
	for _, inst := range g.Instances() {
		byNet := map[NodeID][]string{}
		for term, node := range inst.Terminals {
			root := g.Canonical(node)
			byNet[root] = append(byNet[root], term)
		}
		roots := make([]NodeID, 0, len(byNet))
		for root := range byNet {
			roots = append(roots, root)
		}
		sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })
		for _, root := range roots {
			terms := byNet[root]
			if len(terms) < 2 {
				continue
			}
			sort.Strings(terms)
			findings = append(findings, Finding{
				Kind:      TerminalsCoincide,
				Reason:    ReasonTerminalsCoincide,
				Instance:  inst.Name,
				Type:      inst.Type,
				Terminals: terms,
				Net:       g.PreferredName(root),
			})
		}
	}
	return findings
}

// detectTiedSources flags every pair of source instances whose two
// poles resolve pairwise to the same two canonical nodes. With no
// numeric values available, the collision can only be reported, not
// adjudicated.
func detectTiedSources(g *Graph) []Finding {
	type span struct {
		name string
		a, b NodeID
	}
	var sources []span
	for _, inst := range g.Instances() {
		if !inst.Type.IsSource() {
			continue
		}
		a, b, ok := sourcePoles(g, inst)
		if !ok || a == b {
			continue
		}
		if a > b {
			a, b = b, a
		}
		sources = append(sources, span{name: inst.Name, a: a, b: b})
	}

	var findings []Finding
	for i := 0; i < len(sources); i++ {
		for j := i + 1; j < len(sources); j++ {
			if sources[i].a == sources[j].a && sources[i].b == sources[j].b {
				findings = append(findings, Finding{
					Kind:      SourcesTied,
					Reason:    ReasonSourcesTied,
					Instances: [2]string{sources[i].name, sources[j].name},
					Net:       g.PreferredName(sources[i].a),
				})
			}
		}
	}
	return findings
}

// sourcePoles returns the canonical nets of a source's two ends,
// preferring the polarity-bound pos/neg pair over the anonymous one.
func sourcePoles(g *Graph, inst *Instance) (NodeID, NodeID, bool) {
	if pos, ok := inst.Terminals["pos"]; ok {
		if neg, ok := inst.Terminals["neg"]; ok {
			return g.Canonical(pos), g.Canonical(neg), true
		}
	}
	if t1, ok := inst.Terminals["t1"]; ok {
		if t2, ok := inst.Terminals["t2"]; ok {
			return g.Canonical(t1), g.Canonical(t2), true
		}
	}
	return 0, 0, false
}

// detectRailShorts flags distinct supply rails that the alias relation
// merged into one net.
func detectRailShorts(g *Graph) []Finding {
	rails := make([]string, 0, len(railNames))
	for name := range railNames {
		if _, ok := g.LookupNode(name); ok {
			rails = append(rails, name)
		}
	}
	sort.Strings(rails)

	var findings []Finding
	for i := 0; i < len(rails); i++ {
		for j := i + 1; j < len(rails); j++ {
			a, _ := g.LookupNode(rails[i])
			b, _ := g.LookupNode(rails[j])
			if g.SameNet(a, b) {
				findings = append(findings, Finding{
					Kind:   RailShort,
					Reason: ReasonRailShort,
					Rails:  [2]string{rails[i], rails[j]},
					Net:    g.PreferredName(a),
				})
			}
		}
	}
	return findings
}

// Report renders findings the way the shorts tool prints them.
func Report(findings []Finding) string {
	if len(findings) == 0 {
		return "No topological short circuits detected."
	}
	lines := []string{"Detected Topological Short Circuits:"}
	for _, f := range findings {
		lines = append(lines, "  - "+f.String())
	}
	return strings.Join(lines, "\n")
}
