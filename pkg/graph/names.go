package graph

import "sort"

// railNames are the supply nets given naming priority over device
// terminals when choosing a class representative.
var railNames = map[string]bool{
	"GND": true,
	"VDD": true,
	"VSS": true,
	"VCC": true,
}

// PreferredName picks the stable display name for the equivalence class
// containing id. User-written net names win over supply rails, rails win
// over device terminals, and implicit names are used only when the class
// holds nothing else. Ties break on shortest name, then alphabetical, so
// the choice never depends on union order.
func (g *Graph) PreferredName(id NodeID) string {
	members := g.Members(id)

	var user, rails, terminals, implicit []string
	for _, n := range members {
		switch {
		case n.Kind == KindImplicit:
			implicit = append(implicit, n.Name)
		case n.Kind == KindTerminal:
			terminals = append(terminals, n.Name)
		case railNames[n.Name]:
			rails = append(rails, n.Name)
		default:
			user = append(user, n.Name)
		}
	}
	for _, bucket := range [][]string{user, rails, terminals, implicit} {
		if len(bucket) > 0 {
			sort.Slice(bucket, func(i, j int) bool {
				if len(bucket[i]) != len(bucket[j]) {
					return len(bucket[i]) < len(bucket[j])
				}
				return bucket[i] < bucket[j]
			})
			return bucket[0]
		}
	}
	return g.nodes[g.dsu.Find(id)].Name
}
