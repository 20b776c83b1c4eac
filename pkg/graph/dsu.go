package graph

// NodeID identifies a node in the arena. IDs are dense and never reused.
type NodeID int

// DSU is a union-find forest over NodeIDs with union by rank and path
// compression. Union order never affects the resulting partition, only
// which member happens to be the internal root; callers wanting a stable
// representative should go through Graph.PreferredName.
type DSU struct {
	parent []NodeID
	rank   []int
	sets   int
}

func NewDSU() *DSU {
	return &DSU{}
}

// Add creates a new singleton set and returns its id.
func (d *DSU) Add() NodeID {
	id := NodeID(len(d.parent))
	d.parent = append(d.parent, id)
	d.rank = append(d.rank, 0)
	d.sets++
	return id
}

// Len is the number of elements added so far.
func (d *DSU) Len() int { return len(d.parent) }

// Sets is the number of disjoint sets.
func (d *DSU) Sets() int { return d.sets }

// Find returns the root of the set containing id, compressing the path
// behind it.
func (d *DSU) Find(id NodeID) NodeID {
	root := id
	for d.parent[root] != root {
		root = d.parent[root]
	}
	for d.parent[id] != root {
		d.parent[id], id = root, d.parent[id]
	}
	return root
}

// Union merges the sets containing a and b. It reports whether the two
// were previously disjoint.
func (d *DSU) Union(a, b NodeID) bool {
	ra, rb := d.Find(a), d.Find(b)
	if ra == rb {
		return false
	}
	if d.rank[ra] < d.rank[rb] {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
	if d.rank[ra] == d.rank[rb] {
		d.rank[ra]++
	}
	d.sets--
	return true
}

// Same reports whether a and b are in the same set.
func (d *DSU) Same(a, b NodeID) bool {
	return d.Find(a) == d.Find(b)
}
