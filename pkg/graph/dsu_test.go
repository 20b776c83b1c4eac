package graph

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func newDSU(n int) *DSU {
	d := NewDSU()
	for i := 0; i < n; i++ {
		d.Add()
	}
	return d
}

// partition maps every element to the smallest member of its class, a
// canonical signature independent of internal root choice.
func partition(d *DSU) []NodeID {
	smallest := map[NodeID]NodeID{}
	for i := 0; i < d.Len(); i++ {
		root := d.Find(NodeID(i))
		if cur, ok := smallest[root]; !ok || NodeID(i) < cur {
			smallest[root] = NodeID(i)
		}
	}
	sig := make([]NodeID, d.Len())
	for i := 0; i < d.Len(); i++ {
		sig[i] = smallest[d.Find(NodeID(i))]
	}
	return sig
}

func samePartition(a, b []NodeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDSUBasics(t *testing.T) {
	d := newDSU(4)
	if d.Sets() != 4 {
		t.Fatalf("Expected 4 sets, got %d", d.Sets())
	}
	if !d.Union(0, 1) {
		t.Error("First union should merge")
	}
	if d.Union(1, 0) {
		t.Error("Repeated union should be a no-op")
	}
	if !d.Same(0, 1) {
		t.Error("0 and 1 should be in one set")
	}
	if d.Same(0, 2) {
		t.Error("0 and 2 should be disjoint")
	}
	if d.Sets() != 3 {
		t.Errorf("Expected 3 sets, got %d", d.Sets())
	}
}

func TestDSUTransitivity(t *testing.T) {
	d := newDSU(5)
	d.Union(0, 1)
	d.Union(1, 2)
	d.Union(3, 4)
	if !d.Same(0, 2) {
		t.Error("Union chain should be transitive")
	}
	if d.Same(2, 3) {
		t.Error("Separate chains should stay disjoint")
	}
}

func TestDSUOrderIndependence(t *testing.T) {
	const size = 16

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	pairGen := gen.SliceOf(gopter.CombineGens(
		gen.IntRange(0, size-1),
		gen.IntRange(0, size-1),
	).Map(func(vals []interface{}) [2]int {
		return [2]int{vals[0].(int), vals[1].(int)}
	}))

	properties.Property("merge order never changes the partition", prop.ForAll(
		func(pairs [][2]int) bool {
			forward := newDSU(size)
			for _, p := range pairs {
				forward.Union(NodeID(p[0]), NodeID(p[1]))
			}
			backward := newDSU(size)
			for i := len(pairs) - 1; i >= 0; i-- {
				backward.Union(NodeID(pairs[i][0]), NodeID(pairs[i][1]))
			}
			return samePartition(partition(forward), partition(backward))
		},
		pairGen,
	))

	properties.Property("union is commutative and idempotent", prop.ForAll(
		func(a, b int) bool {
			one := newDSU(size)
			one.Union(NodeID(a), NodeID(b))
			one.Union(NodeID(a), NodeID(b))
			other := newDSU(size)
			other.Union(NodeID(b), NodeID(a))
			return samePartition(partition(one), partition(other))
		},
		gen.IntRange(0, size-1),
		gen.IntRange(0, size-1),
	))

	properties.Property("set count tracks distinct merges", prop.ForAll(
		func(pairs [][2]int) bool {
			d := newDSU(size)
			merges := 0
			for _, p := range pairs {
				if d.Union(NodeID(p[0]), NodeID(p[1])) {
					merges++
				}
			}
			return d.Sets() == size-merges
		},
		pairGen,
	))

	properties.TestingRun(t)
}
