package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kreijstal/circuijts/pkg/circuit"
)

// rebuild reconstructs statements from a graph, formats them, and runs
// the whole pipeline again on the result.
func rebuild(t *testing.T, g *Graph) *Graph {
	t.Helper()
	text := circuit.Format(Reconstruct(g)) + "\n"
	prog, err := circuit.ParseString("reconstructed", text)
	if err != nil {
		t.Fatalf("Reconstructed text failed to parse: %v\n%s", err, text)
	}
	if len(prog.Issues) != 0 {
		t.Fatalf("Reconstructed text has issues: %v\n%s", prog.Issues, text)
	}
	g2, issues := Build(prog)
	if len(issues) != 0 {
		t.Fatalf("Reconstructed text failed to build: %v\n%s", issues, text)
	}
	return g2
}

func terminalNets(g *Graph, name string) map[string]string {
	inst, ok := g.Instance(name)
	if !ok {
		return nil
	}
	nets := map[string]string{}
	for term, node := range inst.Terminals {
		nets[term] = g.PreferredName(node)
	}
	return nets
}

func TestReconstructAmplifier(t *testing.T) {
	g := buildClean(t, `Nmos M1
R R_load
C C_in
V V_dd
M1 { G:(Vg), S:(GND), D:(Vout), B:(GND) }
(Vin) -- C_in -- (Vg)
(Vout) -- R_load -- (VDD)
(GND) -- V_dd (-+) -- (VDD)
`)

	g2 := rebuild(t, g)

	for _, name := range []string{"M1", "R_load", "C_in", "V_dd"} {
		assert.Equal(t, terminalNets(g, name), terminalNets(g2, name), "terminal nets for %s", name)
	}
	assert.Equal(t, len(DetectShorts(g)), len(DetectShorts(g2)))
}

func TestReconstructParallelGroup(t *testing.T) {
	g := buildClean(t, `R R1
C C1
(Vout) -- [ R1 || C1 ] -- (GND)
`)

	stmts := Reconstruct(g)
	text := circuit.Format(stmts)
	assert.Contains(t, text, "[ R1 || C1 ]")

	g2 := rebuild(t, g)
	require.Len(t, g2.Groups(), 1)
	assert.Len(t, g2.Groups()[0].Edges, 2)
}

func TestReconstructBehavioralWrappedInBlock(t *testing.T) {
	g := buildClean(t, `R rds
(D) -- [ gm*vgs (->) || rds ] -- (S)
(X) -- [ id (->) ] -- (GND)
`)

	g2 := rebuild(t, g)

	var controlled, noise int
	for _, e := range g2.Edges() {
		switch e.Kind {
		case EdgeControlled:
			controlled++
			assert.Equal(t, "gm*vgs", e.Expression())
		case EdgeNoise:
			noise++
			assert.Equal(t, "id", e.NoiseID)
		}
	}
	assert.Equal(t, 1, controlled)
	assert.Equal(t, 1, noise)
}

func TestReconstructPreservesAliases(t *testing.T) {
	g := buildClean(t, `R R1
(A):(B)
(B):(C)
(A) -- R1 -- (GND)
`)

	g2 := rebuild(t, g)
	a, _ := g2.LookupNode("A")
	b, okB := g2.LookupNode("B")
	c, okC := g2.LookupNode("C")
	require.True(t, okB)
	require.True(t, okC)
	assert.True(t, g2.SameNet(a, b))
	assert.True(t, g2.SameNet(a, c))
	assert.Equal(t, "A", g2.PreferredName(a))
}

func TestReconstructPreservesSelfShort(t *testing.T) {
	g := buildClean(t, `R R1
(A) -- R1 -- (A)
`)
	require.Len(t, DetectShorts(g), 1)

	text := circuit.Format(Reconstruct(g))
	assert.Contains(t, text, "(A) -- R1 -- (A)")

	g2 := rebuild(t, g)
	assert.Len(t, DetectShorts(g2), 1)
	assert.Equal(t, terminalNets(g, "R1"), terminalNets(g2, "R1"))
}

func TestReconstructSourceOrientation(t *testing.T) {
	g := buildClean(t, `V V1
(GND) -- V1 (-+) -- (Vin)
`)

	g2 := rebuild(t, g)
	nets := terminalNets(g2, "V1")
	assert.Equal(t, "GND", nets["neg"])
	assert.Equal(t, "Vin", nets["pos"])
}

func TestPreferredNamePriorities(t *testing.T) {
	g := buildClean(t, `Nmos M1
M1 { G:(Vg), S:(GND), D:(X), B:(GND) }
(Vg):(VDD)
`)

	// User name beats the rail.
	id, _ := g.LookupNode("Vg")
	assert.Equal(t, "Vg", g.PreferredName(id))

	// Rail beats the device terminal.
	gnd, _ := g.LookupNode("GND")
	assert.Equal(t, "GND", g.PreferredName(gnd))
}
