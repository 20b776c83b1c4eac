package ssm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kreijstal/circuijts/pkg/circuit"
	"github.com/Kreijstal/circuijts/pkg/graph"
)

func buildGraph(t *testing.T, src string) *graph.Graph {
	t.Helper()
	prog, err := circuit.ParseString("ssm_test.circuijt", src)
	require.NoError(t, err)
	require.Empty(t, prog.Issues)
	g, errs := graph.Build(prog)
	require.Empty(t, errs)
	return g
}

const nmosAmp = `
Nmos M1
R R_load
M1 { G:(Vin), D:(Vout), S:(GND), B:(GND) }
(Vout) -- R_load -- (VDD)
`

func TestGenerateNmosModel(t *testing.T) {
	g := buildGraph(t, nmosAmp)
	stmts, rules := Generate(g)
	require.Len(t, rules, 1)

	text := circuit.Format(stmts)
	assert.Contains(t, text, "R rds_1")
	assert.Contains(t, text, "(GND):(GND)")
	assert.Contains(t, text, "(Vout) -- [ gm_1*VGS_1 (->) || gmB_1*VBS_1 (->) || rds_1 ] -- (GND)")

	r := rules[0]
	assert.Equal(t, "M1", r.Instance)
	assert.Equal(t, circuit.TypeNmos, r.Type)
	assert.Equal(t, "rds_1", r.ModelInstance)
	assert.Equal(t, "VGS_1, VBS_1", r.ControlVoltages)
	assert.Equal(t, "VGS_1=V(Vin)-V(GND), VBS_1=V(GND)-V(GND)", r.VoltageDefs)
	assert.Equal(t, "Vin", r.ExternalNets["G"])
	assert.Equal(t, "Vout", r.ExternalNets["D"])
}

func TestGeneratePmosModel(t *testing.T) {
	g := buildGraph(t, `
Pmos M2
M2 { G:(Vb), D:(Out), S:(VDD), B:(VDD) }
`)
	stmts, rules := Generate(g)
	require.Len(t, rules, 1)

	text := circuit.Format(stmts)
	assert.Contains(t, text, "R rds_2")
	assert.Contains(t, text, "(VDD):(VDD)")
	assert.Contains(t, text, "(Out) -- [ -gm_2*VSG_2 (<-) || -gmB_2*VSB_2 (<-) || rds_2 ] -- (VDD)")

	r := rules[0]
	assert.Equal(t, circuit.TypePmos, r.Type)
	assert.Equal(t, "VSG_2, VSB_2", r.ControlVoltages)
	assert.Equal(t, "VSG_2=V(VDD)-V(Vb), VSB_2=V(VDD)-V(VDD)", r.VoltageDefs)
}

func TestGeneratedModelReparses(t *testing.T) {
	g := buildGraph(t, nmosAmp)
	stmts, _ := Generate(g)

	prog, err := circuit.ParseString("model.circuijt", circuit.Format(stmts))
	require.NoError(t, err)
	require.Empty(t, prog.Issues)
	mg, errs := graph.Build(prog)
	require.Empty(t, errs)
	_, ok := mg.Instance("rds_1")
	assert.True(t, ok)
	mustNode(t, mg, "Vout")
	mustNode(t, mg, "GND")
}

func mustNode(t *testing.T, g *graph.Graph, name string) graph.NodeID {
	t.Helper()
	id, ok := g.LookupNode(name)
	require.True(t, ok, "node %q missing", name)
	return id
}

func TestModelSuffixStripsLeadingM(t *testing.T) {
	g := buildGraph(t, `
Nmos QA
QA { G:(A), D:(B), S:(GND), B:(GND) }
`)
	stmts, rules := Generate(g)
	assert.Equal(t, "rds_QA", rules[0].ModelInstance)
	assert.Contains(t, circuit.Format(stmts), "gm_QA*VGS_QA")
}

func TestGenerateOrderFollowsDeclarations(t *testing.T) {
	g := buildGraph(t, `
Nmos M1
Pmos M2
M1 { G:(A), D:(X), S:(GND), B:(GND) }
M2 { G:(A), D:(X), S:(VDD), B:(VDD) }
`)
	_, rules := Generate(g)
	require.Len(t, rules, 2)
	assert.Equal(t, "M1", rules[0].Instance)
	assert.Equal(t, "M2", rules[1].Instance)
}

func TestGenerateSkipsLinearCircuits(t *testing.T) {
	g := buildGraph(t, `
R R1
C C1
(A) -- R1 -- (B) -- C1 -- (GND)
`)
	stmts, rules := Generate(g)
	assert.Empty(t, stmts)
	assert.Empty(t, rules)
}

func TestRulesText(t *testing.T) {
	g := buildGraph(t, nmosAmp)
	_, rules := Generate(g)
	text := RulesText(rules)

	assert.True(t, strings.HasPrefix(text, "Small Signal Model Transformation Rules\n"))
	assert.Contains(t, text, "[M1 Small Signal Model]")
	assert.Contains(t, text, "Original: M1 (Nmos)")
	assert.Contains(t, text, "Model: rds_1")
	assert.Contains(t, text, "Connections: GND:GND, Vout:[gm_1*VGS_1||gmB_1*VBS_1||rds_1], GND")
	assert.Contains(t, text, "----------------------------------------")
}
