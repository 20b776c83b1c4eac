package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeFilter(t *testing.T) {
	prog := parseOK(t, "R R_filter\nC C_filter\n(Vin) -- R_filter -- (Vout) -- C_filter -- (GND)\n")
	sum := Summarize(prog.Statements)

	assert.Equal(t, []string{"GND", "Vin", "Vout"}, sum.ExplicitNodes)
	assert.Empty(t, sum.ImplicitNodes)
	assert.Equal(t, 3, sum.NodeCount())
	assert.Equal(t, 1, sum.Resistors)
	assert.Equal(t, 1, sum.Capacitors)
	assert.Equal(t, []string{"C_filter", "R_filter"}, sum.Components)
}

func TestSummarizeImplicitNodes(t *testing.T) {
	prog := parseOK(t, "R R1\nC C1\n(N1) -- R1 -- C1 -- (N2)\n")
	sum := Summarize(prog.Statements)

	assert.Equal(t, []string{"_implicit_1"}, sum.ImplicitNodes)
	assert.Equal(t, 3, sum.NodeCount())
}

func TestSummarizeChainEndingOnComponent(t *testing.T) {
	prog := parseOK(t, "R R1\n(N1) -- R1\n")
	sum := Summarize(prog.Statements)
	assert.Len(t, sum.ImplicitNodes, 1)
}

func TestSummarizeCountsTypesAndBlocks(t *testing.T) {
	input := `Nmos M1
Pmos M2
V V1
I I1
L L1
Opamp U1
R R1
C C1
M1 { G:(Vin), S:(GND) }
(Vout) -- [ R1 || C1 ] -- (GND)
`
	prog := parseOK(t, input)
	sum := Summarize(prog.Statements)

	assert.Equal(t, 1, sum.NMOS)
	assert.Equal(t, 1, sum.PMOS)
	assert.Equal(t, 1, sum.Voltages)
	assert.Equal(t, 1, sum.Currents)
	assert.Equal(t, 1, sum.Inductors)
	assert.Equal(t, 1, sum.Opamps)
	assert.Equal(t, 1, sum.ParallelBlocks)
	assert.Contains(t, sum.ExplicitNodes, "M1.G")
	assert.Contains(t, sum.ExplicitNodes, "Vin")
}
