// Package ssm derives small-signal equivalent circuits from a lowered
// circuit graph. MOS devices are replaced by their hybrid-pi model: an
// output resistance in parallel with gm and body-effect controlled
// sources, with the bulk tied to the appropriate rail.
package ssm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Kreijstal/circuijts/pkg/circuit"
	"github.com/Kreijstal/circuijts/pkg/graph"
)

// Rule documents one device substitution so the generated model can be
// traced back to the original instance.
type Rule struct {
	Instance        string
	Type            circuit.ComponentType
	ModelInstance   string
	ControlVoltages string
	VoltageDefs     string
	Connections     string
	ExternalNets    map[string]string
}

func (r Rule) String() string {
	nets := make([]string, 0, len(r.ExternalNets))
	for term := range r.ExternalNets {
		nets = append(nets, term)
	}
	sort.Strings(nets)
	pairs := make([]string, len(nets))
	for i, term := range nets {
		pairs[i] = term + ":" + r.ExternalNets[term]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s Small Signal Model]\n", r.Instance)
	fmt.Fprintf(&b, "Original: %s (%s) with connections {%s}\n", r.Instance, r.Type, strings.Join(pairs, ", "))
	fmt.Fprintf(&b, "Model: %s\n", r.ModelInstance)
	fmt.Fprintf(&b, "Control voltages: %s\n", r.ControlVoltages)
	fmt.Fprintf(&b, "Voltage definitions: %s\n", r.VoltageDefs)
	fmt.Fprintf(&b, "Connections: %s\n", r.Connections)
	b.WriteString("----------------------------------------\n")
	return b.String()
}

// Generate builds the small-signal model statements for every MOS
// instance in the graph, in declaration order, along with one Rule per
// replaced device. Non-MOS instances are left out of the model; they
// are already linear.
func Generate(g *graph.Graph) ([]circuit.Statement, []Rule) {
	var stmts []circuit.Statement
	var rules []Rule
	for _, inst := range g.Instances() {
		switch inst.Type {
		case circuit.TypeNmos:
			s, r := nmosModel(g, inst)
			stmts = append(stmts, s...)
			rules = append(rules, r)
		case circuit.TypePmos:
			s, r := pmosModel(g, inst)
			stmts = append(stmts, s...)
			rules = append(rules, r)
		}
	}
	return stmts, rules
}

// externalNets maps each bound terminal to its preferred net name.
func externalNets(g *graph.Graph, inst *graph.Instance) map[string]string {
	nets := map[string]string{}
	for term, node := range inst.Terminals {
		nets[term] = g.PreferredName(node)
	}
	return nets
}

// modelSuffix strips the conventional M prefix from a device name for
// use in derived identifiers.
func modelSuffix(name string) string {
	if strings.HasPrefix(name, "M") && len(name) > 1 {
		return name[1:]
	}
	return name
}

func nmosModel(g *graph.Graph, inst *graph.Instance) ([]circuit.Statement, Rule) {
	nets := externalNets(g, inst)
	sfx := modelSuffix(inst.Name)
	rds := "rds_" + sfx
	gm := "gm_" + sfx
	gmb := "gmB_" + sfx
	vgs := "VGS_" + sfx
	vbs := "VBS_" + sfx

	stmts := []circuit.Statement{
		&circuit.Declaration{TypeName: "R", Name: rds},
	}
	if bulk, ok := nets["B"]; ok {
		stmts = append(stmts, &circuit.DirectAssignment{
			From: circuit.NodeRef{Node: bulk},
			To:   circuit.NodeRef{Node: "GND"},
		})
	}
	if drain, ok := nets["D"]; ok {
		if source, ok := nets["S"]; ok {
			stmts = append(stmts, drainSourcePath(drain, source, rds, []*circuit.ControlledSource{
				{Gain: gm, Control: vgs, Direction: circuit.DirForward},
				{Gain: gmb, Control: vbs, Direction: circuit.DirForward},
			}))
		}
	}

	return stmts, Rule{
		Instance:        inst.Name,
		Type:            inst.Type,
		ModelInstance:   rds,
		ControlVoltages: vgs + ", " + vbs,
		VoltageDefs: fmt.Sprintf("%s=V(%s)-V(%s), %s=V(%s)-V(%s)",
			vgs, netOr(nets, "G"), netOr(nets, "S"),
			vbs, netOr(nets, "B"), netOr(nets, "S")),
		Connections: fmt.Sprintf("%s:GND, %s:[%s*%s||%s*%s||%s], %s",
			netOr(nets, "B"), netOr(nets, "D"), gm, vgs, gmb, vbs, rds, netOr(nets, "S")),
		ExternalNets: nets,
	}
}

func pmosModel(g *graph.Graph, inst *graph.Instance) ([]circuit.Statement, Rule) {
	nets := externalNets(g, inst)
	sfx := modelSuffix(inst.Name)
	rds := "rds_" + sfx
	gm := "-gm_" + sfx
	gmb := "-gmB_" + sfx
	vsg := "VSG_" + sfx
	vsb := "VSB_" + sfx

	stmts := []circuit.Statement{
		&circuit.Declaration{TypeName: "R", Name: rds},
	}
	if bulk, ok := nets["B"]; ok {
		stmts = append(stmts, &circuit.DirectAssignment{
			From: circuit.NodeRef{Node: bulk},
			To:   circuit.NodeRef{Node: "VDD"},
		})
	}
	if drain, ok := nets["D"]; ok {
		if source, ok := nets["S"]; ok {
			stmts = append(stmts, drainSourcePath(drain, source, rds, []*circuit.ControlledSource{
				{Gain: gm, Control: vsg, Direction: circuit.DirReverse},
				{Gain: gmb, Control: vsb, Direction: circuit.DirReverse},
			}))
		}
	}

	return stmts, Rule{
		Instance:        inst.Name,
		Type:            inst.Type,
		ModelInstance:   rds,
		ControlVoltages: vsg + ", " + vsb,
		VoltageDefs: fmt.Sprintf("%s=V(%s)-V(%s), %s=V(%s)-V(%s)",
			vsg, netOr(nets, "S"), netOr(nets, "G"),
			vsb, netOr(nets, "S"), netOr(nets, "B")),
		Connections: fmt.Sprintf("%s:VDD, %s:[%s*%s||%s*%s||%s], %s",
			netOr(nets, "B"), netOr(nets, "D"), gm, vsg, gmb, vsb, rds, netOr(nets, "S")),
		ExternalNets: nets,
	}
}

// drainSourcePath builds the (D) -- [ gm*V || gmb*V || rds ] -- (S)
// chain shared by both device flavors.
func drainSourcePath(drain, source, rds string, controlled []*circuit.ControlledSource) circuit.Statement {
	block := &circuit.ParallelBlock{}
	for _, cs := range controlled {
		block.Elements = append(block.Elements, cs)
	}
	block.Elements = append(block.Elements, &circuit.ComponentElem{Name: rds})
	return &circuit.SeriesChain{Elements: []circuit.ChainElement{
		&circuit.NodeElem{Ref: circuit.NodeRef{Node: drain}},
		block,
		&circuit.NodeElem{Ref: circuit.NodeRef{Node: source}},
	}}
}

func netOr(nets map[string]string, term string) string {
	if net, ok := nets[term]; ok {
		return net
	}
	return term
}

// RulesText renders the rule annotations the way the generator writes
// them to the rules file.
func RulesText(rules []Rule) string {
	var b strings.Builder
	b.WriteString("Small Signal Model Transformation Rules\n")
	b.WriteString("======================================\n\n")
	for _, r := range rules {
		b.WriteString(r.String())
	}
	return b.String()
}
