package circuit

import (
	"testing"
)

func TestFormatRoundTrip(t *testing.T) {
	input := `Nmos M1
R R1
C C1
V V1
M1 { G:(Vin), S:(GND), D:(Vout) }
(GND) -- V1 (-+) -- (Vin)
(Vout) -- [ R1 || C1 ] -- (GND)
(M1.S):(GND)
(A) -- ->Iload -- R1 -- (B)`

	prog := parseOK(t, input)
	formatted := Format(prog.Statements)
	if formatted != input {
		t.Errorf("Format not canonical.\nwant:\n%s\ngot:\n%s", input, formatted)
	}

	again := parseOK(t, formatted)
	if Format(again.Statements) != formatted {
		t.Error("Second format pass changed the output")
	}
}

func TestFormatBehavioral(t *testing.T) {
	input := "R rds\n(D) -- [ gm*vgs (->) || -gmB*vbs (<-) || id (->) || rds ] -- (S)"
	prog := parseOK(t, input)
	if got := Format(prog.Statements); got != input {
		t.Errorf("want %q, got %q", input, got)
	}
}

func TestFormatNormalizesWhitespace(t *testing.T) {
	prog := parseOK(t, "R   R1\n(A)--R1--(B)\n")
	want := "R R1\n(A) -- R1 -- (B)"
	if got := Format(prog.Statements); got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}
