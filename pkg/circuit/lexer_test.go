package circuit

import (
	"testing"
)

func TestTokenizeBasicChain(t *testing.T) {
	toks, err := Tokenize("test", "(Vin) -- R1 -- (Vout)")
	if err != nil {
		t.Fatalf("Failed to tokenize: %v", err)
	}

	var kinds []string
	for _, tk := range toks {
		for name, typ := range symbols {
			if typ == tk.Type {
				kinds = append(kinds, name)
			}
		}
	}

	want := []string{"LParen", "Ident", "RParen", "Series", "Ident", "Series", "LParen", "Ident", "RParen"}
	if len(kinds) != len(want) {
		t.Fatalf("Expected %d tokens, got %d: %v", len(want), len(kinds), kinds)
	}
	for i, k := range want {
		if kinds[i] != k {
			t.Errorf("Token %d: expected %s, got %s", i, k, kinds[i])
		}
	}
}

func TestTokenizeStripsComments(t *testing.T) {
	toks, err := Tokenize("test", "R R1 ; the load resistor\n")
	if err != nil {
		t.Fatalf("Failed to tokenize: %v", err)
	}
	for _, tk := range toks {
		if tk.Type == tok("Comment") {
			t.Errorf("Comment token leaked through: %q", tk.Value)
		}
	}
	// two idents plus the newline
	if len(toks) != 3 {
		t.Fatalf("Expected 3 tokens, got %d", len(toks))
	}
}

func TestTokenizePolarityMarkers(t *testing.T) {
	toks, err := Tokenize("test", "(-+) (+-)")
	if err != nil {
		t.Fatalf("Failed to tokenize: %v", err)
	}
	if len(toks) != 2 {
		t.Fatalf("Expected 2 tokens, got %d", len(toks))
	}
	for _, tk := range toks {
		if tk.Type != tok("Polarity") {
			t.Errorf("Expected polarity token, got %q", tk.Value)
		}
	}
}

func TestTokenizeArrows(t *testing.T) {
	toks, err := Tokenize("test", "->Id1 <-Id2")
	if err != nil {
		t.Fatalf("Failed to tokenize: %v", err)
	}
	if toks[0].Type != tok("ArrowR") {
		t.Errorf("Expected ArrowR, got %q", toks[0].Value)
	}
	if toks[2].Type != tok("ArrowL") {
		t.Errorf("Expected ArrowL, got %q", toks[2].Value)
	}
}

func TestTokenizeUnterminatedParen(t *testing.T) {
	_, err := Tokenize("test", "(Vin -- R1")
	if err == nil {
		t.Fatal("Expected error for unterminated paren")
	}
	lexErr, ok := err.(*LexError)
	if !ok {
		t.Fatalf("Expected LexError, got %T: %v", err, err)
	}
	if lexErr.Pos.Line != 1 {
		t.Errorf("Expected error on line 1, got %d", lexErr.Pos.Line)
	}
}

func TestTokenizeUnterminatedBracket(t *testing.T) {
	for _, input := range []string{"[ R1 || C1", "M1 { G:(Vin)"} {
		_, err := Tokenize("test", input)
		if err == nil {
			t.Errorf("Expected error for %q", input)
		}
	}
}

func TestTokenizeBadCharacter(t *testing.T) {
	_, err := Tokenize("test", "R R1 $")
	if err == nil {
		t.Fatal("Expected error for unrecognized character")
	}
	if _, ok := err.(*LexError); !ok {
		t.Fatalf("Expected LexError, got %T: %v", err, err)
	}
}

func TestTokenizePositions(t *testing.T) {
	toks, err := Tokenize("test", "R R1\nC C1")
	if err != nil {
		t.Fatalf("Failed to tokenize: %v", err)
	}
	last := toks[len(toks)-1]
	if last.Pos.Line != 2 {
		t.Errorf("Expected last token on line 2, got %d", last.Pos.Line)
	}
}
