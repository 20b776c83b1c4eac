package circuit

import (
	"errors"

	"github.com/alecthomas/participle/v2/lexer"
)

// circuitLexer defines the lexical structure of the circuijt notation.
// Statements are line oriented, so newlines survive as tokens while other
// whitespace only separates. Longer operators must precede their prefixes
// (`--` before `-`, `->` before `-`, polarity markers before `(`).
var circuitLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comments run from ';' to end of line and are never emitted.
	{Name: "Comment", Pattern: `;[^\n]*`},

	{Name: "Newline", Pattern: `\n`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},

	// Source polarity markers, e.g. V1 (-+)
	{Name: "Polarity", Pattern: `\((\-\+|\+\-)\)`},

	// Operators
	{Name: "Series", Pattern: `--`},
	{Name: "ArrowR", Pattern: `->`},
	{Name: "ArrowL", Pattern: `<-`},
	{Name: "Parallel", Pattern: `\|\|`},

	// Delimiters and punctuation
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "LBrace", Pattern: `\{`},
	{Name: "RBrace", Pattern: `\}`},
	{Name: "LBracket", Pattern: `\[`},
	{Name: "RBracket", Pattern: `\]`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Star", Pattern: `\*`},
	{Name: "Dot", Pattern: `\.`},
	{Name: "Plus", Pattern: `\+`},
	{Name: "Minus", Pattern: `-`},

	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
})

var symbols = circuitLexer.Symbols()

// tok returns the lexer symbol for a rule name. Rule names are static, so
// a miss is a programming error.
func tok(name string) lexer.TokenType {
	t, ok := symbols[name]
	if !ok {
		panic("circuit: unknown lexer symbol " + name)
	}
	return t
}

// Tokenize converts source text into a token stream with comments and
// insignificant whitespace removed. It fails with a LexError on a character
// outside every token class or on a delimiter left unterminated at end of
// input.
func Tokenize(filename, input string) ([]lexer.Token, error) {
	lx, err := circuitLexer.LexString(filename, input)
	if err != nil {
		return nil, asLexError(err)
	}

	var (
		toks    []lexer.Token
		openers []lexer.Token
	)
	for {
		t, err := lx.Next()
		if err != nil {
			return nil, asLexError(err)
		}
		if t.EOF() {
			break
		}
		switch t.Type {
		case tok("Comment"), tok("Whitespace"):
			continue
		case tok("LParen"), tok("LBrace"), tok("LBracket"):
			openers = append(openers, t)
		case tok("RParen"), tok("RBrace"), tok("RBracket"):
			if n := len(openers); n > 0 && closes(openers[n-1].Type, t.Type) {
				openers = openers[:n-1]
			}
			// A closer with no matching opener is left for the parser,
			// which reports it as an unbalanced delimiter with context.
		}
		toks = append(toks, t)
	}

	if len(openers) > 0 {
		open := openers[len(openers)-1]
		return nil, &LexError{Pos: open.Pos, Reason: "unterminated " + delimiterName(open.Type)}
	}
	return toks, nil
}

func closes(open, close lexer.TokenType) bool {
	switch open {
	case tok("LParen"):
		return close == tok("RParen")
	case tok("LBrace"):
		return close == tok("RBrace")
	case tok("LBracket"):
		return close == tok("RBracket")
	}
	return false
}

func delimiterName(t lexer.TokenType) string {
	switch t {
	case tok("LParen"):
		return `"("`
	case tok("LBrace"):
		return `"{"`
	case tok("LBracket"):
		return `"["`
	}
	return "delimiter"
}

func asLexError(err error) error {
	var lerr *lexer.Error
	if errors.As(err, &lerr) {
		return &LexError{Pos: lerr.Pos, Reason: lerr.Msg}
	}
	return &LexError{Reason: err.Error()}
}
