package circuit

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// Error reasons reused across the package so callers can match on them
// without parsing message text.
const (
	ReasonChainStart      = "chain must start with a node or terminal"
	ReasonSingleLine      = "block must be single line"
	ReasonUnbalanced      = "unbalanced delimiter"
	ReasonDanglingCurrent = "dangling current label"

	ReasonDuplicateInstance  = "duplicate instance"
	ReasonUnknownType        = "unknown type"
	ReasonUndeclaredInstance = "undeclared instance"

	ReasonInvalidTerminal  = "terminal-name invalid for type"
	ReasonTerminalAssigned = "terminal already assigned"
)

// LexError reports a malformed token or an unterminated delimiter. It is
// fatal: the parser never runs on a token stream that failed to lex.
type LexError struct {
	Pos    lexer.Position
	Reason string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s: lex error: %s", position(e.Pos), e.Reason)
}

// ParseError reports a grammar violation. Fatal, like LexError: later
// phases cannot trust a malformed statement list.
type ParseError struct {
	Pos    lexer.Position
	Reason string
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: parse error: %s: %s", position(e.Pos), e.Reason, e.Detail)
	}
	return fmt.Sprintf("%s: parse error: %s", position(e.Pos), e.Reason)
}

// DeclarationError reports a duplicate or unknown declaration, or a
// reference to an undeclared instance. Accumulated, not fatal.
type DeclarationError struct {
	Pos    lexer.Position
	Reason string
	Detail string
}

func (e *DeclarationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: declaration error: %s: %s", position(e.Pos), e.Reason, e.Detail)
	}
	return fmt.Sprintf("%s: declaration error: %s", position(e.Pos), e.Reason)
}

// ConnectionError reports an invalid or conflicting terminal binding.
// Accumulated, not fatal.
type ConnectionError struct {
	Pos    lexer.Position
	Reason string
	Detail string
}

func (e *ConnectionError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: connection error: %s: %s", position(e.Pos), e.Reason, e.Detail)
	}
	return fmt.Sprintf("%s: connection error: %s", position(e.Pos), e.Reason)
}

func position(pos lexer.Position) string {
	if pos.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", pos.Filename, pos.Line, pos.Column)
	}
	return fmt.Sprintf("%d:%d", pos.Line, pos.Column)
}
