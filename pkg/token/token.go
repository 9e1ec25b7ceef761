// Package token defines the classified token stream the composer consumes
package token

import (
	"fmt"
	"strings"
)

// Kind classifies a token
type Kind int

const (
	KindKeyword Kind = iota
	KindIdentifier
	KindOperator
	KindLiteral
	KindComment
	KindPunctuation
)

var kindNames = [...]string{"keyword", "identifier", "operator", "literal", "comment", "punctuation"}

// String returns the lowercase kind name
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind parses a kind name
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown token kind: %q", s)
}

// MarshalText encodes the kind by name
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Token is one classified lexeme in source order
type Token struct {
	Kind   Kind    `json:"kind"`
	Lexeme string  `json:"lexeme"`
	Value  *string `json:"value,omitempty"`
	Line   int     `json:"line,omitempty"`
	Col    int     `json:"col,omitempty"`
}

// New creates a token without position or value
func New(kind Kind, lexeme string) Token {
	return Token{Kind: kind, Lexeme: lexeme}
}

// WithValue returns a copy of t carrying a literal value
func (t Token) WithValue(v string) Token {
	t.Value = &v
	return t
}

// String renders the token for debugging
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Kind, t.Lexeme)
}
