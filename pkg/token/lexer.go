package token

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"text/scanner"
)

// Language selects keyword set and comment syntax
type Language string

const (
	LanguageC      Language = "c"
	LanguagePython Language = "python"
	LanguageGo     Language = "go"
)

var keywords = map[Language]map[string]bool{
	LanguageC: set(
		"auto", "break", "case", "char", "const", "continue", "default", "do",
		"double", "else", "enum", "extern", "float", "for", "goto", "if",
		"inline", "int", "long", "register", "restrict", "return", "short",
		"signed", "sizeof", "static", "struct", "switch", "typedef", "union",
		"unsigned", "void", "volatile", "while", "_Bool", "_Complex", "_Imaginary",
	),
	LanguagePython: set(
		"False", "None", "True", "and", "as", "assert", "async", "await", "break",
		"class", "continue", "def", "del", "elif", "else", "except", "finally",
		"for", "from", "global", "if", "import", "in", "is", "lambda", "nonlocal",
		"not", "or", "pass", "raise", "return", "try", "while", "with", "yield",
	),
	LanguageGo: set(
		"break", "case", "chan", "const", "continue", "default", "defer", "else",
		"fallthrough", "for", "func", "go", "goto", "if", "import", "interface",
		"map", "package", "range", "return", "select", "struct", "switch", "type", "var",
	),
}

// twoCharOps are operators merged from two scanner runes
var twoCharOps = set(
	"==", "!=", "<=", ">=", "&&", "||", "++", "--", "+=", "-=", "*=", "/=",
	"%=", "&=", "|=", "^=", ":=", "->", "<-", "<<", ">>", "**", "//",
)

var punctuation = set("(", ")", "[", "]", "{", "}", ",", ";", ".", ":", "?")

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// Languages lists supported languages
func Languages() []Language {
	return []Language{LanguageC, LanguageGo, LanguagePython}
}

// ParseLanguage parses a language name
func ParseLanguage(s string) (Language, error) {
	lang := Language(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := keywords[lang]; !ok {
		return "", fmt.Errorf("unsupported language: %q", s)
	}
	return lang, nil
}

// LanguageForFile guesses the language from a file extension
func LanguageForFile(path string) (Language, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".c", ".h":
		return LanguageC, nil
	case ".py":
		return LanguagePython, nil
	case ".go":
		return LanguageGo, nil
	default:
		return "", fmt.Errorf("cannot infer language from %q", path)
	}
}

// Lex splits source text into classified tokens
func Lex(src string, lang Language) ([]Token, error) {
	kw, ok := keywords[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %q", lang)
	}

	var s scanner.Scanner
	s.Init(strings.NewReader(src))
	s.Filename = string(lang)
	s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats |
		scanner.ScanStrings | scanner.ScanRawStrings
	if lang != LanguagePython {
		s.Mode |= scanner.ScanChars | scanner.ScanComments
	}

	var scanErr error
	s.Error = func(s *scanner.Scanner, msg string) {
		if scanErr == nil {
			scanErr = fmt.Errorf("%s: %s", s.Position, msg)
		}
	}

	var tokens []Token
	for tok := s.Scan(); tok != scanner.EOF; tok = s.Scan() {
		pos := s.Position
		text := s.TokenText()
		t := Token{Lexeme: text, Line: pos.Line, Col: pos.Column}

		switch tok {
		case scanner.Ident:
			t.Kind = KindIdentifier
			if kw[text] {
				t.Kind = KindKeyword
			}
		case scanner.Int, scanner.Float:
			t.Kind = KindLiteral
			t = t.WithValue(text)
		case scanner.Char, scanner.String, scanner.RawString:
			t.Kind = KindLiteral
			t = t.WithValue(unquote(text))
		case scanner.Comment:
			t.Kind = KindComment
		default:
			if lang == LanguagePython {
				if tok == '#' {
					t.Kind = KindComment
					t.Lexeme = "#" + restOfLine(&s)
					break
				}
				if tok == '\'' {
					body := quoted(&s, '\'')
					t.Kind = KindLiteral
					t.Lexeme = "'" + body + "'"
					t = t.WithValue(body)
					break
				}
			}
			if pair := text + string(s.Peek()); twoCharOps[pair] {
				s.Next()
				t.Lexeme = pair
			}
			t.Kind = KindOperator
			if punctuation[t.Lexeme] {
				t.Kind = KindPunctuation
			}
		}
		tokens = append(tokens, t)
	}

	if scanErr != nil {
		return tokens, fmt.Errorf("failed to lex %s source: %w", lang, scanErr)
	}
	return tokens, nil
}

func restOfLine(s *scanner.Scanner) string {
	var b strings.Builder
	for ch := s.Peek(); ch != '\n' && ch != scanner.EOF; ch = s.Peek() {
		b.WriteRune(s.Next())
	}
	return b.String()
}

// quoted reads up to the closing quote, honoring backslash escapes
func quoted(s *scanner.Scanner, quote rune) string {
	var b strings.Builder
	for ch := s.Peek(); ch != scanner.EOF && ch != '\n'; ch = s.Peek() {
		s.Next()
		if ch == quote {
			break
		}
		b.WriteRune(ch)
		if ch == '\\' && s.Peek() != scanner.EOF {
			b.WriteRune(s.Next())
		}
	}
	return b.String()
}

func unquote(text string) string {
	if v, err := strconv.Unquote(text); err == nil {
		return v
	}
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}
