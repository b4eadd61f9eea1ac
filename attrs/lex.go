// Package attrs converts between widget property bags and the attribute text
// written inside a widget tag: name="string" and name={literal}.
package attrs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSyntax indicates attribute text that does not follow the tag grammar.
var ErrSyntax = errors.New("malformed attribute")

// Form is the literal shape an attribute value was written in.
type Form int

const (
	// Quoted values are single or double quoted strings.
	Quoted Form = iota
	// Braced values are brace-delimited literals.
	Braced
)

// Attribute is one lexed name=value pair.
type Attribute struct {
	Name string
	// Value is the unescaped string for Quoted values and the text between
	// the outer braces for Braced values.
	Value string
	Form  Form
	// Offset is the byte offset of Name within the lexed text.
	Offset int
}

// Lex splits attribute text into attributes. The whole input must consist of
// whitespace-separated attributes.
func Lex(raw string) ([]Attribute, error) {
	list, end, err := Scan(raw, 0)
	if err != nil {
		return nil, err
	}
	if end < len(raw) {
		return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, raw[end], end)
	}
	return list, nil
}

// Scan lexes attributes from src starting at i and stops before the first
// byte, after whitespace, that cannot start an attribute name. It returns the
// attributes and the index where lexing stopped.
func Scan(src string, i int) ([]Attribute, int, error) {
	var list []Attribute
	for {
		i = skipSpace(src, i)
		if i >= len(src) || !isNameStart(src[i]) {
			return list, i, nil
		}

		nameStart := i
		for i < len(src) && isNameChar(src[i]) {
			i++
		}
		name := src[nameStart:i]

		i = skipSpace(src, i)
		if i >= len(src) || src[i] != '=' {
			return nil, i, fmt.Errorf("%w: %s has no value", ErrSyntax, name)
		}
		i = skipSpace(src, i+1)
		if i >= len(src) {
			return nil, i, fmt.Errorf("%w: %s has no value", ErrSyntax, name)
		}

		attr := Attribute{Name: name, Offset: nameStart}
		switch src[i] {
		case '"', '\'':
			value, next, ok := readQuoted(src, i)
			if !ok {
				return nil, i, fmt.Errorf("%w: unterminated string for %s", ErrSyntax, name)
			}
			attr.Value, attr.Form, i = value, Quoted, next
		case '{':
			value, next, ok := readBraced(src, i)
			if !ok {
				return nil, i, fmt.Errorf("%w: unbalanced braces for %s", ErrSyntax, name)
			}
			attr.Value, attr.Form, i = value, Braced, next
		default:
			return nil, i, fmt.Errorf("%w: %s value must be quoted or braced", ErrSyntax, name)
		}
		list = append(list, attr)

		if i < len(src) && !isSpace(src[i]) {
			return list, i, nil
		}
	}
}

func readQuoted(src string, start int) (string, int, bool) {
	quote := src[start]
	var value strings.Builder
	for idx := start + 1; idx < len(src); idx++ {
		ch := src[idx]
		if ch == '\\' && idx+1 < len(src) {
			next := src[idx+1]
			switch next {
			case quote, '\\', '"', '\'':
				value.WriteByte(next)
			case 'n':
				value.WriteByte('\n')
			case 't':
				value.WriteByte('\t')
			case 'r':
				value.WriteByte('\r')
			default:
				value.WriteByte(ch)
				value.WriteByte(next)
			}
			idx++
			continue
		}
		if ch == quote {
			return value.String(), idx + 1, true
		}
		value.WriteByte(ch)
	}
	return "", 0, false
}

// readBraced reads a brace-delimited literal starting at src[start] == '{'.
// Nested braces are balanced and braces inside string literals are ignored.
func readBraced(src string, start int) (string, int, bool) {
	depth := 0
	var quote byte
	escaped := false
	for idx := start; idx < len(src); idx++ {
		ch := src[idx]
		if quote != 0 {
			if escaped {
				escaped = false
				continue
			}
			if ch == '\\' {
				escaped = true
				continue
			}
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '"', '\'', '`':
			quote = ch
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return src[start+1 : idx], idx + 1, true
			}
		}
	}
	return "", 0, false
}

func skipSpace(src string, i int) int {
	for i < len(src) && isSpace(src[i]) {
		i++
	}
	return i
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isNameStart(ch byte) bool {
	return ch == '_' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}

func isNameChar(ch byte) bool {
	return isNameStart(ch) || ch == '-' || ch >= '0' && ch <= '9'
}
