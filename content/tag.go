// Package content parses lesson content into prose and widget segments and
// splices serialized widget tags back into it.
package content

import (
	"strings"

	"github.com/rgonek/lessonmd/attrs"
)

// TagKind distinguishes the tag shapes LexTag recognises.
type TagKind int

const (
	// SelfClosing is <Name attrs />, the only shape that forms a widget.
	SelfClosing TagKind = iota
	// Open is a <Name attrs> head.
	Open
	// Close is a </Name> closer.
	Close
)

// Tag is a lexed tag. Start and End are byte offsets into the lexed source.
type Tag struct {
	Kind  TagKind
	Name  string
	Start int
	End   int
	Attrs []attrs.Attribute
}

// LexTag lexes a capitalised tag starting at src[i]. Tags may span lines and
// attribute values may contain '>' or "/>" inside quotes or braces.
func LexTag(src string, i int) (Tag, bool) {
	if i < 0 || i+1 >= len(src) || src[i] != '<' {
		return Tag{}, false
	}

	if src[i+1] == '/' {
		name, idx := lexTagName(src, i+2)
		if name == "" {
			return Tag{}, false
		}
		for idx < len(src) && (src[idx] == ' ' || src[idx] == '\t') {
			idx++
		}
		if idx >= len(src) || src[idx] != '>' {
			return Tag{}, false
		}
		return Tag{Kind: Close, Name: name, Start: i, End: idx + 1}, true
	}

	name, idx := lexTagName(src, i+1)
	if name == "" || idx >= len(src) {
		return Tag{}, false
	}
	if ch := src[idx]; ch != '/' && ch != '>' && !isSpace(ch) {
		return Tag{}, false
	}

	list, idx, err := attrs.Scan(src, idx)
	if err != nil {
		return Tag{}, false
	}
	for idx < len(src) && isSpace(src[idx]) {
		idx++
	}

	switch {
	case strings.HasPrefix(src[idx:], "/>"):
		return Tag{Kind: SelfClosing, Name: name, Start: i, End: idx + 2, Attrs: list}, true
	case idx < len(src) && src[idx] == '>':
		return Tag{Kind: Open, Name: name, Start: i, End: idx + 1, Attrs: list}, true
	default:
		return Tag{}, false
	}
}

func lexTagName(src string, i int) (string, int) {
	if i >= len(src) || src[i] < 'A' || src[i] > 'Z' {
		return "", i
	}
	start := i
	for i < len(src) && isAlnum(src[i]) {
		i++
	}
	return src[start:i], i
}

func isAlnum(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9'
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}
