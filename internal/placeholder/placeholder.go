// Package placeholder swaps spans of text for opaque tokens that survive
// markdown processing, and swaps them back afterwards.
package placeholder

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Vault holds the strings replaced by tokens. A token is the sentinel rune,
// the decimal index of the held string, and the sentinel again.
type Vault struct {
	sentinel rune
	saved    []string
}

// New returns a Vault whose sentinel does not occur in text.
func New(text string) *Vault {
	return &Vault{sentinel: pickSentinel(text)}
}

// Hold stores s and returns the token standing in for it.
func (v *Vault) Hold(s string) string {
	v.saved = append(v.saved, s)
	return v.Token(len(v.saved) - 1)
}

// Token returns the token of the i-th held string.
func (v *Vault) Token(i int) string {
	s := string(v.sentinel)
	return s + strconv.Itoa(i) + s
}

func (v *Vault) Len() int { return len(v.saved) }

// Held returns the i-th held string.
func (v *Vault) Held(i int) string { return v.saved[i] }

// Restore replaces every token in text with the string it holds.
func (v *Vault) Restore(text string) string {
	return v.Expand(text, v.Held)
}

// Expand replaces every token in text with fn of its index. Malformed tokens
// and unknown indexes are left as they are.
func (v *Vault) Expand(text string, fn func(i int) string) string {
	if len(v.saved) == 0 {
		return text
	}
	s := string(v.sentinel)
	var b strings.Builder
	b.Grow(len(text))
	for {
		start := strings.Index(text, s)
		if start < 0 {
			b.WriteString(text)
			return b.String()
		}
		rest := text[start+len(s):]
		end := strings.Index(rest, s)
		idx, err := strconv.Atoi(rest[:max(end, 0)])
		if end < 0 || err != nil || idx < 0 || idx >= len(v.saved) {
			b.WriteString(text[:start+len(s)])
			text = rest
			continue
		}
		b.WriteString(text[:start])
		b.WriteString(fn(idx))
		text = rest[end+len(s):]
	}
}

// pickSentinel returns a private-use rune absent from text.
func pickSentinel(text string) rune {
	for r := rune(0xE000); r <= 0xF8FF; r++ {
		if !strings.ContainsRune(text, r) {
			return r
		}
	}
	// Text holding all 6400 private-use runes falls back to a noncharacter.
	for r := rune(0xFDD0); r <= 0xFDEF; r++ {
		if !strings.ContainsRune(text, r) {
			return r
		}
	}
	return utf8.RuneError
}
