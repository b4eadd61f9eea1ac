package content

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rgonek/lessonmd/attrs"
	"github.com/rgonek/lessonmd/widget"
)

// ErrStaleSegment indicates a widget segment whose span no longer holds its
// raw text in the content being edited.
var ErrStaleSegment = errors.New("stale widget segment")

// Serialize renders the canonical tag for a widget of typeName. Serializing an
// unregistered type fails with widget.ErrUnregistered.
func Serialize(reg *widget.Registry, typeName string, props widget.Props) (string, error) {
	desc, err := reg.Describe(typeName)
	if err != nil {
		return "", fmt.Errorf("serialize: %w", err)
	}
	text, err := attrs.Encode(desc, props)
	if err != nil {
		return "", fmt.Errorf("serialize %s: %w", typeName, err)
	}
	if text == "" {
		return "<" + typeName + " />", nil
	}
	return "<" + typeName + " " + text + " />", nil
}

// Replace swaps w's tag in src for tag, leaving every other byte untouched.
func Replace(src string, w *Widget, tag string) (string, error) {
	if err := checkSpan(src, w); err != nil {
		return "", err
	}
	return src[:w.Span.Start] + tag + src[w.Span.End:], nil
}

// Delete removes w's tag from src. When the tag stood on its own lines, the
// surrounding line breaks are merged so at most one blank line remains.
func Delete(src string, w *Widget) (string, error) {
	if err := checkSpan(src, w); err != nil {
		return "", err
	}

	before := src[:w.Span.Start]
	after := src[w.Span.End:]
	trimmedBefore := strings.TrimRight(before, " \t")
	trimmedAfter := strings.TrimLeft(after, " \t")
	lineBefore := trimmedBefore == "" || strings.HasSuffix(trimmedBefore, "\n")
	lineAfter := trimmedAfter == "" || strings.HasPrefix(trimmedAfter, "\n")
	if !lineBefore || !lineAfter {
		return before + after, nil
	}

	head := strings.TrimRight(trimmedBefore, "\n")
	tail := strings.TrimLeft(trimmedAfter, "\n")
	switch {
	case head == "":
		return tail, nil
	case tail == "":
		return head + "\n", nil
	}
	breaks := (len(trimmedBefore) - len(head)) + (len(trimmedAfter) - len(tail))
	if breaks > 2 {
		breaks = 2
	}
	return head + strings.Repeat("\n", breaks) + tail, nil
}

// Insert places tag at offset as its own block, separated from surrounding
// text by blank lines. It returns the new content and the span of the tag.
func Insert(src string, offset int, tag string) (string, Span) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(src) {
		offset = len(src)
	}
	for offset > 0 && offset < len(src) && !utf8.RuneStart(src[offset]) {
		offset--
	}

	before := strings.TrimRight(src[:offset], " \t")
	after := strings.TrimLeft(src[offset:], " \t")

	var b strings.Builder
	b.Grow(len(src) + len(tag) + 4)
	b.WriteString(before)
	if before != "" {
		b.WriteString(strings.Repeat("\n", max(0, 2-trailingNewlines(before))))
	}
	start := b.Len()
	b.WriteString(tag)
	end := b.Len()
	if after != "" {
		b.WriteString(strings.Repeat("\n", max(0, 2-leadingNewlines(after))))
	}
	b.WriteString(after)
	return b.String(), Span{Start: start, End: end}
}

// Append adds tag as a new block at the end of src.
func Append(src string, tag string) (string, Span) {
	return Insert(src, len(src), tag)
}

func checkSpan(src string, w *Widget) error {
	if w == nil || w.Span.Start < 0 || w.Span.End > len(src) || w.Span.Start > w.Span.End ||
		src[w.Span.Start:w.Span.End] != w.Source {
		return ErrStaleSegment
	}
	return nil
}

func trailingNewlines(s string) int {
	return len(s) - len(strings.TrimRight(s, "\n"))
}

func leadingNewlines(s string) int {
	return len(s) - len(strings.TrimLeft(s, "\n"))
}
