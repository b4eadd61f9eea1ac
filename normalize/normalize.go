// Package normalize repairs pasted or imported markdown before it enters the
// content parser. Widget tags are protected and come back byte-for-byte.
package normalize

import (
	"strings"

	"github.com/rgonek/lessonmd/content"
	"github.com/rgonek/lessonmd/internal/placeholder"
)

// Normalize applies the repair passes to raw and returns the trimmed result.
// It never fails; text it does not understand is left alone.
func Normalize(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	// The first line must not keep indentation a later trim would remove.
	text = strings.TrimSpace(text)

	text, vault := protect(text)
	lines := strings.Split(text, "\n")
	for _, pass := range passes {
		lines = pass(lines)
	}
	text = vault.Restore(strings.Join(lines, "\n"))

	return strings.TrimSpace(text)
}

var passes = []func([]string) []string{
	proseLines(repairStrong),
	proseLines(repairEmphasis),
	proseLines(repairListMarker),
	proseLines(repairBlockquote),
	proseLines(repairHeading),
	repairFenceLines,
	collapseBlankLines,
	surroundFences,
	proseLines(repairInlineCode),
	trimTrailing,
}

// protect replaces tags, and open tags together with their balancing closer,
// by placeholder tokens.
func protect(text string) (string, *placeholder.Vault) {
	v := placeholder.New(text)
	tags := lexTags(text)
	if len(tags) == 0 {
		return text, v
	}
	closers := pairTags(tags)

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for i := 0; i < len(tags); i++ {
		tag := tags[i]
		end := tag.End
		if j := closers[i]; j >= 0 {
			end = tags[j].End
			i = j
		}
		b.WriteString(text[last:tag.Start])
		b.WriteString(v.Hold(text[tag.Start:end]))
		last = end
	}
	b.WriteString(text[last:])
	return b.String(), v
}

// lexTags returns the tags of text in order. Text inside a tag is not
// searched for further tags.
func lexTags(text string) []content.Tag {
	var tags []content.Tag
	for i := 0; i < len(text); {
		next := strings.IndexByte(text[i:], '<')
		if next < 0 {
			break
		}
		i += next
		tag, ok := content.LexTag(text, i)
		if !ok {
			i++
			continue
		}
		tags = append(tags, tag)
		i = tag.End
	}
	return tags
}

// pairTags returns, for each open tag, the index of the closer balancing it
// with nesting of the same name honoured, and -1 for every other tag.
func pairTags(tags []content.Tag) []int {
	closers := make([]int, len(tags))
	open := make(map[string][]int)
	for i, tag := range tags {
		closers[i] = -1
		switch tag.Kind {
		case content.Open:
			open[tag.Name] = append(open[tag.Name], i)
		case content.Close:
			if stack := open[tag.Name]; len(stack) > 0 {
				closers[stack[len(stack)-1]] = i
				open[tag.Name] = stack[:len(stack)-1]
			}
		}
	}
	return closers
}

// proseLines lifts a single-line repair to a pass that skips fenced code.
func proseLines(repair func(string) string) func([]string) []string {
	return func(lines []string) []string {
		walkLines(lines, func(i int, kind lineKind) {
			if kind == lineProse {
				lines[i] = repair(lines[i])
			}
		})
		return lines
	}
}

type lineKind int

const (
	lineProse lineKind = iota
	lineFenceOpen
	lineFenceBody
	lineFenceClose
)

func walkLines(lines []string, fn func(i int, kind lineKind)) {
	var fence *content.Fence
	for i, line := range lines {
		switch {
		case fence != nil && fence.Closes(line):
			fence = nil
			fn(i, lineFenceClose)
		case fence != nil:
			fn(i, lineFenceBody)
		default:
			if f, ok := content.OpenFence(line); ok {
				fence = &f
				fn(i, lineFenceOpen)
				continue
			}
			fn(i, lineProse)
		}
	}
}
