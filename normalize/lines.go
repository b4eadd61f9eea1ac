package normalize

import (
	"regexp"
	"strings"

	"github.com/rgonek/lessonmd/content"
)

var (
	bulletRe  = regexp.MustCompile(`^([ \t]*)[-*+][ \t]+(\S.*)$`)
	dotRe     = regexp.MustCompile(`^([ \t]*)•[ \t]*(\S.*)$`)
	orderedRe = regexp.MustCompile(`^([ \t]*)(\d{1,9})[.)][ \t]+(\S.*)$`)
	headingRe = regexp.MustCompile(`^( {0,3})(#{1,6})[ \t]*([^#\s].*)$`)
)

func repairListMarker(line string) string {
	if isThematicBreak(line) {
		return line
	}
	if m := bulletRe.FindStringSubmatch(line); m != nil {
		return m[1] + "- " + m[2]
	}
	if m := dotRe.FindStringSubmatch(line); m != nil {
		return m[1] + "- " + m[2]
	}
	if m := orderedRe.FindStringSubmatch(line); m != nil {
		return m[1] + m[2] + ". " + m[3]
	}
	return line
}

// isThematicBreak reports whether line is three or more of the same '*', '-'
// or '_' optionally separated by spaces.
func isThematicBreak(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 3 || len(line)-len(strings.TrimLeft(line, " ")) > 3 {
		return false
	}
	ch := trimmed[0]
	if ch != '*' && ch != '-' && ch != '_' {
		return false
	}
	count := 0
	for i := 0; i < len(trimmed); i++ {
		switch trimmed[i] {
		case ch:
			count++
		case ' ', '\t':
		default:
			return false
		}
	}
	return count >= 3
}

// repairBlockquote rebuilds the quote marker prefix so every level is "> ".
func repairBlockquote(line string) string {
	indent := len(line) - len(strings.TrimLeft(line, " "))
	if indent > 3 || indent >= len(line) || line[indent] != '>' {
		return line
	}

	depth := 0
	i := indent
	for i < len(line) && (line[i] == '>' || line[i] == ' ' || line[i] == '\t') {
		if line[i] == '>' {
			depth++
		}
		i++
	}
	rest := line[i:]
	prefix := strings.Repeat("> ", depth)
	if rest == "" {
		prefix = strings.TrimRight(prefix, " ")
	}
	return line[:indent] + prefix + rest
}

func repairHeading(line string) string {
	m := headingRe.FindStringSubmatch(line)
	if m == nil {
		return line
	}
	return m[1] + m[2] + " " + m[3]
}

// repairFenceLines rewrites fence delimiter lines as indent, marker run and
// info string with no space between marker and info. An info string starting
// with the fence character keeps one space so the marker run stays the same
// length.
func repairFenceLines(lines []string) []string {
	walkLines(lines, func(i int, kind lineKind) {
		switch kind {
		case lineFenceOpen:
			f, _ := content.OpenFence(lines[i])
			sep := ""
			if f.Info != "" && f.Info[0] == f.Char {
				sep = " "
			}
			lines[i] = strings.Repeat(" ", f.Indent) + strings.Repeat(string(f.Char), f.Length) + sep + f.Info
		case lineFenceClose:
			lines[i] = strings.TrimRight(lines[i], " \t")
		}
	})
	return lines
}

// collapseBlankLines shortens runs of three or more blank prose lines to two.
func collapseBlankLines(lines []string) []string {
	kinds := classify(lines)
	out := lines[:0:0]
	blanks := 0
	for i, line := range lines {
		if kinds[i] == lineProse && strings.TrimSpace(line) == "" {
			blanks++
			if blanks > 2 {
				continue
			}
		} else {
			blanks = 0
		}
		out = append(out, line)
	}
	return out
}

// surroundFences puts a blank line before each fence opener and after each
// fence closer that touches other text.
func surroundFences(lines []string) []string {
	kinds := classify(lines)
	out := make([]string, 0, len(lines)+4)
	for i, line := range lines {
		if kinds[i] == lineFenceOpen && len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
			out = append(out, "")
		}
		out = append(out, line)
		if kinds[i] == lineFenceClose && i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
			out = append(out, "")
		}
	}
	return out
}

func trimTrailing(lines []string) []string {
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return lines
}

func classify(lines []string) []lineKind {
	kinds := make([]lineKind, len(lines))
	walkLines(lines, func(i int, kind lineKind) {
		kinds[i] = kind
	})
	return kinds
}
