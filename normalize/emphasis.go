package normalize

import (
	"regexp"
	"sort"
	"strings"
)

var (
	urlRe        = regexp.MustCompile(`(?:https?|ftp)://[^\s<>)\]]+|www\.[^\s<>)\]]+`)
	linkDestRe   = regexp.MustCompile(`\]\([^)\s]*(?:\s+"[^"]*")?\)`)
	strongLinkRe = regexp.MustCompile(`__[ \t]*(\[[^\]]+\]\([^)]+\))[ \t]*__`)
)

// repairStrong rewrites __text__ as **text**, including the spaced
// __ [label](url) __ form.
func repairStrong(line string) string {
	if !strings.Contains(line, "__") {
		return line
	}

	masked := mask(line)
	line = replaceUnmasked(line, masked, strongLinkRe, "**$1**")
	if len(line) != len(masked) {
		masked = mask(line)
	}
	return convertDelimiters(line, masked, 2)
}

// repairEmphasis rewrites _text_ as *text*. Intraword underscores, code
// spans, URLs and link destinations are left alone.
func repairEmphasis(line string) string {
	if !strings.Contains(line, "_") {
		return line
	}
	return convertDelimiters(line, mask(line), 1)
}

// convertDelimiters replaces matched runs of exactly n underscores with
// asterisks. Openers are taken left to right and each pairs with the first
// unused closer after it, so a second call finds nothing left to convert.
func convertDelimiters(line string, masked []bool, n int) string {
	b := []byte(line)
	var runs, closers []int
	for i := 0; i+n <= len(b); i++ {
		if !isDelimiterRun(b, masked, i, n) {
			continue
		}
		runs = append(runs, i)
		if i > 0 && canClose(b, i, n) {
			closers = append(closers, i)
		}
	}
	if len(closers) == 0 {
		return line
	}

	free := newNextFree(len(closers))
	used := make(map[int]bool)
	for _, i := range runs {
		if used[i] || !canOpen(b, i, n) {
			continue
		}
		k := free.find(sort.SearchInts(closers, i+n+1))
		if k == len(closers) {
			continue
		}
		j := closers[k]
		free.take(k)
		used[j] = true
		for m := 0; m < n; m++ {
			b[i+m] = '*'
			b[j+m] = '*'
		}
	}
	return string(b)
}

// nextFree finds the first unused slot at or after an index.
type nextFree []int

func newNextFree(n int) nextFree {
	next := make(nextFree, n+1)
	for i := range next {
		next[i] = i
	}
	return next
}

func (f nextFree) find(i int) int {
	for f[i] != i {
		f[i] = f[f[i]]
		i = f[i]
	}
	return i
}

func (f nextFree) take(i int) { f[i] = i + 1 }

func isDelimiterRun(b []byte, masked []bool, i, n int) bool {
	for k := i; k < i+n; k++ {
		if b[k] != '_' || masked[k] {
			return false
		}
	}
	return (i == 0 || b[i-1] != '_') && (i+n == len(b) || b[i+n] != '_')
}

func canOpen(b []byte, i, n int) bool {
	if i+n >= len(b) || isSpace(b[i+n]) {
		return false
	}
	return i == 0 || (!isWord(b[i-1]) && b[i-1] != '\\')
}

func canClose(b []byte, j, n int) bool {
	prev := b[j-1]
	if isSpace(prev) || prev == '\\' {
		return false
	}
	return j+n == len(b) || !isWord(b[j+n])
}

func replaceUnmasked(line string, masked []bool, re *regexp.Regexp, repl string) string {
	matches := re.FindAllStringSubmatchIndex(line, -1)
	if len(matches) == 0 {
		return line
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		if masked[m[0]] || masked[m[1]-1] {
			continue
		}
		b.WriteString(line[last:m[0]])
		b.Write(re.ExpandString(nil, repl, line, m))
		last = m[1]
	}
	b.WriteString(line[last:])
	return b.String()
}

// repairInlineCode trims the padding inside code spans. One space stays when
// the code itself starts or ends with a backtick.
func repairInlineCode(line string) string {
	if !strings.Contains(line, "`") {
		return line
	}

	var b strings.Builder
	last := 0
	for _, span := range codeSpans(line) {
		open, closeAt, n := span[0], span[1], span[2]
		inner := line[open+n : closeAt]
		trimmed := strings.Trim(inner, " ")
		if trimmed == "" || trimmed == inner {
			continue
		}
		if trimmed[0] == '`' || trimmed[len(trimmed)-1] == '`' {
			trimmed = " " + trimmed + " "
			if trimmed == inner {
				continue
			}
		}
		b.WriteString(line[last : open+n])
		b.WriteString(trimmed)
		last = closeAt
	}
	if last == 0 {
		return line
	}
	b.WriteString(line[last:])
	return b.String()
}

// codeSpans returns {open, close, runLength} for each code span in line,
// where close is the index of the closing backtick run.
func codeSpans(line string) [][3]int {
	var spans [][3]int
	for i := 0; i < len(line); {
		if line[i] != '`' {
			i++
			continue
		}
		n := backtickRun(line, i)
		closeAt := -1
		for j := i + n; j < len(line); {
			if line[j] != '`' {
				j++
				continue
			}
			m := backtickRun(line, j)
			if m == n {
				closeAt = j
				break
			}
			j += m
		}
		if closeAt < 0 {
			i += n
			continue
		}
		spans = append(spans, [3]int{i, closeAt, n})
		i = closeAt + n
	}
	return spans
}

func backtickRun(s string, i int) int {
	n := 0
	for i+n < len(s) && s[i+n] == '`' {
		n++
	}
	return n
}

// mask marks the bytes of line that emphasis repairs must not touch.
func mask(line string) []bool {
	masked := make([]bool, len(line))
	mark := func(start, end int) {
		for k := start; k < end; k++ {
			masked[k] = true
		}
	}
	for _, span := range codeSpans(line) {
		mark(span[0], span[1]+span[2])
	}
	for _, loc := range urlRe.FindAllStringIndex(line, -1) {
		mark(loc[0], loc[1])
	}
	for _, loc := range linkDestRe.FindAllStringIndex(line, -1) {
		mark(loc[0]+1, loc[1])
	}
	return masked
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t'
}

func isWord(ch byte) bool {
	return ch == '_' || ch >= 0x80 ||
		ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9'
}
