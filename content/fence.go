package content

import "strings"

// Fence is an open fenced code block.
type Fence struct {
	Char   byte
	Length int
	Indent int
	Info   string
}

// OpenFence reports whether line opens a fenced code block: up to three
// spaces, then three or more backticks or tildes. Backtick fences may not
// carry a backtick in their info string.
func OpenFence(line string) (Fence, bool) {
	indent := leadingSpaces(line)
	if indent > 3 {
		return Fence{}, false
	}
	rest := line[indent:]
	if rest == "" || (rest[0] != '`' && rest[0] != '~') {
		return Fence{}, false
	}

	ch := rest[0]
	n := runLength(rest, ch)
	if n < 3 {
		return Fence{}, false
	}
	info := strings.TrimSpace(strings.TrimRight(rest[n:], "\r"))
	if ch == '`' && strings.IndexByte(info, '`') >= 0 {
		return Fence{}, false
	}
	return Fence{Char: ch, Length: n, Indent: indent, Info: info}, true
}

// Closes reports whether line closes f.
func (f Fence) Closes(line string) bool {
	indent := leadingSpaces(line)
	if indent > 3 {
		return false
	}
	rest := line[indent:]
	n := runLength(rest, f.Char)
	if n < f.Length {
		return false
	}
	return strings.Trim(rest[n:], " \t\r") == ""
}

func leadingSpaces(line string) int {
	n := 0
	for n < len(line) && line[n] == ' ' {
		n++
	}
	return n
}

func runLength(s string, ch byte) int {
	n := 0
	for n < len(s) && s[n] == ch {
		n++
	}
	return n
}
