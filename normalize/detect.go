package normalize

import "regexp"

var markdownHints = []*regexp.Regexp{
	regexp.MustCompile(`(^|\n)\s{0,3}#{1,6}\s`),          // headings
	regexp.MustCompile(`(^|\n)\s{0,3}([-*+]\s|\d+\.\s)`), // lists
	regexp.MustCompile(`(^|\n)\s{0,3}>\s`),               // blockquotes
	regexp.MustCompile("(^|\n)\\s*```"),                  // fences
	regexp.MustCompile(`(^|\n)\|.*\|`),                   // tables
	regexp.MustCompile(`\[[^\]]+\]\([^)]+\)`),            // links
}

// LooksLikeMarkdown reports whether pasted text carries markdown structure
// worth normalizing.
func LooksLikeMarkdown(text string) bool {
	for _, re := range markdownHints {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
