package render

import (
	"strings"

	"golang.org/x/net/html"
)

// PlainText extracts the visible text of an HTML fragment. Whitespace runs
// collapse to one space and block boundaries count as whitespace.
func PlainText(fragment string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch tag {
			case "script", "style", "template":
				if tt == html.StartTagToken {
					skip++
				} else if skip > 0 {
					skip--
				}
				continue
			}
			if blockElements[tag] {
				b.WriteByte(' ')
			}
		}
	}
}

// WordCount counts the words of an HTML fragment's visible text.
func WordCount(fragment string) int {
	return len(strings.Fields(PlainText(fragment)))
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"pre": true, "blockquote": true, "tr": true, "td": true, "th": true,
	"table": true, "section": true, "figure": true, "figcaption": true, "hr": true,
}
