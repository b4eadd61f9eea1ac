package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rgonek/lessonmd/content"
	"github.com/rgonek/lessonmd/widget"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strong and emphasis",
			in:   "__bold__ and _it_",
			want: "**bold** and *it*",
		},
		{
			name: "intraword underscores",
			in:   "snake_case and __init__ file",
			want: "snake_case and **init** file",
		},
		{
			name: "urls and code untouched",
			in:   "see https://x.com/a_b_c and `_code_`",
			want: "see https://x.com/a_b_c and `_code_`",
		},
		{
			name: "link destination untouched",
			in:   "[l](docs/_a_/x) and _b_",
			want: "[l](docs/_a_/x) and *b*",
		},
		{
			name: "strong around link",
			in:   "__ [Docs](https://d.io) __",
			want: "**[Docs](https://d.io)**",
		},
		{
			name: "escaped underscore",
			in:   `\_not_ emphasis`,
			want: `\_not_ emphasis`,
		},
		{
			name: "list markers",
			in:   "* one\n+ two\n•three\n  * nested\n1) first\n2.   second",
			want: "- one\n- two\n- three\n  - nested\n1. first\n2. second",
		},
		{
			name: "thematic breaks",
			in:   "a\n\n* * *\n\n---\n\nb",
			want: "a\n\n* * *\n\n---\n\nb",
		},
		{
			name: "signed numbers are not list items",
			in:   "+1 vote\n-5 degrees",
			want: "+1 vote\n-5 degrees",
		},
		{
			name: "blockquotes",
			in:   ">>nested\n>plain\n>",
			want: "> > nested\n> plain\n>",
		},
		{
			name: "headings",
			in:   "#Title\n##  Sub\n####### seven",
			want: "# Title\n## Sub\n####### seven",
		},
		{
			name: "fences",
			in:   "Intro\n```  go\nx := 1   \n```\nAfter",
			want: "Intro\n\n```go\nx := 1\n```\n\nAfter",
		},
		{
			name: "fence interior untouched",
			in:   "```\n__x__\n* item\n#h\n>>q\n\n\n\n\nend\n```",
			want: "```\n__x__\n* item\n#h\n>>q\n\n\n\n\nend\n```",
		},
		{
			name: "adjacent fences",
			in:   "```\na\n```\n~~~\nb\n~~~",
			want: "```\na\n```\n\n~~~\nb\n~~~",
		},
		{
			name: "blank line runs",
			in:   "a\n\n\n\n\nb\n\n\nc\n\nd",
			want: "a\n\n\nb\n\n\nc\n\nd",
		},
		{
			name: "inline code spacing",
			in:   "use ` x ` now and ``  `a`  `` and ` `",
			want: "use `x` now and `` `a` `` and ` `",
		},
		{
			name: "trailing whitespace and line endings",
			in:   "a  \r\nb\t\rc",
			want: "a\nb\nc",
		},
		{
			name: "document trimmed",
			in:   "\n\n    #x  \n\n",
			want: "# x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeProtectsWidgetInterior(t *testing.T) {
	in := `__bold__ text with <Quiz questions={[{"question":"a__b__c"}]} />`
	assert.Equal(t, `**bold** text with <Quiz questions={[{"question":"a__b__c"}]} />`, Normalize(in))
}

func TestNormalizeProtectsMultilineTag(t *testing.T) {
	tag := "<Quiz questions={[\n  {\"question\": \"_a_ __b__\"}\n\n\n\n]}  />"
	in := "Intro  \n" + tag + "\n\n\n\n\n* x"
	assert.Equal(t, "Intro\n"+tag+"\n\n\n- x", Normalize(in))
}

func TestNormalizeProtectsBalancedPairs(t *testing.T) {
	in := "<Callout type=\"note\">\n__keep__\n</Callout>\n__fix__"
	assert.Equal(t, "<Callout type=\"note\">\n__keep__\n</Callout>\n**fix**", Normalize(in))

	in = "<Callout>\n__fix__"
	assert.Equal(t, "<Callout>\n**fix**", Normalize(in))
}

func TestNormalizeSentinelAvoidsInputRunes(t *testing.T) {
	in := "\ue0000\ue000 and <AngleVisualizer /> __x__"
	assert.Equal(t, "\ue0000\ue000 and <AngleVisualizer /> **x**", Normalize(in))
}

func TestNormalizeKeepsEveryTag(t *testing.T) {
	in := strings.Join([]string{
		"#Lesson",
		"",
		`<VideoEmbed url="https://youtu.be/a_b_c" title="__x__  " />`,
		"```",
		`<AngleVisualizer initialAngle={90}   />`,
		"```",
		"* `<MathPuzzle problem='_p_' answer={1} />`",
		`> <Unknown a="1"/>`,
	}, "\n")

	out := Normalize(in)
	assert.Equal(t, selfClosingTags(in), selfClosingTags(out))
	assert.Len(t, selfClosingTags(out), 4)
}

func TestNormalizeKeepsFenceLength(t *testing.T) {
	in := "~~~ ~\ncode\n~~~\n\nAfter _x_ and <AngleVisualizer initialAngle={30} />"

	out := Normalize(in)

	assert.Equal(t, "~~~ ~\ncode\n~~~\n\nAfter *x* and <AngleVisualizer initialAngle={30} />", out)
	assert.Len(t, content.Parse(widget.Builtin(), out).Widgets(), 1)
}

func TestNormalizeLargeInputs(t *testing.T) {
	heads := strings.Repeat("<Note>\n", 20000)
	assert.Equal(t, strings.TrimSpace(heads), Normalize(heads))

	openers := strings.Repeat("_a ", 20000)
	assert.Equal(t, strings.TrimSpace(openers), Normalize(openers))

	pairs := strings.Repeat("_a_ ", 5000)
	assert.Equal(t, strings.TrimSpace(strings.Repeat("*a* ", 5000)), Normalize(pairs))

	nested := strings.Repeat("<Note>", 1000) + "__x__" + strings.Repeat("</Note>", 1000)
	assert.Equal(t, nested, Normalize(nested))
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, in := range []string{
		"_a _b c_ d_",
		"* - -",
		"#_x_ and __y__",
		">>_quote_",
		"Text\n```js\ncode\n```\n\n\n\n\nMore\n~~~\n",
		"1) a\n2) b\n\n\n\n* c",
		"``  `a`  ``",
		"~~~ ~\ncode\n~~~",
	} {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), in)
	}
}

func TestLooksLikeMarkdown(t *testing.T) {
	for _, text := range []string{
		"# Heading",
		"intro\n- item",
		"1. first",
		"> quoted",
		"```go\nx\n```",
		"| a | b |",
		"see [docs](https://d.io)",
	} {
		assert.True(t, LooksLikeMarkdown(text), text)
	}

	for _, text := range []string{
		"",
		"plain sentence",
		"#hashtag",
		"5 > 3",
		"price: -5",
	} {
		assert.False(t, LooksLikeMarkdown(text), text)
	}
}

func selfClosingTags(src string) []string {
	var tags []string
	for i := 0; i < len(src); i++ {
		tag, ok := content.LexTag(src, i)
		if ok && tag.Kind == content.SelfClosing {
			tags = append(tags, src[tag.Start:tag.End])
			i = tag.End - 1
		}
	}
	return tags
}
