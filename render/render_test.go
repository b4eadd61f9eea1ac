package render

import (
	"errors"
	"html/template"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgonek/lessonmd/content"
	"github.com/rgonek/lessonmd/widget"
)

func newRenderer(t *testing.T, cfg Config) *Renderer {
	t.Helper()
	r, err := New(widget.Builtin(), cfg)
	require.NoError(t, err)
	return r
}

func TestRenderProse(t *testing.T) {
	r := newRenderer(t, Config{})

	res := r.Render("Hello **world**\n\n- one\n- two\n")

	assert.Contains(t, string(res.HTML), "<strong>world</strong>")
	assert.Contains(t, string(res.HTML), "<li>one</li>")
	assert.Empty(t, res.Warnings)
}

func TestRenderWidget(t *testing.T) {
	r := newRenderer(t, Config{})

	res := r.Render("Intro\n\n<AngleVisualizer initialAngle={30} />\n\nOutro\n")

	html := string(res.HTML)
	assert.Contains(t, html, `<div class="lesson-widget" data-widget="AngleVisualizer" data-segment="1">`)
	assert.Less(t, strings.Index(html, "Intro"), strings.Index(html, "AngleVisualizer"))
	assert.Less(t, strings.Index(html, "AngleVisualizer"), strings.Index(html, "Outro"))
	assert.Empty(t, res.Warnings)
	assert.Len(t, res.Document.Widgets(), 1)
}

func TestRenderUnknownWidgetShowsLiteralText(t *testing.T) {
	r := newRenderer(t, Config{})

	res := r.Render(`<Unknown foo="bar" />`)

	assert.Equal(t, `<Unknown foo="bar" />`, PlainText(string(res.HTML)))
	assert.NotContains(t, string(res.HTML), "<Unknown")
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, content.WarningUnregisteredWidget, res.Warnings[0].Type)
}

func TestRenderInertTextIsLiteralInEveryContext(t *testing.T) {
	r := newRenderer(t, Config{})

	t.Run("indented code", func(t *testing.T) {
		html := string(r.Render("Code:\n\n    <Unknown foo=\"bar\" />\n").HTML)

		assert.Contains(t, html, `<pre><code>&lt;Unknown foo=&#34;bar&#34; /&gt;`)
		assert.NotContains(t, html, `\`)
	})

	t.Run("html block", func(t *testing.T) {
		html := string(r.Render("<div>\n<Unknown foo=\"bar\" />\n</div>").HTML)

		assert.Equal(t, `<Unknown foo="bar" />`, PlainText(html))
		assert.NotContains(t, html, `\`)
	})

	t.Run("unsanitized", func(t *testing.T) {
		html := string(newRenderer(t, Config{Sanitize: SanitizeNone}).Render(`<Unknown foo="<b>" />`).HTML)

		assert.NotContains(t, html, "<b>")
		assert.Equal(t, `<Unknown foo="<b>" />`, PlainText(html))
	})
}

func TestRenderProseSpansWidgets(t *testing.T) {
	r := newRenderer(t, Config{})

	t.Run("list item", func(t *testing.T) {
		html := string(r.Render("- one\n- <AngleVisualizer initialAngle={30} />\n- three\n").HTML)

		assert.Equal(t, 1, strings.Count(html, "<ul>"))
		assert.Contains(t, html, `<li><div class="lesson-widget" data-widget="AngleVisualizer"`)
		assert.NotContains(t, html, "<li></li>")
	})

	t.Run("reference link", func(t *testing.T) {
		html := string(r.Render("See [docs][d].\n\n<AngleVisualizer initialAngle={30} />\n\n[d]: https://example.com\n").HTML)

		assert.Contains(t, html, `href="https://example.com"`)
		assert.NotContains(t, html, "[docs]")
	})

	t.Run("block widget is not wrapped in a paragraph", func(t *testing.T) {
		html := string(r.Render("Intro\n\n<AngleVisualizer initialAngle={30} />\n").HTML)

		assert.NotContains(t, html, "<p><div")
	})
}

func TestRenderMath(t *testing.T) {
	r := newRenderer(t, Config{})

	tests := []struct {
		name     string
		input    string
		contains []string
		absent   []string
	}{
		{
			name:     "inline",
			input:    `Area is $\pi r^2$ here.`,
			contains: []string{`<span class="math math-inline">\(\pi r^2\)</span>`},
		},
		{
			name:   "currency stays text",
			input:  "It costs $5 and $10.",
			absent: []string{"math-inline"},
		},
		{
			name:     "single line display",
			input:    "See $$x+1$$ now",
			contains: []string{`<span class="math math-display">\[x+1\]</span>`},
		},
		{
			name:     "display block",
			input:    "$$\nx^2 < y\n$$\n",
			contains: []string{`<div class="math math-display">\[x^2 &lt; y`},
		},
		{
			name:     "math fence",
			input:    "```math\na+b\n```\n",
			contains: []string{`<div class="math math-display">\[a+b`},
			absent:   []string{"<pre"},
		},
		{
			name:   "code span wins",
			input:  "Use `$x$` literally",
			absent: []string{"math-inline"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := string(r.Render(tt.input).HTML)
			for _, want := range tt.contains {
				assert.Contains(t, html, want)
			}
			for _, unwanted := range tt.absent {
				assert.NotContains(t, html, unwanted)
			}
		})
	}
}

func TestRenderSanitizes(t *testing.T) {
	input := "<script>alert(1)</script>\n\n<b onclick=\"x()\">bold</b>\n"

	safe := newRenderer(t, Config{}).Render(input)
	assert.NotContains(t, string(safe.HTML), "<script")
	assert.NotContains(t, string(safe.HTML), "onclick")
	assert.Contains(t, string(safe.HTML), "bold")

	raw := newRenderer(t, Config{Sanitize: SanitizeNone}).Render(input)
	assert.Contains(t, string(raw.HTML), "<script>")
}

func TestRenderWidgetsAreNotSanitized(t *testing.T) {
	r := newRenderer(t, Config{})

	res := r.Render(`<VideoEmbed url="https://youtu.be/abc123" title="Intro" />`)

	assert.Contains(t, string(res.HTML), "<iframe")
}

func TestRenderHighlight(t *testing.T) {
	r := newRenderer(t, Config{Highlight: true, HighlightStyle: "monokai", Sanitize: SanitizeNone})

	res := r.Render("```go\nfunc main() {}\n```\n")

	assert.Contains(t, string(res.HTML), `style="color:`)
	assert.Contains(t, PlainText(string(res.HTML)), "func main() {}")
}

func TestRenderHeadingOffset(t *testing.T) {
	r := newRenderer(t, Config{HeadingOffset: 1})

	html := string(r.Render("# Title\n\n###### Deep\n").HTML)

	assert.Contains(t, html, `<h2 id="title">Title</h2>`)
	assert.Contains(t, html, `<h6 id="deep">Deep</h6>`)
}

func TestRenderAuthoring(t *testing.T) {
	r := newRenderer(t, Config{EditAction: "/lessons/7/widgets"})

	res := r.RenderAuthoring("Intro\n\n<AngleVisualizer initialAngle={30} />\n")

	html := string(res.HTML)
	assert.Contains(t, html, `draggable="true"`)
	assert.Contains(t, html, `action="/lessons/7/widgets"`)
	assert.Contains(t, html, `name="_op" value="delete"`)
	assert.Contains(t, html, `name="_op" value="update"`)
	assert.Contains(t, html, `name="_segment" value="1"`)
	assert.Contains(t, html, `<details class="lesson-widget-edit">`)
	assert.Contains(t, html, `name="initialAngle" value="30"`)
}

func TestRenderFailedWidgetDegrades(t *testing.T) {
	reg, err := widget.NewRegistry(widget.Descriptor{
		Name: "Broken",
		Display: func(widget.Props) (template.HTML, error) {
			return "", errors.New("boom")
		},
	})
	require.NoError(t, err)
	r, err := New(reg, Config{})
	require.NoError(t, err)

	res := r.Render("Before <Broken /> after")

	assert.Equal(t, "Before <Broken /> after", PlainText(string(res.HTML)))
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, content.WarningRenderFailed, res.Warnings[0].Type)
	assert.Equal(t, "Broken", res.Warnings[0].Widget)
	assert.Contains(t, res.Warnings[0].Message, "boom")
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(nil, Config{})
	require.ErrorIs(t, err, ErrNilRegistry)

	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "heading offset", cfg: Config{HeadingOffset: 6}},
		{name: "sanitize", cfg: Config{Sanitize: "strict"}},
		{name: "style", cfg: Config{HighlightStyle: "no-such-style"}},
		{name: "widget class", cfg: Config{WidgetClass: "1bad class"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(widget.Builtin(), tt.cfg)
			require.Error(t, err)
		})
	}
}

func TestPlainText(t *testing.T) {
	html := "<h1>Title</h1><p>One &amp; two</p><script>var x = 1;</script><ul><li>a</li><li>b</li></ul>"

	assert.Equal(t, "Title One & two a b", PlainText(html))
	assert.Equal(t, 6, WordCount(html))
}
