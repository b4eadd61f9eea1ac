// Package render turns lesson content into HTML. Prose goes through goldmark
// with GFM, math and optional highlighting; widgets render through their
// descriptors.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/rgonek/lessonmd/content"
	"github.com/rgonek/lessonmd/internal/placeholder"
	"github.com/rgonek/lessonmd/widget"
)

// ErrNilRegistry is returned by New without a registry.
var ErrNilRegistry = errors.New("render: registry is required")

// Result is the output of a render pass.
type Result struct {
	HTML     template.HTML     `json:"html"`
	Document content.Document  `json:"-"`
	Warnings []content.Warning `json:"warnings,omitempty"`
}

// Renderer renders lesson content against a widget registry.
type Renderer struct {
	registry *widget.Registry
	config   Config
	md       goldmark.Markdown
	policy   *bluemonday.Policy
}

// New creates a Renderer.
func New(registry *widget.Registry, config Config) (*Renderer, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	cfg := config.applyDefaults().clone()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	extensions := []goldmark.Extender{extension.GFM, mathExtension{}}
	if cfg.Highlight {
		extensions = append(extensions, highlighting.NewHighlighting(
			highlighting.WithStyle(cfg.HighlightStyle),
			highlighting.WithFormatOptions(chromahtml.WithLineNumbers(false)),
		))
	}

	parserOptions := []parser.Option{parser.WithAutoHeadingID()}
	if cfg.HeadingOffset != 0 {
		parserOptions = append(parserOptions,
			parser.WithASTTransformers(util.Prioritized(headingOffset(cfg.HeadingOffset), 200)))
	}

	r := &Renderer{
		registry: registry,
		config:   cfg,
		md: goldmark.New(
			goldmark.WithExtensions(extensions...),
			goldmark.WithParserOptions(parserOptions...),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
	if cfg.Sanitize == SanitizeUGC {
		r.policy = newPolicy()
	}
	return r, nil
}

var classValueRe = regexp.MustCompile(`^[A-Za-z0-9 _-]+$`)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(classValueRe).OnElements("span", "div", "pre", "code")
	p.AllowStyles("color", "background-color", "font-weight", "font-style", "text-decoration").Globally()
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	return p
}

// Render produces the read-only lesson view of src.
func (r *Renderer) Render(src string) Result {
	return r.render(src, false)
}

// RenderAuthoring produces the editing view: every widget is wrapped in a
// container with a drag handle, a delete button and its edit form.
func (r *Renderer) RenderAuthoring(src string) Result {
	return r.render(src, true)
}

// render converts the whole document in one goldmark pass. Widgets and inert
// prose stand in the markdown as placeholder tokens, so prose structure spans
// widgets and inert text never meets markdown escaping. Tokens are swapped for
// their HTML after sanitizing.
func (r *Renderer) render(src string, authoring bool) Result {
	doc := content.Parse(r.registry, src)
	res := Result{
		Document: doc,
		Warnings: append([]content.Warning(nil), doc.Warnings...),
	}

	vault := placeholder.New(src)
	var blocks []int
	var md strings.Builder
	md.Grow(len(src))
	for i, seg := range doc.Segments {
		switch s := seg.(type) {
		case *content.Prose:
			if s.Inert {
				md.WriteString(vault.Hold(template.HTMLEscapeString(s.Text)))
			} else {
				md.WriteString(s.Text)
			}
		case *content.Widget:
			html, err := r.renderWidget(i, s, authoring)
			if err != nil {
				res.Warnings = append(res.Warnings, content.Warning{
					Type:    content.WarningRenderFailed,
					Widget:  s.Type,
					Offset:  s.Span.Start,
					Message: err.Error(),
				})
				md.WriteString(vault.Hold(template.HTMLEscapeString(s.Source)))
				continue
			}
			blocks = append(blocks, vault.Len())
			md.WriteString(vault.Hold(string(html)))
		}
	}

	html, err := r.renderMarkdown(md.String())
	if err != nil {
		res.Warnings = append(res.Warnings, content.Warning{
			Type:    content.WarningRenderFailed,
			Message: err.Error(),
		})
	}
	res.HTML = template.HTML(expand(html, vault, blocks))
	return res
}

// expand swaps tokens for their HTML. A widget alone in a paragraph replaces
// the paragraph. Held HTML whose token did not survive rendering is appended.
func expand(html string, vault *placeholder.Vault, blocks []int) string {
	if len(blocks) > 0 {
		pairs := make([]string, 0, 2*len(blocks))
		for _, i := range blocks {
			token := vault.Token(i)
			pairs = append(pairs, "<p>"+token+"</p>\n", token)
		}
		html = strings.NewReplacer(pairs...).Replace(html)
	}

	seen := make([]bool, vault.Len())
	out := vault.Expand(html, func(i int) string {
		seen[i] = true
		return vault.Held(i)
	})

	var b strings.Builder
	b.WriteString(out)
	for i, ok := range seen {
		if !ok {
			b.WriteString(vault.Held(i))
		}
	}
	return b.String()
}

func (r *Renderer) renderMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(md), &buf); err != nil {
		return "<pre>" + template.HTMLEscapeString(md) + "</pre>\n", fmt.Errorf("render markdown: %w", err)
	}
	if r.policy == nil {
		return buf.String(), nil
	}
	return r.policy.Sanitize(buf.String()), nil
}
