package render

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var (
	KindMathInline = ast.NewNodeKind("MathInline")
	KindMathBlock  = ast.NewNodeKind("MathBlock")
)

// MathInline is $...$ (or single-line $$...$$ when Display is set).
type MathInline struct {
	ast.BaseInline
	Display bool
	Value   text.Segment
}

func (n *MathInline) Kind() ast.NodeKind {
	return KindMathInline
}

func (n *MathInline) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Value": string(n.Value.Value(source)),
	}, nil)
}

// MathBlock is a $$ fenced block or a ```math fenced code block.
type MathBlock struct {
	ast.BaseBlock
}

func (n *MathBlock) Kind() ast.NodeKind {
	return KindMathBlock
}

func (n *MathBlock) IsRaw() bool {
	return true
}

func (n *MathBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

type mathExtension struct{}

func (mathExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(util.Prioritized(mathBlockParser{}, 701)),
		parser.WithInlineParsers(util.Prioritized(mathInlineParser{}, 500)),
		parser.WithASTTransformers(util.Prioritized(mathFenceTransformer{}, 100)),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(util.Prioritized(mathRenderer{}, 100)),
	)
}

type mathInlineParser struct{}

func (mathInlineParser) Trigger() []byte {
	return []byte{'$'}
}

func (mathInlineParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, segment := block.PeekLine()
	if len(line) < 3 || line[0] != '$' {
		return nil
	}

	display := line[1] == '$'
	open := 1
	if display {
		open = 2
	}

	end := findMathClose(line, open, display)
	if end < 0 {
		return nil
	}

	node := &MathInline{
		Display: display,
		Value:   text.NewSegment(segment.Start+open, segment.Start+end),
	}
	block.Advance(end + open)
	return node
}

// findMathClose returns the index of the closing delimiter. Inline math must
// not start or end with a space and its closing '$' must not precede a digit,
// so "$5 and $10" stays text.
func findMathClose(line []byte, open int, display bool) int {
	if open >= len(line) || isMathSpace(line[open]) {
		return -1
	}
	for i := open; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '\n', '\r':
			return -1
		case '$':
			if display {
				if i+1 < len(line) && line[i+1] == '$' && i > open {
					return i
				}
				continue
			}
			if i == open || isMathSpace(line[i-1]) {
				continue
			}
			if i+1 < len(line) && line[i+1] >= '0' && line[i+1] <= '9' {
				continue
			}
			return i
		}
	}
	return -1
}

func isMathSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

var mathBlockInfoKey = parser.NewContextKey()

type mathBlockData struct {
	indent int
}

type mathBlockParser struct{}

func (mathBlockParser) Trigger() []byte {
	return []byte{'$'}
}

func (mathBlockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, _ := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || pos+1 >= len(line) || line[pos] != '$' || line[pos+1] != '$' {
		return nil, parser.NoChildren
	}
	if !util.IsBlank(line[pos+2:]) {
		return nil, parser.NoChildren
	}

	pc.Set(mathBlockInfoKey, &mathBlockData{indent: pos})
	return &MathBlock{}, parser.NoChildren
}

func (mathBlockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, segment := reader.PeekLine()
	data := pc.Get(mathBlockInfoKey).(*mathBlockData)

	w, pos := util.IndentWidth(line, reader.LineOffset())
	if w < 4 && pos+1 < len(line) && line[pos] == '$' && line[pos+1] == '$' && util.IsBlank(line[pos+2:]) {
		reader.Advance(segment.Stop - segment.Start - segment.Padding)
		return parser.Close
	}

	pos, padding := util.IndentPosition(line, reader.LineOffset(), data.indent)
	if pos < 0 {
		pos = 0
		padding = 0
	}
	seg := text.NewSegmentPadding(segment.Start+pos, segment.Stop, padding)
	node.Lines().Append(seg)
	reader.AdvanceAndSetPadding(segment.Stop-segment.Start-pos-1, padding)
	return parser.Continue | parser.NoChildren
}

func (mathBlockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {
	pc.Set(mathBlockInfoKey, nil)
}

func (mathBlockParser) CanInterruptParagraph() bool {
	return true
}

func (mathBlockParser) CanAcceptIndentedLine() bool {
	return false
}

// mathFenceTransformer turns ```math fenced code blocks into math blocks.
type mathFenceTransformer struct{}

func (mathFenceTransformer) Transform(document *ast.Document, reader text.Reader, _ parser.Context) {
	var fences []*ast.FencedCodeBlock
	_ = ast.Walk(document, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fence, ok := node.(*ast.FencedCodeBlock)
		if ok && bytes.Equal(fence.Language(reader.Source()), []byte("math")) {
			fences = append(fences, fence)
		}
		return ast.WalkContinue, nil
	})

	for _, fence := range fences {
		parent := fence.Parent()
		if parent == nil {
			continue
		}
		block := &MathBlock{}
		block.SetLines(fence.Lines())
		parent.ReplaceChild(parent, fence, block)
	}
}

type mathRenderer struct{}

func (mathRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMathInline, renderMathInline)
	reg.Register(KindMathBlock, renderMathBlock)
}

func renderMathInline(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*MathInline)
	if n.Display {
		_, _ = w.WriteString(`<span class="math math-display">\[`)
		_, _ = w.Write(util.EscapeHTML(n.Value.Value(source)))
		_, _ = w.WriteString(`\]</span>`)
	} else {
		_, _ = w.WriteString(`<span class="math math-inline">\(`)
		_, _ = w.Write(util.EscapeHTML(n.Value.Value(source)))
		_, _ = w.WriteString(`\)</span>`)
	}
	return ast.WalkSkipChildren, nil
}

func renderMathBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<div class="math math-display">\[`)
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		_, _ = w.Write(util.EscapeHTML(line.Value(source)))
	}
	_, _ = w.WriteString("\\]</div>\n")
	return ast.WalkSkipChildren, nil
}

// headingOffset shifts heading levels, clamped to 1..6.
type headingOffset int

func (o headingOffset) Transform(document *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(document, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		heading, ok := node.(*ast.Heading)
		if !ok || !entering {
			return ast.WalkContinue, nil
		}
		level := heading.Level + int(o)
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		heading.Level = level
		return ast.WalkContinue, nil
	})
}
