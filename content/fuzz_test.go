package content

import (
	"testing"

	"github.com/rgonek/lessonmd/widget"
)

func FuzzParseCoverage(f *testing.F) {
	seeds := []string{
		"",
		"Plain prose",
		"Solve for x.\n\n<Quiz questions={[{\"question\":\"2+2?\",\"options\":[\"3\",\"4\",\"5\"],\"correctAnswer\":1}]} />\n\nGood luck!",
		`<Unknown foo="bar" />`,
		`<MathPuzzle hint="try harder" />`,
		"```\n<AngleVisualizer />\n```",
		"`<AngleVisualizer />` <AngleVisualizer initialAngle={1",
		"<!-- <AngleVisualizer /> <VideoEmbed url='a' title='b'/>",
		"\\<AngleVisualizer /><",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	reg := widget.Builtin()

	f.Fuzz(func(t *testing.T, src string) {
		doc := Parse(reg, src)
		if got := doc.Text(); got != src {
			t.Fatalf("segments do not cover input:\n got %q\nwant %q", got, src)
		}

		prev := 0
		for i, seg := range doc.Segments {
			span := seg.Bounds()
			if span.Start != prev || span.End <= span.Start {
				t.Fatalf("segment %d has span %+v after offset %d", i, span, prev)
			}
			if src[span.Start:span.End] != seg.Raw() {
				t.Fatalf("segment %d raw text does not match its span", i)
			}
			prev = span.End
		}
		if prev != len(src) {
			t.Fatalf("segments end at %d, input has %d bytes", prev, len(src))
		}
	})
}
