package render

import (
	"strings"
	"testing"

	"github.com/rgonek/lessonmd/widget"
)

func BenchmarkRender(b *testing.B) {
	r, err := New(widget.Builtin(), Config{Highlight: true})
	if err != nil {
		b.Fatalf("failed to create renderer: %v", err)
	}

	section := `## Motion

Speed is $v = d / t$ and a pendulum's period is

$$
T = 2\pi\sqrt{L/g}
$$

<PhysicsSimulator type="pendulum" title="Swing" />

| Quantity | Unit |
| --- | --- |
| speed | m/s |

` + "```go\nfmt.Println(\"hello\")\n```\n\n"
	input := strings.Repeat(section, 10)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res := r.Render(input)
		if len(res.Warnings) != 0 {
			b.Fatalf("unexpected warnings: %v", res.Warnings)
		}
	}
}

func BenchmarkRenderAuthoring(b *testing.B) {
	r, err := New(widget.Builtin(), Config{EditAction: "/edit"})
	if err != nil {
		b.Fatalf("failed to create renderer: %v", err)
	}
	input := strings.Repeat("Some prose.\n\n<AngleVisualizer initialAngle={45} />\n\n", 20)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.RenderAuthoring(input)
	}
}
