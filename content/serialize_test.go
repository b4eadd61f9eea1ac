package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgonek/lessonmd/attrs"
	"github.com/rgonek/lessonmd/widget"
)

func TestSerializeVideoEmbed(t *testing.T) {
	reg := widget.Builtin()
	bag := widget.Props{"url": "https://example.com/v", "title": "Intro"}

	tag, err := Serialize(reg, "VideoEmbed", bag)
	require.NoError(t, err)
	assert.Equal(t, `<VideoEmbed url="https://example.com/v" title="Intro" />`, tag)

	doc := Parse(reg, tag)
	require.Len(t, doc.Widgets(), 1)
	assert.Equal(t, bag, doc.Widgets()[0].Props)
}

func TestSerializeEmptyBag(t *testing.T) {
	tag, err := Serialize(widget.Builtin(), "AngleVisualizer", nil)
	require.NoError(t, err)
	assert.Equal(t, "<AngleVisualizer />", tag)
}

func TestSerializeRequiresProperties(t *testing.T) {
	_, err := Serialize(widget.Builtin(), "MathPuzzle", widget.Props{"hint": "x"})

	require.ErrorIs(t, err, attrs.ErrMissingProperty)
	var propErr *attrs.PropertyError
	require.ErrorAs(t, err, &propErr)
	assert.Equal(t, "problem", propErr.Property)
}

func TestSerializeUnregisteredFails(t *testing.T) {
	_, err := Serialize(widget.Builtin(), "Unknown", widget.Props{"foo": "bar"})
	assert.ErrorIs(t, err, widget.ErrUnregistered)
}

func TestParseSerializeRoundTrip(t *testing.T) {
	reg := widget.Builtin()
	src := "# Lesson\n\n" +
		"<Quiz\n  questions={[{\"question\": \"a__b\", \"options\": [\"x\"], \"correctAnswer\": 0}]}\n/>\n\n" +
		"Text with `<Quiz />` code.\n\n" +
		"<MathPuzzle problem='2x = 4' answer={2} hint=\"halve\" />\n"

	first := Parse(reg, src)
	rebuilt := ""
	for _, seg := range first.Segments {
		if w, ok := seg.(*Widget); ok {
			tag, err := Serialize(reg, w.Type, w.Props)
			require.NoError(t, err)
			rebuilt += tag
			continue
		}
		rebuilt += seg.Raw()
	}

	second := Parse(reg, rebuilt)
	require.Len(t, second.Segments, len(first.Segments))
	for i, seg := range first.Segments {
		switch want := seg.(type) {
		case *Widget:
			got, ok := second.Segments[i].(*Widget)
			require.True(t, ok)
			assert.Equal(t, want.Type, got.Type)
			assert.Equal(t, want.Props, got.Props)
		case *Prose:
			assert.Equal(t, want.Text, second.Segments[i].Raw())
		}
	}
}

func TestReplace(t *testing.T) {
	reg := widget.Builtin()
	src := "Before <AngleVisualizer initialAngle={30} /> after"
	doc := Parse(reg, src)
	w := doc.Widgets()[0]

	tag, err := Serialize(reg, w.Type, widget.Props{"initialAngle": 120.0})
	require.NoError(t, err)

	out, err := Replace(src, w, tag)
	require.NoError(t, err)
	assert.Equal(t, "Before <AngleVisualizer initialAngle={120} /> after", out)

	_, err = Replace(out, w, tag)
	assert.ErrorIs(t, err, ErrStaleSegment)
	_, err = Replace(src[:10], w, tag)
	assert.ErrorIs(t, err, ErrStaleSegment)
	_, err = Replace(src, nil, tag)
	assert.ErrorIs(t, err, ErrStaleSegment)
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "own block", src: "Intro\n\n<AngleVisualizer />\n\nOutro", want: "Intro\n\nOutro"},
		{name: "single breaks", src: "Intro\n<AngleVisualizer />\nOutro", want: "Intro\n\nOutro"},
		{name: "inline", src: "See <AngleVisualizer /> here", want: "See  here"},
		{name: "document start", src: "<AngleVisualizer />\n\nOutro", want: "Outro"},
		{name: "document end", src: "Intro\n\n<AngleVisualizer />\n", want: "Intro\n"},
		{name: "only tag", src: "<AngleVisualizer />", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Parse(widget.Builtin(), tt.src)
			require.Len(t, doc.Widgets(), 1)
			out, err := Delete(tt.src, doc.Widgets()[0])
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestInsert(t *testing.T) {
	tag := "<AngleVisualizer />"
	tests := []struct {
		name   string
		src    string
		offset int
		want   string
	}{
		{name: "empty", src: "", offset: 0, want: tag},
		{name: "end of text", src: "Intro", offset: 5, want: "Intro\n\n" + tag},
		{name: "after paragraph", src: "Intro\n\nOutro", offset: 7, want: "Intro\n\n" + tag + "\n\nOutro"},
		{name: "mid line", src: "Intro Outro", offset: 6, want: "Intro\n\n" + tag + "\n\nOutro"},
		{name: "clamped", src: "Intro", offset: 99, want: "Intro\n\n" + tag},
		{name: "negative", src: "Outro", offset: -3, want: tag + "\n\nOutro"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, span := Insert(tt.src, tt.offset, tag)
			assert.Equal(t, tt.want, out)
			assert.Equal(t, tag, out[span.Start:span.End])
		})
	}
}

func TestInsertSnapsToRuneStart(t *testing.T) {
	src := "añb"
	out, span := Insert(src, 2, "<AngleVisualizer />")
	assert.Equal(t, "a\n\n<AngleVisualizer />\n\nñb", out)
	assert.Equal(t, 3, span.Start)
}

func TestAppend(t *testing.T) {
	out, _ := Append("Intro\n", "<AngleVisualizer />")
	assert.Equal(t, "Intro\n\n<AngleVisualizer />", out)
}
