package content

import (
	"strings"

	"github.com/rgonek/lessonmd/widget"
)

// WarningType categorizes parse warnings.
type WarningType string

const (
	WarningUnregisteredWidget WarningType = "unregistered_widget"
	WarningMissingProperty    WarningType = "missing_property"
	WarningInvalidProperty    WarningType = "invalid_property"
	WarningPropertyIssue      WarningType = "property_issue"
	WarningRenderFailed       WarningType = "render_failed"
)

// Warning represents a non-fatal issue found while parsing.
type Warning struct {
	Type    WarningType `json:"type"`
	Widget  string      `json:"widget,omitempty"`
	Offset  int         `json:"offset"`
	Message string      `json:"message"`
}

// Span is a half-open byte range [Start, End) of the parsed source.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the span length in bytes.
func (s Span) Len() int { return s.End - s.Start }

// Segment is either *Prose or *Widget.
type Segment interface {
	// Raw returns the exact source text the segment covers.
	Raw() string
	Bounds() Span
	isSegment()
}

// Prose is free text. Inert prose holds the literal text of a tag that could
// not become a widget; Reason names the warning type that degraded it.
type Prose struct {
	Text   string
	Span   Span
	Inert  bool
	Reason WarningType
}

func (p *Prose) Raw() string  { return p.Text }
func (p *Prose) Bounds() Span { return p.Span }
func (*Prose) isSegment()     {}

// Widget is a registered widget instance with its decoded properties.
type Widget struct {
	Type   string
	Props  widget.Props
	Source string
	Span   Span
}

func (w *Widget) Raw() string  { return w.Source }
func (w *Widget) Bounds() Span { return w.Span }
func (*Widget) isSegment()     {}

// Document is the result of Parse.
type Document struct {
	Source   string    `json:"-"`
	Segments []Segment `json:"-"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// Text concatenates the raw text of all segments; it always equals Source.
func (d Document) Text() string {
	var b strings.Builder
	b.Grow(len(d.Source))
	for _, seg := range d.Segments {
		b.WriteString(seg.Raw())
	}
	return b.String()
}

// Widgets returns the widget segments in document order.
func (d Document) Widgets() []*Widget {
	var out []*Widget
	for _, seg := range d.Segments {
		if w, ok := seg.(*Widget); ok {
			out = append(out, w)
		}
	}
	return out
}

// Widget returns the widget at segment index i.
func (d Document) Widget(i int) (*Widget, bool) {
	if i < 0 || i >= len(d.Segments) {
		return nil, false
	}
	w, ok := d.Segments[i].(*Widget)
	return w, ok
}

// SegmentAt returns the index of the segment containing byte offset off, or
// -1 when off is outside the source.
func (d Document) SegmentAt(off int) int {
	for i, seg := range d.Segments {
		span := seg.Bounds()
		if off >= span.Start && off < span.End {
			return i
		}
	}
	return -1
}
