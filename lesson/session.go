package lesson

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"unicode/utf8"

	"github.com/rgonek/lessonmd/content"
	"github.com/rgonek/lessonmd/internal/logger"
	"github.com/rgonek/lessonmd/normalize"
	"github.com/rgonek/lessonmd/render"
	"github.com/rgonek/lessonmd/widget"
)

// ErrNoWidget is returned when a widget index or segment does not name a
// widget of the current content.
var ErrNoWidget = errors.New("no such widget")

// Session is one author's editing session over a lesson. It is not safe for
// concurrent use.
type Session struct {
	store    Store
	registry *widget.Registry
	renderer *render.Renderer
	base     *logger.Logger
	log      *logger.Logger

	lesson  Lesson
	content string
	dirty   bool
}

func NewSession(store Store, registry *widget.Registry, renderer *render.Renderer, log *logger.Logger) *Session {
	if log == nil {
		log = logger.Nop()
	}
	return &Session{
		store:    store,
		registry: registry,
		renderer: renderer,
		base:     log,
		log:      log,
	}
}

// Load replaces the session state with the stored lesson.
func (s *Session) Load(ctx context.Context, id string) error {
	l, err := s.store.Load(ctx, id)
	if err != nil {
		return err
	}
	s.lesson = l
	s.content = l.Content
	s.dirty = false
	s.log = s.base.With("lesson", l.ID)
	s.log.Debug("lesson loaded", "bytes", len(l.Content))
	return nil
}

// Reset starts a new, empty lesson in chapterID.
func (s *Session) Reset(chapterID string) {
	s.lesson = Lesson{ChapterID: chapterID}
	s.content = ""
	s.dirty = false
	s.log = s.base.With("chapter", chapterID)
}

// Lesson returns the lesson being edited with the current content.
func (s *Session) Lesson() Lesson {
	l := s.lesson
	l.Content = s.content
	return l
}

func (s *Session) SetTitle(title string) {
	s.lesson.Title = title
	s.dirty = true
}

// SetDuration sets the lesson duration; zero or less means estimate on save.
func (s *Session) SetDuration(minutes int) {
	s.lesson.DurationMinutes = minutes
	s.dirty = true
}

func (s *Session) Dirty() bool { return s.dirty }

func (s *Session) Content() string { return s.content }

// SetContent replaces the content verbatim, as typed edits do.
func (s *Session) SetContent(text string) {
	s.content = text
	s.dirty = true
}

// Paste splices text into the content at offset. Text that looks like
// markdown is normalized first. An offset inside a tag moves to the end of
// the tag. Paste returns the inserted text.
func (s *Session) Paste(offset int, text string) string {
	if normalize.LooksLikeMarkdown(text) {
		text = normalize.Normalize(text)
	}
	offset = s.anchor(offset)
	s.content = s.content[:offset] + text + s.content[offset:]
	s.dirty = true
	return text
}

// Import replaces the content with normalized text.
func (s *Session) Import(text string) {
	s.content = normalize.Normalize(text)
	s.dirty = true
}

// anchor clamps offset to the content and moves it out of the interior of a
// widget tag or degraded tag text to the end of that segment.
func (s *Session) anchor(offset int) int {
	offset = clampOffset(s.content, offset)
	doc := s.Document()
	i := doc.SegmentAt(offset)
	if i < 0 {
		return offset
	}
	span := doc.Segments[i].Bounds()
	if offset == span.Start {
		return offset
	}
	switch seg := doc.Segments[i].(type) {
	case *content.Widget:
		return span.End
	case *content.Prose:
		if seg.Inert {
			return span.End
		}
	}
	return offset
}

func clampOffset(src string, offset int) int {
	offset = max(0, min(offset, len(src)))
	for offset > 0 && offset < len(src) && !utf8.RuneStart(src[offset]) {
		offset--
	}
	return offset
}

// Document parses the current content.
func (s *Session) Document() content.Document {
	return content.Parse(s.registry, s.content)
}

// Widgets returns the widget instances of the current content in order.
func (s *Session) Widgets() []*content.Widget {
	return s.Document().Widgets()
}

// InsertWidget serializes a new widget and inserts it at offset, or at the
// end when offset is negative. An offset inside a tag moves to the end of
// the tag. It returns the span of the inserted tag.
func (s *Session) InsertWidget(offset int, typeName string, props widget.Props) (content.Span, error) {
	tag, err := content.Serialize(s.registry, typeName, props)
	if err != nil {
		return content.Span{}, err
	}

	var span content.Span
	if offset < 0 {
		s.content, span = content.Append(s.content, tag)
	} else {
		s.content, span = content.Insert(s.content, s.anchor(offset), tag)
	}
	s.dirty = true
	s.log.Debug("widget inserted", "type", typeName, "start", span.Start)
	return span, nil
}

// UpdateWidget binds an edit form for the index-th widget and splices the
// re-serialized tag over the old one. Attributes the descriptor does not
// declare are carried over unchanged.
func (s *Session) UpdateWidget(index int, form url.Values) error {
	w, err := s.widget(index)
	if err != nil {
		return err
	}
	desc, err := s.registry.Describe(w.Type)
	if err != nil {
		return err
	}
	props, err := widget.Bind(desc, form)
	if err != nil {
		return err
	}
	for name, value := range w.Props {
		if _, declared := desc.Property(name); !declared {
			props[name] = value
		}
	}
	tag, err := content.Serialize(s.registry, w.Type, props)
	if err != nil {
		return err
	}
	updated, err := content.Replace(s.content, w, tag)
	if err != nil {
		return err
	}
	s.content = updated
	s.dirty = true
	s.log.Debug("widget updated", "type", w.Type, "index", index)
	return nil
}

// DeleteWidget removes the index-th widget.
func (s *Session) DeleteWidget(index int) error {
	w, err := s.widget(index)
	if err != nil {
		return err
	}
	updated, err := content.Delete(s.content, w)
	if err != nil {
		return err
	}
	s.content = updated
	s.dirty = true
	s.log.Debug("widget deleted", "type", w.Type, "index", index)
	return nil
}

func (s *Session) widget(index int) (*content.Widget, error) {
	widgets := s.Widgets()
	if index < 0 || index >= len(widgets) {
		return nil, fmt.Errorf("widget %d: %w", index, ErrNoWidget)
	}
	return widgets[index], nil
}

// Submit applies an authoring form post. The form names the target by
// segment index and carries the operation alongside the widget fields.
func (s *Session) Submit(form url.Values) error {
	segment, err := strconv.Atoi(form.Get(widget.SegmentField))
	if err != nil {
		return fmt.Errorf("%w: bad %s %q", widget.ErrInvalidForm, widget.SegmentField, form.Get(widget.SegmentField))
	}

	doc := s.Document()
	index := -1
	for i, seg := range doc.Segments {
		if _, ok := seg.(*content.Widget); ok {
			index++
		}
		if i == segment {
			if _, ok := seg.(*content.Widget); !ok {
				index = -1
			}
			break
		}
	}
	if segment < 0 || segment >= len(doc.Segments) || index < 0 {
		return fmt.Errorf("segment %d: %w", segment, ErrNoWidget)
	}

	switch op := form.Get(widget.OpField); op {
	case widget.OpDelete:
		return s.DeleteWidget(index)
	case widget.OpUpdate, "":
		return s.UpdateWidget(index, form)
	default:
		return fmt.Errorf("%w: unknown %s %q", widget.ErrInvalidForm, widget.OpField, op)
	}
}

// Preview renders the read-only view and logs its warnings.
func (s *Session) Preview() render.Result {
	res := s.renderer.Render(s.content)
	s.logWarnings(res.Warnings)
	return res
}

// Authoring renders the editing view.
func (s *Session) Authoring() render.Result {
	res := s.renderer.RenderAuthoring(s.content)
	s.logWarnings(res.Warnings)
	return res
}

func (s *Session) logWarnings(warnings []content.Warning) {
	for _, w := range warnings {
		s.log.Warn("content warning", "type", w.Type, "widget", w.Widget, "offset", w.Offset, "message", w.Message)
	}
}

// Save persists the lesson. A title is required; a missing duration is
// estimated from the rendered text.
func (s *Session) Save(ctx context.Context) (Lesson, error) {
	l := s.Lesson()
	if l.Title == "" {
		return Lesson{}, ErrTitleRequired
	}
	if l.DurationMinutes <= 0 {
		l.DurationMinutes = EstimateMinutes(string(s.renderer.Render(l.Content).HTML))
	}

	saved, err := s.store.Save(ctx, l)
	if err != nil {
		s.log.Error("lesson save failed", "id", l.ID, "error", err)
		return Lesson{}, fmt.Errorf("save lesson: %w", err)
	}
	s.lesson = saved
	s.content = saved.Content
	s.dirty = false
	return saved, nil
}
