// Package lesson holds lesson records, their stores and the authoring session
// that edits lesson content.
package lesson

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rgonek/lessonmd/render"
)

var (
	ErrNotFound        = errors.New("lesson not found")
	ErrTitleRequired   = errors.New("lesson title is required")
	ErrChapterRequired = errors.New("lesson chapter is required")
)

// WordsPerMinute is the reading speed used to estimate lesson duration.
const WordsPerMinute = 200

// Lesson is a persisted lesson. Content is opaque to the store and saved
// verbatim.
type Lesson struct {
	ID              string    `json:"id" yaml:"id"`
	ChapterID       string    `json:"chapterId" yaml:"chapterId"`
	Title           string    `json:"title" yaml:"title"`
	DurationMinutes int       `json:"durationMinutes" yaml:"durationMinutes"`
	OrderIndex      int       `json:"orderIndex" yaml:"orderIndex"`
	Content         string    `json:"content" yaml:"content"`
	CreatedAt       time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Store persists lessons. Save creates a lesson when ID is empty, appending it
// to its chapter, and otherwise updates the existing one, keeping its
// position and creation time.
type Store interface {
	Load(ctx context.Context, id string) (Lesson, error)
	Save(ctx context.Context, l Lesson) (Lesson, error)
	// List returns the chapter's lessons by OrderIndex.
	List(ctx context.Context, chapterID string) ([]Lesson, error)
	Delete(ctx context.Context, id string) error
}

func validate(l Lesson) error {
	if l.Title == "" {
		return ErrTitleRequired
	}
	if l.ChapterID == "" {
		return ErrChapterRequired
	}
	return nil
}

func newID() string {
	return ulid.Make().String()
}

// EstimateMinutes returns the reading time of rendered lesson HTML, never
// less than one minute.
func EstimateMinutes(html string) int {
	words := render.WordCount(html)
	return max(1, int(math.Ceil(float64(words)/WordsPerMinute)))
}
