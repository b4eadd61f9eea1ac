package lesson

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.RWMutex
	lessons map[string]Lesson
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		lessons: make(map[string]Lesson),
		now:     time.Now,
	}
}

func (s *MemoryStore) Load(_ context.Context, id string) (Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.lessons[id]
	if !ok {
		return Lesson{}, fmt.Errorf("load %q: %w", id, ErrNotFound)
	}
	return l, nil
}

func (s *MemoryStore) Save(_ context.Context, l Lesson) (Lesson, error) {
	if err := validate(l); err != nil {
		return Lesson{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if l.ID == "" {
		l.ID = newID()
		l.CreatedAt = now
		l.OrderIndex = s.countChapter(l.ChapterID)
	} else {
		existing, ok := s.lessons[l.ID]
		if !ok {
			return Lesson{}, fmt.Errorf("save %q: %w", l.ID, ErrNotFound)
		}
		l.CreatedAt = existing.CreatedAt
		l.OrderIndex = existing.OrderIndex
	}
	l.UpdatedAt = now

	s.lessons[l.ID] = l
	return l, nil
}

func (s *MemoryStore) countChapter(chapterID string) int {
	n := 0
	for _, l := range s.lessons {
		if l.ChapterID == chapterID {
			n++
		}
	}
	return n
}

func (s *MemoryStore) List(_ context.Context, chapterID string) ([]Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Lesson
	for _, l := range s.lessons {
		if l.ChapterID == chapterID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lessons[id]; !ok {
		return fmt.Errorf("delete %q: %w", id, ErrNotFound)
	}
	delete(s.lessons, id)
	return nil
}
