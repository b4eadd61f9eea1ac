package lesson

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "db", "lessons.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStoreCreateAndLoad(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			body := "# Angles\n\n<AngleVisualizer initialAngle={30} />\n\n  trailing spaces  \n"

			created, err := store.Save(ctx, Lesson{ChapterID: "ch1", Title: "Angles", DurationMinutes: 10, Content: body})
			require.NoError(t, err)
			assert.Len(t, created.ID, 26)
			assert.False(t, created.CreatedAt.IsZero())

			loaded, err := store.Load(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, body, loaded.Content)
			assert.Equal(t, "Angles", loaded.Title)
			assert.Equal(t, 10, loaded.DurationMinutes)
			assert.True(t, created.CreatedAt.Equal(loaded.CreatedAt))
		})
	}
}

func TestStoreUpdateKeepsPosition(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first, err := store.Save(ctx, Lesson{ChapterID: "ch1", Title: "One", Content: "a"})
			require.NoError(t, err)
			second, err := store.Save(ctx, Lesson{ChapterID: "ch1", Title: "Two", Content: "b"})
			require.NoError(t, err)
			other, err := store.Save(ctx, Lesson{ChapterID: "ch2", Title: "Other", Content: "c"})
			require.NoError(t, err)

			assert.Equal(t, 0, first.OrderIndex)
			assert.Equal(t, 1, second.OrderIndex)
			assert.Equal(t, 0, other.OrderIndex)

			first.Title = "One, revised"
			first.OrderIndex = 9
			updated, err := store.Save(ctx, first)
			require.NoError(t, err)
			assert.Equal(t, 0, updated.OrderIndex)
			assert.True(t, first.CreatedAt.Equal(updated.CreatedAt))

			list, err := store.List(ctx, "ch1")
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "One, revised", list[0].Title)
			assert.Equal(t, "Two", list[1].Title)
		})
	}
}

func TestStoreErrors(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Load(ctx, "missing")
			require.ErrorIs(t, err, ErrNotFound)

			_, err = store.Save(ctx, Lesson{ID: "missing", ChapterID: "ch1", Title: "x"})
			require.ErrorIs(t, err, ErrNotFound)

			_, err = store.Save(ctx, Lesson{ChapterID: "ch1"})
			require.ErrorIs(t, err, ErrTitleRequired)

			_, err = store.Save(ctx, Lesson{Title: "x"})
			require.ErrorIs(t, err, ErrChapterRequired)

			require.ErrorIs(t, store.Delete(ctx, "missing"), ErrNotFound)
		})
	}
}

func TestStoreDelete(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			l, err := store.Save(ctx, Lesson{ChapterID: "ch1", Title: "Gone", Content: "x"})
			require.NoError(t, err)

			require.NoError(t, store.Delete(ctx, l.ID))

			_, err = store.Load(ctx, l.ID)
			require.ErrorIs(t, err, ErrNotFound)
			list, err := store.List(ctx, "ch1")
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestEstimateMinutes(t *testing.T) {
	tests := []struct {
		words int
		want  int
	}{
		{0, 1},
		{199, 1},
		{200, 1},
		{201, 2},
		{1000, 5},
	}
	for _, tt := range tests {
		html := "<p>"
		for i := 0; i < tt.words; i++ {
			html += "word "
		}
		html += "</p>"
		assert.Equal(t, tt.want, EstimateMinutes(html), "words=%d", tt.words)
	}
}
