package lesson

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/rgonek/lessonmd/internal/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS lessons (
	id TEXT PRIMARY KEY,
	chapter_id TEXT NOT NULL,
	title TEXT NOT NULL,
	duration_minutes INTEGER NOT NULL,
	order_index INTEGER NOT NULL,
	content TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS lessons_chapter_order ON lessons (chapter_id, order_index);
`

const lessonColumns = `id, chapter_id, title, duration_minutes, order_index, content, created_at, updated_at`

// SQLiteStore is a Store backed by a SQLite database file.
type SQLiteStore struct {
	db  *sql.DB
	log *logger.Logger
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path and applies the
// schema.
func OpenSQLite(ctx context.Context, path string, log *logger.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = logger.Nop()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("SQLite database ping failed: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	log.Debug("opened lesson store", "path", path)
	return &SQLiteStore{db: db, log: log, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (Lesson, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+lessonColumns+` FROM lessons WHERE id = ?`, id)
	l, err := scanLesson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Lesson{}, fmt.Errorf("load %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return Lesson{}, fmt.Errorf("load %q: %w", id, err)
	}
	return l, nil
}

func (s *SQLiteStore) Save(ctx context.Context, l Lesson) (Lesson, error) {
	if err := validate(l); err != nil {
		return Lesson{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Lesson{}, fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	now := s.now().UTC()
	l.UpdatedAt = now
	if l.ID == "" {
		l.ID = newID()
		l.CreatedAt = now
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM lessons WHERE chapter_id = ?`, l.ChapterID).Scan(&l.OrderIndex)
		if err != nil {
			return Lesson{}, fmt.Errorf("count chapter lessons: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO lessons (`+lessonColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			l.ID, l.ChapterID, l.Title, l.DurationMinutes, l.OrderIndex, l.Content,
			formatTime(l.CreatedAt), formatTime(l.UpdatedAt))
		if err != nil {
			return Lesson{}, fmt.Errorf("insert lesson: %w", err)
		}
		s.log.Info("lesson created", "id", l.ID, "chapter", l.ChapterID)
	} else {
		existing, err := scanLesson(tx.QueryRowContext(ctx,
			`SELECT `+lessonColumns+` FROM lessons WHERE id = ?`, l.ID))
		if errors.Is(err, sql.ErrNoRows) {
			return Lesson{}, fmt.Errorf("save %q: %w", l.ID, ErrNotFound)
		}
		if err != nil {
			return Lesson{}, fmt.Errorf("save %q: %w", l.ID, err)
		}
		l.CreatedAt = existing.CreatedAt
		l.OrderIndex = existing.OrderIndex
		_, err = tx.ExecContext(ctx,
			`UPDATE lessons SET chapter_id = ?, title = ?, duration_minutes = ?, content = ?, updated_at = ? WHERE id = ?`,
			l.ChapterID, l.Title, l.DurationMinutes, l.Content, formatTime(l.UpdatedAt), l.ID)
		if err != nil {
			return Lesson{}, fmt.Errorf("update lesson: %w", err)
		}
		s.log.Info("lesson updated", "id", l.ID)
	}

	if err := tx.Commit(); err != nil {
		return Lesson{}, fmt.Errorf("commit save: %w", err)
	}
	return l, nil
}

func (s *SQLiteStore) List(ctx context.Context, chapterID string) ([]Lesson, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+lessonColumns+` FROM lessons WHERE chapter_id = ? ORDER BY order_index, id`, chapterID)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	var out []Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("list lessons: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lessons WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %q: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %q: %w", id, ErrNotFound)
	}
	s.log.Info("lesson deleted", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLesson(row rowScanner) (Lesson, error) {
	var (
		l                  Lesson
		created, updated string
	)
	err := row.Scan(&l.ID, &l.ChapterID, &l.Title, &l.DurationMinutes, &l.OrderIndex, &l.Content, &created, &updated)
	if err != nil {
		return Lesson{}, err
	}
	if l.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return Lesson{}, fmt.Errorf("parse created_at: %w", err)
	}
	if l.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return Lesson{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return l, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
