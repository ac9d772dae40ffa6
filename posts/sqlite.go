package posts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS posts (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	category   TEXT NOT NULL DEFAULT '',
	excerpt    TEXT NOT NULL DEFAULT '',
	content    TEXT NOT NULL DEFAULT '',
	tags       TEXT NOT NULL DEFAULT '[]',
	reactions  TEXT NOT NULL DEFAULT '{}',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

const postColumns = `id, title, category, excerpt, content, tags, reactions, created_at, updated_at`

// SQLiteRepository stores posts in a SQLite database. Tags and reactions are
// kept as JSON columns.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (and if needed creates) the database at dsn.
func NewSQLiteRepository(dsn string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating posts table: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// Close closes the database connection.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) List(ctx context.Context) ([]Post, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	var list []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	if list == nil {
		list = []Post{}
	}
	return list, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (Post, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	return p, err
}

func (r *SQLiteRepository) Create(ctx context.Context, p Post) (Post, error) {
	p, err := prepareCreate(p, time.Now())
	if err != nil {
		return Post{}, err
	}
	tags, reactions, err := encodeColumns(p)
	if err != nil {
		return Post{}, err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Category, p.Excerpt, p.Content, tags, reactions,
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if err != nil {
		return Post{}, fmt.Errorf("inserting post: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, p Post) (Post, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Post{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	stored, err := scanPost(tx.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, p.ID))
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, err
	}
	p, err = prepareUpdate(p, stored, time.Now())
	if err != nil {
		return Post{}, err
	}
	tags, reactions, err := encodeColumns(p)
	if err != nil {
		return Post{}, err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE posts SET title = ?, category = ?, excerpt = ?, content = ?, tags = ?, reactions = ?, updated_at = ?
		 WHERE id = ?`,
		p.Title, p.Category, p.Excerpt, p.Content, tags, reactions, formatTime(p.UpdatedAt), p.ID)
	if err != nil {
		return Post{}, fmt.Errorf("updating post: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Post{}, err
	}
	return p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (Post, error) {
	var (
		p                Post
		tags, reactions  string
		created, updated string
	)
	if err := s.Scan(&p.ID, &p.Title, &p.Category, &p.Excerpt, &p.Content,
		&tags, &reactions, &created, &updated); err != nil {
		return Post{}, err
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return Post{}, fmt.Errorf("decoding tags of %s: %w", p.ID, err)
	}
	if len(p.Tags) == 0 {
		p.Tags = nil
	}
	if err := json.Unmarshal([]byte(reactions), &p.Reactions); err != nil {
		return Post{}, fmt.Errorf("decoding reactions of %s: %w", p.ID, err)
	}
	var err error
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return Post{}, err
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return Post{}, err
	}
	return p, nil
}

func encodeColumns(p Post) (tags, reactions string, err error) {
	t := p.Tags
	if t == nil {
		t = []string{}
	}
	tb, err := json.Marshal(t)
	if err != nil {
		return "", "", err
	}
	rb, err := json.Marshal(p.Reactions)
	if err != nil {
		return "", "", err
	}
	return string(tb), string(rb), nil
}

// formatTime keeps a fixed width so created_at sorts lexically.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}
