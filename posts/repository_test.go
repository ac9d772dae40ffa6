package posts

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]func(t *testing.T) Repository {
	return map[string]func(t *testing.T) Repository{
		"memory": func(t *testing.T) Repository { return NewMemoryRepository() },
		"file": func(t *testing.T) Repository {
			r, err := NewFileRepository(filepath.Join(t.TempDir(), "posts"))
			require.NoError(t, err)
			return r
		},
		"sqlite": func(t *testing.T) Repository {
			r, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "posts.db"))
			require.NoError(t, err)
			t.Cleanup(func() { r.Close() })
			return r
		},
	}
}

func TestRepositoryContract(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := open(t)

			list, err := repo.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, list)

			created, err := repo.Create(ctx, Post{
				Title:    "  Cita prèvia digital ",
				Category: "Novetats",
				Content:  "<p>Nou sistema</p>",
				Tags:     []string{"digital", " ", "innovacio "},
			})
			require.NoError(t, err)
			assert.NotEmpty(t, created.ID)
			assert.Equal(t, "Cita prèvia digital", created.Title)
			assert.Equal(t, []string{"digital", "innovacio"}, created.Tags)
			assert.False(t, created.CreatedAt.IsZero())

			got, err := repo.Get(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, created.Title, got.Title)
			assert.Equal(t, created.Content, got.Content)
			assert.Equal(t, created.Tags, got.Tags)
			assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

			got.Excerpt = "Resum"
			got.Tags = nil
			got.CreatedAt = time.Time{}
			updated, err := repo.Update(ctx, got)
			require.NoError(t, err)
			assert.True(t, created.CreatedAt.Equal(updated.CreatedAt), "creation time is kept")
			assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

			again, err := repo.Get(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, "Resum", again.Excerpt)
			assert.Nil(t, again.Tags)

			time.Sleep(2 * time.Millisecond)
			second, err := repo.Create(ctx, Post{Title: "Segon"})
			require.NoError(t, err)

			list, err = repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, second.ID, list[0].ID, "newest first")
			assert.Equal(t, created.ID, list[1].ID)
		})
	}
}

func TestRepositoryErrors(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := open(t)

			_, err := repo.Get(ctx, "3f1c9a9e-6f0b-4d7e-9a54-0d3c2b1a0f00")
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = repo.Get(ctx, "../../etc/passwd")
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = repo.Update(ctx, Post{ID: "3f1c9a9e-6f0b-4d7e-9a54-0d3c2b1a0f00", Title: "x"})
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = repo.Create(ctx, Post{Title: "  "})
			assert.ErrorIs(t, err, ErrInvalidPost)

			p, err := repo.Create(ctx, Post{Title: "ok"})
			require.NoError(t, err)
			p.Title = ""
			_, err = repo.Update(ctx, p)
			assert.ErrorIs(t, err, ErrInvalidPost)
		})
	}
}

func TestReactPersists(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := open(t)
			p, err := repo.Create(ctx, Post{Title: "Post"})
			require.NoError(t, err)

			p, err = React(ctx, repo, p.ID, Love)
			require.NoError(t, err)
			assert.Equal(t, Reaction{Count: 1, Active: true}, p.Reactions.Love)

			stored, err := repo.Get(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, p.Reactions, stored.Reactions)

			_, err = React(ctx, repo, p.ID, "angry")
			assert.ErrorIs(t, err, ErrUnknownReaction)
		})
	}
}
