// Package posts stores blog posts behind a small repository interface so the
// in-memory, file and SQLite backends are interchangeable.
package posts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("post not found")
	ErrInvalidPost     = errors.New("invalid post")
	ErrUnknownReaction = errors.New("unknown reaction")
)

// Post is one blog entry. Content holds editor markup.
type Post struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Category  string    `json:"category,omitempty" yaml:"category,omitempty"`
	Excerpt   string    `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
	Content   string    `json:"content" yaml:"content"`
	Tags      []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	Reactions Reactions `json:"reactions" yaml:"reactions"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updated_at"`
}

// Repository is the persistence contract every backend implements.
// List returns posts newest first.
type Repository interface {
	List(ctx context.Context) ([]Post, error)
	Get(ctx context.Context, id string) (Post, error)
	Create(ctx context.Context, p Post) (Post, error)
	Update(ctx context.Context, p Post) (Post, error)
}

// ReactionKind names one of the fixed reactions.
type ReactionKind string

const (
	Like       ReactionKind = "like"
	Love       ReactionKind = "love"
	Insightful ReactionKind = "insightful"
)

// ParseReactionKind validates a reaction name coming from outside.
func ParseReactionKind(s string) (ReactionKind, error) {
	switch k := ReactionKind(s); k {
	case Like, Love, Insightful:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownReaction, s)
	}
}

// Reaction is the counter of one kind plus whether the current user gave it.
type Reaction struct {
	Count  int  `json:"count" yaml:"count"`
	Active bool `json:"active" yaml:"active"`
}

type Reactions struct {
	Like       Reaction `json:"like" yaml:"like"`
	Love       Reaction `json:"love" yaml:"love"`
	Insightful Reaction `json:"insightful" yaml:"insightful"`
}

// Toggle flips the user's reaction of the given kind.
func (r *Reactions) Toggle(kind ReactionKind) error {
	var target *Reaction
	switch kind {
	case Like:
		target = &r.Like
	case Love:
		target = &r.Love
	case Insightful:
		target = &r.Insightful
	default:
		return fmt.Errorf("%w: %q", ErrUnknownReaction, kind)
	}
	if target.Active {
		target.Count = max(target.Count-1, 0)
	} else {
		target.Count++
	}
	target.Active = !target.Active
	return nil
}

// React toggles a reaction on a stored post and saves it.
func React(ctx context.Context, repo Repository, id string, kind ReactionKind) (Post, error) {
	p, err := repo.Get(ctx, id)
	if err != nil {
		return Post{}, err
	}
	if err := p.Reactions.Toggle(kind); err != nil {
		return Post{}, err
	}
	return repo.Update(ctx, p)
}

// prepareCreate validates p and fills the fields a backend owns.
func prepareCreate(p Post, now time.Time) (Post, error) {
	if err := validate(&p); err != nil {
		return Post{}, err
	}
	p.ID = uuid.NewString()
	p.CreatedAt = now.UTC()
	p.UpdatedAt = p.CreatedAt
	return p, nil
}

// prepareUpdate validates p and carries the creation time of the stored copy.
func prepareUpdate(p, stored Post, now time.Time) (Post, error) {
	if err := validate(&p); err != nil {
		return Post{}, err
	}
	p.CreatedAt = stored.CreatedAt
	p.UpdatedAt = now.UTC()
	return p, nil
}

func validate(p *Post) error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidPost)
	}
	tags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		tags = nil
	}
	p.Tags = tags
	return nil
}

func sortNewestFirst(list []Post) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
