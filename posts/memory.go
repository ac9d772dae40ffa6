package posts

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryRepository keeps posts in process memory. Nothing expires.
type MemoryRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{cache: cache.New(cache.NoExpiration, 0)}
}

func (r *MemoryRepository) List(_ context.Context) ([]Post, error) {
	items := r.cache.Items()
	list := make([]Post, 0, len(items))
	for _, it := range items {
		list = append(list, clonePost(it.Object.(Post)))
	}
	sortNewestFirst(list)
	return list, nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (Post, error) {
	if x, found := r.cache.Get(id); found {
		return clonePost(x.(Post)), nil
	}
	return Post{}, ErrNotFound
}

func (r *MemoryRepository) Create(_ context.Context, p Post) (Post, error) {
	p, err := prepareCreate(p, time.Now())
	if err != nil {
		return Post{}, err
	}
	r.cache.Set(p.ID, clonePost(p), cache.NoExpiration)
	return p, nil
}

func (r *MemoryRepository) Update(_ context.Context, p Post) (Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	x, found := r.cache.Get(p.ID)
	if !found {
		return Post{}, ErrNotFound
	}
	p, err := prepareUpdate(p, x.(Post), time.Now())
	if err != nil {
		return Post{}, err
	}
	r.cache.Set(p.ID, clonePost(p), cache.NoExpiration)
	return p, nil
}

// clonePost detaches the tag slice so callers cannot edit stored posts.
func clonePost(p Post) Post {
	p.Tags = append([]string(nil), p.Tags...)
	if len(p.Tags) == 0 {
		p.Tags = nil
	}
	return p
}
