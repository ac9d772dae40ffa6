package posts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// FileRepository stores one YAML document per post in a directory.
type FileRepository struct {
	mu  sync.RWMutex
	dir string
}

func NewFileRepository(dir string) (*FileRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating posts directory: %w", err)
	}
	return &FileRepository{dir: dir}, nil
}

func (r *FileRepository) path(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", ErrNotFound
	}
	return filepath.Join(r.dir, id+".yaml"), nil
}

func (r *FileRepository) List(_ context.Context) ([]Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("reading posts directory: %w", err)
	}
	list := make([]Post, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		p, err := readPost(filepath.Join(r.dir, e.Name()))
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	sortNewestFirst(list)
	return list, nil
}

func (r *FileRepository) Get(_ context.Context, id string) (Post, error) {
	path, err := r.path(id)
	if err != nil {
		return Post{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return readPost(path)
}

func (r *FileRepository) Create(_ context.Context, p Post) (Post, error) {
	p, err := prepareCreate(p, time.Now())
	if err != nil {
		return Post{}, err
	}
	path, err := r.path(p.ID)
	if err != nil {
		return Post{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := writePost(path, p); err != nil {
		return Post{}, err
	}
	return p, nil
}

func (r *FileRepository) Update(_ context.Context, p Post) (Post, error) {
	path, err := r.path(p.ID)
	if err != nil {
		return Post{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, err := readPost(path)
	if err != nil {
		return Post{}, err
	}
	p, err = prepareUpdate(p, stored, time.Now())
	if err != nil {
		return Post{}, err
	}
	if err := writePost(path, p); err != nil {
		return Post{}, err
	}
	return p, nil
}

func readPost(path string) (Post, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, err
	}
	var p Post
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Post{}, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return p, nil
}

// writePost replaces the file atomically through a temporary sibling.
func writePost(path string, p Post) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding post: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
