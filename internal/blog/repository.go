package blog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	pkgerrors "github.com/arkicoffee/storefront-backend/pkg/errors"
)

const postsFixture = "blog.json"

// Post is a journal entry loaded from the static fixtures.
type Post struct {
	ID       string `json:"id"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt"`
	Content  string `json:"content"`
	Author   string `json:"author"`
	Date     string `json:"date"`
	Image    string `json:"image"`
	Category string `json:"category"`
}

// Repository serves the static blog content, immutable after load.
type Repository struct {
	posts  []Post
	bySlug map[string]Post
}

// NewRepository loads the blog fixture from dir.
func NewRepository(dir string) (*Repository, error) {
	path := filepath.Join(dir, postsFixture)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var posts []Post
	if err := json.Unmarshal(raw, &posts); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}

	repo := &Repository{
		posts:  posts,
		bySlug: make(map[string]Post, len(posts)),
	}
	for _, p := range posts {
		if p.Slug == "" {
			return nil, fmt.Errorf("blog post %s has empty slug", p.ID)
		}
		repo.bySlug[p.Slug] = p
	}
	return repo, nil
}

// List returns all posts in fixture order.
func (r *Repository) List() []Post {
	out := make([]Post, len(r.posts))
	copy(out, r.posts)
	return out
}

// GetBySlug returns the post with the given slug.
func (r *Repository) GetBySlug(slug string) (Post, error) {
	post, ok := r.bySlug[slug]
	if !ok {
		return Post{}, pkgerrors.New(pkgerrors.CodeNotFound, "blog post not found")
	}
	return post, nil
}
