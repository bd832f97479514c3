package photocredit

import (
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/eringen/photocredit/credit"
)

// ErrNotFound is returned when a requested post or attachment does not exist.
var ErrNotFound = sql.ErrNoRows

// PostCache is an in-memory cache of published posts and their tags with TTL.
// Settings and attachment fields are not cached; they are read on every
// render.
type PostCache struct {
	mu      sync.RWMutex
	posts   []Post
	tags    []credit.Term
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewPostCache creates a PostCache backed by the given Store.
func NewPostCache(s *Store, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.tags = nil
	c.mu.Unlock()
}

func (c *PostCache) load() error {
	if c.valid() {
		return nil
	}
	posts, err := c.store.ListPosts()
	if err != nil {
		return err
	}
	tags, err := c.store.ListTerms(TaxonomyTag)
	if err != nil {
		return err
	}
	if posts == nil {
		posts = []Post{}
	}
	c.posts = posts
	c.tags = tags
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns cached posts and tags after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *PostCache) ensureLoaded() ([]Post, []credit.Term, error) {
	c.mu.RLock()
	if c.valid() {
		posts, tags := c.posts, c.tags
		c.mu.RUnlock()
		return posts, tags, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, nil, err
	}
	return c.posts, c.tags, nil
}

// ListPosts returns published posts, optionally filtered by a tag or
// category slug.
func (c *PostCache) ListPosts(term string) ([]Post, error) {
	posts, _, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	if term == "" {
		return posts, nil
	}
	normalized := normalizeTerm(term)
	var filtered []Post
	for _, p := range posts {
		if hasTerm(p.Tags, normalized) || hasTerm(p.Categories, normalized) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// ListTags returns all tags used by published posts.
func (c *PostCache) ListTags() ([]credit.Term, error) {
	_, tags, err := c.ensureLoaded()
	return tags, err
}

// GetPost returns a single published post by slug from the cache.
func (c *PostCache) GetPost(slug string) (Post, error) {
	posts, _, err := c.ensureLoaded()
	if err != nil {
		return Post{}, err
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Post{}, ErrNotFound
}

func hasTerm(terms []credit.Term, normalized string) bool {
	for _, t := range terms {
		if normalizeTerm(t.Slug) == normalized || normalizeTerm(t.Name) == normalized {
			return true
		}
	}
	return false
}

func normalizeTerm(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
