package pubscrape

import (
	"context"
	"sync"
)

// PostCache keeps the last scan of a Store and serves it for as long as the
// posts directory snapshot is unchanged. Every read recomputes the snapshot,
// so an added, removed or edited file is picked up on the next request.
// Returned slices are shared; callers must not modify them.
type PostCache struct {
	mu     sync.RWMutex
	posts  []Post
	key    string
	loaded bool
	store  *Store
}

// NewPostCache creates a PostCache backed by the given Store.
func NewPostCache(s *Store) *PostCache {
	return &PostCache{store: s}
}

func (c *PostCache) valid(key string) bool {
	return c.loaded && c.key == key
}

// Invalidate clears the cache so the next read triggers a fresh scan.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.loaded = false
	c.mu.Unlock()
}

// ensureLoaded returns cached posts after checking them against the current
// snapshot. It tries a read lock first; only takes a write lock to rescan.
func (c *PostCache) ensureLoaded(ctx context.Context) ([]Post, error) {
	key, err := c.store.Snapshot()
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	if c.valid(key) {
		posts := c.posts
		c.mu.RUnlock()
		cacheHits.Inc()
		return posts, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid(key) {
		cacheHits.Inc()
		return c.posts, nil
	}
	cacheMisses.Inc()
	posts, err := c.store.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	// A change during the scan leaves the stored key stale, which forces
	// another rescan on the next read.
	c.posts = posts
	c.key = key
	c.loaded = true
	return posts, nil
}

// ListPosts returns all posts, newest first.
func (c *PostCache) ListPosts(ctx context.Context) ([]Post, error) {
	return c.ensureLoaded(ctx)
}

// GetPost returns a single post by slug from the cache.
func (c *PostCache) GetPost(ctx context.Context, slug string) (Post, error) {
	posts, err := c.ensureLoaded(ctx)
	if err != nil {
		return Post{}, err
	}
	return findPost(posts, slug)
}

// ListCategories returns the sorted union of all post categories.
func (c *PostCache) ListCategories(ctx context.Context) ([]string, error) {
	posts, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	return collectCategories(posts), nil
}
