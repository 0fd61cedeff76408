package pubscrape

import (
	"context"
	"errors"

	"github.com/eringen/pubscrape/scrape"
)

// Post is one blog entry as served by the API.
type Post = scrape.Post

// ErrNotFound is returned when no post has the requested slug.
var ErrNotFound = errors.New("post not found")

// Repository answers post queries. Store always rescans; PostCache reuses
// results while the posts directory is unchanged.
type Repository interface {
	ListPosts(ctx context.Context) ([]Post, error)
	GetPost(ctx context.Context, slug string) (Post, error)
	ListCategories(ctx context.Context) ([]string, error)
}

// apiError is the JSON body of every API error response.
type apiError struct {
	Error string `json:"error"`
}
