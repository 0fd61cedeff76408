package pubscrape

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/pubscrape/scrape"
)

// Store reads posts from a directory of HTML files. It keeps no state
// between calls: every listing rescans the directory and reparses every file.
type Store struct {
	dir       string
	patterns  []string
	workers   int
	extract   func(raw, filename string) scrape.Post
	sanitizer *bluemonday.Policy
	markdown  goldmark.Markdown
	log       zerolog.Logger
}

// NewStore creates a Store over cfg.PostsDir. The directory does not have
// to exist yet.
func NewStore(cfg SiteConfig, log zerolog.Logger) *Store {
	cfg.setDefaults()
	s := &Store{
		dir:      cfg.PostsDir,
		patterns: cfg.PostPatterns,
		workers:  cfg.Workers,
		markdown: goldmark.New(),
		log:      log.With().Str("component", "store").Logger(),
	}
	s.extract = scrape.Extractor{
		Categories:      cfg.Categories,
		DefaultCategory: cfg.DefaultCategory,
		ImagesRoot:      cfg.ImagesRoot,
	}.Extract
	if cfg.SanitizeContent {
		s.sanitizer = bluemonday.UGCPolicy()
	}
	return s
}

// Dir returns the scanned directory.
func (s *Store) Dir() string {
	return s.dir
}

// postFiles lists the post files in the directory in name order.
// A missing directory yields fs.ErrNotExist.
func (s *Store) postFiles() ([]fs.DirEntry, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var files []fs.DirEntry
	for _, e := range entries {
		if e.IsDir() || !s.matches(e.Name()) {
			continue
		}
		files = append(files, e)
	}
	return files, nil
}

func (s *Store) matches(name string) bool {
	for _, p := range s.patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// ListPosts scans the directory and returns every readable post, newest
// first by date string. Files that fail are logged and skipped.
func (s *Store) ListPosts(ctx context.Context) ([]Post, error) {
	start := time.Now()
	defer func() { scanDuration.Observe(time.Since(start).Seconds()) }()

	files, err := s.postFiles()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Post{}, nil
		}
		return nil, fmt.Errorf("read posts dir: %w", err)
	}

	results := make([]*Post, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			post, err := s.loadPost(f.Name())
			if err != nil {
				postsSkipped.Inc()
				s.log.Warn().Err(err).Str("file", f.Name()).Msg("skipping post")
				return nil
			}
			postsScanned.Inc()
			results[i] = &post
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	posts := make([]Post, 0, len(results))
	names := make([]string, 0, len(results))
	for i, p := range results {
		if p != nil {
			posts = append(posts, *p)
			names = append(names, files[i].Name())
		}
	}
	s.resolveSlugs(posts, names)
	SortPosts(posts)
	return posts, nil
}

// loadPost reads and extracts one file. A panic inside extraction is
// turned into an error so one bad file cannot fail the scan.
func (s *Store) loadPost(name string) (post Post, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extract %s: %v", name, r)
		}
	}()

	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return Post{}, err
	}
	if !utf8.Valid(raw) {
		return Post{}, fmt.Errorf("%s: not valid UTF-8", name)
	}
	html := string(raw)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		var buf bytes.Buffer
		if err := s.markdown.Convert(raw, &buf); err != nil {
			return Post{}, fmt.Errorf("render markdown %s: %w", name, err)
		}
		html = buf.String()
	}

	post = s.extract(html, name)
	if s.sanitizer != nil {
		post.Content = s.sanitizer.Sanitize(post.Content)
	}
	return post, nil
}

// resolveSlugs keeps slugs unique within a scan. Posts whose date-stripped
// slug is shared fall back to their full basename, then to the filename with
// its extension folded in (trip.html and trip.md become trip-html, trip-md).
// names[i] is the file posts[i] was read from.
func (s *Store) resolveSlugs(posts []Post, names []string) {
	steps := []func(name string) string{
		scrape.FileSlug,
		func(name string) string { return strings.ReplaceAll(name, ".", "-") },
	}
	for _, slugFor := range steps {
		dup := duplicateSlugs(posts)
		if len(dup) == 0 {
			return
		}
		for i := range posts {
			if dup[posts[i].Slug] {
				posts[i].Slug = slugFor(names[i])
			}
		}
	}
	for slug := range duplicateSlugs(posts) {
		s.log.Warn().Str("slug", slug).Msg("several posts share a slug; only the newest is reachable")
	}
}

func duplicateSlugs(posts []Post) map[string]bool {
	seen := make(map[string]int, len(posts))
	for _, p := range posts {
		seen[p.Slug]++
	}
	dup := make(map[string]bool)
	for slug, n := range seen {
		if n > 1 {
			dup[slug] = true
		}
	}
	return dup
}

// GetPost returns the post with the given slug or ErrNotFound.
func (s *Store) GetPost(ctx context.Context, slug string) (Post, error) {
	posts, err := s.ListPosts(ctx)
	if err != nil {
		return Post{}, err
	}
	return findPost(posts, slug)
}

// ListCategories returns the sorted union of categories across all posts.
func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	posts, err := s.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	return collectCategories(posts), nil
}

// Snapshot fingerprints the directory listing (names, sizes, mtimes) without
// reading any file. It changes whenever a post is added, removed or edited.
func (s *Store) Snapshot() (string, error) {
	h := sha256.New()
	info, err := os.Stat(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "missing", nil
		}
		return "", err
	}
	fmt.Fprintf(h, "%d\n", info.ModTime().UnixNano())

	files, err := s.postFiles()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	for _, f := range files {
		fi, err := f.Info()
		if err != nil {
			// Removed between listing and stat.
			continue
		}
		fmt.Fprintf(h, "%s\x00%d\x00%d\n", f.Name(), fi.Size(), fi.ModTime().UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SortPosts orders posts by their date display string, descending. Equal
// dates keep their scan order.
func SortPosts(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Date > posts[j].Date
	})
}

func findPost(posts []Post, slug string) (Post, error) {
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Post{}, ErrNotFound
}

func collectCategories(posts []Post) []string {
	set := make(map[string]struct{})
	for _, p := range posts {
		for _, c := range p.Categories {
			set[c] = struct{}{}
		}
	}
	result := make([]string, 0, len(set))
	for c := range set {
		result = append(result, c)
	}
	sort.Strings(result)
	return result
}
