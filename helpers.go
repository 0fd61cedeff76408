package pubscrape

import (
	"net/url"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/eringen/pubscrape/scrape"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// PostURL returns the front-end link of a post: the site root with a
// #post/{slug} route.
func PostURL(base, slug string) string {
	return strings.TrimRight(base, "/") + "/#post/" + url.PathEscape(slug)
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FilterByCategory returns the posts tagged with category, keeping order.
func FilterByCategory(posts []Post, category string) []Post {
	filtered := []Post{}
	for _, p := range posts {
		if p.HasCategory(category) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// Excerpt returns up to n runes of the post's visible text, cut at a word
// boundary and suffixed with an ellipsis when shortened.
func Excerpt(p Post, n int) string {
	text := scrape.PlainText(p.Content)
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	cut := string([]rune(text)[:n])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
