package pubscrape

import (
	"strings"
	"testing"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		segs []string
		want string
	}{
		{"https://example.com", nil, "https://example.com"},
		{"https://example.com", []string{"feed.xml"}, "https://example.com/feed.xml/"},
		{"https://example.com/blog/", []string{"a", "b"}, "https://example.com/blog/a/b/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segs...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segs, got, tt.want)
		}
	}
}

func TestPostURL(t *testing.T) {
	if got := PostURL("https://example.com/", "black-sea-coast"); got != "https://example.com/#post/black-sea-coast" {
		t.Errorf("PostURL = %q", got)
	}
}

func TestFilterEmpty(t *testing.T) {
	got := FilterEmpty([]string{" a ", "", "  ", "b"})
	if strings.Join(got, ",") != "a,b" {
		t.Errorf("FilterEmpty = %v, want [a b]", got)
	}
}

func TestFilterByCategory(t *testing.T) {
	posts := []Post{
		{Slug: "1", Categories: []string{"cycling"}},
		{Slug: "2", Categories: []string{"photography", "cycling"}},
		{Slug: "3", Categories: []string{"other"}},
	}
	got := FilterByCategory(posts, "CYCLING")
	if len(got) != 2 || got[0].Slug != "1" || got[1].Slug != "2" {
		t.Errorf("FilterByCategory = %+v", got)
	}
	if none := FilterByCategory(posts, "snowboarding"); none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", none)
	}
}

func TestExcerpt(t *testing.T) {
	p := Post{Content: "<article><h1>Coast</h1><p>The Black Sea coast has always held a special place.</p></article>"}

	if got := Excerpt(p, 500); got != "Coast The Black Sea coast has always held a special place." {
		t.Errorf("Excerpt long = %q", got)
	}
	if got := Excerpt(p, 20); got != "Coast The Black Sea…" {
		t.Errorf("Excerpt short = %q", got)
	}
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"March 10, 2023", "March 5, 2022", "2020-02-29", "3/7/2021"} {
		if _, ok := parseDate(s); !ok {
			t.Errorf("parseDate(%q) failed", s)
		}
	}
	for _, s := range []string{"Unknown Date", "Posted 5, 2022"} {
		if _, ok := parseDate(s); ok {
			t.Errorf("parseDate(%q) should fail", s)
		}
	}
}
