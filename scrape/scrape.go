// Package scrape turns a hand-authored HTML post into a structured Post by
// reading its markup. Every field is resolved through an ordered chain of
// fallbacks, so extraction never fails on malformed input.
package scrape

import (
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UnknownDate is the date given to posts with no recognizable date.
const UnknownDate = "Unknown Date"

// LongDateLayout is the display layout for dates taken from filenames.
const LongDateLayout = "January 02, 2006"

// FallbackCategory tags posts matching no category when the Extractor has
// no DefaultCategory of its own.
const FallbackCategory = "other"

var (
	reISODate    = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)
	reDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-`)
	reBodyTag    = regexp.MustCompile(`(?i)<body[\s>]`)
	reScheme     = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*:`)

	// Searched in order against the raw markup; first match wins.
	contentDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\w+ \d{1,2}, \d{4})`),
		regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4})`),
		reISODate,
	}
)

// Post is the record extracted from one post file.
type Post struct {
	Slug       string   `json:"slug"`
	Title      string   `json:"title"`
	Date       string   `json:"date"`
	Categories []string `json:"categories"`
	Thumbnail  *string  `json:"thumbnail"`
	Content    string   `json:"content"`
}

// HasCategory reports whether p is tagged with category, ignoring case.
func (p Post) HasCategory(category string) bool {
	category = strings.ToLower(strings.TrimSpace(category))
	for _, c := range p.Categories {
		if strings.ToLower(c) == category {
			return true
		}
	}
	return false
}

// Extractor holds the site settings that shape extraction.
type Extractor struct {
	Categories      []string // valid categories, in match order
	DefaultCategory string   // used when no category matches; FallbackCategory if empty
	ImagesRoot      string   // site path relative thumbnails are rewritten under
}

// Extract builds a Post from a file's raw HTML and its name.
func (e Extractor) Extract(raw, filename string) Post {
	post := Post{
		Slug:       Slug(filename),
		Date:       extractDate(raw, filename),
		Categories: []string{e.defaultCategory()},
		Content:    raw,
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		post.Title = HumanizeFilename(filename)
		return post
	}

	post.Title = firstOf(doc, titleSelectors)
	if post.Title == "" {
		post.Title = HumanizeFilename(filename)
	}
	post.Categories = e.categories(doc.Text())
	if src, ok := thumbnailSource(doc); ok {
		thumb := e.absoluteImagePath(src)
		post.Thumbnail = &thumb
	}
	if content, ok := contentFragment(doc, raw); ok {
		post.Content = content
	}
	return post
}

// selector yields a value from the document, or false when absent.
type selector func(*goquery.Document) (string, bool)

func firstOf(doc *goquery.Document, chain []selector) string {
	for _, sel := range chain {
		if v, ok := sel(doc); ok {
			return v
		}
	}
	return ""
}

var titleSelectors = []selector{
	func(doc *goquery.Document) (string, bool) {
		title := strings.TrimSpace(doc.Find("title").First().Text())
		return title, title != ""
	},
}

func extractDate(raw, filename string) string {
	if m := reISODate.FindString(filename); m != "" {
		if t, err := time.Parse("2006-01-02", m); err == nil {
			return t.Format(LongDateLayout)
		}
	}
	for _, re := range contentDatePatterns {
		if m := re.FindStringSubmatch(raw); m != nil {
			return m[1]
		}
	}
	return UnknownDate
}

func (e Extractor) categories(text string) []string {
	text = strings.ToLower(text)
	var found []string
	for _, c := range e.Categories {
		if c == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(c)) {
			found = append(found, c)
		}
	}
	if len(found) == 0 {
		return []string{e.defaultCategory()}
	}
	return found
}

func (e Extractor) defaultCategory() string {
	if e.DefaultCategory == "" {
		return FallbackCategory
	}
	return e.DefaultCategory
}

// thumbnailSource returns the src of img#thumbnail, or of the first image
// when no thumbnail is marked.
func thumbnailSource(doc *goquery.Document) (string, bool) {
	img := doc.Find(`img[id="thumbnail"]`).First()
	if img.Length() == 0 {
		img = doc.Find("img").First()
	}
	if img.Length() == 0 {
		return "", false
	}
	src, ok := img.Attr("src")
	if !ok || src == "" {
		return "", false
	}
	return src, true
}

func (e Extractor) absoluteImagePath(src string) string {
	if reScheme.MatchString(src) || strings.HasPrefix(src, "/") {
		return src
	}
	return path.Join("/", e.ImagesRoot, src)
}

var contentContainers = []string{".entry-content", "article", "main"}

// contentFragment serializes the first content container found. The parser
// always synthesizes a body, so body only counts when the source wrote one.
func contentFragment(doc *goquery.Document, raw string) (string, bool) {
	for _, q := range contentContainers {
		if sel := doc.Find(q).First(); sel.Length() > 0 {
			if out, err := goquery.OuterHtml(sel); err == nil {
				return out, true
			}
		}
	}
	if reBodyTag.MatchString(raw) {
		if out, err := goquery.OuterHtml(doc.Find("body").First()); err == nil {
			return out, true
		}
	}
	return "", false
}

// Slug derives a post's identifier from its filename: the extension and any
// leading YYYY-MM-DD- prefix are dropped.
func Slug(filename string) string {
	base := FileSlug(filename)
	if trimmed := reDatePrefix.ReplaceAllString(base, ""); trimmed != "" {
		return trimmed
	}
	return base
}

// FileSlug is the filename without directory or extension. It is the
// identifier for posts whose Slug collides with another post's.
func FileSlug(filename string) string {
	return strings.TrimSuffix(path.Base(filename), path.Ext(filename))
}

// HumanizeFilename turns "my-first-post.html" into "My First Post".
func HumanizeFilename(filename string) string {
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	// Casers carry state; one per call keeps concurrent scans safe.
	return cases.Title(language.English).String(strings.ReplaceAll(base, "-", " "))
}

// PlainText returns the visible text of an HTML fragment, one space between
// text nodes, scripts and styles dropped.
func PlainText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	var words []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			words = append(words, strings.Fields(n.Data)...)
		case n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style"):
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return strings.Join(words, " ")
}
