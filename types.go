package duckblog

import (
	"net/url"
	"strings"
	"time"

	"github.com/eringen/duckblog/markdown"
)

// Image is a reference to a static asset found in a post's markdown source.
type Image = markdown.Image

// Post is the core content type rendered by templates. It is created by the
// Store and shared read-only once cached or placed into a Corpus.
type Post struct {
	Content  string // rendered HTML
	Path     string // canonical site path, taken from Metadata.URL
	Metadata PostMetadata

	// Source is the document the post was parsed from. ImageDir is the
	// images/ directory next to an index document, empty for single files.
	Source   string
	ImageDir string
}

// Slug returns the last segment of the post path.
func (p *Post) Slug() string {
	trimmed := strings.Trim(p.Path, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// IsDraft reports whether the post is marked as a draft.
func (p *Post) IsDraft() bool {
	return p.Metadata.Draft != nil && *p.Metadata.Draft
}

// PostMetadata is the decoded front matter plus derived fields.
type PostMetadata struct {
	Title       string
	Date        Date
	Tags        []Tag
	Keywords    []string
	Draft       *bool
	Description string
	URL         string
	TimeToRead  int
	Images      []Image
}

// HeroImage returns the first image of the post, if any.
func (m PostMetadata) HeroImage() (Image, bool) {
	if len(m.Images) == 0 {
		return Image{}, false
	}
	return m.Images[0], true
}

// Tag is a named category. Two tags are equal when their names are.
type Tag struct {
	Name string
}

// URL returns the listing path for the tag.
func (t Tag) URL() string {
	return "/tags/" + url.PathEscape(t.Name) + "/"
}

func (t Tag) String() string { return t.Name }

// Equal reports whether t and o name the same tag.
func (t Tag) Equal(o Tag) bool {
	return normalizeTag(t.Name) == normalizeTag(o.Name)
}

// TagNames returns the names of tags in order.
func TagNames(tags []Tag) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}

// Date is a calendar date without a time of day.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate truncates t to its UTC calendar date.
func NewDate(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp, which is converted
// to its UTC date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return NewDate(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, err
	}
	return NewDate(t), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// UnmarshalText implements encoding.TextUnmarshaler. TOML headers decode
// through it.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Corpus is the complete, date-ordered collection of posts for one build.
// It is never mutated after construction.
type Corpus []*Post

// Find returns the post with the given path.
func (c Corpus) Find(path string) (*Post, bool) {
	path = canonicalPath(path)
	for _, p := range c {
		if p.Path == path {
			return p, true
		}
	}
	return nil, false
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
	Keywords    []string
}
