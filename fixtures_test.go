package duckblog

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/a-h/templ"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// writeFile creates name below root with its parent directories.
func writeFile(t *testing.T, root, name, content string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

type docOpts struct {
	title string
	date  string
	url   string
	tags  []string
	draft bool
	body  string
}

func doc(o docOpts) string {
	s := "---\n"
	s += fmt.Sprintf("title: %q\n", o.title)
	s += "date: " + o.date + "\n"
	s += fmt.Sprintf("url: %q\n", o.url)
	s += fmt.Sprintf("description: %q\n", "About "+o.title)
	if len(o.tags) > 0 {
		s += "tags:\n"
		for _, t := range o.tags {
			s += fmt.Sprintf("  - %q\n", t)
		}
	} else {
		s += "tags: []\n"
	}
	if o.draft {
		s += "draft: true\n"
	}
	s += "---\n\n" + o.body + "\n"
	return s
}

// newContentDir builds a content root with two published posts sharing the
// tag "x" and nothing else.
func newContentDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "posts/a.md", doc(docOpts{
		title: "Post A", date: "2024-01-02", url: "/posts/a", tags: []string{"x"},
		body: "Hello from **A**.",
	}))
	writeFile(t, root, "posts/b/index.md", doc(docOpts{
		title: "Post B", date: "2024-02-03", url: "/posts/b", tags: []string{"x"},
		body: "Hello from B.\n\n![duck](images/duck.png)",
	}))
	return root
}

// testViews renders minimal markup that tests can assert on.
func testViews() ViewFuncs {
	text := func(format string, args ...interface{}) templ.Component {
		return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
			_, err := fmt.Fprintf(w, format, args...)
			return err
		})
	}
	listing := func(d ListingData) templ.Component {
		s := "listing"
		if d.ActiveTag != "" {
			s += " tag=" + d.ActiveTag
		}
		for _, p := range d.Posts {
			s += " " + p.Path
		}
		return text("%s", s)
	}
	return ViewFuncs{
		Home: listing,
		Tag:  listing,
		Post: func(d PostData) templ.Component {
			return text("post %s related=%d\n%s", d.Post.Path, len(d.Related), d.Post.Content)
		},
		About: func(d PostData) templ.Component {
			return text("about %s", d.Post.Metadata.Title)
		},
		NotFound:    func(SiteConfig) templ.Component { return text("not found") },
		ServerError: func(SiteConfig) templ.Component { return text("server error") },
	}
}
