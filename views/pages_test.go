package views_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/duckblog"
	"github.com/eringen/duckblog/views"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func post(path, title, date string, tags ...string) *duckblog.Post {
	d, err := duckblog.ParseDate(date)
	if err != nil {
		panic(err)
	}
	p := &duckblog.Post{Path: path, Content: "<p>body of " + title + "</p>"}
	p.Metadata.Title = title
	p.Metadata.Date = d
	p.Metadata.Description = "About " + title
	p.Metadata.TimeToRead = 2
	for _, t := range tags {
		p.Metadata.Tags = append(p.Metadata.Tags, duckblog.Tag{Name: t})
	}
	return p
}

func site() duckblog.SiteConfig {
	return duckblog.SiteConfig{Name: "Ducks & Co", URL: "https://ducks.example", Language: "en-US", Author: "Mallard"}
}

func TestHome(t *testing.T) {
	data := duckblog.ListingData{
		Site:      site(),
		Meta:      duckblog.PageMeta{Title: "Ducks", URL: "https://ducks.example/", OGType: "website"},
		Posts:     duckblog.Corpus{post("/posts/b", "<B>", "2024-02-03", "go"), post("/posts/a", "A", "2024-01-02")},
		Tags:      []duckblog.Tag{{Name: "go"}, {Name: "web"}},
		ActiveTag: "go",
	}
	out := renderString(t, views.Home(data))

	assert.True(t, strings.HasPrefix(out, "<!doctype html>"))
	assert.Contains(t, out, `<html lang="en">`)
	assert.Contains(t, out, `<link rel="canonical" href="https://ducks.example/"/>`)
	assert.Contains(t, out, `href="/posts/b/"`)
	assert.Contains(t, out, "&lt;B&gt;")
	assert.NotContains(t, out, "<B>")
	assert.Contains(t, out, "February 3, 2024")
	assert.Contains(t, out, `href="/tags/go/"`)
	assert.Contains(t, out, "Ducks &amp; Co")
	assert.Contains(t, out, `"@type":"WebSite"`)
}

func TestHomeEmpty(t *testing.T) {
	out := renderString(t, views.Home(duckblog.ListingData{Site: site()}))
	assert.Contains(t, out, "No posts yet.")
}

func TestPost(t *testing.T) {
	p := post("/posts/a", "A", "2024-01-02", "go")
	out := renderString(t, views.Post(duckblog.PostData{
		Site:    site(),
		Meta:    duckblog.PageMeta{Title: "A", OGType: "article", Image: "https://ducks.example/posts/a/cover.jpg"},
		Post:    p,
		Related: duckblog.Corpus{post("/posts/b", "B", "2024-02-03", "go")},
		JsonLD:  `{"@type":"BlogPosting"}`,
	}))

	assert.Contains(t, out, "<p>body of A</p>")
	assert.Contains(t, out, "2 min read")
	assert.Contains(t, out, `datetime="2024-01-02"`)
	assert.Contains(t, out, `<meta property="og:image" content="https://ducks.example/posts/a/cover.jpg"/>`)
	assert.Contains(t, out, `{"@type":"BlogPosting"}`)
	assert.Contains(t, out, "Related")
	assert.Contains(t, out, `href="/posts/b/"`)
}

func TestErrorPages(t *testing.T) {
	out := renderString(t, views.NotFound(site()))
	assert.Contains(t, out, "<title>Not found | Ducks &amp; Co</title>")

	out = renderString(t, views.ServerError(site()))
	assert.Contains(t, out, "Something went wrong")
}

func TestDefaultIsComplete(t *testing.T) {
	v := views.Default()
	assert.NotNil(t, v.Home)
	assert.NotNil(t, v.Tag)
	assert.NotNil(t, v.Post)
	assert.NotNil(t, v.About)
	assert.NotNil(t, v.NotFound)
	assert.NotNil(t, v.ServerError)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "", views.ReadingTime(0))
	assert.Equal(t, "5 min read", views.ReadingTime(5))
	assert.Equal(t, "", views.FormatDate(duckblog.Date{}))
	assert.Contains(t, views.TagClass(true), "bg-ink")
	assert.NotContains(t, views.TagClass(false), "bg-ink")
}
