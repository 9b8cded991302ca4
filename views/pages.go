// Package views holds the default page components. Each is a templ
// component fed with the data the duckblog handlers assemble.
package views

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/duckblog"
	"github.com/eringen/duckblog/markdown"
)

// Default returns the built-in view set.
func Default() duckblog.ViewFuncs {
	return duckblog.ViewFuncs{
		Home:        Home,
		Tag:         Home,
		Post:        Post,
		About:       About,
		NotFound:    NotFound,
		ServerError: ServerError,
	}
}

// Home renders a post listing with the tag filter bar.
func Home(data duckblog.ListingData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		if data.ActiveTag != "" {
			h.raw(`<h1 class="text-3xl font-bold py-4">#`)
			h.text(data.ActiveTag)
			h.raw("</h1>")
		}
		writeTags(h, data.Tags, data.ActiveTag)
		if len(data.Posts) == 0 {
			h.raw(`<p class="empty">No posts yet.</p>`)
			return h.err
		}
		h.raw(`<ul class="posts">`)
		for _, p := range data.Posts {
			writeSummary(h, p)
		}
		h.raw("</ul>")
		return h.err
	})
	return Layout(data.Site, data.Meta, "", body)
}

// Post renders a single post with its related posts.
func Post(data duckblog.PostData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		p := data.Post
		h.raw(`<article><header><h1 class="text-3xl font-bold py-4">`)
		h.text(p.Metadata.Title)
		h.raw(`</h1><p class="meta"><time`)
		h.attr("datetime", p.Metadata.Date.String())
		h.raw(">")
		h.text(FormatDate(p.Metadata.Date))
		h.raw("</time>")
		if rt := ReadingTime(p.Metadata.TimeToRead); rt != "" {
			h.raw(" &middot; ")
			h.text(rt)
		}
		h.raw("</p>")
		writeTags(h, p.Metadata.Tags, "")
		h.raw(`</header><div class="content">`)
		if h.err != nil {
			return h.err
		}
		if err := markdown.HTML(p.Content).Render(ctx, w); err != nil {
			return err
		}
		h.raw("</div></article>")
		if len(data.Related) > 0 {
			h.raw(`<section class="related"><h2 class="text-2xl font-semibold py-3">Related</h2><ul class="posts">`)
			for _, r := range data.Related {
				writeSummary(h, r)
			}
			h.raw("</ul></section>")
		}
		return h.err
	})
	return Layout(data.Site, data.Meta, data.JsonLD, body)
}

// About renders the about document without post chrome.
func About(data duckblog.PostData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<article class="about"><h1 class="text-3xl font-bold py-4">`)
		h.text(data.Post.Metadata.Title)
		h.raw(`</h1><div class="content">`)
		if h.err != nil {
			return h.err
		}
		if err := markdown.HTML(data.Post.Content).Render(ctx, w); err != nil {
			return err
		}
		h.raw("</div></article>")
		return h.err
	})
	meta := data.Meta
	meta.OGType = "website"
	return Layout(data.Site, meta, "", body)
}

// NotFound is the fixed fallback page for missing or broken content.
func NotFound(site duckblog.SiteConfig) templ.Component {
	return errorPage(site, "Not found", "The page you are looking for does not exist.")
}

// ServerError is shown for unexpected failures.
func ServerError(site duckblog.SiteConfig) templ.Component {
	return errorPage(site, "Something went wrong", "Please try again later.")
}

func errorPage(site duckblog.SiteConfig, title, message string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<section class="error"><h1 class="text-3xl font-bold py-4">`)
		h.text(title)
		h.raw("</h1><p>")
		h.text(message)
		h.raw(`</p><p><a href="/">Back to the front page</a></p></section>`)
		return h.err
	})
	meta := duckblog.PageMeta{Title: title + " | " + site.Name, OGType: "website"}
	return Layout(site, meta, "", body)
}

func writeTags(h *html, tags []duckblog.Tag, active string) {
	if len(tags) == 0 {
		return
	}
	h.raw(`<ul class="tags flex gap-2">`)
	for _, t := range tags {
		h.raw("<li><a")
		h.attr("href", t.URL())
		h.attr("class", TagClass(t.Equal(duckblog.Tag{Name: active})))
		h.raw(">")
		h.text(t.Name)
		h.raw("</a></li>")
	}
	h.raw("</ul>")
}

func writeSummary(h *html, p *duckblog.Post) {
	h.raw(`<li class="post"><a`)
	h.attr("href", p.Path+"/")
	h.raw(">")
	h.text(p.Metadata.Title)
	h.raw("</a> <time")
	h.attr("datetime", p.Metadata.Date.String())
	h.raw(">")
	h.text(FormatDate(p.Metadata.Date))
	h.raw("</time>")
	if p.Metadata.Description != "" {
		h.raw("<p>")
		h.text(p.Metadata.Description)
		h.raw("</p>")
	}
	h.raw("</li>")
}
