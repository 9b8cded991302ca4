package views

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/duckblog"
)

// Layout wraps body in the site chrome: head metadata, navigation and footer.
func Layout(site duckblog.SiteConfig, meta duckblog.PageMeta, jsonLD string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		title := meta.Title
		if title == "" {
			title = site.Name
		}
		lang := site.Language
		if i := strings.IndexByte(lang, '-'); i > 0 {
			lang = lang[:i]
		}
		h.raw("<!doctype html>\n<html")
		h.attr("lang", lang)
		h.raw("><head><meta charset=\"utf-8\"/>")
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
		h.raw("<title>")
		h.text(title)
		h.raw("</title>")
		if meta.Description != "" {
			h.raw(`<meta name="description"`)
			h.attr("content", meta.Description)
			h.raw("/>")
		}
		if len(meta.Keywords) > 0 {
			h.raw(`<meta name="keywords"`)
			h.attr("content", strings.Join(meta.Keywords, ", "))
			h.raw("/>")
		}
		if meta.URL != "" {
			h.raw(`<link rel="canonical"`)
			h.attr("href", meta.URL)
			h.raw("/>")
		}
		og := [][2]string{
			{"og:title", title},
			{"og:description", meta.Description},
			{"og:url", meta.URL},
			{"og:type", meta.OGType},
			{"og:site_name", site.Name},
			{"og:image", meta.Image},
		}
		for _, kv := range og {
			if kv[1] == "" {
				continue
			}
			h.raw("<meta")
			h.attr("property", kv[0])
			h.attr("content", kv[1])
			h.raw("/>")
		}
		h.raw(`<link rel="stylesheet" href="/assets/style.css"/>`)
		h.raw(`<link rel="alternate" type="application/rss+xml"`)
		h.attr("title", site.Name)
		h.raw(` href="/feed.xml"/>`)
		if jsonLD == "" {
			jsonLD = duckblog.WebsiteJsonLD(site)
		}
		h.raw(`<script type="application/ld+json">`, jsonLD, "</script>")
		h.raw("</head><body>")

		h.raw(`<header><nav class="flex gap-4"><a href="/" class="font-bold">`)
		h.text(site.Name)
		h.raw(`</a><a href="/posts/">Posts</a><a href="/about/">About</a><a href="/feed.xml">RSS</a></nav></header>`)
		h.raw("<main>")
		if h.err != nil {
			return h.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		h.raw("</main><footer><p>")
		if site.Author != "" {
			h.text(site.Author)
			h.raw(" &middot; ")
		}
		h.text(site.Name)
		h.raw("</p></footer></body></html>\n")
		return h.err
	})
}
