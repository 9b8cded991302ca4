package duckblog

import "github.com/a-h/templ"

// ViewFuncs holds the templ components the App renders pages with. The
// views package provides defaults; sites may replace any of them.
type ViewFuncs struct {
	Home        func(data ListingData) templ.Component
	Tag         func(data ListingData) templ.Component
	Post        func(data PostData) templ.Component
	About       func(data PostData) templ.Component
	NotFound    func(site SiteConfig) templ.Component
	ServerError func(site SiteConfig) templ.Component
}

// ListingData feeds the home page, the /posts/ listing and tag pages.
type ListingData struct {
	Site      SiteConfig
	Meta      PageMeta
	Posts     Corpus
	Tags      []Tag
	ActiveTag string
}

// PostData feeds a single post or the about page.
type PostData struct {
	Site    SiteConfig
	Meta    PageMeta
	Post    *Post
	Related Corpus
	JsonLD  string
}

func (a *App) siteMeta() PageMeta {
	return PageMeta{
		Title:       a.Config.Name,
		Description: a.Config.Description,
		URL:         BuildURL(a.Config.URL),
		OGType:      "website",
	}
}

func (a *App) postMeta(p *Post) PageMeta {
	meta := PageMeta{
		Title:       p.Metadata.Title,
		Description: p.Metadata.Description,
		URL:         AbsoluteURL(a.Config.URL, p.Path+"/"),
		OGType:      "article",
		Keywords:    append(TagNames(p.Metadata.Tags), p.Metadata.Keywords...),
	}
	if _, ok := a.heroFile(p); ok {
		meta.Image = AbsoluteURL(a.Config.URL, p.Path+"/"+coverName)
	}
	return meta
}
