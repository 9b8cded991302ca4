package duckblog

import (
	"bytes"
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// BuildSitemap lists the home page, every post and every tag listing.
func BuildSitemap(base string, corpus Corpus) ([]byte, error) {
	urls := []sitemapURL{
		{Loc: AbsoluteURL(base, "/")},
	}
	for _, p := range corpus {
		urls = append(urls, sitemapURL{
			Loc:     AbsoluteURL(base, p.Path+"/"),
			LastMod: p.Metadata.Date.String(),
		})
	}
	for _, t := range NewTagIndex(corpus).Tags() {
		urls = append(urls, sitemapURL{Loc: AbsoluteURL(base, t.URL())})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(sitemap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (a *App) renderSitemap(c echo.Context, corpus Corpus) error {
	body, err := BuildSitemap(a.Config.URL, corpus)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/xml; charset=utf-8", body)
}
