package duckblog

import (
	"bytes"
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string        `xml:"title"`
	Link        string        `xml:"link"`
	Description string        `xml:"description"`
	PubDate     string        `xml:"pubDate,omitempty"`
	GUID        string        `xml:"guid"`
	Categories  []rssCategory `xml:"category"`
}

type rssCategory struct {
	Domain string `xml:"domain,attr,omitempty"`
	Name   string `xml:",chardata"`
}

// BuildFeed renders corpus as an RSS 2.0 document. Each tag on a post becomes
// a category whose domain is the absolute tag listing URL.
func BuildFeed(site SiteConfig, corpus Corpus) ([]byte, error) {
	base := site.URL
	items := make([]rssItem, 0, len(corpus))
	for _, p := range corpus {
		pubDate := ""
		if !p.Metadata.Date.IsZero() {
			pubDate = p.Metadata.Date.Format(time.RFC1123Z)
		}
		link := AbsoluteURL(base, p.Path)
		cats := make([]rssCategory, 0, len(p.Metadata.Tags))
		for _, t := range p.Metadata.Tags {
			cats = append(cats, rssCategory{
				Domain: AbsoluteURL(base, t.URL()),
				Name:   t.Name,
			})
		}
		items = append(items, rssItem{
			Title:       p.Metadata.Title,
			Link:        link,
			Description: p.Metadata.Description,
			PubDate:     pubDate,
			GUID:        link,
			Categories:  cats,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       site.Name,
			Link:        base,
			Description: site.Description,
			Language:    site.Language,
			Items:       items,
		},
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(feed); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (a *App) renderRSS(c echo.Context, corpus Corpus) error {
	body, err := BuildFeed(a.Config, corpus)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/rss+xml; charset=utf-8", body)
}
