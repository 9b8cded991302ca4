package duckblog

import (
	"encoding/json"
	"net/url"
	"path"
	"strconv"
	"strings"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// AbsoluteURL joins a base URL with a site path, keeping the path as written.
func AbsoluteURL(base, sitePath string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(sitePath, "/")
}

// ImageURL resolves an image reference against the post it appears in.
// Relative references resolve below the post path, which is served with a
// trailing slash.
func ImageURL(post *Post, img Image) string {
	if strings.HasPrefix(img.Path, "/") {
		return img.Path
	}
	return path.Join(post.Path, img.Path)
}

// canonicalPath cleans a site path: one leading slash, no trailing slash
// except for the root.
func canonicalPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	return path.Clean("/" + p)
}

// contentKey turns a site path into the key the Store resolves on disk.
func contentKey(p string) string {
	return strings.Trim(canonicalPath(p), "/")
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FilterRelatedPosts finds posts that share at least one tag with current.
func FilterRelatedPosts(current *Post, posts Corpus) Corpus {
	tagSet := make(map[string]struct{})
	for _, t := range current.Metadata.Tags {
		if tag := normalizeTag(t.Name); tag != "" {
			tagSet[tag] = struct{}{}
		}
	}
	var related Corpus
	for _, p := range posts {
		if p.Path == current.Path {
			continue
		}
		for _, t := range p.Metadata.Tags {
			if _, ok := tagSet[normalizeTag(t.Name)]; ok {
				related = append(related, p)
				break
			}
		}
	}
	return related
}

// JoinTags joins tag names with ", ".
func JoinTags(tags []Tag) string {
	return strings.Join(TagNames(tags), ", ")
}

// PathEscape escapes a string for use in a URL path.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

func pathUnescape(s string) (string, error) {
	return url.PathUnescape(s)
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        cfg.Name,
		"url":         BuildURL(cfg.URL),
		"description": cfg.Description,
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema.
func BlogPostingJsonLD(post *Post, cfg SiteConfig) string {
	postURL := AbsoluteURL(cfg.URL, post.Path)
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Metadata.Title,
		"description":   post.Metadata.Description,
		"datePublished": post.Metadata.Date.String(),
		"url":           postURL,
		"timeRequired":  "PT" + strconv.Itoa(post.Metadata.TimeToRead) + "M",
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	if cfg.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		}
	}
	if img, ok := post.Metadata.HeroImage(); ok {
		data["image"] = AbsoluteURL(cfg.URL, ImageURL(post, img))
	}
	keywords := append(TagNames(post.Metadata.Tags), post.Metadata.Keywords...)
	if len(keywords) > 0 {
		data["keywords"] = strings.Join(keywords, ", ")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
