package markdown

import (
	"net/url"
	"regexp"
	"strings"
)

// ![alt](target) or ![alt](target "title")
var reImageRef = regexp.MustCompile(`!\[([^\]]*)\]\(\s*<?([^)\s>]+)>?(?:\s+"[^"]*")?\s*\)`)

// Image is a reference to a static asset found in markdown source.
type Image struct {
	Path string
	Alt  string
}

func (i Image) String() string { return i.Path }

// ExtractImages returns the image references in source in order of
// appearance. Duplicates are kept. Targets pointing off-site (with a scheme or
// protocol-relative) are not assets of the site and are skipped.
func ExtractImages(source string) []Image {
	matches := reImageRef.FindAllStringSubmatch(source, -1)
	images := make([]Image, 0, len(matches))
	for _, m := range matches {
		target := m[2]
		if isExternal(target) {
			continue
		}
		images = append(images, Image{Path: CleanImagePath(target), Alt: m[1]})
	}
	return images
}

// CleanImagePath collapses repeated separators so the path never contains "//".
func CleanImagePath(p string) string {
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return p
}

func isExternal(target string) bool {
	if strings.HasPrefix(target, "//") {
		return true
	}
	u, err := url.Parse(target)
	return err == nil && u.Scheme != ""
}
