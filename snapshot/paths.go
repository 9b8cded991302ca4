package snapshot

import (
	"net/url"
	"path"
	"strings"
)

// OutputPath maps a site route to the file it is stored in, relative to the
// export root:
//
//	/            -> index.html
//	/posts/a/    -> posts/a/index.html
//	/404         -> 404.html
//	/about.html  -> about.html
//	/feed.xml    -> feed.xml
//	/tags/a%20b/ -> tags/a b/index.html
//
// Routes are percent-decoded so files carry the names a static host looks up.
// Routes whose last segment has a non-markup extension are kept verbatim.
// The result never escapes the export root.
func OutputPath(route string) string {
	route = strings.TrimSpace(route)
	if i := strings.IndexAny(route, "?#"); i >= 0 {
		route = route[:i]
	}
	if decoded, err := url.PathUnescape(route); err == nil {
		route = decoded
	}
	dir := route == "" || strings.HasSuffix(route, "/")

	clean := strings.TrimPrefix(path.Clean("/"+route), "/")
	if clean == "" {
		return "index.html"
	}
	if dir {
		return clean + "/index.html"
	}

	switch ext := path.Ext(clean); strings.ToLower(ext) {
	case ".html", ".htm":
		clean = strings.TrimSuffix(clean, ext)
	case "":
	default:
		return clean
	}
	return clean + ".html"
}
