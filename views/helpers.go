package views

import (
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/duckblog"
)

// TagClass returns CSS classes for a tag pill, with active variant.
func TagClass(active bool) string {
	base := "inline-flex items-center rounded border px-2.5 py-1 text-[11px] font-semibold uppercase tracking-[0.12em]"
	if active {
		base += " bg-ink text-white"
	}
	return base
}

// FormatDate renders a post date for display.
func FormatDate(d duckblog.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("January 2, 2006")
}

// ReadingTime renders minutes as "N min read".
func ReadingTime(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	return strconv.Itoa(minutes) + " min read"
}

// html accumulates markup and keeps the first write error.
type html struct {
	w   io.Writer
	err error
}

func (h *html) raw(parts ...string) {
	for _, p := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, p)
	}
}

func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *html) attr(name, value string) {
	h.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}
