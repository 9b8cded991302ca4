package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/a-h/templ"
)

var (
	reMacroOpen  = regexp.MustCompile(`{{<\s*([a-zA-Z][\w-]*)\s*>}}`)
	reMacroClose = regexp.MustCompile(`{{<\s*/\s*([a-zA-Z][\w-]*)\s*>}}`)
)

// MacroFunc renders the inner text of a macro span.
type MacroFunc func(inner string) templ.Component

// DefaultMacros are the sub-templates available to post bodies.
var DefaultMacros = map[string]MacroFunc{
	"note":    boxMacro("note", "border-l-4 border-sky-500 bg-sky-50 px-4 py-2 my-4"),
	"warning": boxMacro("warning", "border-l-4 border-amber-500 bg-amber-50 px-4 py-2 my-4"),
	"duck":    duckMacro,
}

// macroSpan is a matched opening/closing pair found by scanMacros.
type macroSpan struct {
	name       string
	start, end int // byte range of the whole span, including markers
	inner      string
}

// scanMacros finds well-formed, non-nested macro pairs. An opening marker
// whose matching closing marker never appears, or a pair that encloses
// another opening marker, is skipped and left in place.
func scanMacros(src string) []macroSpan {
	var spans []macroSpan
	pos := 0
	for pos < len(src) {
		open := reMacroOpen.FindStringSubmatchIndex(src[pos:])
		if open == nil {
			break
		}
		openStart, openEnd := pos+open[0], pos+open[1]
		name := src[pos+open[2] : pos+open[3]]

		closing := reMacroClose.FindStringSubmatchIndex(src[openEnd:])
		if closing == nil {
			pos = openEnd
			continue
		}
		closeStart, closeEnd := openEnd+closing[0], openEnd+closing[1]
		closeName := src[openEnd+closing[2] : openEnd+closing[3]]

		if closeName != name || reMacroOpen.MatchString(src[openEnd:closeStart]) {
			pos = openEnd
			continue
		}
		spans = append(spans, macroSpan{
			name:  name,
			start: openStart,
			end:   closeEnd,
			inner: src[openEnd:closeStart],
		})
		pos = closeEnd
	}
	return spans
}

// ExpandMacros replaces every well-formed macro span with the output of its
// sub-template. Spans naming an unknown macro, and spans whose template fails
// to render, are left verbatim.
func ExpandMacros(ctx context.Context, src string, macros map[string]MacroFunc) string {
	spans := scanMacros(src)
	if len(spans) == 0 {
		return src
	}
	var b strings.Builder
	last := 0
	for _, span := range spans {
		fn, ok := macros[span.name]
		if !ok {
			continue
		}
		var out bytes.Buffer
		if err := fn(strings.TrimSpace(span.inner)).Render(ctx, &out); err != nil {
			continue
		}
		b.WriteString(src[last:span.start])
		// Keep the rendered block on its own lines so goldmark treats it as raw HTML.
		b.WriteString("\n\n")
		b.WriteString(strings.ReplaceAll(strings.TrimSpace(out.String()), "\n", " "))
		b.WriteString("\n\n")
		last = span.end
	}
	b.WriteString(src[last:])
	return b.String()
}

func boxMacro(kind, class string) MacroFunc {
	return func(inner string) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			_, err := io.WriteString(w, `<aside class="macro-`+kind+` `+class+`">`+paragraphs(inner)+`</aside>`)
			return err
		})
	}
}

func duckMacro(inner string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="macro-duck flex items-start gap-3 my-4">`+
			`<img class="w-12 h-12" src="/assets/duck.svg" alt="duck"/>`+
			`<div class="rounded-lg bg-yellow-50 px-4 py-2">`+paragraphs(inner)+`</div></div>`)
		return err
	})
}

// paragraphs escapes inner text and keeps its line structure.
func paragraphs(inner string) string {
	var b strings.Builder
	for _, para := range strings.Split(inner, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(html.EscapeString(para), "\n", "<br/>"))
		b.WriteString("</p>")
	}
	return b.String()
}
