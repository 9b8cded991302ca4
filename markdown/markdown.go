// Package markdown converts post bodies to HTML: a macro pre-pass, goldmark
// conversion with the GFM extension set, and a fixed series of class rewrites
// on the generated markup.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Classes applied by the rewrite pass.
const (
	ListClass     = "list-disc pl-6"
	OrderedClass  = "list-decimal pl-6"
	LinkClass     = "underline decoration-2 underline-offset-4"
	CodeClass     = "overflow-x-auto whitespace-pre-wrap"
	Heading1Class = "text-3xl font-bold py-4"
	Heading2Class = "text-2xl font-semibold py-3"
	ImageClass    = "mx-auto"
)

// Renderer converts markdown to HTML. It holds no per-call state and is safe
// for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	macros map[string]MacroFunc
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithMacros replaces the macro registry.
func WithMacros(macros map[string]MacroFunc) Option {
	return func(r *Renderer) {
		r.macros = macros
	}
}

// New builds a Renderer with tables, strikethrough, linkify, task lists and
// footnotes enabled. Raw HTML passes through so macro output survives.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Footnote,
			),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		macros: DefaultMacros,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render expands macros in body, converts it to HTML and applies the class
// rewrites.
func (r *Renderer) Render(ctx context.Context, body []byte) (string, error) {
	expanded := ExpandMacros(ctx, string(body), r.macros)
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(expanded), &buf); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	return Rewrite(buf.String()), nil
}

type rewrite func(string) string

func replace(pairs ...string) rewrite {
	r := strings.NewReplacer(pairs...)
	return r.Replace
}

var reAnchor = regexp.MustCompile(`<a href="[^"]*"[^>]*>`)

// rewrites run in order. Later entries match markup the earlier ones leave
// behind (the image rewrite must see the original <img src= prefix, and links
// that already carry a class are left alone).
var rewrites = []rewrite{
	replace(
		"<ul>", `<ul class="`+ListClass+`">`,
		"<ol>", `<ol class="`+OrderedClass+`">`,
		"<ol start=", `<ol class="`+OrderedClass+`" start=`,
	),
	func(s string) string {
		return reAnchor.ReplaceAllStringFunc(s, func(tag string) string {
			if strings.Contains(tag, "class=") {
				return tag
			}
			return `<a class="` + LinkClass + `" ` + strings.TrimPrefix(tag, "<a ")
		})
	},
	replace("<pre><code", `<pre class="`+CodeClass+`"><code`),
	replace(
		"<h1>", `<h1 class="`+Heading1Class+`">`,
		"<h1 ", `<h1 class="`+Heading1Class+`" `,
		"<h2>", `<h2 class="`+Heading2Class+`">`,
		"<h2 ", `<h2 class="`+Heading2Class+`" `,
	),
	replace("<img src=", `<img class="`+ImageClass+`" src=`),
}

// Rewrite applies the structural class rewrites to generated HTML.
func Rewrite(html string) string {
	for _, rw := range rewrites {
		html = rw(html)
	}
	return html
}

// HTML returns a templ.Component that writes already rendered HTML.
func HTML(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, content)
		return err
	})
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ReadingTime estimates minutes at 200 words per minute, rounded up.
// Empty text takes zero minutes.
func ReadingTime(text string) int {
	words := WordCount(text)
	return (words + 199) / 200
}
