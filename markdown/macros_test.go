package markdown

import (
	"context"
	"strings"
	"testing"
)

func TestScanMacros(t *testing.T) {
	src := "a {{< note >}}one\ntwo{{< /note >}} b {{< duck >}}quack{{< /duck >}}"
	spans := scanMacros(src)
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].name != "note" || spans[0].inner != "one\ntwo" {
		t.Errorf("first span = %+v", spans[0])
	}
	if spans[1].name != "duck" || spans[1].inner != "quack" {
		t.Errorf("second span = %+v", spans[1])
	}
	if src[spans[0].start:spans[0].end] != "{{< note >}}one\ntwo{{< /note >}}" {
		t.Errorf("span range = %q", src[spans[0].start:spans[0].end])
	}
}

func TestExpandMacrosMultiline(t *testing.T) {
	src := "before\n\n{{< note >}}\nfirst line\nsecond <line>\n{{< /note >}}\n\nafter"
	got := ExpandMacros(context.Background(), src, DefaultMacros)
	want := `<aside class="macro-note border-l-4 border-sky-500 bg-sky-50 px-4 py-2 my-4"><p>first line<br/>second &lt;line&gt;</p></aside>`
	if !strings.Contains(got, want) {
		t.Errorf("ExpandMacros() = %q, want it to contain %q", got, want)
	}
	if !strings.HasPrefix(got, "before") || !strings.HasSuffix(got, "after") {
		t.Errorf("surrounding text lost: %q", got)
	}
}

func TestExpandMacrosLeavesMalformedVerbatim(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unclosed", "x {{< note >}} never closed"},
		{"mismatched", "{{< note >}}inner{{< /warning >}}"},
		{"unknown", "{{< bogus >}}inner{{< /bogus >}}"},
		{"stray close", "text {{< /note >}}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandMacros(context.Background(), tt.input, DefaultMacros)
			if got != tt.input {
				t.Errorf("ExpandMacros(%q) = %q, want input unchanged", tt.input, got)
			}
		})
	}
}

func TestExpandMacrosNestedOpenerSkipsOuter(t *testing.T) {
	src := "{{< note >}}a {{< duck >}}b{{< /duck >}} c{{< /note >}}"
	got := ExpandMacros(context.Background(), src, DefaultMacros)
	if !strings.Contains(got, "macro-duck") {
		t.Errorf("inner pair should expand: %q", got)
	}
	if !strings.Contains(got, "{{< note >}}") || !strings.Contains(got, "{{< /note >}}") {
		t.Errorf("outer pair should stay verbatim: %q", got)
	}
}

func TestRenderMacroBecomesHTMLBlock(t *testing.T) {
	got := render(t, "intro\n{{< warning >}}careful{{< /warning >}}\noutro")
	if !strings.Contains(got, `<aside class="macro-warning`) {
		t.Errorf("macro output should pass through goldmark: %q", got)
	}
	if strings.Contains(got, "&lt;aside") {
		t.Errorf("macro output should not be escaped: %q", got)
	}
}
