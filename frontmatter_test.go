package duckblog

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseDocumentYAML(t *testing.T) {
	raw := `---
title: "Hello"
date: 2024-05-06
url: "/posts/hello/"
description: "A greeting"
tags: ["go", " web "]
keywords: ["greeting"]
---
Body text.
`
	meta, body, err := ParseDocument([]byte(raw))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	if meta.Title != "Hello" {
		t.Errorf("Title = %q, want %q", meta.Title, "Hello")
	}
	if got := meta.Date.String(); got != "2024-05-06" {
		t.Errorf("Date = %q, want %q", got, "2024-05-06")
	}
	if meta.URL != "/posts/hello" {
		t.Errorf("URL = %q, want %q", meta.URL, "/posts/hello")
	}
	if got := JoinTags(meta.Tags); got != "go, web" {
		t.Errorf("Tags = %q, want %q", got, "go, web")
	}
	if len(meta.Keywords) != 1 || meta.Keywords[0] != "greeting" {
		t.Errorf("Keywords = %v, want [greeting]", meta.Keywords)
	}
	if meta.Draft != nil {
		t.Errorf("Draft = %v, want nil", *meta.Draft)
	}
	if strings.TrimSpace(string(body)) != "Body text." {
		t.Errorf("body = %q, want %q", body, "Body text.")
	}
}

func TestParseDocumentTOML(t *testing.T) {
	raw := `+++
title = "Old style"
date = "2021-12-31"
url = "/posts/old"
description = "From the TOML days"
tags = ["rust"]
draft = true
+++
Body.
`
	meta, _, err := ParseDocument([]byte(raw))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	if meta.Title != "Old style" {
		t.Errorf("Title = %q, want %q", meta.Title, "Old style")
	}
	if got := meta.Date.String(); got != "2021-12-31" {
		t.Errorf("Date = %q, want %q", got, "2021-12-31")
	}
	if meta.Draft == nil || !*meta.Draft {
		t.Errorf("Draft = %v, want true", meta.Draft)
	}
}

func TestParseDocumentRFC3339DateBecomesUTCDate(t *testing.T) {
	raw := "---\ntitle: t\ndate: \"2024-01-01T23:30:00-02:00\"\nurl: /x\ndescription: d\ntags: []\n---\n"
	meta, _, err := ParseDocument([]byte(raw))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	if got := meta.Date.String(); got != "2024-01-02" {
		t.Errorf("Date = %q, want %q", got, "2024-01-02")
	}
	if meta.Date.Location() != time.UTC {
		t.Errorf("Date location = %v, want UTC", meta.Date.Location())
	}
}

func TestParseDocumentEmptyTags(t *testing.T) {
	meta, _, err := ParseDocument([]byte("---\ntitle: t\ndate: 2024-01-01\nurl: /x\ndescription: d\ntags: []\n---\n"))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	if len(meta.Tags) != 0 {
		t.Errorf("Tags = %v, want none", meta.Tags)
	}
}

func TestParseDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"no header", "just markdown\n", ErrMissingHeader},
		{"empty", "", ErrMissingHeader},
		{"unknown field", "---\ntitle: t\ndate: 2024-01-01\nurl: /x\ndescription: d\ntags: []\nauthor: me\n---\n", ErrMalformedHeader},
		{"unknown toml field", "+++\ntitle = \"t\"\ndate = \"2024-01-01\"\nurl = \"/x\"\ndescription = \"d\"\ntags = []\nlayout = \"wide\"\n+++\n", ErrMalformedHeader},
		{"missing title", "---\ndate: 2024-01-01\nurl: /x\ndescription: d\ntags: []\n---\n", ErrMalformedHeader},
		{"missing url", "---\ntitle: t\ndate: 2024-01-01\ndescription: d\ntags: []\n---\n", ErrMalformedHeader},
		{"missing tags", "---\ntitle: t\ndate: 2024-01-01\nurl: /x\ndescription: d\n---\n", ErrMalformedHeader},
		{"missing toml tags", "+++\ntitle = \"t\"\ndate = \"2024-01-01\"\nurl = \"/x\"\ndescription = \"d\"\n+++\n", ErrMalformedHeader},
		{"null tags", "---\ntitle: t\ndate: 2024-01-01\nurl: /x\ndescription: d\ntags:\n---\n", ErrMalformedHeader},
		{"bad date", "---\ntitle: t\ndate: yesterday\nurl: /x\ndescription: d\ntags: []\n---\n", ErrMalformedHeader},
		{"wrong type", "---\ntitle: t\ndate: 2024-01-01\nurl: /x\ndescription: d\ntags: 3\n---\n", ErrMalformedHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseDocument([]byte(tt.raw))
			if !errors.Is(err, tt.want) {
				t.Fatalf("ParseDocument() error = %v, want %v", err, tt.want)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Errorf("error %T is not a *ParseError", err)
			}
		})
	}
}

func TestParseDocumentReportsMissingFields(t *testing.T) {
	_, _, err := ParseDocument([]byte("---\ntitle: t\n---\n"))
	if err == nil {
		t.Fatal("ParseDocument() error = nil")
	}
	for _, field := range []string{"date", "description", "url", "tags"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not mention %q", err, field)
		}
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-02-29", "2024-02-29", true},
		{" 2024-02-29 ", "2024-02-29", true},
		{"2024-02-29T10:00:00Z", "2024-02-29", true},
		{"2024-02-30", "", false},
		{"02/03/2024", "", false},
	}
	for _, tt := range tests {
		d, err := ParseDate(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseDate(%q) error = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if d.String() != tt.want {
			t.Errorf("ParseDate(%q) = %q, want %q", tt.in, d.String(), tt.want)
		}
	}
}
