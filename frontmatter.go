package duckblog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// header is the accepted front matter field set. Unknown keys are rejected.
type header struct {
	Title       string    `yaml:"title" toml:"title"`
	Date        Date      `yaml:"date" toml:"date"`
	Tags        *[]string `yaml:"tags" toml:"tags"`
	Keywords    []string  `yaml:"keywords" toml:"keywords"`
	Draft       *bool     `yaml:"draft" toml:"draft"`
	Description string    `yaml:"description" toml:"description"`
	URL         string    `yaml:"url" toml:"url"`
}

var headerFormats = []*frontmatter.Format{
	frontmatter.NewFormat("---", "---", strictYAML),
	frontmatter.NewFormat("+++", "+++", strictTOML),
}

// ParseDocument splits raw into decoded metadata and the markdown body.
// Derived fields (TimeToRead, Images) are left for the caller.
func ParseDocument(raw []byte) (PostMetadata, []byte, error) {
	var h header
	body, err := frontmatter.MustParse(bytes.NewReader(bytes.TrimLeft(raw, " \t\r\n")), &h, headerFormats...)
	if err != nil {
		if errors.Is(err, frontmatter.ErrNotFound) {
			return PostMetadata{}, nil, &ParseError{Kind: ErrMissingHeader}
		}
		return PostMetadata{}, nil, &ParseError{Kind: ErrMalformedHeader, Err: err}
	}
	if missing := h.missingFields(); len(missing) > 0 {
		return PostMetadata{}, nil, &ParseError{
			Kind:   ErrMalformedHeader,
			Reason: "missing required field(s) " + strings.Join(missing, ", "),
		}
	}

	tags := make([]Tag, 0, len(*h.Tags))
	for _, t := range *h.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, Tag{Name: t})
		}
	}
	return PostMetadata{
		Title:       strings.TrimSpace(h.Title),
		Date:        h.Date,
		Tags:        tags,
		Keywords:    FilterEmpty(h.Keywords),
		Draft:       h.Draft,
		Description: strings.TrimSpace(h.Description),
		URL:         canonicalPath(h.URL),
	}, body, nil
}

func (h header) missingFields() []string {
	var missing []string
	if strings.TrimSpace(h.Title) == "" {
		missing = append(missing, "title")
	}
	if h.Date.IsZero() {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(h.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(h.URL) == "" {
		missing = append(missing, "url")
	}
	// An empty list is allowed; the key is not optional.
	if h.Tags == nil {
		missing = append(missing, "tags")
	}
	return missing
}

func strictYAML(data []byte, v interface{}) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func strictTOML(data []byte, v interface{}) error {
	md, err := toml.Decode(string(data), v)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown field(s) %s", strings.Join(keys, ", "))
	}
	return nil
}

// UnmarshalYAML accepts both quoted and bare dates.
func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: date must be a scalar", node.Line)
	}
	parsed, err := ParseDate(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = parsed
	return nil
}
