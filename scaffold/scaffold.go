// Package scaffold creates a starter site: a config file, an about page, a
// first post and an empty static directory.
package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/spf13/afero"
)

// Templates contains all scaffold template files.
// Files ending in .tmpl use Go text/template syntax; others are copied as is.
//
//go:embed all:templates
var Templates embed.FS

const root = "templates"

// Data holds the template variables passed to every scaffold template.
type Data struct {
	SiteName string
	Date     string // YYYY-MM-DD stamped into the starter documents
}

// Write renders the templates into dir on fsys and returns the created files.
// It refuses to touch an existing directory.
func Write(fsys afero.Fs, dir string, data Data) ([]string, error) {
	if exists, err := afero.Exists(fsys, dir); err != nil {
		return nil, err
	} else if exists {
		return nil, fmt.Errorf("directory %q already exists", dir)
	}

	var created []string
	err := fs.WalkDir(Templates, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		out := filepath.Join(dir, filepath.FromSlash(strings.TrimSuffix(rel, ".tmpl")))
		if d.IsDir() {
			return fsys.MkdirAll(out, 0o755)
		}

		content, err := Templates.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		if path.Ext(p) == ".tmpl" {
			content, err = render(p, content, data)
			if err != nil {
				return err
			}
		}
		if err := afero.WriteFile(fsys, out, content, 0o644); err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		created = append(created, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func render(name string, content []byte, data Data) ([]byte, error) {
	tmpl, err := template.New(path.Base(name)).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return []byte(b.String()), nil
}

// TitleFromDir turns a directory name such as "my-blog" into "My Blog".
func TitleFromDir(dir string) string {
	base := filepath.Base(filepath.Clean(dir))
	words := strings.FieldsFunc(base, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
