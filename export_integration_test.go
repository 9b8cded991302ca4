package duckblog_test

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/eringen/duckblog"
	"github.com/eringen/duckblog/snapshot"
	"github.com/eringen/duckblog/views"
)

func write(t *testing.T, root, name, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestStaticExport(t *testing.T) {
	content := t.TempDir()
	static := t.TempDir()
	write(t, content, "posts/a.md", "---\ntitle: A\ndate: 2024-01-02\nurl: /posts/a\ndescription: a\ntags: [x]\n---\nHello A.\n")
	write(t, content, "posts/b/index.md", "---\ntitle: B\ndate: 2024-02-03\nurl: /posts/b\ndescription: b\ntags: [x]\n---\nHello B.\n")
	write(t, static, "favicon.ico", "ico")

	app := duckblog.New(duckblog.SiteConfig{
		Name:       "Ducks",
		URL:        "https://ducks.example",
		ContentDir: content,
		StaticDir:  static,
	}, views.Default(), duckblog.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, app.Init())
	defer app.Close()

	srv := httptest.NewServer(app.Echo)
	defer srv.Close()

	mem := afero.NewMemMapFs()
	s := snapshot.New(snapshot.Config{
		BaseURL:       srv.URL,
		ReadyInterval: 10 * time.Millisecond,
		MaxAttempts:   5,
		Concurrency:   2,
	}, app, snapshot.WithWriter(snapshot.NewFSWriter(mem, "/dist")))

	res, err := s.Run(context.Background())
	require.NoError(t, err)

	pages := []string{
		"404.html",
		"feed.xml",
		"index.html",
		"posts/a/index.html",
		"posts/b/index.html",
		"posts/index.html",
		"robots.txt",
		"sitemap.xml",
		"tags/x/index.html",
	}
	assert.Equal(t, pages, res.Pages)

	files := exported(t, mem)
	assert.Equal(t, []string{
		"404.html",
		"assets/duck.svg",
		"assets/style.css",
		"feed.xml",
		"index.html",
		"posts/a/index.html",
		"posts/b/index.html",
		"posts/index.html",
		"robots.txt",
		"sitemap.xml",
		"static/favicon.ico",
		"tags/x/index.html",
	}, files)

	home, err := afero.ReadFile(mem, "/dist/index.html")
	require.NoError(t, err)
	assert.Contains(t, string(home), `href="/posts/b/"`)

	feed, err := afero.ReadFile(mem, "/dist/feed.xml")
	require.NoError(t, err)
	assert.Contains(t, string(feed), `<category domain="https://ducks.example/tags/x/">x</category>`)

	robots, err := afero.ReadFile(mem, "/dist/robots.txt")
	require.NoError(t, err)
	assert.Contains(t, string(robots), "Sitemap: https://ducks.example/sitemap.xml")
}

func exported(t *testing.T, mem afero.Fs) []string {
	t.Helper()
	var files []string
	require.NoError(t, afero.Walk(mem, "/dist", func(p string, info fs.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, _ := filepath.Rel("/dist", p)
		files = append(files, filepath.ToSlash(rel))
		return nil
	}))
	sort.Strings(files)
	return files
}

func writePNG(t *testing.T, root, name string) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	write(t, root, name, buf.String())
}

func runExport(t *testing.T, cfg duckblog.SiteConfig) (afero.Fs, error) {
	t.Helper()
	cfg.Name = "Ducks"
	cfg.URL = "https://ducks.example"
	app := duckblog.New(cfg, views.Default(), duckblog.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, app.Init())
	t.Cleanup(func() { _ = app.Close() })

	srv := httptest.NewServer(app.Echo)
	t.Cleanup(srv.Close)

	mem := afero.NewMemMapFs()
	_, err := snapshot.New(snapshot.Config{
		BaseURL:       srv.URL,
		ReadyInterval: 10 * time.Millisecond,
		MaxAttempts:   5,
		Concurrency:   4,
	}, app, snapshot.WithWriter(snapshot.NewFSWriter(mem, "/dist"))).Run(context.Background())
	return mem, err
}

func TestStaticExportMoreCoversThanRateLimit(t *testing.T) {
	content := t.TempDir()
	const posts = 5
	for i := 0; i < posts; i++ {
		dir := fmt.Sprintf("posts/p%d", i)
		write(t, content, dir+"/index.md", fmt.Sprintf(
			"---\ntitle: P%d\ndate: 2024-01-0%d\nurl: /%s\ndescription: d\ntags: [x]\n---\n![i](images/a.png)\n", i, i+1, dir))
		writePNG(t, content, dir+"/images/a.png")
	}

	mem, err := runExport(t, duckblog.SiteConfig{
		ContentDir:     content,
		StaticDir:      t.TempDir(),
		CoverRateLimit: 2,
	})
	require.NoError(t, err)

	covers := 0
	for _, f := range exported(t, mem) {
		if strings.HasSuffix(f, "/cover.jpg") {
			covers++
		}
	}
	assert.Equal(t, posts, covers)
}

func TestStaticExportSkipsUnrenderableCovers(t *testing.T) {
	content := t.TempDir()
	write(t, content, "posts/svg/index.md", "---\ntitle: S\ndate: 2024-01-01\nurl: /posts/svg\ndescription: d\ntags: []\n---\n![logo](images/logo.svg)\n")
	write(t, content, "posts/svg/images/logo.svg", `<svg xmlns="http://www.w3.org/2000/svg"/>`)
	write(t, content, "posts/gone.md", "---\ntitle: G\ndate: 2024-01-02\nurl: /posts/gone\ndescription: d\ntags: [rust lang]\n---\n![gone](/static/missing.png)\n")

	mem, err := runExport(t, duckblog.SiteConfig{ContentDir: content, StaticDir: t.TempDir()})
	require.NoError(t, err)

	files := exported(t, mem)
	assert.Contains(t, files, "posts/svg/index.html")
	assert.Contains(t, files, "posts/svg/images/logo.svg")
	assert.Contains(t, files, "posts/gone/index.html")
	assert.Contains(t, files, "tags/rust lang/index.html")
	for _, f := range files {
		assert.False(t, strings.HasSuffix(f, "cover.jpg"), f)
	}
}
