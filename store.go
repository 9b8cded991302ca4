package duckblog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/eringen/duckblog/markdown"
)

const (
	postsSubdir = "posts"
	docExt      = ".md"
	indexName   = "index"
	imagesDir   = "images"
)

// Store reads content documents from a directory and turns them into Posts.
//
// A content unit is either a single document (<key>.md) or a directory holding
// an index document and an images/ subdirectory (<key>/index.md). Both resolve
// through the same lookup.
type Store struct {
	root        string
	renderer    *markdown.Renderer
	development bool
	logger      *zap.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithDevelopment makes ParseAll keep drafts.
func WithDevelopment(dev bool) StoreOption {
	return func(s *Store) {
		s.development = dev
	}
}

// WithRenderer overrides the markdown renderer.
func WithRenderer(r *markdown.Renderer) StoreOption {
	return func(s *Store) {
		s.renderer = r
	}
}

// WithStoreLogger sets the logger used for parse diagnostics.
func WithStoreLogger(l *zap.Logger) StoreOption {
	return func(s *Store) {
		s.logger = l
	}
}

// NewStore opens the content directory at root. A missing directory is a
// deployment error and returns ErrDirectoryMissing.
func NewStore(root string, opts ...StoreOption) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrDirectoryMissing, root)
	}
	s := &Store{
		root:     root,
		renderer: markdown.New(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Root returns the content directory.
func (s *Store) Root() string { return s.root }

// Development reports whether drafts are visible.
func (s *Store) Development() bool { return s.development }

type contentUnit struct {
	key      string
	doc      string
	imageDir string
}

// resolve locates the document for key as a single file first, then as a
// directory with an index document.
func (s *Store) resolve(key string) (contentUnit, error) {
	key = contentKey(key)
	if key == "" {
		return contentUnit{}, ErrNotFound
	}
	base := filepath.Join(s.root, filepath.FromSlash(key))
	if isFile(base + docExt) {
		return contentUnit{key: key, doc: base + docExt}, nil
	}
	if index := filepath.Join(base, indexName+docExt); isFile(index) {
		return contentUnit{key: key, doc: index, imageDir: filepath.Join(base, imagesDir)}, nil
	}
	return contentUnit{}, ErrNotFound
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// Exists reports whether a content unit exists for key.
func (s *Store) Exists(key string) bool {
	_, err := s.resolve(key)
	return err == nil
}

// Load parses the content unit for key into a Post. The post path comes from
// the url header field, not from the location on disk.
func (s *Store) Load(ctx context.Context, key string) (*Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	unit, err := s.resolve(key)
	if err != nil {
		return nil, &ContentError{Key: key, Err: err}
	}
	return s.loadUnit(ctx, unit)
}

func (s *Store) loadUnit(ctx context.Context, unit contentUnit) (*Post, error) {
	s.logger.Debug("parsing post", zap.String("key", unit.key), zap.String("file", unit.doc))
	raw, err := os.ReadFile(unit.doc)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = ErrNotFound
		}
		return nil, &ContentError{Key: unit.key, Err: err}
	}
	meta, body, err := ParseDocument(raw)
	if err != nil {
		return nil, &ContentError{Key: unit.key, Err: err}
	}
	meta.TimeToRead = markdown.ReadingTime(string(body))
	meta.Images = markdown.ExtractImages(string(body))

	html, err := s.renderer.Render(ctx, body)
	if err != nil {
		return nil, &ContentError{Key: unit.key, Err: err}
	}
	return &Post{
		Content:  html,
		Path:     meta.URL,
		Metadata: meta,
		Source:   unit.doc,
		ImageDir: unit.imageDir,
	}, nil
}

// Keys lists the content key of every post unit under the posts directory,
// in directory order. A key backed by both a document and a directory is
// listed once.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := filepath.Join(s.root, postsSubdir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryMissing, dir)
		}
		return nil, fmt.Errorf("duckblog: read %s: %w", dir, err)
	}

	seen := make(map[string]bool, len(entries))
	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		switch {
		case entry.IsDir():
			if !isFile(filepath.Join(dir, name, indexName+docExt)) {
				continue
			}
		case strings.HasSuffix(name, docExt):
			name = strings.TrimSuffix(name, docExt)
		default:
			continue
		}
		key := postsSubdir + "/" + name
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// ParseAll loads every post under the posts directory straight from disk.
func (s *Store) ParseAll(ctx context.Context) (Corpus, error) {
	return s.Collect(ctx, s)
}

// Collect builds the corpus by loading every post key through l, usually a
// ContentCache in front of the store. A single failing post aborts the whole
// enumeration. Drafts are dropped unless the store runs in development mode.
// When two posts share a path the later one wins. The result is sorted by
// date, newest first.
func (s *Store) Collect(ctx context.Context, l Loader) (Corpus, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return nil, err
	}

	byPath := make(map[string]int, len(keys))
	var corpus Corpus
	for _, key := range keys {
		post, err := l.Load(ctx, key)
		if err != nil {
			return nil, err
		}
		if !s.development && post.IsDraft() {
			continue
		}
		if i, ok := byPath[post.Path]; ok {
			s.logger.Warn("duplicate post path", zap.String("path", post.Path), zap.String("file", post.Source))
			corpus[i] = post
			continue
		}
		byPath[post.Path] = len(corpus)
		corpus = append(corpus, post)
	}

	sort.SliceStable(corpus, func(i, j int) bool {
		return corpus[i].Metadata.Date.After(corpus[j].Metadata.Date.Time)
	})
	return corpus, nil
}
