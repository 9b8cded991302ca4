package duckblog

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	coverName   = "cover.jpg"
	coverWidth  = 1200
	jpegQuality = 80
	staticRoute = "/static/"
)

// makeCover decodes an image from src, scales it down to width if it is
// wider, and encodes it as JPEG.
func makeCover(src io.Reader, width int) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > width {
		newH := h * width / w
		dst := image.NewRGBA(image.Rect(0, 0, width, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// heroFile maps a post's first image to a file on disk. Images under /static/
// resolve into the static directory; relative images resolve next to the
// post's index document. Only files makeCover can decode count.
func (a *App) heroFile(p *Post) (string, bool) {
	img, ok := p.Metadata.HeroImage()
	if !ok {
		return "", false
	}
	var file string
	switch {
	case strings.HasPrefix(img.Path, staticRoute):
		rel := path.Clean("/" + strings.TrimPrefix(img.Path, staticRoute))
		file = filepath.Join(a.Config.StaticDir, filepath.FromSlash(rel))
	case !strings.HasPrefix(img.Path, "/") && p.ImageDir != "":
		rel := path.Clean("/" + img.Path)
		file = filepath.Join(filepath.Dir(p.ImageDir), filepath.FromSlash(rel))
	default:
		return "", false
	}
	if !decodable(file) {
		return "", false
	}
	return file, true
}

// decodable reports whether file holds a raster image in a registered format.
func decodable(file string) bool {
	f, err := os.Open(file)
	if err != nil {
		return false
	}
	defer f.Close()
	_, _, err = image.DecodeConfig(f)
	return err == nil
}

// servePostImage serves a file from the post's images directory.
func (a *App) servePostImage(c echo.Context, p *Post, name string) error {
	if p.ImageDir == "" {
		return echo.ErrNotFound
	}
	rel := path.Clean("/" + name)
	if rel == "/" {
		return echo.ErrNotFound
	}
	file := filepath.Join(p.ImageDir, filepath.FromSlash(rel))
	if !isFile(file) {
		return echo.ErrNotFound
	}
	return c.File(file)
}

// serveCover renders the post's hero image as a JPEG no wider than
// coverWidth, for OpenGraph previews.
func (a *App) serveCover(c echo.Context, p *Post) error {
	file, ok := a.heroFile(p)
	if !ok {
		return echo.ErrNotFound
	}
	f, err := os.Open(file)
	if err != nil {
		return echo.ErrNotFound
	}
	defer f.Close()

	data, err := makeCover(f, coverWidth)
	if err != nil {
		return fmt.Errorf("cover for %s: %w", p.Path, err)
	}
	return c.Blob(http.StatusOK, "image/jpeg", data)
}
