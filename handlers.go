package duckblog

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const aboutKey = "about"

// corpus assembles the post collection for one request. The posts directory
// is listed each time; the posts themselves come from the cache.
func (a *App) corpus(ctx context.Context) (Corpus, error) {
	return a.Store.Collect(ctx, a.Cache)
}

func (a *App) handleHome(c echo.Context) error {
	corpus, err := a.corpus(c.Request().Context())
	if err != nil {
		return a.contentFailure(c, err)
	}
	idx := NewTagIndex(corpus)
	tag := c.QueryParam("tag")
	return Render(c, a.Views.Home(ListingData{
		Site:      a.Config,
		Meta:      a.siteMeta(),
		Posts:     idx.ListByTag(tag),
		Tags:      idx.Tags(),
		ActiveTag: tag,
	}))
}

func (a *App) handleTag(c echo.Context) error {
	tag, err := pathUnescape(c.Param("tag"))
	if err != nil {
		return echo.ErrNotFound
	}
	corpus, err := a.corpus(c.Request().Context())
	if err != nil {
		return a.contentFailure(c, err)
	}
	idx := NewTagIndex(corpus)
	posts := idx.ListByTag(tag)
	if len(posts) == 0 {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config))
	}
	meta := a.siteMeta()
	meta.Title = "#" + tag + " | " + a.Config.Name
	meta.URL = AbsoluteURL(a.Config.URL, Tag{Name: tag}.URL())
	return Render(c, a.Views.Tag(ListingData{
		Site:      a.Config,
		Meta:      meta,
		Posts:     posts,
		Tags:      idx.Tags(),
		ActiveTag: tag,
	}))
}

func (a *App) handleAbout(c echo.Context) error {
	post, err := a.Cache.GetOrLoad(c.Request().Context(), aboutKey)
	if err != nil {
		return a.contentFailure(c, err)
	}
	return Render(c, a.Views.About(PostData{
		Site: a.Config,
		Meta: a.postMeta(post),
		Post: post,
	}))
}

// handleContent serves posts by path plus their images and covers:
//
//	<post>/            the rendered post
//	<post>/images/...  a file from the post's images directory
//	<post>/cover.jpg   the hero image scaled for previews
func (a *App) handleContent(c echo.Context) error {
	reqPath := c.Request().URL.Path
	switch {
	case strings.Contains(reqPath, "/"+imagesDir+"/"):
		i := strings.Index(reqPath, "/"+imagesDir+"/")
		post, err := a.lookupPost(c.Request().Context(), reqPath[:i])
		if err != nil {
			return a.contentFailure(c, err)
		}
		return a.servePostImage(c, post, reqPath[i+len(imagesDir)+2:])
	case strings.HasSuffix(reqPath, "/"+coverName):
		if !a.coverLimiter.Allow(c.RealIP()) {
			return echo.NewHTTPError(http.StatusTooManyRequests)
		}
		post, err := a.lookupPost(c.Request().Context(), strings.TrimSuffix(reqPath, "/"+coverName))
		if err != nil {
			return a.contentFailure(c, err)
		}
		return a.serveCover(c, post)
	}

	post, err := a.lookupPost(c.Request().Context(), reqPath)
	if err != nil {
		return a.contentFailure(c, err)
	}
	data := PostData{
		Site:   a.Config,
		Meta:   a.postMeta(post),
		Post:   post,
		JsonLD: BlogPostingJsonLD(post, a.Config),
	}
	if corpus, err := a.corpus(c.Request().Context()); err == nil {
		data.Related = FilterRelatedPosts(post, corpus)
	}
	return Render(c, a.Views.Post(data))
}

// lookupPost finds the post whose url header is sitePath. The unit stored at
// the same location on disk is tried first; when it answers to another url,
// or nothing lives there, the corpus decides. Drafts are only served in
// development mode.
func (a *App) lookupPost(ctx context.Context, sitePath string) (*Post, error) {
	want := canonicalPath(sitePath)
	key := contentKey(want)
	if key == "" {
		return nil, &ContentError{Key: key, Err: ErrNotFound}
	}

	post, ok := a.Cache.LookupPath(want)
	if !ok {
		p, err := a.Cache.GetOrLoad(ctx, key)
		switch {
		case err == nil && p.Path == want:
			post = p
		case err == nil, errors.Is(err, ErrNotFound):
			corpus, err := a.corpus(ctx)
			if err != nil {
				return nil, err
			}
			if post, ok = corpus.Find(want); !ok {
				return nil, &ContentError{Key: key, Err: ErrNotFound}
			}
		default:
			return nil, err
		}
	}
	if post.IsDraft() && !a.Config.Development {
		return nil, &ContentError{Key: key, Err: ErrNotFound}
	}
	return post, nil
}

// contentFailure turns content errors into the not-found page. Anything else
// goes to the error handler.
func (a *App) contentFailure(c echo.Context, err error) error {
	var ce *ContentError
	switch {
	case errors.Is(err, ErrNotFound):
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config))
	case errors.As(err, &ce), errors.Is(err, ErrDirectoryMissing):
		a.Logger.Error("content failure", zap.String("path", c.Request().URL.Path), zap.Error(err))
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config))
	}
	return err
}

func (a *App) handleNotFound(c echo.Context) error {
	return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config))
}

func (a *App) handleSitemap(c echo.Context) error {
	corpus, err := a.corpus(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, corpus)
}

func (a *App) handleFeed(c echo.Context) error {
	corpus, err := a.corpus(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderRSS(c, corpus)
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nAllow: /\n\nSitemap: " + AbsoluteURL(a.Config.URL, "/sitemap.xml") + "\n"
	return c.String(http.StatusOK, body)
}

func (a *App) metricsHandler() echo.HandlerFunc {
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: a.registry})
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error", zap.String("path", c.Request().URL.Path), zap.Error(err))
		_ = RenderStatus(c, code, a.Views.ServerError(a.Config))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
