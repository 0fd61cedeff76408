package pubscrape

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

func (a *App) handleListPosts(c echo.Context) error {
	posts, err := a.Posts.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}
	if category := c.QueryParam("category"); category != "" {
		posts = FilterByCategory(posts, category)
	}
	if posts == nil {
		posts = []Post{}
	}
	return c.JSON(http.StatusOK, posts)
}

func (a *App) handleGetPost(c echo.Context) error {
	post, err := a.Posts.GetPost(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, apiError{Error: "Post not found"})
		}
		return err
	}
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleCategories(c echo.Context) error {
	categories, err := a.Posts.ListCategories(c.Request().Context())
	if err != nil {
		return err
	}
	if categories == nil {
		categories = []string{}
	}
	return c.JSON(http.StatusOK, categories)
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Posts.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Posts.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

// httpErrorHandler answers API paths with a JSON error body and leaves the
// rest to echo's default handler.
func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	}
	if code >= 500 {
		a.Log.Error().Err(err).
			Str("uri", c.Request().RequestURI).
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Msg("server error")
	}
	if !strings.HasPrefix(c.Request().URL.Path, "/api/") {
		a.Echo.DefaultHTTPErrorHandler(err, c)
		return
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, apiError{Error: msg})
}
