package pubscrape

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	defaultThumbWidth = 400
	minThumbWidth     = 32
	maxThumbWidth     = 1600
	jpegQuality       = 80
)

// resizeImage decodes an image from src, scales it down to width (never up)
// and encodes it as JPEG.
func resizeImage(src io.Reader, width int) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > width {
		newH := h * width / w
		if newH < 1 {
			newH = 1
		}
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

// thumbWidth parses the w query value, clamped to the allowed range.
func thumbWidth(raw string) int {
	w, err := strconv.Atoi(raw)
	if err != nil {
		return defaultThumbWidth
	}
	return min(max(w, minThumbWidth), maxThumbWidth)
}

// localImagePath maps a thumbnail site path under ImagesRoot to a file in
// ImagesDir. It reports false for remote URLs, other paths and traversal.
func (a *App) localImagePath(thumb string) (string, bool) {
	prefix := "/" + a.Config.ImagesRoot + "/"
	if i := strings.IndexAny(thumb, "?#"); i >= 0 {
		thumb = thumb[:i]
	}
	clean := path.Clean(thumb)
	if !strings.HasPrefix(clean, prefix) {
		return "", false
	}
	rel := strings.TrimPrefix(clean, prefix)
	return filepath.Join(a.Config.ImagesDir, filepath.FromSlash(rel)), true
}

func (a *App) handleThumbnail(c echo.Context) error {
	post, err := a.Posts.GetPost(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, apiError{Error: "Post not found"})
		}
		return err
	}
	if post.Thumbnail == nil {
		return c.JSON(http.StatusNotFound, apiError{Error: "Thumbnail not found"})
	}

	file, ok := a.localImagePath(*post.Thumbnail)
	if !ok {
		return c.Redirect(http.StatusFound, *post.Thumbnail)
	}
	src, err := os.Open(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c.JSON(http.StatusNotFound, apiError{Error: "Thumbnail not found"})
		}
		return err
	}
	defer src.Close()

	data, err := resizeImage(src, thumbWidth(c.QueryParam("w")))
	if err != nil {
		a.Log.Warn().Err(err).Str("file", file).Msg("thumbnail resize failed")
		return c.JSON(http.StatusUnprocessableEntity, apiError{Error: "Invalid image"})
	}
	return c.Blob(http.StatusOK, "image/jpeg", data)
}
