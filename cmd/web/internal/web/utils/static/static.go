package static

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"thirdcoast.systems/darkroom/static"
)

// Asset is one embedded file held in memory with its validator.
type Asset struct {
	ETag        string
	ContentType string
	Data        []byte
}

// StaticCache serves the embedded assets. The set is fixed at startup, so
// lookups need no locking.
type StaticCache struct {
	assets map[string]Asset
}

// NewStaticCache loads every file of the embedded static filesystem.
func NewStaticCache() (*StaticCache, error) {
	return NewStaticCacheFS(static.FS)
}

// NewStaticCacheFS loads every file of fsys.
func NewStaticCacheFS(fsys fs.FS) (*StaticCache, error) {
	c := &StaticCache{assets: make(map[string]Asset)}
	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		c.assets[name] = Asset{
			ETag:        fmt.Sprintf("\"%x\"", sha256.Sum256(data)),
			ContentType: contentType(name),
			Data:        data,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Lookup returns the asset stored under name.
func (s *StaticCache) Lookup(name string) (Asset, bool) {
	a, ok := s.assets[name]
	return a, ok
}

func contentType(name string) string {
	ext := path.Ext(name)
	if ext == ".md" {
		return "text/markdown; charset=utf-8"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return echo.MIMEOctetStream
}

// ServeStaticFile serves assets below prefix. Assets are not fingerprinted,
// so clients always revalidate against the ETag.
func (s *StaticCache) ServeStaticFile(prefix string) echo.HandlerFunc {
	return func(c echo.Context) error {
		a, ok := s.Lookup(strings.TrimPrefix(c.Request().URL.Path, prefix))
		if !ok {
			return echo.ErrNotFound
		}

		h := c.Response().Header()
		h.Set(echo.HeaderCacheControl, "no-cache, must-revalidate")
		h.Set("ETag", a.ETag)
		if c.Request().Header.Get("If-None-Match") == a.ETag {
			return c.NoContent(http.StatusNotModified)
		}
		return c.Stream(http.StatusOK, a.ContentType, bytes.NewReader(a.Data))
	}
}
