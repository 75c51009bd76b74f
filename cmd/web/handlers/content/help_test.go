package content

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestHelpMarkdown_ListsShortcuts(t *testing.T) {
	src := HelpMarkdown().Source
	require.Contains(t, src, "`Ctrl/⌘+Z` | Reset all changes")
	require.Contains(t, src, "`Ctrl/⌘+S` | Save image")
	require.Contains(t, src, "`Ctrl/⌘+O` | Open image")
}

func TestHandleHelpPage(t *testing.T) {
	e := echo.New()
	e.GET("/", HandleHelpPage())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/html")
	body := rec.Body.String()
	require.Contains(t, body, "<h1")
	require.Contains(t, body, "<table>")
	require.Contains(t, body, "/static/darkroom.css")
	require.Contains(t, body, "Back to the editor")
}
