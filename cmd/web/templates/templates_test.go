package templates

import (
	"bytes"
	"context"
	"encoding/json"
	"html"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thirdcoast.systems/darkroom/internal/editor"
)

var signalsAttr = regexp.MustCompile(`data-signals="([^"]*)"`)

func TestEditor(t *testing.T) {
	view := editor.NewState(uuid.New()).View()
	var buf bytes.Buffer
	require.NoError(t, Editor(NewEditorData(view)).Render(context.Background(), &buf))
	page := buf.String()

	assert.Contains(t, page, "<!doctype html>")
	assert.Contains(t, page, DatastarScript)
	assert.Contains(t, page, `name="file"`)
	assert.Contains(t, page, "/api/session/filters/brightness/select")
	assert.Contains(t, page, "/api/session/transform/rotate_left")
	assert.Contains(t, page, "/api/session/effects/oil_painting")
	assert.Contains(t, page, "/api/session/crop")
	assert.Contains(t, page, "/api/session/shortcut")
	assert.Contains(t, page, `href="/help"`)

	m := signalsAttr.FindStringSubmatch(page)
	require.Len(t, m, 2)
	var signals Signals
	require.NoError(t, json.Unmarshal([]byte(html.UnescapeString(m[1])), &signals))
	assert.Equal(t, view.ID, signals.Session.ID)
	assert.Equal(t, 100.0, signals.Session.Filters.Brightness)
}

func TestToast(t *testing.T) {
	var buf bytes.Buffer
	n := &editor.Notice{Level: editor.LevelError, Message: "<b>broken</b>"}
	require.NoError(t, Toast(n).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), `class="toast toast-error"`)
	assert.Contains(t, buf.String(), "&lt;b&gt;broken&lt;/b&gt;")

	buf.Reset()
	require.NoError(t, Toast(nil).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), `class="toast"`)
}

func TestHelp(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Help("<h1>Help</h1>").Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "<title>Darkroom help</title>")
	assert.Contains(t, buf.String(), "<h1>Help</h1>")
}
