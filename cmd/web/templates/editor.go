package templates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"thirdcoast.systems/darkroom/internal/editor"
	"thirdcoast.systems/darkroom/internal/effects"
	"thirdcoast.systems/darkroom/pkg/filters"
	"thirdcoast.systems/darkroom/pkg/shortcuts"
	"thirdcoast.systems/darkroom/pkg/transform"
	"thirdcoast.systems/darkroom/pkg/utils/crops"
)

// Signals is the datastar signal set of the editor page. Session and Notice
// are patched by the preview stream and by JSON responses; the rest are
// request fields that buttons set before posting.
type Signals struct {
	Session     editor.View    `json:"session"`
	Notice      *editor.Notice `json:"notice"`
	Value       float64        `json:"value"`
	Variation   string         `json:"variation"`
	AspectRatio string         `json:"aspect_ratio"`
	Key         string         `json:"key"`
	Ctrl        bool           `json:"ctrl"`
	Meta        bool           `json:"meta"`
	Shift       bool           `json:"shift"`
	Alt         bool           `json:"alt"`
	Shortcut    string         `json:"shortcut"`
	Href        string         `json:"href"`
}

// EditorData is everything the editor page renders.
type EditorData struct {
	Signals     Signals
	Filters     []filters.FilterParam
	Effects     []effects.Spec
	Variations  []effects.SketchVariation
	CropPresets []string
}

// NewEditorData fills the catalogues around view.
func NewEditorData(view editor.View) EditorData {
	return EditorData{
		Signals:     Signals{Session: view, Value: view.SliderValue},
		Filters:     filters.Defs(),
		Effects:     effects.Specs(),
		Variations:  effects.SketchVariations,
		CropPresets: crops.Presets,
	}
}

var transformButtons = []struct {
	Op    transform.Op
	Label string
}{
	{transform.OpRotateLeft, "Rotate left"},
	{transform.OpRotateRight, "Rotate right"},
	{transform.OpFlipX, "Flip horizontal"},
	{transform.OpFlipY, "Flip vertical"},
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return strings.ReplaceAll(string(b), `"`, `'`)
}

func post(path string) string { return "@post(" + jsString(path) + ")" }

func button(label, onClick string, extra ...string) string {
	return "<button type=\"button\"" + attr("data-on:click", onClick) + strings.Join(extra, "") + ">" +
		templ.EscapeString(label) + "</button>\n"
}

// shortcutExpr posts bound key presses to the shortcut endpoint.
func shortcutExpr() string {
	keys := make([]string, 0, len(shortcuts.Bindings))
	for _, b := range shortcuts.Bindings {
		keys = append(keys, jsString(b.Key))
	}
	return "(evt.ctrlKey || evt.metaKey) && !evt.shiftKey && !evt.altKey && [" + strings.Join(keys, ", ") +
		"].includes(evt.key.toLowerCase()) && (evt.preventDefault(), $key = evt.key, $ctrl = evt.ctrlKey, " +
		"$meta = evt.metaKey, $shift = false, $alt = false, " + post("/api/session/shortcut") + ")"
}

// Editor renders the editing page. All state comes from signals so the page
// follows the session stream without reloads.
func Editor(d EditorData) templ.Component {
	return Page("Darkroom", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		signals, err := json.Marshal(d.Signals)
		if err != nil {
			return fmt.Errorf("encode signals: %w", err)
		}

		busy := attr("data-attr:disabled", "$session.pending.length > 0")
		var b strings.Builder
		b.WriteString("<main class=\"editor\"" +
			attr("data-signals", string(signals)) +
			attr("data-init", "@get('/api/session/stream')") +
			attr("data-on:keydown__window", shortcutExpr()) +
			attr("data-effect", "$href && (window.location.assign($href), $href = '', $shortcut = '')") + ">\n")
		b.WriteString("<span hidden" + attr("data-effect",
			"$shortcut == 'open' && (document.getElementById('file').click(), $shortcut = '')") + "></span>\n")

		// upload
		b.WriteString("<form id=\"upload\" class=\"upload\" enctype=\"multipart/form-data\"" +
			attr("data-on:submit__prevent", "@post('/api/session/upload', {contentType: 'form'})") +
			attr("data-on:dragover__prevent", "el.classList.add('dragging')") +
			attr("data-on:dragleave", "el.classList.remove('dragging')") +
			attr("data-on:drop__prevent", "el.classList.remove('dragging'); el.querySelector('input').files = evt.dataTransfer.files; el.requestSubmit()") +
			">\n<label>Drop an image here or choose one " +
			"<input id=\"file\" type=\"file\" name=\"file\" accept=\"image/*\"" +
			attr("data-on:change", "el.form.requestSubmit()") + "></label>\n</form>\n")

		// preview
		b.WriteString("<figure class=\"preview\"" + attr("data-show", "$session.has_image") +
			attr("data-class:busy", "$session.pending.length > 0") + ">\n" +
			"<img id=\"preview\" alt=\"Edited image\"" +
			attr("data-attr:src", "$session.image ? '/api/session/image?d=' + $session.image.digest : ''") +
			attr("data-style:filter", "$session.preview.filter") +
			attr("data-style:transform", "$session.preview.transform") + ">\n" +
			"<figcaption><span" + attr("data-text", "$session.image ? $session.image.width + ' x ' + $session.image.height : ''") +
			"></span> <span" + attr("data-text", "$session.exif.camera") + "></span>" +
			" <span class=\"pending\"" + attr("data-show", "$session.pending.length > 0") + ">Working...</span>" +
			"</figcaption>\n</figure>\n")

		// filters
		b.WriteString("<section class=\"filters\">\n<h2>Filters</h2>\n<div class=\"grid\">\n")
		for _, def := range d.Filters {
			name := string(def.Name)
			label := def.Label
			if def.ExportOnly {
				label += " (export)"
			}
			b.WriteString(button(label, post("/api/session/filters/"+name+"/select"),
				attr("data-class:active", "$session.active_filter == "+jsString(name))))
		}
		b.WriteString("</div>\n")
		for _, def := range d.Filters {
			name := string(def.Name)
			b.WriteString("<label class=\"slider\"" + attr("data-show", "$session.active_filter == "+jsString(name)) + ">" +
				templ.EscapeString(def.Label) +
				" <input type=\"range\"" +
				attr("min", filters.FmtNum(def.Min)) + attr("max", filters.FmtNum(def.Max)) + attr("step", filters.FmtNum(def.Step)) +
				attr("data-bind", "session.filters."+name) +
				attr("data-on:input__debounce.100ms", "$value = +el.value; @put("+jsString("/api/session/filters/"+name)+")") +
				"> <output" + attr("data-text", "$session.slider_label") + "></output></label>\n")
		}
		b.WriteString("</section>\n")

		// transform
		b.WriteString("<section class=\"transform\">\n<h2>Transform</h2>\n")
		for _, t := range transformButtons {
			b.WriteString(button(t.Label, post("/api/session/transform/"+string(t.Op))))
		}
		b.WriteString("</section>\n")

		// crop
		b.WriteString("<section class=\"crop\">\n<h2>Crop</h2>\n")
		for _, ratio := range d.CropPresets {
			b.WriteString(button(ratio, "$aspect_ratio = "+jsString(ratio)+"; "+post("/api/session/crop")))
		}
		b.WriteString("</section>\n")

		// effects
		b.WriteString("<section class=\"effects\">\n<h2>Effects</h2>\n<div class=\"grid\">\n")
		for _, s := range d.Effects {
			name := string(s.Name)
			b.WriteString(button(s.Label, post("/api/session/effects/"+name),
				attr("data-class:active", "$session.active_effect == "+jsString(name)), busy))
		}
		b.WriteString("</div>\n<h3>Sketch variations</h3>\n<div class=\"grid\">\n")
		for _, v := range d.Variations {
			b.WriteString(button(v.Label, "$variation = "+jsString(v.ID)+"; "+post("/api/session/sketch"),
				attr("data-class:active", "$session.active_effect == "+jsString("sketch:"+v.ID)), busy))
		}
		b.WriteString("</div>\n")
		b.WriteString(button("Undo sketch", post("/api/session/undo/sketch")))
		b.WriteString(button("Undo effect", post("/api/session/undo/effect")))
		b.WriteString(button("Clear effects", post("/api/session/clear-effects")))
		b.WriteString("</section>\n")

		// actions
		b.WriteString("<section class=\"actions\">\n")
		b.WriteString(button("Reset", post("/api/session/reset")))
		b.WriteString(button("Start over", post("/api/session/new")))
		b.WriteString("<a class=\"button\" href=\"/api/session/export\" download" + attr("data-show", "$session.has_image") + ">Save image</a>\n")
		b.WriteString("<a href=\"/help\">Help</a>\n</section>\n")

		if err := write(w, b.String()); err != nil {
			return err
		}
		if err := Toast(d.Signals.Notice).Render(ctx, w); err != nil {
			return err
		}
		return write(w, "</main>")
	}))
}

// Toast renders the notification area. It follows the notice signal; n is
// the notice shown before the first signal patch.
func Toast(n *editor.Notice) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		class, text := "toast", ""
		if n != nil {
			class, text = "toast toast-"+string(n.Level), n.Message
		}
		return write(w, "<div id=\"toast\" role=\"status\"", attr("class", class),
			attr("data-show", "$notice && $notice.message"),
			attr("data-attr:class", "'toast toast-' + ($notice ? $notice.level : '')"),
			attr("data-text", "$notice ? $notice.message : ''"),
			">", templ.EscapeString(text), "</div>\n")
	})
}
