package render

import (
	"strings"
	"testing"

	"github.com/seichi-note/content-api/internal/sanitizer"
)

func newTestRenderer() *Renderer {
	return New(sanitizer.New("/assets/"))
}

func textNode(text string, marks ...Mark) *Node {
	return &Node{Type: "text", Text: text, Marks: marks}
}

func TestHTML_NilDocument(t *testing.T) {
	r := newTestRenderer()

	if out := r.HTML(nil); out != "" {
		t.Errorf("nil document should render empty, got %q", out)
	}
}

func TestHTMLFromJSON_Malformed(t *testing.T) {
	r := newTestRenderer()

	for _, raw := range []string{"", "   ", "{not json", `{"type": 42}`} {
		if out := r.HTMLFromJSON(raw); out != "" {
			t.Errorf("malformed payload %q should render empty, got %q", raw, out)
		}
	}
}

func TestHTML_ParagraphWithMarks(t *testing.T) {
	r := newTestRenderer()

	doc := &Node{Type: "doc", Content: []*Node{
		{Type: "paragraph", Content: []*Node{
			textNode("plain "),
			textNode("strong", Mark{Type: "bold"}),
			textNode(" and "),
			textNode("emphasis", Mark{Type: "italic"}),
		}},
	}}

	out := r.HTML(doc)
	if !strings.Contains(out, "<strong>strong</strong>") {
		t.Errorf("bold mark not rendered, got %q", out)
	}
	if !strings.Contains(out, "<em>emphasis</em>") {
		t.Errorf("italic mark not rendered, got %q", out)
	}
	if !strings.Contains(out, "<p>") {
		t.Errorf("paragraph not rendered, got %q", out)
	}
}

func TestHTML_HeadingLevelClamped(t *testing.T) {
	r := newTestRenderer()

	doc := &Node{Type: "doc", Content: []*Node{
		{Type: "heading", Attrs: map[string]interface{}{"level": float64(9)}, Content: []*Node{textNode("title")}},
	}}

	out := r.HTML(doc)
	if !strings.Contains(out, "<h2>title</h2>") {
		t.Errorf("out-of-range heading level should clamp to h2, got %q", out)
	}
}

func TestHTML_TextIsEscaped(t *testing.T) {
	r := newTestRenderer()

	doc := &Node{Type: "doc", Content: []*Node{
		{Type: "paragraph", Content: []*Node{textNode(`<script>alert(1)</script>`)}},
	}}

	out := r.HTML(doc)
	if strings.Contains(out, "<script") {
		t.Errorf("text content was not escaped: %q", out)
	}
	if !strings.Contains(out, "alert(1)") {
		t.Errorf("escaped text should still be visible, got %q", out)
	}
}

func TestHTML_ImageFrame(t *testing.T) {
	r := newTestRenderer()

	doc := &Node{Type: "doc", Content: []*Node{
		{Type: "image", Attrs: map[string]interface{}{
			"src":     "/assets/shot1",
			"alt":     "station front",
			"caption": "the station",
		}},
	}}

	out := r.HTML(doc)
	if !strings.Contains(out, `data-image-frame="true"`) {
		t.Errorf("image frame marker missing, got %q", out)
	}
	if !strings.Contains(out, `src="/assets/shot1"`) {
		t.Errorf("image src missing, got %q", out)
	}
	if !strings.Contains(out, "<figcaption>the station</figcaption>") {
		t.Errorf("caption missing, got %q", out)
	}
}

func TestHTML_ImageCropComplete(t *testing.T) {
	r := newTestRenderer()

	doc := &Node{Type: "doc", Content: []*Node{
		{Type: "image", Attrs: map[string]interface{}{
			"src":       "/assets/shot1",
			"cropX":     "10%",
			"cropY":     "20%",
			"cropScale": "1.5",
		}},
	}}

	out := r.HTML(doc)
	if !strings.Contains(out, `data-crop="true"`) {
		t.Errorf("crop marker missing, got %q", out)
	}
	for _, prop := range []string{"--crop-x: 10%", "--crop-y: 20%", "--crop-scale: 1.5"} {
		if !strings.Contains(out, prop) {
			t.Errorf("crop property %q missing, got %q", prop, out)
		}
	}
}

func TestHTML_ImageCropIncompleteOmitted(t *testing.T) {
	r := newTestRenderer()

	doc := &Node{Type: "doc", Content: []*Node{
		{Type: "image", Attrs: map[string]interface{}{
			"src":   "/assets/shot1",
			"cropX": "10%",
		}},
	}}

	out := r.HTML(doc)
	if strings.Contains(out, "data-crop") || strings.Contains(out, "--crop-x") {
		t.Errorf("incomplete crop metadata should be omitted, got %q", out)
	}
	if !strings.Contains(out, "<img") {
		t.Errorf("image itself should still render, got %q", out)
	}
}

func TestHTML_ImageWithoutSrcOmitted(t *testing.T) {
	r := newTestRenderer()

	doc := &Node{Type: "doc", Content: []*Node{
		{Type: "image", Attrs: map[string]interface{}{"alt": "nothing"}},
	}}

	if out := r.HTML(doc); out != "" {
		t.Errorf("image without src should render nothing, got %q", out)
	}
}

func TestHTML_RouteAndCalloutBlocks(t *testing.T) {
	r := newTestRenderer()

	doc := &Node{Type: "doc", Content: []*Node{
		{Type: "callout", Content: []*Node{{Type: "paragraph", Content: []*Node{textNode("tip")}}}},
		{Type: "route", Content: []*Node{{Type: "paragraph", Content: []*Node{textNode("walk 2km")}}}},
	}}

	out := r.HTML(doc)
	if !strings.Contains(out, `data-callout="true"`) {
		t.Errorf("callout marker missing, got %q", out)
	}
	if !strings.Contains(out, `data-route="true"`) {
		t.Errorf("route marker missing, got %q", out)
	}
	if !strings.Contains(out, `data-container="true"`) {
		t.Errorf("route container marker missing, got %q", out)
	}
}

func TestHTML_LinkMark(t *testing.T) {
	r := newTestRenderer()

	doc := &Node{Type: "doc", Content: []*Node{
		{Type: "paragraph", Content: []*Node{
			textNode("see map", Mark{Type: "link", Attrs: map[string]interface{}{"href": "https://example.com/map"}}),
		}},
	}}

	out := r.HTML(doc)
	if !strings.Contains(out, `href="https://example.com/map"`) {
		t.Errorf("link href missing, got %q", out)
	}

	// Hostile link hrefs are removed by the sanitizer
	doc.Content[0].Content[0].Marks[0].Attrs["href"] = "javascript:alert(1)"
	out = r.HTML(doc)
	if strings.Contains(out, "javascript:") {
		t.Errorf("hostile href survived, got %q", out)
	}
}

func TestHTML_UnknownNodeDegrades(t *testing.T) {
	r := newTestRenderer()

	doc := &Node{Type: "doc", Content: []*Node{
		{Type: "mystery", Text: "leftover", Content: []*Node{
			{Type: "paragraph", Content: []*Node{textNode("inner")}},
		}},
	}}

	out := r.HTML(doc)
	if !strings.Contains(out, "leftover") || !strings.Contains(out, "inner") {
		t.Errorf("unknown node should degrade to text and children, got %q", out)
	}
}

func TestPlainText(t *testing.T) {
	doc := &Node{Type: "doc", Content: []*Node{
		{Type: "paragraph", Content: []*Node{textNode("first")}},
		{Type: "bulletList", Content: []*Node{
			{Type: "listItem", Content: []*Node{{Type: "paragraph", Content: []*Node{textNode("second")}}}},
		}},
	}}

	text := PlainText(doc)
	if !strings.Contains(text, "first") || !strings.Contains(text, "second") {
		t.Errorf("plain text extraction incomplete: %q", text)
	}

	if PlainText(nil) != "" {
		t.Error("nil document should yield empty plain text")
	}

	if PlainTextFromJSON("{bad") != "" {
		t.Error("malformed payload should yield empty plain text")
	}
}
