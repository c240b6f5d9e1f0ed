// Package render converts the structured article document tree into
// HTML. All output passes through the sanitizer before being returned,
// so callers never see unsanitized markup.
package render

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/seichi-note/content-api/internal/sanitizer"
)

// Node is one node of the article document tree (contentJson)
type Node struct {
	Type    string                 `json:"type"`
	Text    string                 `json:"text,omitempty"`
	Attrs   map[string]interface{} `json:"attrs,omitempty"`
	Marks   []Mark                 `json:"marks,omitempty"`
	Content []*Node                `json:"content,omitempty"`
}

// Mark is an inline formatting annotation on a text node
type Mark struct {
	Type  string                 `json:"type"`
	Attrs map[string]interface{} `json:"attrs,omitempty"`
}

// Renderer walks document trees and emits sanitized HTML
type Renderer struct {
	san *sanitizer.Sanitizer
}

// New creates a Renderer backed by the given sanitizer
func New(san *sanitizer.Sanitizer) *Renderer {
	return &Renderer{san: san}
}

// ParseDocument decodes a contentJson payload. A blank payload yields a
// nil document, which renders to an empty string.
func ParseDocument(raw string) (*Node, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var doc Node
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &doc, nil
}

// HTML renders the document tree to sanitized HTML. Nil or empty
// documents render to "". Unknown node types degrade to their text or
// children rather than failing, since this path also runs during
// repair of corrupted persisted documents.
func (r *Renderer) HTML(doc *Node) string {
	if doc == nil {
		return ""
	}
	var b strings.Builder
	r.renderNode(&b, doc)
	return r.san.Sanitize(b.String())
}

// HTMLFromJSON renders a raw contentJson payload. Malformed JSON
// degrades to an empty string.
func (r *Renderer) HTMLFromJSON(raw string) string {
	doc, err := ParseDocument(raw)
	if err != nil {
		return ""
	}
	return r.HTML(doc)
}

// PlainText extracts the concatenated text content of a document,
// used for the minimum-length content gate
func PlainText(doc *Node) string {
	if doc == nil {
		return ""
	}
	var b strings.Builder
	collectText(&b, doc)
	return b.String()
}

// PlainTextFromJSON extracts plain text from a raw contentJson payload
func PlainTextFromJSON(raw string) string {
	doc, err := ParseDocument(raw)
	if err != nil {
		return ""
	}
	return PlainText(doc)
}

func collectText(b *strings.Builder, n *Node) {
	if n.Text != "" {
		b.WriteString(n.Text)
	}
	for _, c := range n.Content {
		collectText(b, c)
	}
}

func (r *Renderer) renderNode(b *strings.Builder, n *Node) {
	if n == nil {
		return
	}
	switch n.Type {
	case "doc":
		r.renderChildren(b, n)
	case "paragraph":
		b.WriteString("<p>")
		r.renderChildren(b, n)
		b.WriteString("</p>")
	case "heading":
		level := attrInt(n.Attrs, "level", 2)
		if level < 1 || level > 4 {
			level = 2
		}
		fmt.Fprintf(b, "<h%d>", level)
		r.renderChildren(b, n)
		fmt.Fprintf(b, "</h%d>", level)
	case "text":
		r.renderText(b, n)
	case "bulletList":
		b.WriteString("<ul>")
		r.renderChildren(b, n)
		b.WriteString("</ul>")
	case "orderedList":
		b.WriteString("<ol>")
		r.renderChildren(b, n)
		b.WriteString("</ol>")
	case "listItem":
		b.WriteString("<li>")
		r.renderChildren(b, n)
		b.WriteString("</li>")
	case "blockquote":
		b.WriteString("<blockquote>")
		r.renderChildren(b, n)
		b.WriteString("</blockquote>")
	case "codeBlock":
		b.WriteString("<pre><code>")
		r.renderChildren(b, n)
		b.WriteString("</code></pre>")
	case "image":
		r.renderImage(b, n)
	case "callout":
		b.WriteString(`<div data-callout="true">`)
		r.renderChildren(b, n)
		b.WriteString("</div>")
	case "route":
		b.WriteString(`<div data-route="true" data-container="true">`)
		r.renderChildren(b, n)
		b.WriteString("</div>")
	case "hardBreak":
		b.WriteString("<br>")
	default:
		// Unknown node type: degrade to text/children, never fail
		if n.Text != "" {
			b.WriteString(html.EscapeString(n.Text))
		}
		r.renderChildren(b, n)
	}
}

func (r *Renderer) renderChildren(b *strings.Builder, n *Node) {
	for _, c := range n.Content {
		r.renderNode(b, c)
	}
}

// renderText applies inline marks inside-out around the escaped text
func (r *Renderer) renderText(b *strings.Builder, n *Node) {
	text := html.EscapeString(n.Text)
	for i := len(n.Marks) - 1; i >= 0; i-- {
		mark := n.Marks[i]
		switch mark.Type {
		case "bold":
			text = "<strong>" + text + "</strong>"
		case "italic":
			text = "<em>" + text + "</em>"
		case "underline":
			text = "<u>" + text + "</u>"
		case "strike":
			text = "<s>" + text + "</s>"
		case "code":
			text = "<code>" + text + "</code>"
		case "link":
			href := attrString(mark.Attrs, "href")
			if href != "" {
				text = fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(href), text)
			}
		case "textStyle":
			var decls []string
			if color := attrString(mark.Attrs, "color"); color != "" {
				decls = append(decls, "color: "+html.EscapeString(color))
			}
			if font := attrString(mark.Attrs, "fontFamily"); font != "" {
				decls = append(decls, "font-family: "+html.EscapeString(font))
			}
			if len(decls) > 0 {
				text = fmt.Sprintf(`<span style="%s">%s</span>`, strings.Join(decls, "; "), text)
			}
		}
	}
	b.WriteString(text)
}

// renderImage emits the frame wrapper vocabulary the sanitizer and the
// page layer expect. Crop metadata is only emitted when complete; the
// sanitizer strips partial crops regardless.
func (r *Renderer) renderImage(b *strings.Builder, n *Node) {
	src := attrString(n.Attrs, "src")
	if src == "" {
		return
	}

	cropX := attrString(n.Attrs, "cropX")
	cropY := attrString(n.Attrs, "cropY")
	cropScale := attrString(n.Attrs, "cropScale")
	hasCrop := cropX != "" && cropY != "" && cropScale != ""

	b.WriteString(`<figure data-image-frame="true"`)
	if hasCrop {
		fmt.Fprintf(b, ` data-crop="true" style="--crop-x: %s; --crop-y: %s; --crop-scale: %s"`,
			html.EscapeString(cropX), html.EscapeString(cropY), html.EscapeString(cropScale))
	}
	b.WriteString(">")

	fmt.Fprintf(b, `<img src="%s"`, html.EscapeString(src))
	if alt := attrString(n.Attrs, "alt"); alt != "" {
		fmt.Fprintf(b, ` alt="%s"`, html.EscapeString(alt))
	}
	b.WriteString(">")

	if caption := attrString(n.Attrs, "caption"); caption != "" {
		fmt.Fprintf(b, "<figcaption>%s</figcaption>", html.EscapeString(caption))
	}
	b.WriteString("</figure>")
}

func attrString(attrs map[string]interface{}, key string) string {
	if attrs == nil {
		return ""
	}
	if v, ok := attrs[key].(string); ok {
		return v
	}
	if v, ok := attrs[key].(float64); ok {
		return strings.TrimSuffix(fmt.Sprintf("%g", v), ".0")
	}
	return ""
}

func attrInt(attrs map[string]interface{}, key string, def int) int {
	if attrs == nil {
		return def
	}
	if v, ok := attrs[key].(float64); ok {
		return int(v)
	}
	return def
}
