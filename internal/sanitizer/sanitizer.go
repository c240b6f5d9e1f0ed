// Package sanitizer provides a whitelist-based HTML cleaner for article
// content. It parses HTML with golang.org/x/net/html, walks the node
// tree, and re-serializes only the tags, attributes, URL schemes, and
// style declarations the content pipeline allows.
//
// Sanitizing is best-effort by design: malformed input degrades to safe
// partial output, never to an error. Output is idempotent under
// re-sanitization.
package sanitizer

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Marker attributes the renderer and downstream consumers branch on.
// Their value is normalized to the canonical "true" no matter how they
// were serialized.
var markerAttrs = map[string]bool{
	"data-image-frame": true,
	"data-container":   true,
	"data-route":       true,
	"data-callout":     true,
	"data-crop":        true,
}

// cropProps are the CSS custom properties a crop transform requires.
// If any is missing or malformed the crop markers are stripped so the
// image renders un-cropped instead of invisible.
var cropProps = []string{"--crop-x", "--crop-y", "--crop-scale"}

// colorPalette is the exact set of hex colors authors may use. Colors
// outside the palette are dropped, not passed through.
var colorPalette = map[string]bool{
	"#000000": true,
	"#ffffff": true,
	"#e53935": true,
	"#fb8c00": true,
	"#fdd835": true,
	"#43a047": true,
	"#1e88e5": true,
	"#8e24aa": true,
	"#757575": true,
}

// fontWhitelist is the set of allowed font-family values
var fontWhitelist = map[string]bool{
	"sans-serif": true,
	"serif":      true,
	"monospace":  true,
}

// allowedTags maps each permitted tag to its permitted attributes.
// Attributes listed in markerAttrs are additionally allowed on any tag
// that carries them.
var allowedTags = map[string]map[string]bool{
	"p":          {"style": true},
	"h1":         {},
	"h2":         {},
	"h3":         {},
	"h4":         {},
	"ul":         {},
	"ol":         {"start": true},
	"li":         {},
	"a":          {"href": true, "title": true},
	"img":        {"src": true, "alt": true, "width": true, "height": true, "style": true},
	"figure":     {"style": true},
	"figcaption": {},
	"div":        {"style": true},
	"span":       {"style": true},
	"strong":     {},
	"em":         {},
	"u":          {},
	"s":          {},
	"code":       {},
	"pre":        {},
	"blockquote": {},
	"table":      {},
	"thead":      {},
	"tbody":      {},
	"tr":         {},
	"th":         {"colspan": true, "rowspan": true},
	"td":         {"colspan": true, "rowspan": true},
	"br":         {},
}

// droppedTags are removed together with their entire subtree
var droppedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"iframe":   true,
	"object":   true,
	"embed":    true,
	"noscript": true,
	"form":     true,
	"input":    true,
	"button":   true,
	"video":    true,
	"audio":    true,
	"source":   true,
	"hr":       true,
	"link":     true,
	"meta":     true,
	"base":     true,
}

var (
	percentRe = regexp.MustCompile(`^-?\d+(\.\d+)?%$`)
	numberRe  = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// Sanitizer cleans untrusted article HTML
type Sanitizer struct {
	assetPrefix string
}

// New creates a Sanitizer. assetPrefix is the path prefix under which
// relative image sources are allowed (e.g. "/assets/").
func New(assetPrefix string) *Sanitizer {
	if assetPrefix == "" {
		assetPrefix = "/assets/"
	}
	return &Sanitizer{assetPrefix: assetPrefix}
}

// Sanitize returns a safe version of the given HTML fragment. It never
// fails; unparseable or fully-disallowed input yields an empty string.
func (s *Sanitizer) Sanitize(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(input), body)
	if err != nil {
		return ""
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		for _, clean := range s.cleanNode(n) {
			html.Render(&buf, clean)
		}
	}
	return buf.String()
}

// cleanNode returns the sanitized replacement nodes for n. A node may
// be dropped (nil result), kept, or unwrapped into its children.
func (s *Sanitizer) cleanNode(n *html.Node) []*html.Node {
	switch n.Type {
	case html.TextNode:
		return []*html.Node{{Type: html.TextNode, Data: n.Data}}
	case html.ElementNode:
		return s.cleanElement(n)
	default:
		// comments, doctypes
		return nil
	}
}

func (s *Sanitizer) cleanElement(n *html.Node) []*html.Node {
	tag := strings.ToLower(n.Data)

	if droppedTags[tag] {
		return nil
	}

	allowedAttrs, ok := allowedTags[tag]
	if !ok {
		// Unknown tag: unwrap, keeping sanitized children in place
		return s.cleanChildren(n)
	}

	clean := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: n.DataAtom,
	}

	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if strings.HasPrefix(key, "on") {
			continue
		}
		switch {
		case markerAttrs[key]:
			clean.Attr = append(clean.Attr, html.Attribute{Key: key, Val: "true"})
		case key == "style":
			if val := s.sanitizeStyle(attr.Val); val != "" {
				clean.Attr = append(clean.Attr, html.Attribute{Key: key, Val: val})
			}
		case key == "href" && allowedAttrs[key]:
			if safeLinkURL(attr.Val) {
				clean.Attr = append(clean.Attr, html.Attribute{Key: key, Val: attr.Val})
			}
		case key == "src" && allowedAttrs[key]:
			if s.safeImageURL(attr.Val) {
				clean.Attr = append(clean.Attr, html.Attribute{Key: key, Val: attr.Val})
			}
		case allowedAttrs[key]:
			clean.Attr = append(clean.Attr, attr)
		}
	}

	// An image whose src was stripped (or never present) is dropped
	// outright rather than left as a broken element
	if tag == "img" && getAttr(clean, "src") == "" {
		return nil
	}

	s.enforceCropInvariant(clean)

	for _, child := range s.cleanChildren(n) {
		clean.AppendChild(child)
	}

	return []*html.Node{clean}
}

func (s *Sanitizer) cleanChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, s.cleanNode(c)...)
	}
	return out
}

// enforceCropInvariant removes crop markers when the companion CSS
// custom properties did not survive style sanitization intact
func (s *Sanitizer) enforceCropInvariant(n *html.Node) {
	if getAttr(n, "data-crop") == "" {
		return
	}

	style := getAttr(n, "style")
	decls := parseStyle(style)
	complete := true
	for _, prop := range cropProps {
		if _, ok := decls[prop]; !ok {
			complete = false
			break
		}
	}
	if complete {
		return
	}

	removeAttr(n, "data-crop")
	// Drop any surviving partial crop properties too
	var kept []string
	for _, d := range splitStyle(style) {
		prop := strings.ToLower(strings.TrimSpace(strings.SplitN(d, ":", 2)[0]))
		if strings.HasPrefix(prop, "--crop-") {
			continue
		}
		kept = append(kept, d)
	}
	if len(kept) == 0 {
		removeAttr(n, "style")
	} else {
		setAttr(n, "style", strings.Join(kept, "; "))
	}
}

// sanitizeStyle keeps only whitelisted declarations. Returns "" when
// nothing valid remains so the caller drops the attribute entirely.
func (s *Sanitizer) sanitizeStyle(style string) string {
	var kept []string
	for _, decl := range splitStyle(style) {
		parts := strings.SplitN(decl, ":", 2)
		if len(parts) != 2 {
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(parts[0]))
		val := strings.TrimSpace(parts[1])

		switch prop {
		case "color":
			if colorPalette[strings.ToLower(val)] {
				kept = append(kept, prop+": "+strings.ToLower(val))
			}
		case "font-family":
			if fontWhitelist[strings.ToLower(val)] {
				kept = append(kept, prop+": "+strings.ToLower(val))
			}
		case "--crop-x", "--crop-y":
			if percentRe.MatchString(val) {
				kept = append(kept, prop+": "+val)
			}
		case "--crop-scale":
			if numberRe.MatchString(val) {
				kept = append(kept, prop+": "+val)
			}
		}
	}
	return strings.Join(kept, "; ")
}

func splitStyle(style string) []string {
	var out []string
	for _, d := range strings.Split(style, ";") {
		if strings.TrimSpace(d) != "" {
			out = append(out, strings.TrimSpace(d))
		}
	}
	return out
}

func parseStyle(style string) map[string]string {
	decls := make(map[string]string)
	for _, d := range splitStyle(style) {
		parts := strings.SplitN(d, ":", 2)
		if len(parts) != 2 {
			continue
		}
		decls[strings.ToLower(strings.TrimSpace(parts[0]))] = strings.TrimSpace(parts[1])
	}
	return decls
}

// safeLinkURL permits http(s) and site-relative link targets
func safeLinkURL(raw string) bool {
	u := strings.ToLower(strings.TrimSpace(raw))
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return true
	}
	if strings.HasPrefix(u, "/") && !strings.HasPrefix(u, "//") {
		return true
	}
	return false
}

// safeImageURL permits http(s) sources and relative paths under the
// known asset prefix. javascript: and data: URIs never pass.
func (s *Sanitizer) safeImageURL(raw string) bool {
	u := strings.ToLower(strings.TrimSpace(raw))
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return true
	}
	return strings.HasPrefix(u, strings.ToLower(s.assetPrefix))
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			out = append(out, a)
		}
	}
	n.Attr = out
}
