package internal

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Geometry attributes written onto the detached snapshot clone by the
// browser capture script. Fixture and saved-file pages carry none.
const (
	rectAttr     = "data-hv-rect"
	viewportAttr = "data-hv-viewport"
)

// Rect is an element's rendered box in CSS pixels
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Area returns the rendered area
func (r Rect) Area() float64 {
	return r.W * r.H
}

// Right returns the right edge
func (r Rect) Right() float64 {
	return r.X + r.W
}

// CenterX returns the horizontal center
func (r Rect) CenterX() float64 {
	return r.X + r.W/2
}

// Page is a point-in-time element tree of the chat application
type Page struct {
	Doc      *goquery.Document
	URL      string
	Title    string
	Viewport Rect
}

// NewPageFromHTML parses a page tree from HTML
func NewPageFromHTML(r io.Reader, pageURL string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &SnapshotError{Source: pageURL, Op: "parse", Err: err}
	}

	p := &Page{
		Doc:   doc,
		URL:   pageURL,
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}
	if vp, ok := doc.Find("html").First().Attr(viewportAttr); ok {
		if w, h, ok := parsePair(vp); ok {
			p.Viewport = Rect{W: w, H: h}
		}
	}
	return p, nil
}

// NewPageFromString parses a page tree from an HTML string
func NewPageFromString(htmlText, pageURL string) (*Page, error) {
	return NewPageFromHTML(strings.NewReader(htmlText), pageURL)
}

// Body returns the document body selection
func (p *Page) Body() *goquery.Selection {
	return p.Doc.Find("body").First()
}

// RectOf returns the captured geometry of an element, if any was recorded
func (p *Page) RectOf(sel *goquery.Selection) (Rect, bool) {
	raw, ok := sel.Attr(rectAttr)
	if !ok {
		return Rect{}, false
	}
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return Rect{}, false
	}
	var vals [4]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return Rect{}, false
		}
		vals[i] = v
	}
	return Rect{X: vals[0], Y: vals[1], W: vals[2], H: vals[3]}, true
}

// HasArea reports whether the element rendered with a non-zero box. Without
// captured geometry it falls back to the hidden attribute and inline styles.
func (p *Page) HasArea(sel *goquery.Selection) bool {
	if sel == nil || sel.Length() == 0 {
		return false
	}
	if r, ok := p.RectOf(sel); ok {
		return r.W > 0 && r.H > 0
	}
	for n := sel.Get(0); n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		if isHiddenNode(n) {
			return false
		}
	}
	return true
}

// ResolveURL resolves href against the page URL. Unresolvable input is
// returned unchanged.
func (p *Page) ResolveURL(href string) string {
	if p.URL == "" || href == "" {
		return href
	}
	base, err := url.Parse(p.URL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func isHiddenNode(n *html.Node) bool {
	for _, a := range n.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "style":
			style := strings.ToLower(strings.ReplaceAll(a.Val, " ", ""))
			if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}

// containsNode reports whether ancestor is a proper ancestor of n
func containsNode(ancestor, n *html.Node) bool {
	if ancestor == nil || n == nil {
		return false
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// nodeDepth counts element ancestors between n and root (exclusive)
func nodeDepth(n, root *html.Node) int {
	depth := 0
	for p := n.Parent; p != nil && p != root; p = p.Parent {
		if p.Type == html.ElementNode {
			depth++
		}
	}
	return depth
}

// normalizedText returns the element's text with whitespace runs collapsed
func normalizedText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}

// attrContains reports whether any of the named attributes contains fragment,
// case-insensitively
func attrContains(n *html.Node, fragment string, keys ...string) bool {
	fragment = strings.ToLower(fragment)
	for _, a := range n.Attr {
		for _, k := range keys {
			if a.Key == k && strings.Contains(strings.ToLower(a.Val), fragment) {
				return true
			}
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func parsePair(s string) (float64, float64, bool) {
	var a, b float64
	if _, err := fmt.Sscanf(strings.ReplaceAll(s, ",", " "), "%g %g", &a, &b); err != nil {
		return 0, 0, false
	}
	return a, b, true
}
