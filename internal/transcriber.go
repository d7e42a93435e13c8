package internal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var sourceBreakPattern = regexp.MustCompile(`[ \t]*\n\s*`)

// RichTextTranscriber turns one message element into a Message, walking the
// body's node tree and recovering markdown structure from tags, classes and
// stringify attributes
type RichTextTranscriber struct{}

// NewRichTextTranscriber creates a new RichTextTranscriber
func NewRichTextTranscriber() *RichTextTranscriber {
	return &RichTextTranscriber{}
}

// ExtractSingleMessage returns the message carried by el, or nil when el is a
// composer control or yields neither an author nor any text
func (t *RichTextTranscriber) ExtractSingleMessage(p *Page, el *goquery.Selection) *Message {
	if el == nil || el.Length() == 0 {
		return nil
	}
	if isComposerElement(el) {
		LogDebug("Skipping composer element <%s>", el.Get(0).Data)
		return nil
	}

	msg := &Message{
		Author:    extractAuthor(el),
		Timestamp: extractTimestamp(el),
		Text:      t.TranscribeBody(p, el),
	}
	if !msg.HasAuthor() && msg.Text == "" {
		return nil
	}
	return msg
}

// TranscribeBody converts the message body under el to normalized text
func (t *RichTextTranscriber) TranscribeBody(p *Page, el *goquery.Selection) string {
	w := &walker{page: p, skip: make(map[*html.Node]bool)}
	for _, selector := range chromeSelectors {
		w.skipAll(el.Find(selector))
	}

	roots := bodyRoots(el)
	if len(roots) == 0 {
		// No dedicated body: walk the whole element minus its header.
		for _, selector := range authorSelectors {
			w.skipAll(el.Find(selector))
		}
		for _, selector := range timestampSelectors {
			w.skipAll(el.Find(selector))
		}
		roots = []*goquery.Selection{el}
	}

	var sb strings.Builder
	for _, root := range roots {
		sb.WriteString(w.render(root.Get(0), 0))
		ensureTrailingNewline(&sb)
	}
	return NormalizeTranscript(sb.String())
}

func bodyRoots(el *goquery.Selection) []*goquery.Selection {
	for _, selector := range bodySelectors {
		var roots []*goquery.Selection
		el.Find(selector).Each(func(_ int, s *goquery.Selection) {
			roots = append(roots, s)
		})
		if roots = dropNested(roots); len(roots) > 0 {
			return roots
		}
	}
	return nil
}

type walker struct {
	page *Page
	skip map[*html.Node]bool
}

func (w *walker) skipAll(sel *goquery.Selection) {
	for _, n := range sel.Nodes {
		w.skip[n] = true
	}
}

// render transcribes n. depth is the current list nesting level.
func (w *walker) render(n *html.Node, depth int) string {
	switch n.Type {
	case html.TextNode:
		// Source line breaks are layout whitespace, as in the browser.
		return sourceBreakPattern.ReplaceAllString(strings.ReplaceAll(n.Data, "\u00a0", " "), " ")
	case html.ElementNode:
	case html.DocumentNode:
		return w.children(n, depth)
	default:
		return ""
	}

	if w.skip[n] || isIgnoredElement(n) {
		return ""
	}

	switch {
	case isTable(n):
		return w.table(n)
	case isAnchor(n):
		return w.anchor(n, depth)
	case isPreformatted(n):
		return "\n" + codeFence + "\n" + strings.Trim(rawText(n), "\n") + "\n" + codeFence + "\n"
	case isInlineCode(n):
		code := strings.TrimSpace(rawText(n))
		if code == "" {
			return ""
		}
		return "`" + code + "`"
	case isBold(n):
		return wrapInline(w.children(n, depth), "**")
	case isItalic(n):
		return wrapInline(w.children(n, depth), "_")
	case isStrike(n):
		return wrapInline(w.children(n, depth), "~~")
	case headingLevel(n) > 0:
		text := singleLine(w.children(n, depth))
		if text == "" {
			return ""
		}
		return "\n" + strings.Repeat("#", headingLevel(n)) + " " + text + "\n"
	case isList(n):
		return w.list(n, depth)
	case n.DataAtom == atom.Li:
		return w.listItem(n, "-", depth)
	case isQuote(n):
		return w.quote(n, depth)
	case n.DataAtom == atom.Img:
		return emojiText(n)
	case n.DataAtom == atom.Br:
		return "\n"
	case isBlock(n):
		text := w.children(n, depth)
		if text != "" && !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		return text
	default:
		return w.children(n, depth)
	}
}

func (w *walker) children(n *html.Node, depth int) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(w.render(c, depth))
	}
	return sb.String()
}

func (w *walker) anchor(n *html.Node, depth int) string {
	label := singleLine(w.children(n, depth))
	href := strings.TrimSpace(attrValue(n, "href"))
	lower := strings.ToLower(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(lower, "javascript:") {
		return label
	}
	href = w.page.ResolveURL(href)
	if label == "" || label == href {
		return href
	}
	return "[" + label + "](" + href + ")"
}

func (w *walker) table(n *html.Node) string {
	sel := goquery.NewDocumentFromNode(n).Selection
	rowSelector := "tr"
	if n.DataAtom != atom.Table {
		rowSelector = `[role="row"]`
	}

	var rows [][]string
	headerRow := -1
	sel.Find(rowSelector).Each(func(_ int, row *goquery.Selection) {
		var cells []string
		isHeader := false
		row.ChildrenFiltered(`th, td, [role="cell"], [role="gridcell"], [role="columnheader"], [role="rowheader"]`).Each(func(_ int, cell *goquery.Selection) {
			cn := cell.Get(0)
			if cn.DataAtom == atom.Th || attrValue(cn, "role") == "columnheader" {
				isHeader = true
			}
			text := singleLine(w.children(cn, 0))
			cells = append(cells, strings.ReplaceAll(text, "|", `\|`))
		})
		if len(cells) == 0 {
			return
		}
		if isHeader && headerRow < 0 {
			headerRow = len(rows)
		}
		rows = append(rows, cells)
	})
	if len(rows) == 0 {
		return ""
	}

	// The inferred header row leads; without header cells the first row does.
	if headerRow > 0 {
		header := rows[headerRow]
		rows = append([][]string{header}, append(rows[:headerRow:headerRow], rows[headerRow+1:]...)...)
	}

	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}

	var sb strings.Builder
	sb.WriteString("\n")
	for i, r := range rows {
		for len(r) < cols {
			r = append(r, "")
		}
		sb.WriteString("| " + strings.Join(r, " | ") + " |\n")
		if i == 0 {
			sb.WriteString("|" + strings.Repeat("---|", cols) + "\n")
		}
	}
	sb.WriteString("\n")
	return sb.String()
}

func (w *walker) list(n *html.Node, depth int) string {
	if indent, err := strconv.Atoi(attrValue(n, "data-indent")); err == nil && indent > depth {
		depth = indent
	}
	ordered := isOrderedList(n)
	start := 1
	if v, err := strconv.Atoi(attrValue(n, "start")); err == nil {
		start = v
	}

	var sb strings.Builder
	sb.WriteString("\n")
	idx := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.ElementNode && c.DataAtom == atom.Li:
			marker := "-"
			if ordered {
				marker = fmt.Sprintf("%d.", start+idx)
			}
			idx++
			sb.WriteString(w.listItem(c, marker, depth))
		case c.Type == html.ElementNode && isList(c):
			sb.WriteString(strings.TrimPrefix(w.list(c, depth+1), "\n"))
		default:
			if text := strings.TrimSpace(w.render(c, depth)); text != "" {
				sb.WriteString(text + "\n")
			}
		}
	}
	return sb.String()
}

func (w *walker) listItem(n *html.Node, marker string, depth int) string {
	indent := strings.Repeat("  ", depth)
	var inline, nested strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && isList(c) {
			nested.WriteString(strings.TrimPrefix(w.list(c, depth+1), "\n"))
			continue
		}
		inline.WriteString(w.render(c, depth+1))
	}
	text := strings.TrimSpace(inline.String())
	text = strings.ReplaceAll(text, "\n", "\n"+indent+strings.Repeat(" ", len(marker)+1))
	return indent + marker + " " + text + "\n" + nested.String()
}

func (w *walker) quote(n *html.Node, depth int) string {
	text := strings.TrimSpace(w.children(n, depth))
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}
	return "\n" + strings.Join(lines, "\n") + "\n"
}

func ensureTrailingNewline(sb *strings.Builder) {
	if s := sb.String(); s != "" && !strings.HasSuffix(s, "\n") {
		sb.WriteString("\n")
	}
}

// wrapInline wraps text in an emphasis marker, keeping surrounding
// whitespace outside the markers
func wrapInline(text, marker string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return text
	}
	lead := text[:strings.Index(text, trimmed)]
	trail := text[len(lead)+len(trimmed):]
	return lead + marker + trimmed + marker + trail
}

func singleLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// rawText returns the text under n with <br> as newlines and no markup
func rawText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(strings.ReplaceAll(n.Data, "\u00a0", " "))
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			sb.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func emojiText(n *html.Node) string {
	if code := attrValue(n, "data-stringify-emoji"); code != "" {
		return code
	}
	if attrContains(n, "emoji", "class") {
		return attrValue(n, "alt")
	}
	return ""
}

func stringifyType(n *html.Node) string {
	return attrValue(n, "data-stringify-type")
}

func isIgnoredElement(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Svg,
		atom.Button, atom.Input, atom.Textarea, atom.Select, atom.Option,
		atom.Iframe, atom.Canvas, atom.Video, atom.Audio, atom.Head,
		atom.Meta, atom.Link:
		return true
	}
	return attrValue(n, "role") == "button" || attrValue(n, "contenteditable") == "true"
}

func isTable(n *html.Node) bool {
	return n.DataAtom == atom.Table || attrValue(n, "role") == "table" || attrValue(n, "role") == "grid"
}

func isAnchor(n *html.Node) bool {
	if n.DataAtom == atom.A {
		return true
	}
	switch stringifyType(n) {
	case "mention", "link", "channel":
		return true
	}
	for _, frag := range []string{"c-member_slug", "c-mrkdwn__member", "c-channel_entity", "c-mrkdwn__broadcast"} {
		if attrContains(n, frag, "class") {
			return true
		}
	}
	return false
}

func isPreformatted(n *html.Node) bool {
	return n.DataAtom == atom.Pre || stringifyType(n) == "pre" || attrContains(n, "c-mrkdwn__pre", "class")
}

func isInlineCode(n *html.Node) bool {
	return n.DataAtom == atom.Code || stringifyType(n) == "code" || attrContains(n, "c-mrkdwn__code", "class")
}

func isBold(n *html.Node) bool {
	return n.DataAtom == atom.B || n.DataAtom == atom.Strong || stringifyType(n) == "bold"
}

func isItalic(n *html.Node) bool {
	return n.DataAtom == atom.I || n.DataAtom == atom.Em || stringifyType(n) == "italic"
}

func isStrike(n *html.Node) bool {
	return n.DataAtom == atom.S || n.DataAtom == atom.Strike || n.DataAtom == atom.Del || stringifyType(n) == "strike"
}

func headingLevel(n *html.Node) int {
	switch n.DataAtom {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}

func isList(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Ul, atom.Ol:
		return true
	}
	switch stringifyType(n) {
	case "bulleted-list", "ordered-list":
		return true
	}
	return false
}

func isOrderedList(n *html.Node) bool {
	return n.DataAtom == atom.Ol || stringifyType(n) == "ordered-list" || attrContains(n, "__ordered", "class")
}

func isQuote(n *html.Node) bool {
	return n.DataAtom == atom.Blockquote || stringifyType(n) == "quote" || attrContains(n, "c-mrkdwn__quote", "class")
}

func isBlock(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Div, atom.P, atom.Section, atom.Article, atom.Header, atom.Footer,
		atom.Main, atom.Aside, atom.Nav, atom.Figure, atom.Figcaption,
		atom.Details, atom.Summary, atom.Dl, atom.Dt, atom.Dd, atom.Address,
		atom.Hr, atom.Tr, atom.Form, atom.Fieldset:
		return true
	}
	return false
}
