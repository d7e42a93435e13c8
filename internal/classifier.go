package internal

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Fallback scorer weights and thresholds. These were tuned by hand against
// captured pages and have not been recalibrated since.
const (
	weightAuthorMarker       = 3
	weightTimestampMarker    = 2
	weightSubstantialText    = 1
	weightExcessiveDepth     = -2
	weightAttributeTagged    = 1
	weightManageableChildren = 1

	fallbackMinScore      = 2
	substantialTextRunes  = 10
	excessiveDepthLimit   = 12
	manageableChildLimit  = 10
	mainViewViewportShare = 0.5
)

// ClassificationScore is the bag of signals computed for one candidate during
// the aggressive fallback pass
type ClassificationScore struct {
	HasAuthorMarker    bool
	HasTimestampMarker bool
	HasSubstantialText bool
	ExcessiveDepth     bool
	AttributeTagged    bool
	ManageableChildren bool
}

// Score reduces the signals to a single weighted value
func (s ClassificationScore) Score() int {
	score := 0
	if s.HasAuthorMarker {
		score += weightAuthorMarker
	}
	if s.HasTimestampMarker {
		score += weightTimestampMarker
	}
	if s.HasSubstantialText {
		score += weightSubstantialText
	}
	if s.ExcessiveDepth {
		score += weightExcessiveDepth
	}
	if s.AttributeTagged {
		score += weightAttributeTagged
	}
	if s.ManageableChildren {
		score += weightManageableChildren
	}
	return score
}

// ElementClassifier locates the thread panel and the message elements inside it
type ElementClassifier struct{}

// NewElementClassifier creates a new ElementClassifier
func NewElementClassifier() *ElementClassifier {
	return &ElementClassifier{}
}

// FindThreadContainer returns the first container candidate that is rendered
// and carries structural thread-panel evidence, or nil.
func (c *ElementClassifier) FindThreadContainer(p *Page) *goquery.Selection {
	for _, selector := range threadContainerSelectors {
		var found *goquery.Selection
		p.Doc.Find(selector).EachWithBreak(func(_ int, cand *goquery.Selection) bool {
			if c.isThreadContainer(p, cand) {
				found = cand
				return false
			}
			return true
		})
		if found != nil {
			LogDebug("Thread container matched %s", selector)
			return found
		}
	}
	return nil
}

func (c *ElementClassifier) isThreadContainer(p *Page, cand *goquery.Selection) bool {
	if !p.HasArea(cand) {
		return false
	}
	if containsAny(cand, threadHeaderSelectors) || containsAny(cand, flexpaneBodySelectors) {
		return true
	}
	return containsAny(cand, listContentSelectors) && hasThreadIdentity(cand.Get(0))
}

// FindMessageElements returns the message elements of the thread panel in
// document order. Tiers run from precise to approximate and a tier only runs
// when the previous one produced nothing.
func (c *ElementClassifier) FindMessageElements(p *Page, verbose bool) []*goquery.Selection {
	container := c.FindThreadContainer(p)
	if container == nil {
		c.trace(verbose, "No thread container found")
	}

	if els := c.firstMatching(p, p.Doc.Selection, threadMessageSelectors, container, verbose); len(els) > 0 {
		c.trace(verbose, "Thread-scoped selectors found %d message(s)", len(els))
		return els
	}
	if container == nil {
		return nil
	}

	if els := c.firstMatching(p, container, containerMessageSelectors, container, verbose); len(els) > 0 {
		c.trace(verbose, "Container-scoped selectors found %d message(s)", len(els))
		return els
	}

	els := c.aggressiveFallback(p, container, verbose)
	c.trace(verbose, "Aggressive fallback found %d message(s)", len(els))
	return els
}

func (c *ElementClassifier) firstMatching(p *Page, root *goquery.Selection, selectors []string, container *goquery.Selection, verbose bool) []*goquery.Selection {
	for _, selector := range selectors {
		candidates := root.Find(selector)
		if candidates.Length() == 0 {
			continue
		}
		kept := dropNested(c.filter(p, candidates, container, verbose))
		if len(kept) > 0 {
			c.trace(verbose, "Selector %s kept %d of %d candidate(s)", selector, len(kept), candidates.Length())
			return kept
		}
	}
	return nil
}

// filter drops candidates outside the container, unrendered candidates,
// composer controls and main-view elements
func (c *ElementClassifier) filter(p *Page, candidates *goquery.Selection, container *goquery.Selection, verbose bool) []*goquery.Selection {
	var kept []*goquery.Selection
	rejected := make(map[string]int)

	candidates.Each(func(_ int, el *goquery.Selection) {
		n := el.Get(0)
		switch {
		case container != nil && !containsNode(container.Get(0), n):
			rejected["outside-container"]++
		case !p.HasArea(el):
			rejected["zero-area"]++
		case isComposerElement(el):
			rejected["composer"]++
		case c.looksLikeMainView(p, el, container):
			rejected["main-view"]++
		default:
			kept = append(kept, el)
		}
	})

	if len(rejected) > 0 {
		c.trace(verbose, "Filter rejected %v", rejected)
	}
	return kept
}

// looksLikeMainView reports elements rendered left of the thread panel (or in
// the left half of the viewport when the panel has no geometry) that have no
// thread-panel ancestor.
func (c *ElementClassifier) looksLikeMainView(p *Page, el *goquery.Selection, container *goquery.Selection) bool {
	if hasThreadAncestor(el) {
		return false
	}
	r, ok := p.RectOf(el)
	if !ok {
		return false
	}
	if container != nil {
		if cr, ok := p.RectOf(container); ok {
			return r.Right() <= cr.X
		}
	}
	if p.Viewport.W > 0 {
		return r.CenterX() < p.Viewport.W*mainViewViewportShare
	}
	return false
}

type scoredCandidate struct {
	sel   *goquery.Selection
	score int
	depth int
	order int
}

func (c *ElementClassifier) aggressiveFallback(p *Page, container *goquery.Selection, verbose bool) []*goquery.Selection {
	root := container.Get(0)
	eligible := make(map[*html.Node]bool)
	for _, el := range c.filter(p, container.Find("div"), container, verbose) {
		eligible[el.Get(0)] = true
	}

	var candidates []scoredCandidate
	container.Find("div").Each(func(i int, el *goquery.Selection) {
		n := el.Get(0)
		if !eligible[n] {
			return
		}
		depth := nodeDepth(n, root)
		score := ScoreCandidate(el, depth).Score()
		if score >= fallbackMinScore {
			candidates = append(candidates, scoredCandidate{sel: el, score: score, depth: depth, order: i})
		}
	})

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].depth > candidates[j].depth
	})

	// Highest-ranked candidates claim their subtree; overlapping lower-ranked
	// candidates are discarded.
	var selected []scoredCandidate
	for _, cand := range candidates {
		n := cand.sel.Get(0)
		overlaps := false
		for _, s := range selected {
			sn := s.sel.Get(0)
			if containsNode(sn, n) || containsNode(n, sn) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			selected = append(selected, cand)
			c.trace(verbose, "Fallback kept <%s> score=%d depth=%d", n.Data, cand.score, cand.depth)
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].order < selected[j].order
	})

	out := make([]*goquery.Selection, len(selected))
	for i, s := range selected {
		out[i] = s.sel
	}
	return out
}

// ScoreCandidate computes the fallback signals for one element at the given
// depth below the thread container
func ScoreCandidate(el *goquery.Selection, depth int) ClassificationScore {
	n := el.Get(0)
	children := el.Children().Length()
	return ClassificationScore{
		HasAuthorMarker:    el.Is(fallbackAuthorMarker) || el.Find(fallbackAuthorMarker).Length() > 0,
		HasTimestampMarker: el.Is(fallbackTimestampMarker) || el.Find(fallbackTimestampMarker).Length() > 0,
		HasSubstantialText: len([]rune(normalizedText(el))) >= substantialTextRunes,
		ExcessiveDepth:     depth > excessiveDepthLimit,
		AttributeTagged:    hasDataAttribute(n),
		ManageableChildren: children > 0 && children <= manageableChildLimit,
	}
}

func (c *ElementClassifier) trace(verbose bool, format string, args ...interface{}) {
	if verbose {
		LogInfo(format, args...)
		return
	}
	LogDebug(format, args...)
}

// isComposerElement reports message-input controls: by attribute, by class,
// by a contained editable control, or by composer placeholder text
func isComposerElement(el *goquery.Selection) bool {
	n := el.Get(0)
	if n == nil {
		return false
	}
	switch n.DataAtom {
	case atom.Textarea, atom.Input, atom.Form:
		return true
	}
	for _, frag := range composerAttrFragments {
		if attrContains(n, frag, "data-qa", "aria-label", "id") {
			return true
		}
	}
	for _, frag := range composerClassFragments {
		if attrContains(n, frag, "class") {
			return true
		}
	}
	if ce := strings.ToLower(attrValue(n, "contenteditable")); ce == "true" || (ce == "" && hasAttr(n, "contenteditable")) {
		return true
	}
	if attrValue(n, "role") == "textbox" {
		return true
	}
	if el.Find(editableControlSelector).Length() > 0 {
		return true
	}

	placeholders := el.Find(placeholderSelector).AddSelection(el.Filter(placeholderSelector))
	found := false
	placeholders.EachWithBreak(func(_ int, ph *goquery.Selection) bool {
		pn := ph.Get(0)
		texts := []string{
			attrValue(pn, "data-placeholder"),
			attrValue(pn, "placeholder"),
			attrValue(pn, "aria-placeholder"),
		}
		if attrContains(pn, "placeholder", "class") {
			texts = append(texts, ph.Text())
		}
		for _, text := range texts {
			if isComposerPlaceholder(text) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

func isComposerPlaceholder(text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return false
	}
	for _, phrase := range composerPlaceholders {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

func hasThreadIdentity(n *html.Node) bool {
	return attrContains(n, "thread", "class", "data-qa", "aria-label", "id")
}

func hasThreadAncestor(el *goquery.Selection) bool {
	return el.ParentsFiltered(strings.Join(threadAncestorSelectors, ", ")).Length() > 0
}

func containsAny(sel *goquery.Selection, selectors []string) bool {
	for _, s := range selectors {
		if sel.Find(s).Length() > 0 {
			return true
		}
	}
	return false
}

func hasDataAttribute(n *html.Node) bool {
	for _, a := range n.Attr {
		if strings.HasPrefix(a.Key, "data-") && a.Key != rectAttr {
			return true
		}
	}
	return false
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// dropNested keeps only the outermost elements of a set
func dropNested(els []*goquery.Selection) []*goquery.Selection {
	if len(els) < 2 {
		return els
	}
	nodes := make(map[*html.Node]bool, len(els))
	for _, el := range els {
		nodes[el.Get(0)] = true
	}
	out := els[:0:0]
	for _, el := range els {
		nested := false
		for p := el.Get(0).Parent; p != nil; p = p.Parent {
			if nodes[p] {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, el)
		}
	}
	return out
}
