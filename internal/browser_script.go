package internal

import (
	"encoding/json"
	"fmt"
)

// snapshotJS clones the document after the next animation frame and stamps
// every element of the clone with its live bounding box. The live page is
// only read.
const snapshotJS = `(async () => {
  await new Promise(resolve => requestAnimationFrame(() => resolve()));
  const root = document.documentElement;
  const clone = root.cloneNode(true);
  const live = root.querySelectorAll('*');
  const copies = clone.querySelectorAll('*');
  const n = Math.min(live.length, copies.length);
  for (let i = 0; i < n; i++) {
    const r = live[i].getBoundingClientRect();
    copies[i].setAttribute('%[1]s', [r.x, r.y, r.width, r.height].map(v => Math.round(v)).join(','));
  }
  clone.setAttribute('%[2]s', window.innerWidth + ',' + window.innerHeight);
  clone.querySelectorAll('script, style, noscript, link[rel="stylesheet"]').forEach(el => el.remove());
  return {
    html: clone.outerHTML,
    url: location.href,
    title: document.title,
  };
})()`

// scrollJS advances the thread panel's scroller by
// max(min(step, remaining), floor). It changes scrollTop only. The panel is
// chosen with the same area and structural evidence checks as
// FindThreadContainer so the scroll lands on the panel that was scanned.
const scrollJS = `(() => {
  const sel = %[1]s;
  const step = %[2]d, floor = %[3]d;
  const hasAny = (el, list) => list.some(s => el.querySelector(s) !== null);
  const identity = el => ['class', 'data-qa', 'aria-label', 'id']
    .some(k => (el.getAttribute(k) || '').toLowerCase().includes('thread'));
  const isPanel = el => {
    const r = el.getBoundingClientRect();
    if (r.width <= 0 || r.height <= 0) return false;
    if (hasAny(el, sel.header) || hasAny(el, sel.body)) return true;
    return hasAny(el, sel.list) && identity(el);
  };
  let container = null;
  for (const s of sel.containers) {
    container = Array.from(document.querySelectorAll(s)).find(isPanel) || null;
    if (container) break;
  }
  if (!container) throw new Error('thread panel not found');
  const scrollable = el => {
    const style = getComputedStyle(el);
    return el.scrollHeight > el.clientHeight + 1 && /(auto|scroll)/.test(style.overflowY);
  };
  let scroller = scrollable(container) ? container : null;
  for (const el of container.querySelectorAll('*')) {
    if (!scrollable(el)) continue;
    if (!scroller || el.clientHeight > scroller.clientHeight) scroller = el;
  }
  if (!scroller) return {before: 0, after: 0, atEnd: true};
  const max = scroller.scrollHeight - scroller.clientHeight;
  const before = scroller.scrollTop;
  const remaining = Math.max(0, max - before);
  const delta = Math.max(Math.min(step, remaining), floor);
  scroller.scrollTop = before + delta;
  const after = scroller.scrollTop;
  return {before: before, after: after, atEnd: after >= max - 1};
})()`

// panelSelectors is handed to scrollJS as a JSON object
type panelSelectors struct {
	Containers []string `json:"containers"`
	Header     []string `json:"header"`
	Body       []string `json:"body"`
	List       []string `json:"list"`
}

func buildSnapshotJS() string {
	return fmt.Sprintf(snapshotJS, rectAttr, viewportAttr)
}

func buildScrollJS(step, floor int) (string, error) {
	selectors, err := json.Marshal(panelSelectors{
		Containers: threadContainerSelectors,
		Header:     threadHeaderSelectors,
		Body:       flexpaneBodySelectors,
		List:       listContentSelectors,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(scrollJS, selectors, step, floor), nil
}
