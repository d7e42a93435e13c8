package testutil

import (
	"fmt"
	"html"
	"strings"
)

// FixtureMessage describes one rendered thread message. An empty Author
// renders a continuation element with no sender header. Body is raw HTML.
type FixtureMessage struct {
	Key    string
	Author string
	Time   string
	Body   string
}

// MessageHTML renders one message the way the chat client's thread panel does
func MessageHTML(m FixtureMessage) string {
	var sb strings.Builder
	sb.WriteString(`<div class="c-virtual_list__item" role="listitem">`)
	sb.WriteString(`<div class="c-message_kit__message" data-qa="message_container"`)
	if m.Key != "" {
		fmt.Fprintf(&sb, ` data-item-key="%s"`, html.EscapeString(m.Key))
	}
	sb.WriteString(`>`)
	if m.Author != "" {
		fmt.Fprintf(&sb, `<span class="c-message__sender"><a class="c-message__sender_button" data-qa="message_sender_name">%s</a></span>`, html.EscapeString(m.Author))
	}
	if m.Time != "" {
		fmt.Fprintf(&sb, `<a class="c-timestamp" title="%s"><span>%s</span></a>`, html.EscapeString(m.Time), html.EscapeString(m.Time))
	}
	fmt.Fprintf(&sb, `<div class="c-message_kit__blocks"><div class="p-rich_text_section">%s</div></div>`, m.Body)
	sb.WriteString(`<div class="c-message_actions__container"><button>Reply</button><button>Share</button></div>`)
	sb.WriteString(`</div></div>`)
	return sb.String()
}

// ThreadPageHTML renders a full page with a main channel view, an open thread
// panel holding messages, and the thread reply composer
func ThreadPageHTML(title string, messages ...FixtureMessage) string {
	var list strings.Builder
	for _, m := range messages {
		list.WriteString(MessageHTML(m))
	}
	return PanelPageHTML(title, `<div class="c-virtual_list__scroll_container" role="list">`+list.String()+`</div>`)
}

// PanelPageHTML wraps arbitrary thread panel body HTML in a full page
func PanelPageHTML(title, panelBody string) string {
	return `<!DOCTYPE html><html><head><title>` + html.EscapeString(title) + `</title></head><body>
<div class="p-workspace">
<div class="p-workspace__primary_view">
<div class="c-message_list">
<div class="c-message_kit__message" data-qa="message_container" data-item-key="main-1">
<a data-qa="message_sender_name">Mallory</a>
<div class="c-message_kit__blocks">main channel chatter that is not part of the thread</div>
</div>
</div>
</div>
<div class="p-workspace__secondary_view">
<div class="p-flexpane p-threads_flexpane" data-qa="threads_flexpane">
<div class="p-flexpane_header" data-qa="flexpane_header">Thread</div>
<div class="p-flexpane__body" data-qa="flexpane_body">
` + panelBody + `
<div class="p-message_input" data-qa="message_input"><div class="ql-editor" contenteditable="true" data-placeholder="Reply…"></div></div>
</div>
</div>
</div>
</div>
</body></html>`
}
