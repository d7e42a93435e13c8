package internal

// Selector cascades for the chat client's thread panel. Each list is ordered
// most-specific first; the client ships several markup generations at once so
// older entries stay in place after newer ones are added.

var threadContainerSelectors = []string{
	`[data-qa="threads_flexpane"]`,
	`.p-threads_flexpane`,
	`[data-qa="thread_view"]`,
	`.p-thread_view`,
	`.p-workspace__secondary_view .p-flexpane`,
	`.p-workspace__secondary_view`,
	`[aria-label*="Thread"]`,
	`.p-flexpane`,
	`[role="complementary"]`,
}

// Structural evidence markers used to confirm a container candidate.
var (
	threadHeaderSelectors = []string{
		`[data-qa="flexpane_header"]`,
		`.p-flexpane_header`,
		`.p-flexpane__title_container`,
		`[data-qa="thread_header"]`,
		`.p-threads_flexpane__header`,
	}
	flexpaneBodySelectors = []string{
		`[data-qa="flexpane_body"]`,
		`.p-flexpane__body`,
		`.p-threads_flexpane__body`,
	}
	listContentSelectors = []string{
		`.c-virtual_list__scroll_container`,
		`.c-message_list`,
		`[data-qa="slack_kit_list"]`,
		`[role="list"]`,
	}
)

// Tier 1: thread-scoped message selectors, matched against the whole page.
var threadMessageSelectors = []string{
	`[data-qa="threads_flexpane"] [data-qa="message_container"]`,
	`.p-threads_flexpane [data-qa="message_container"]`,
	`.p-threads_flexpane .c-message_kit__message`,
	`.p-thread_view .c-message_kit__message`,
	`[data-qa="thread_view"] .c-virtual_list__item`,
	`.p-threads_flexpane .c-virtual_list__item`,
}

// Tier 2: message selectors scoped to the located container.
var containerMessageSelectors = []string{
	`[data-qa="message_container"]`,
	`.c-message_kit__message`,
	`.c-message`,
	`[data-qa="virtual-list-item"]`,
	`.c-virtual_list__item`,
	`[role="listitem"]`,
}

var authorSelectors = []string{
	`[data-qa="message_sender_name"]`,
	`.c-message__sender_button`,
	`.c-message_kit__sender`,
	`[data-stringify-type="sender"]`,
	`.c-message__sender a`,
	`.c-message__sender`,
	`[data-qa="message_sender"]`,
}

var timestampSelectors = []string{
	`.c-timestamp`,
	`[data-qa="timestamp_label"]`,
	`a.c-link--timestamp`,
	`time`,
	`[data-ts]`,
}

// Preferred message body roots, tried before walking the whole element.
var bodySelectors = []string{
	`[data-qa="message-text"]`,
	`.c-message_kit__blocks`,
	`.c-message__message_blocks`,
	`.c-message__body`,
	`.p-rich_text_block`,
}

// Message chrome that never contributes body text.
var chromeSelectors = []string{
	`.c-message_actions__container`,
	`.c-message_kit__actions`,
	`.c-reaction_bar`,
	`[data-qa="reactions"]`,
	`.c-message__reply_bar`,
	`[data-qa="reply_bar"]`,
	`.c-message_kit__gutter__left`,
	`.c-message__edited_label`,
}

// Ancestors that mark an element as belonging to a thread panel.
var threadAncestorSelectors = []string{
	`[data-qa="threads_flexpane"]`,
	`.p-threads_flexpane`,
	`[data-qa="thread_view"]`,
	`.p-thread_view`,
	`.p-flexpane`,
	`.p-workspace__secondary_view`,
}

// Composer (message input) markers.
var (
	composerAttrFragments = []string{
		"message_input",
		"message-input",
		"composer",
		"texty_input",
		"reply_input",
	}
	composerClassFragments = []string{
		"ql-editor",
		"ql-container",
		"c-texty_input",
		"p-message_input",
		"message_input",
		"composer",
	}
	editableControlSelector = `[contenteditable="true"], [contenteditable=""], textarea, input[type="text"], input:not([type]), [role="textbox"]`
	placeholderSelector     = `[data-placeholder], [placeholder], [aria-placeholder], .ql-placeholder, .c-texty_input__placeholder`
	composerPlaceholders    = []string{
		"reply…",
		"reply...",
		"reply to thread",
		"reply in thread",
		"write a reply",
		"add a reply",
		"send a message",
		"message #",
		"also send to",
		"jot something down",
	}
)

// Signals for the aggressive fallback scorer.
var (
	fallbackAuthorMarker    = `[data-qa="message_sender_name"], .c-message__sender, .c-message_kit__sender, [data-stringify-type="sender"], [data-qa="message_sender"]`
	fallbackTimestampMarker = `.c-timestamp, [data-qa="timestamp_label"], time, [data-ts]`
)
