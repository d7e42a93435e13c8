package internal

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

var (
	numericOnlyPattern = regexp.MustCompile(`^\d+$`)
	replyCountPattern  = regexp.MustCompile(`(?i)^\d+\s+repl(y|ies)$`)
	authorUIWords      = map[string]bool{
		"reply": true, "replies": true, "thread": true, "threads": true,
		"edited": true, "new": true, "today": true, "yesterday": true,
		"more": true, "message": true, "messages": true, "view thread": true,
		"show more": true, "show less": true, "app": true, "apps": true,
		"bot": true, "workflow": true, "also sent to the channel": true,
	}
	authorStrayWords = map[string]bool{
		"in": true, "to": true, "at": true, "on": true, "by": true,
		"from": true, "and": true, "of": true, "for": true, "with": true,
	}
)

// extractAuthor walks the author selector cascade and returns the first
// repaired, valid name, or UnknownAuthor
func extractAuthor(el *goquery.Selection) string {
	for _, selector := range authorSelectors {
		match := el.Find(selector).First()
		if match.Length() == 0 {
			continue
		}
		name := RepairAuthorName(normalizedText(match))
		if IsValidAuthor(name) {
			return name
		}
		LogDebug("Rejected author candidate %q from %s", name, selector)
	}
	return UnknownAuthor
}

// RepairAuthorName collapses names duplicated by nested sender markup, such as
// "Ada Lovelace Ada Lovelace", "AdaAda" or "Ada Ada Lovelace".
func RepairAuthorName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return name
	}

	tokens := strings.Fields(name)
	if n := len(tokens); n >= 2 && n%2 == 0 {
		half := n / 2
		if strings.Join(tokens[:half], " ") == strings.Join(tokens[half:], " ") {
			tokens = tokens[:half]
		}
	} else if n == 1 {
		r := []rune(name)
		if len(r) >= 2 && len(r)%2 == 0 && string(r[:len(r)/2]) == string(r[len(r)/2:]) {
			return string(r[:len(r)/2])
		}
	}

	out := tokens[:0:0]
	for i, tok := range tokens {
		if i > 0 && tok == tokens[i-1] {
			continue
		}
		out = append(out, tok)
	}
	return strings.Join(out, " ")
}

// IsValidAuthor rejects blanks, numbers, UI words, reply counters,
// punctuation-only strings and stray prepositions
func IsValidAuthor(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || name == UnknownAuthor {
		return false
	}
	lower := strings.ToLower(name)
	switch {
	case numericOnlyPattern.MatchString(name):
		return false
	case replyCountPattern.MatchString(name):
		return false
	case authorUIWords[lower], authorStrayWords[lower]:
		return false
	}
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// extractTimestamp returns the first timestamp marker's title, else its text
func extractTimestamp(el *goquery.Selection) string {
	for _, selector := range timestampSelectors {
		match := el.Find(selector).First()
		if match.Length() == 0 {
			continue
		}
		if title, ok := match.Attr("title"); ok && strings.TrimSpace(title) != "" {
			return strings.TrimSpace(title)
		}
		return normalizedText(match)
	}
	return ""
}
