package internal

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/PuerkitoBio/goquery"
)

// Attributes the chat client stamps on rendered messages that identify them
// across re-renders.
var structuralKeyAttrs = []string{"data-item-key", "data-msg-ts", "data-ts", "id"}

// ContentFingerprint hashes a message's author, text and timestamp
func ContentFingerprint(m Message) string {
	h := sha256.New()
	h.Write([]byte(m.Author))
	h.Write([]byte{0})
	h.Write([]byte(m.Text))
	h.Write([]byte{0})
	h.Write([]byte(m.Timestamp))
	return hex.EncodeToString(h.Sum(nil))
}

// ElementFingerprint prefers the element's structural identity and falls back
// to the content hash
func ElementFingerprint(el *goquery.Selection, m Message) string {
	if el != nil {
		for _, attr := range structuralKeyAttrs {
			if v, ok := el.Attr(attr); ok && v != "" {
				return "key:" + attr + "=" + v
			}
		}
	}
	return "content:" + ContentFingerprint(m)
}
