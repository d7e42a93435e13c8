package internal

import (
	"regexp"
	"strings"
)

var (
	horizontalSpacePattern = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	excessNewlinePattern   = regexp.MustCompile(`\n{3,}`)
	linkSpacingPattern     = regexp.MustCompile(`\[\s*([^\[\]]*?)\s*\]\s*\(\s*([^()\s]*)\s*\)`)
	listLinePattern        = regexp.MustCompile(`^\s*(-|\d+\.) `)
)

const codeFence = "```"

// NormalizeTranscript tidies transcribed text: horizontal whitespace runs
// collapse to one space, three or more newlines collapse to two, spacing
// inside markdown links is tightened and the edges are trimmed. Fenced code
// is left untouched and list indentation is kept.
func NormalizeTranscript(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	segments := strings.Split(text, codeFence)
	for i := range segments {
		if i%2 == 1 {
			continue
		}
		segments[i] = normalizeProse(segments[i])
	}
	return strings.TrimSpace(strings.Join(segments, codeFence))
}

func normalizeProse(text string) string {
	lines := strings.Split(text, "\n")
	inList := false
	for i, line := range lines {
		lead := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		indent := ""
		switch {
		case listLinePattern.MatchString(line):
			indent, inList = lead, true
		case strings.TrimSpace(line) == "":
			inList = false
		case inList && lead != "":
			// continuation of a multi-line list item
			indent = lead
		default:
			inList = false
		}
		line = horizontalSpacePattern.ReplaceAllString(line, " ")
		lines[i] = indent + strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = excessNewlinePattern.ReplaceAllString(text, "\n\n")
	return linkSpacingPattern.ReplaceAllString(text, "[$1]($2)")
}
