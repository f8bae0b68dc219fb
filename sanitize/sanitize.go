// Package sanitize recovers a best-effort JSON document from raw model text.
//
// Generative models wrap JSON in prose, markdown fences, and stray control
// characters. Sanitize strips the noise so a subsequent json.Unmarshal has
// the best odds of succeeding. It never fails itself: worst case the output
// is still unparseable and the caller's parse step reports that.
package sanitize

import (
	"regexp"
	"strings"
)

var trailingComma = regexp.MustCompile(`,(\s*[}\]])`)

// Sanitize cleans raw model output into a candidate JSON document. It is a
// pure function and idempotent on already-clean JSON text.
func Sanitize(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = stripFences(cleaned)
	cleaned = extractObject(cleaned)
	cleaned = scrubControlChars(cleaned)
	cleaned = trailingComma.ReplaceAllString(cleaned, "$1")
	return strings.TrimSpace(cleaned)
}

// stripFences removes a leading markdown code fence (optionally annotated
// with a language tag) and a trailing matching fence.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	} else {
		s = s[3:]
	}
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-3]
	}
	return strings.TrimSpace(s)
}

// extractObject slices out the first top-level JSON object by counting brace
// depth from the first '{'. The counter does not understand string literals,
// so a brace inside a string value can mis-count; this is a known limitation
// kept for parity with the prompts tuned around it. If the depth counter
// never closes, the last '}' in the text is used as a heuristic boundary.
func extractObject(s string) string {
	first := strings.IndexByte(s, '{')
	if first < 0 {
		return s
	}
	depth := 0
	for i := first; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[first : i+1]
			}
		}
	}
	if last := strings.LastIndexByte(s, '}'); last > first {
		return s[first : last+1]
	}
	return s
}

// scrubControlChars replaces raw newlines and tabs with a single space and
// drops every other control character (carriage return included). Raw
// control characters inside JSON strings break strict parsing; the model is
// told to escape them but frequently does not.
func scrubControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t':
			b.WriteByte(' ')
		case r < 0x20:
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
