package skill

import "strings"

// IsSSML reports whether a speech payload carries markup that must pass
// through to the platform verbatim.
func IsSSML(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "<speak>")
}

// FlattenSpeech collapses newline-terminated narration sentences into plain
// prose for spoken output. The card keeps the original line breaks; SSML
// payloads are left untouched.
func FlattenSpeech(text string) string {
	if IsSSML(text) {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	prevSpace := true
	for _, r := range text {
		if r == '\n' || r == '\r' || r == '\t' || r == ' ' {
			if !prevSpace {
				b.WriteByte(' ')
				prevSpace = true
			}
			continue
		}
		b.WriteRune(r)
		prevSpace = false
	}
	return strings.TrimSpace(b.String())
}
