package service

import (
	"alcyxob/trainer-marketplace/internal/domain"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// textPolicy strips every tag; free text is stored as plain text.
var textPolicy = bluemonday.StrictPolicy()

// maxSanitizePasses bounds the strip/decode loop for nested entity encodings.
const maxSanitizePasses = 4

// sanitizeText strips markup and decodes entities until the text is stable,
// so entity-encoded tags are stripped too. Input that does not settle keeps
// bluemonday's escaped form.
func sanitizeText(s string) string {
	if s == "" {
		return s
	}
	for range maxSanitizePasses {
		next := html.UnescapeString(textPolicy.Sanitize(s))
		if next == s {
			return strings.TrimSpace(s)
		}
		s = next
	}
	return strings.TrimSpace(textPolicy.Sanitize(s))
}

// sanitizePtr cleans s and drops it when nothing is left, so markup-only
// updates leave the stored value alone.
func sanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	clean := sanitizeText(*s)
	return domain.Truthy(&clean)
}

func textLen(s string) int {
	return utf8.RuneCountInString(s)
}
