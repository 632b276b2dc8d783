package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// strictPolicy removes all HTML tags and attributes.
	// Event names and locations should only ever contain plain text.
	strictPolicy = bluemonday.StrictPolicy()

	// ugcPolicy allows safe user-generated content with basic formatting
	// for event descriptions.
	ugcPolicy = bluemonday.UGCPolicy()
)

// Text strips all HTML and surrounding whitespace from a user-supplied string.
func Text(input string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(input))
}

// Description sanitizes event descriptions, keeping safe formatting tags
// while removing scripts, iframes, and event handlers.
func Description(input string) string {
	return strings.TrimSpace(ugcPolicy.Sanitize(input))
}
