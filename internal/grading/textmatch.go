package grading

import "strings"

// normalize lower-cases and trims surrounding whitespace. Both the accepted
// answers and the learner's text go through this before comparison.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
