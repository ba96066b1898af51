package utils

import "github.com/microcosm-cc/bluemonday"

var strictPolicy = bluemonday.StrictPolicy()

// Sanitize strips all HTML from user supplied display strings.
func Sanitize(input string) string {
	return strictPolicy.Sanitize(input)
}
