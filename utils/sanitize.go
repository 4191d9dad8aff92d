package utils

import "github.com/microcosm-cc/bluemonday"

var (
	ugcPolicy   = bluemonday.UGCPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans user-generated HTML (post and comment bodies) to prevent
// XSS while keeping common formatting tags.
func Sanitize(input string) string {
	return ugcPolicy.Sanitize(input)
}

// SanitizePlain strips all markup; used for titles, names and slugs.
func SanitizePlain(input string) string {
	return plainPolicy.Sanitize(input)
}
