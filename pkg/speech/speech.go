// Package speech renders data as natural spoken language for the voice
// channel.
package speech

import "strings"

// JoinNames renders product names as a spoken enumeration: a single name is
// returned bare, several are joined with commas and a final "and". The voice
// synthesis cannot pronounce an ampersand, so every "&" becomes the word
// "and".
func JoinNames(names []string) string {
	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ReplaceAll(name, " & ", " and ")
		name = strings.ReplaceAll(name, "&", " and ")
		cleaned = append(cleaned, name)
	}

	switch len(cleaned) {
	case 0:
		return ""
	case 1:
		return cleaned[0]
	default:
		return strings.Join(cleaned[:len(cleaned)-1], ", ") + " and " + cleaned[len(cleaned)-1]
	}
}
