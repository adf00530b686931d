package utils

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
)

const illegalChars = `<>:"/\|?*`

// Sanitize removes characters that are not allowed in file or directory
// names and trims surrounding whitespace. It is idempotent; an input that
// sanitizes to nothing becomes "_".
func Sanitize(name string) string {
	var builder strings.Builder
	for _, char := range name {
		if strings.ContainsRune(illegalChars, char) || unicode.IsControl(char) {
			continue
		}
		builder.WriteRune(char)
	}
	cleaned := strings.TrimSpace(builder.String())
	if cleaned == "" {
		return "_"
	}
	return cleaned
}

// Transliterate maps text to its closest ASCII spelling.
func Transliterate(text string) string {
	return strings.TrimSpace(unidecode.Unidecode(text))
}

// SafeName is the directory name used for playlist and video titles.
func SafeName(title string) string {
	return Sanitize(Transliterate(title))
}
