// Package env resolves ${env.KEY} references in configuration documents.
package env

import (
	"os"
	"strings"
	"unicode"
)

const prefix = "${env."

// Lookup resolves a variable name.
type Lookup func(key string) (string, bool)

// Expand replaces every ${env.KEY} in text with the process environment
// value of KEY, empty when unset.
func Expand(text string) string {
	return ExpandWith(text, os.LookupEnv)
}

// ExpandWith replaces every ${env.KEY} using lookup. Keys are letters, digits
// and '_'; a reference with any other character, or without a closing
// brace, is kept literally.
func ExpandWith(text string, lookup Lookup) string {
	if !strings.Contains(text, prefix) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for {
		idx := strings.Index(text, prefix)
		if idx < 0 {
			b.WriteString(text)
			return b.String()
		}
		b.WriteString(text[:idx])
		rest := text[idx+len(prefix):]
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			b.WriteString(text[idx:])
			return b.String()
		}
		key := rest[:end]
		if !isKey(key) {
			// keep the prefix, rescan what follows it
			b.WriteString(prefix)
			text = rest
			continue
		}
		value, _ := lookup(key)
		b.WriteString(value)
		text = rest[end+1:]
	}
}

func isKey(key string) bool {
	for _, r := range key {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return false
		}
	}
	return true
}
