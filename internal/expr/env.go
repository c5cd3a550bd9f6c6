// Package expr expands ${env.KEY} references in configuration documents.
package expr

import (
	"os"
	"strings"
	"unicode"
)

const envPrefix = "${env."

// ExpandEnv replaces every ${env.KEY} with the value of environment variable
// KEY, or the empty string when unset. Malformed references are kept verbatim.
func ExpandEnv(text string) string {
	return expandEnv(text, os.Getenv)
}

func expandEnv(text string, lookup func(string) string) string {
	if !strings.Contains(text, envPrefix) {
		return text
	}
	var out strings.Builder
	for {
		start := strings.Index(text, envPrefix)
		if start < 0 {
			out.WriteString(text)
			return out.String()
		}
		out.WriteString(text[:start])
		rest := text[start+len(envPrefix):]
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			out.WriteString(text[start:])
			return out.String()
		}
		key := rest[:end]
		if !isKey(key) {
			out.WriteString(envPrefix)
			text = rest
			continue
		}
		out.WriteString(lookup(key))
		text = rest[end+1:]
	}
}

func isKey(key string) bool {
	for _, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
