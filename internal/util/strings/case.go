// Package strings holds identifier case helpers used for relational naming
package strings

import (
	"strings"
	"unicode"
)

// ToSnakeCase converts CamelCase to snake_case
// Handles acronyms properly (HTTPRequest -> http_request) and keeps
// existing separators (Post_Tag -> post_tag)
func ToSnakeCase(s string) string {
	var result strings.Builder
	runes := []rune(s)

	for i, r := range runes {
		if !unicode.IsUpper(r) {
			result.WriteRune(r)
			continue
		}
		if i > 0 && runes[i-1] != '_' {
			prev := runes[i-1]
			// Add underscore before uppercase letter if:
			// 1. Previous char is lowercase or a digit
			// 2. Next char is lowercase (for acronyms like HTTPRequest -> http_request)
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				result.WriteRune('_')
			} else if i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
				result.WriteRune('_')
			}
		}
		result.WriteRune(unicode.ToLower(r))
	}
	return result.String()
}

// JoinIdentifiers joins non-empty identifier parts with an underscore
func JoinIdentifiers(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "_")
}
