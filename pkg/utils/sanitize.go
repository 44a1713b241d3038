package utils

import (
	"regexp"
	"strings"
	"unicode"
)

// SanitizeString trims the input and drops control characters and HTML tags.
// Listing values are compared verbatim by the filters, so it does not escape.
func SanitizeString(input string) string {
	return removeControlChars(stripHTML(strings.TrimSpace(input)))
}

// SanitizeStrings applies SanitizeString to each value and drops the empty ones.
func SanitizeStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = SanitizeString(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// SanitizeEmail sanitizes email input
func SanitizeEmail(email string) string {
	// Convert to lowercase and trim
	email = strings.ToLower(strings.TrimSpace(email))

	// Remove any HTML tags
	email = stripHTML(email)

	// Remove any control characters
	email = removeControlChars(email)

	return email
}

// SanitizePhone sanitizes phone number input
func SanitizePhone(phone string) string {
	// Trim whitespace
	phone = strings.TrimSpace(phone)

	// Remove any HTML tags
	phone = stripHTML(phone)

	// Remove any non-digit, nonplus, non-dash, non-space characters
	var result strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) || r == '+' || r == '-' || r == ' ' || r == '(' || r == ')' {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// SanitizeText sanitizes multi-line text input such as a car description
func SanitizeText(input string) string {
	trimmed := stripHTML(strings.TrimSpace(input))

	// Remove any control characters except newlines and tabs
	var result strings.Builder
	for _, r := range trimmed {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' || r == '\r' {
			result.WriteRune(r)
		}
	}

	return result.String()
}

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

func stripHTML(input string) string {
	return htmlTagRegex.ReplaceAllString(input, "")
}

// removeControlChars removes control characters from string
func removeControlChars(input string) string {
	var result strings.Builder
	for _, r := range input {
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}
