// Package redact provides utilities for redacting sensitive information from strings
// before they are logged or returned in error responses. Owner emails are personal
// data, so they are masked in logs and stripped from free-form error text.
package redact

import (
	"regexp"
	"strings"
)

// Constants for redaction placeholders
const (
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
)

var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// Rules are applied in order; earlier rules see the unmodified input.
var rules = []rule{
	{regexp.MustCompile(`(?i)(postgres|postgresql|db|database)://[^@\s]+@`), RedactedCredentialPlaceholder},
	{regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`), RedactedCredentialPlaceholder},
	{
		regexp.MustCompile(`(?i)(api[_-]?key|jwt[_-]?secret|secret|token)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`),
		RedactedKeyPlaceholder,
	},
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), "[REDACTED_JWT]"},
	{emailPattern, RedactedEmailPlaceholder},
	{
		regexp.MustCompile(
			`(?i)(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP)[\s\w,*()]+(?:FROM|INTO|SET|TABLE)(?:[\s\w,*()='"$]+)?`,
		),
		"[REDACTED_SQL]",
	},
	{regexp.MustCompile(`(/[\w.-]+){2,}`), RedactedPathPlaceholder},
}

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}

// Email masks the local part of an address, keeping its first character and
// the domain so log lines stay correlatable: ann@example.com -> a***@example.com.
func Email(email string) string {
	if email == "" {
		return ""
	}

	at := strings.LastIndex(email, "@")
	if at < 0 {
		return "***"
	}
	if at == 0 {
		return "***" + email[at:]
	}
	return email[:1] + "***" + email[at:]
}

// Emails masks every address found in input with Email and leaves the rest
// untouched. Use it for request paths, which embed owner emails.
func Emails(input string) string {
	return emailPattern.ReplaceAllStringFunc(input, Email)
}
