package logging

import (
	"regexp"
	"strings"
)

// SensitiveDataMasker redacts credentials and personal data from log
// messages before they reach an output. Wallet, position and instrument
// identifiers are never touched — they are the whole point of the logs.
type SensitiveDataMasker struct {
	email      *regexp.Regexp
	creditCard *regexp.Regexp
	apiKey     *regexp.Regexp
	password   *regexp.Regexp
	bearer     *regexp.Regexp
	jwt        *regexp.Regexp
}

// NewSensitiveDataMasker creates a masker with the default rule set.
func NewSensitiveDataMasker() *SensitiveDataMasker {
	return &SensitiveDataMasker{
		email:      regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
		creditCard: regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`),
		apiKey:     regexp.MustCompile(`(?i)(api[_-]?key|apikey|access[_-]?token)[\s:="']+([a-zA-Z0-9_\-]{20,})`),
		password:   regexp.MustCompile(`(?i)(password|passwd|pwd)[\s:="']+([^\s"']+)`),
		bearer:     regexp.MustCompile(`(?i)Bearer\s+([a-zA-Z0-9_\-\.]{20,})`),
		jwt:        regexp.MustCompile(`eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`),
	}
}

// Mask redacts every matching rule in input. The email local part keeps its
// first and last character so related entries can still be correlated; card
// numbers keep the last four digits.
func (m *SensitiveDataMasker) Mask(input string) string {
	result := input

	result = m.email.ReplaceAllStringFunc(result, func(match string) string {
		parts := strings.Split(match, "@")
		if len(parts) == 2 {
			return maskString(parts[0]) + "@" + parts[1]
		}
		return maskString(match)
	})

	result = m.creditCard.ReplaceAllStringFunc(result, func(match string) string {
		cleaned := strings.ReplaceAll(strings.ReplaceAll(match, " ", ""), "-", "")
		if len(cleaned) >= 4 {
			return "XXXX-XXXX-XXXX-" + cleaned[len(cleaned)-4:]
		}
		return "XXXX-XXXX-XXXX-XXXX"
	})

	result = m.apiKey.ReplaceAllString(result, "$1=[REDACTED]")
	result = m.password.ReplaceAllString(result, "$1=[REDACTED]")
	result = m.bearer.ReplaceAllString(result, "Bearer [REDACTED]")
	result = m.jwt.ReplaceAllString(result, "[JWT_REDACTED]")

	return result
}

// maskString masks a string keeping first and last character
func maskString(s string) string {
	if len(s) <= 2 {
		return strings.Repeat("*", len(s))
	}
	return string(s[0]) + strings.Repeat("*", len(s)-2) + string(s[len(s)-1])
}

// Global masker instance
var globalMasker = NewSensitiveDataMasker()

// MaskSensitiveData masks sensitive data using the global masker
func MaskSensitiveData(input string) string {
	return globalMasker.Mask(input)
}
