package analysis

import (
	"regexp"
)

type redaction struct {
	pattern     *regexp.Regexp
	replacement string
}

// Applied in order; national ids run before phones so an 8-digit DNI is not read as a phone
var redactions = []redaction{
	{regexp.MustCompile(`\b\d{1,2}[.\-]?\d{3}[.\-]?\d{3}\b`), "[DNI_REDACTED]"},
	{regexp.MustCompile(`(\+?54\s?)?(\(?\d{2,4}\)?[\s\-]?)?\d{4}[\s\-]?\d{4}`), "[PHONE_REDACTED]"},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`), "[EMAIL_REDACTED]"},
	{regexp.MustCompile(`\b\d{1,5}\s+[A-Za-zÀ-ÿ\s]+\s+\d{1,5}\b`), "[ADDRESS_REDACTED]"},
}

// Sanitize redacts Argentine DNI numbers, phone numbers, email addresses and street addresses
func Sanitize(text string) string {
	for _, r := range redactions {
		text = r.pattern.ReplaceAllString(text, r.replacement)
	}
	return text
}
