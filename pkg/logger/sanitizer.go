package logger

import (
	"regexp"
)

// Sensitive field patterns to filter from logs
var (
	passwordPattern = regexp.MustCompile(`(?i)(password|passwd|pwd)[\s:=]+[^\s&]+`)
	tokenPattern    = regexp.MustCompile(`(?i)(token|jwt|bearer|assertion)[\s:=]+[^\s&]+`)
	secretPattern   = regexp.MustCompile(`(?i)(secret|private[_-]?key)[\s:=]+[^\s&]+`)
	cookiePattern   = regexp.MustCompile(`(?i)(cookie)[\s:=]+[^\s]+`)
	emailPattern    = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	credentialRules = []*regexp.Regexp{passwordPattern, tokenPattern, secretPattern, cookiePattern}
)

const (
	redactedPlaceholder = "[REDACTED]"
	emailPlaceholder    = "[EMAIL]"
)

// SanitizeLogMessage removes credentials and email addresses from log messages
func SanitizeLogMessage(message string) string {
	for _, rule := range credentialRules {
		message = rule.ReplaceAllString(message, "${1}="+redactedPlaceholder)
	}
	return emailPattern.ReplaceAllString(message, emailPlaceholder)
}
