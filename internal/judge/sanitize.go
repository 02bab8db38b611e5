package judge

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
)

const (
	messageUnavailable = "The judge is unavailable right now."
	messageOverLimit   = "The judge is over its usage limit right now. Try again in a bit."
	messageAuth        = "The judge rejected the server's credentials."
	messageTimeout     = "The judge took too long to respond."
	messageUnreadable  = "The judge's answer could not be understood."
)

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`sk-[A-Za-z0-9_\-]{6,}`),
	regexp.MustCompile(`AIza[0-9A-Za-z_\-]{10,}`),
	regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._\-]+`),
	regexp.MustCompile(`(?i)(api[_-]?key|key|token)=[^&\s"']+`),
}

var limitWords = []string{"quota", "billing", "insufficient", "credit", "payment", "plan and billing"}

var authWords = []string{"api key", "apikey", "api_key", "unauthorized", "permission", "invalid authentication"}

// ProviderError is a failed provider call. Message may contain whatever the
// provider sent back and must go through Sanitize before reaching players.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Message
}

// Sanitize turns a provider failure into a message with no credentials or
// account detail in it.
func Sanitize(err error) string {
	if err == nil {
		return messageUnavailable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return messageTimeout
	}
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		switch providerErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return messageAuth
		case http.StatusTooManyRequests, http.StatusPaymentRequired:
			return messageOverLimit
		}
	}
	lower := strings.ToLower(err.Error())
	for _, word := range limitWords {
		if strings.Contains(lower, word) {
			return messageOverLimit
		}
	}
	for _, word := range authWords {
		if strings.Contains(lower, word) {
			return messageAuth
		}
	}
	if strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline") {
		return messageTimeout
	}
	if errors.Is(err, ErrIncomplete) {
		return messageUnreadable
	}
	return messageUnavailable + " (" + scrub(err.Error()) + ")"
}

func scrub(message string) string {
	for _, pattern := range secretPatterns {
		message = pattern.ReplaceAllString(message, "[redacted]")
	}
	return truncate(message, 160)
}
