package services

import (
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// UpstreamError represents a classified error from the generation provider.
// Classification feeds the interaction-log status and degradation wording;
// nothing here is ever surfaced as an error to the chat caller.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstream
}

// IsAuthError returns true if the error is related to authentication
func (e *UpstreamError) IsAuthError() bool {
	return e.StatusCode == 401
}

// IsQuotaError returns true if the error is related to insufficient credits
func (e *UpstreamError) IsQuotaError() bool {
	return e.StatusCode == 402 || e.StatusCode == 429
}

// IsTimeout returns true if the request timed out
func (e *UpstreamError) IsTimeout() bool {
	return e.StatusCode == 408
}

// ClassifyUpstreamError converts a provider error into an UpstreamError.
// SDK errors carry their HTTP status; everything else is matched on message
// patterns the providers are known to emit.
func ClassifyUpstreamError(err error) *UpstreamError {
	if err == nil {
		return nil
	}

	// Try to unwrap as OpenAI API error
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
		}
	}

	errMsg := err.Error()
	errMsgLower := strings.ToLower(errMsg)

	// Check for timeout
	if strings.Contains(errMsgLower, "timeout") || strings.Contains(errMsgLower, "deadline exceeded") {
		return &UpstreamError{
			StatusCode: 408,
			Message:    "Request timeout",
		}
	}

	// Check for auth errors
	if strings.Contains(errMsgLower, "unauthorized") || strings.Contains(errMsgLower, "invalid api key") {
		return &UpstreamError{
			StatusCode: 401,
			Message:    "Authentication failed",
		}
	}

	// Check for payment errors
	if strings.Contains(errMsgLower, "insufficient") || strings.Contains(errMsgLower, "quota") || strings.Contains(errMsgLower, "billing") {
		return &UpstreamError{
			StatusCode: 402,
			Message:    "Insufficient credits or quota exceeded",
		}
	}

	// Check for rate limiting
	if strings.Contains(errMsgLower, "rate limit") || strings.Contains(errMsgLower, "too many requests") {
		return &UpstreamError{
			StatusCode: 429,
			Message:    "Rate limit exceeded",
		}
	}

	// Check for server errors
	if strings.Contains(errMsgLower, "bad gateway") {
		return &UpstreamError{
			StatusCode: 502,
			Message:    "Bad gateway",
		}
	}

	if strings.Contains(errMsgLower, "service unavailable") || strings.Contains(errMsgLower, "temporarily unavailable") {
		return &UpstreamError{
			StatusCode: 503,
			Message:    "Service temporarily unavailable",
		}
	}

	// Unknown error
	return &UpstreamError{
		StatusCode: 500,
		Message:    errMsg,
	}
}
