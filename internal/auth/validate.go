package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/roomedit/internal/metrics"
)

// ErrorType categorizes key validation failures.
type ErrorType int

const (
	ErrTypeInvalidKey ErrorType = iota
	ErrTypeNetworkError
	ErrTypeQuotaExceeded
	ErrTypeUnknown
)

func (t ErrorType) String() string {
	switch t {
	case ErrTypeInvalidKey:
		return "invalid"
	case ErrTypeNetworkError:
		return "network_error"
	case ErrTypeQuotaExceeded:
		return "quota"
	}
	return "unknown"
}

// ValidationError is a classified key validation failure.
type ValidationError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ValidateAPIKey makes a minimal call with model to check the key.
func ValidateAPIKey(ctx context.Context, client *genai.Client, model string) error {
	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, model, genai.Text("hi"), nil)
	elapsed := time.Since(start)

	result := "success"
	var verr *ValidationError
	switch {
	case err != nil:
		verr = Classify(err)
		result = verr.Type.String()
	case resp == nil || len(resp.Candidates) == 0:
		verr = &ValidationError{Type: ErrTypeUnknown, Message: "API returned empty response"}
		result = "empty_response"
	}

	metrics.New(metrics.Namespace).
		Dimension("Result", result).
		Duration("ApiKeyValidationMs", elapsed).
		Count("ApiKeyValidationResult").
		Flush()

	if verr != nil {
		log.Error().Err(verr).Str("result", result).Msg("API key validation failed")
		return verr
	}
	log.Info().Dur("duration", elapsed).Msg("API key validated")
	return nil
}

// Classify maps a Gemini client error onto an ErrorType.
func Classify(err error) *ValidationError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.Code, apiErr.Message, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return classifyStatus(apiErrPtr.Code, apiErrPtr.Message, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "api key not valid", "invalid api key", "api_key_invalid", "permission denied"):
		return &ValidationError{Type: ErrTypeInvalidKey, Message: "API key is invalid or has been revoked", Err: err}
	case containsAny(msg, "quota", "resource exhausted", "rate limit"):
		return &ValidationError{Type: ErrTypeQuotaExceeded, Message: "API quota exceeded or rate limited", Err: err}
	case containsAny(msg, "connection", "network", "timeout", "dial", "no such host", "unreachable"):
		return &ValidationError{Type: ErrTypeNetworkError, Message: "Network error - check your internet connection", Err: err}
	}
	return &ValidationError{Type: ErrTypeUnknown, Message: "Failed to validate API key", Err: err}
}

func classifyStatus(code int, message string, err error) *ValidationError {
	switch {
	case code == http.StatusBadRequest:
		return &ValidationError{Type: ErrTypeInvalidKey, Message: "Bad request - API key may be malformed", Err: err}
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return &ValidationError{Type: ErrTypeInvalidKey, Message: "API key is invalid, expired, or lacks permissions", Err: err}
	case code == http.StatusTooManyRequests:
		return &ValidationError{Type: ErrTypeQuotaExceeded, Message: "API rate limit exceeded - try again later", Err: err}
	case code >= 500:
		return &ValidationError{Type: ErrTypeNetworkError, Message: "Gemini API server error - try again later", Err: err}
	}
	return &ValidationError{Type: ErrTypeUnknown, Message: message, Err: err}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
