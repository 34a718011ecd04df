package core

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

var (
	ErrMalformedEnvelope    = errors.New("core: malformed signed envelope")
	ErrUnsupportedAlgorithm = errors.New("core: unsupported envelope algorithm")
	ErrSignatureMismatch    = errors.New("core: envelope signature mismatch")
	ErrRedirectURIRequired  = errors.New("core: redirect uri is required")
	ErrAPI                  = errors.New("core: remote api error")
)

const (
	ErrorMalformedEnvelope    = "GRAPHAUTH_MALFORMED_ENVELOPE"
	ErrorUnsupportedAlgorithm = "GRAPHAUTH_UNSUPPORTED_ALGORITHM"
	ErrorSignatureMismatch    = "GRAPHAUTH_SIGNATURE_MISMATCH"
	ErrorConfig               = "GRAPHAUTH_CONFIG"
	ErrorRemote               = "GRAPHAUTH_REMOTE_ERROR"
	ErrorEmptyResponse        = "GRAPHAUTH_EMPTY_RESPONSE"
	ErrorBadInput             = "GRAPHAUTH_BAD_INPUT"
	ErrorUnauthorized         = "GRAPHAUTH_UNAUTHORIZED"
	ErrorExternalFailure      = "GRAPHAUTH_EXTERNAL_FAILURE"
	ErrorInternal             = "GRAPHAUTH_INTERNAL_ERROR"
)

// EnvelopeError describes why a signed envelope was rejected. Cause is one of
// ErrMalformedEnvelope, ErrUnsupportedAlgorithm or ErrSignatureMismatch.
type EnvelopeError struct {
	Code  string
	Field string
	Cause error
}

func (e *EnvelopeError) Error() string {
	if e == nil {
		return ErrMalformedEnvelope.Error()
	}
	cause := e.Cause
	if cause == nil {
		cause = ErrMalformedEnvelope
	}
	parts := []string{cause.Error()}
	if strings.TrimSpace(e.Code) != "" {
		parts = append(parts, "code="+strings.TrimSpace(e.Code))
	}
	if strings.TrimSpace(e.Field) != "" {
		parts = append(parts, "field="+strings.TrimSpace(e.Field))
	}
	return strings.Join(parts, ": ")
}

func (e *EnvelopeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// APIError is a failure reported by the remote token endpoint. Details holds
// the nested "error" object of the response; it is empty when the body could
// not be decoded. Empty marks a session exchange that returned no body.
type APIError struct {
	Type     string
	Message  string
	Details  map[string]any
	Sessions []string
	Empty    bool
}

func newAPIError(details map[string]any) *APIError {
	if details == nil {
		details = map[string]any{}
	}
	return &APIError{
		Type:    readAnyString(details["type"]),
		Message: readAnyString(details["message"]),
		Details: details,
	}
}

func newEmptyResponseError(sessions []string) *APIError {
	sessions = append([]string(nil), sessions...)
	message := fmt.Sprintf(
		"session key exchange received an error (empty response body) for sessions %s",
		formatSessionList(sessions),
	)
	return &APIError{
		Type:     "ArgumentError",
		Message:  message,
		Details:  map[string]any{"type": "ArgumentError", "message": message},
		Sessions: sessions,
		Empty:    true,
	}
}

func (e *APIError) Error() string {
	if e == nil {
		return ErrAPI.Error()
	}
	base := ErrAPI.Error()
	if strings.TrimSpace(e.Type) != "" {
		base += ": " + strings.TrimSpace(e.Type)
	}
	if strings.TrimSpace(e.Message) != "" {
		base += ": " + strings.TrimSpace(e.Message)
	}
	return base
}

func (e *APIError) Unwrap() error {
	return ErrAPI
}

func formatSessionList(sessions []string) string {
	quoted := make([]string, 0, len(sessions))
	for _, session := range sessions {
		quoted = append(quoted, fmt.Sprintf("%q", session))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// MapError converts a domain error into a go-errors envelope. Errors that are
// already envelopes keep their category and get default codes filled in.
func MapError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureErrorEnvelope(richErr)
	}

	var apiErr *APIError
	switch {
	case errors.Is(err, ErrMalformedEnvelope):
		return wrapDomainError(err, goerrors.CategoryBadInput, ErrorMalformedEnvelope, nil)
	case errors.Is(err, ErrUnsupportedAlgorithm):
		return wrapDomainError(err, goerrors.CategoryAuth, ErrorUnsupportedAlgorithm, nil)
	case errors.Is(err, ErrSignatureMismatch):
		return wrapDomainError(err, goerrors.CategoryAuth, ErrorSignatureMismatch, nil)
	case errors.Is(err, ErrRedirectURIRequired):
		return wrapDomainError(err, goerrors.CategoryBadInput, ErrorConfig, nil)
	case errors.As(err, &apiErr):
		textCode := ErrorRemote
		metadata := map[string]any{"details": cloneAnyMap(apiErr.Details)}
		if apiErr.Empty {
			textCode = ErrorEmptyResponse
			metadata["sessions"] = append([]string(nil), apiErr.Sessions...)
		}
		return wrapDomainError(err, goerrors.CategoryExternal, textCode, metadata)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	if strings.Contains(msg, "required") || strings.Contains(msg, "invalid") {
		return ensureErrorEnvelope(goerrors.Wrap(err, goerrors.CategoryBadInput, err.Error()).
			WithTextCode(ErrorBadInput))
	}
	return ensureErrorEnvelope(goerrors.MapToError(err, goerrors.DefaultErrorMappers()))
}

func wrapDomainError(
	err error,
	category goerrors.Category,
	textCode string,
	metadata map[string]any,
) *goerrors.Error {
	wrapped := goerrors.Wrap(err, category, err.Error()).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		wrapped.WithMetadata(metadata)
	}
	return ensureErrorEnvelope(wrapped)
}

func ensureErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = errorHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ErrorBadInput
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return ErrorUnauthorized
	case goerrors.CategoryExternal:
		return ErrorExternalFailure
	default:
		return ErrorInternal
	}
}

func errorHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func cloneAnyMap(input map[string]any) map[string]any {
	if len(input) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}

func cloneStringMap(input map[string]string) map[string]string {
	if len(input) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}

func sortedKeys[V any](input map[string]V) []string {
	keys := make([]string, 0, len(input))
	for key := range input {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
