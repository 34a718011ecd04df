package core

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestMapError_AssignsStableCodes(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		category goerrors.Category
		code     int
		textCode string
	}{
		{
			name:     "malformed envelope",
			err:      &EnvelopeError{Code: "token_incomplete", Field: "token", Cause: ErrMalformedEnvelope},
			category: goerrors.CategoryBadInput,
			code:     http.StatusBadRequest,
			textCode: ErrorMalformedEnvelope,
		},
		{
			name:     "unsupported algorithm",
			err:      &EnvelopeError{Code: "unsupported_algorithm", Cause: ErrUnsupportedAlgorithm},
			category: goerrors.CategoryAuth,
			code:     http.StatusUnauthorized,
			textCode: ErrorUnsupportedAlgorithm,
		},
		{
			name:     "signature mismatch",
			err:      &EnvelopeError{Code: "signature_mismatch", Cause: ErrSignatureMismatch},
			category: goerrors.CategoryAuth,
			code:     http.StatusUnauthorized,
			textCode: ErrorSignatureMismatch,
		},
		{
			name:     "missing redirect",
			err:      ErrRedirectURIRequired,
			category: goerrors.CategoryBadInput,
			code:     http.StatusBadRequest,
			textCode: ErrorConfig,
		},
		{
			name:     "remote error",
			err:      newAPIError(map[string]any{"type": "OAuthException", "message": "bad code"}),
			category: goerrors.CategoryExternal,
			code:     http.StatusBadGateway,
			textCode: ErrorRemote,
		},
		{
			name:     "empty session exchange",
			err:      newEmptyResponseError([]string{"s1"}),
			category: goerrors.CategoryExternal,
			code:     http.StatusBadGateway,
			textCode: ErrorEmptyResponse,
		},
		{
			name:     "required input",
			err:      fmt.Errorf("core: authorization code is required"),
			category: goerrors.CategoryBadInput,
			code:     http.StatusBadRequest,
			textCode: ErrorBadInput,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mapped := MapError(tc.err)
			if mapped == nil {
				t.Fatalf("expected mapped error")
			}
			if mapped.Category != tc.category {
				t.Fatalf("expected category %q, got %q", tc.category, mapped.Category)
			}
			if mapped.Code != tc.code {
				t.Fatalf("expected code %d, got %d", tc.code, mapped.Code)
			}
			if mapped.TextCode != tc.textCode {
				t.Fatalf("expected text code %q, got %q", tc.textCode, mapped.TextCode)
			}
		})
	}
}

func TestMapError_KeepsDomainChain(t *testing.T) {
	mapped := MapError(newEmptyResponseError([]string{"s1", "s2"}))
	var apiErr *APIError
	if !errors.As(mapped, &apiErr) {
		t.Fatalf("expected api error to remain reachable through the envelope")
	}
	sessions, ok := mapped.Metadata["sessions"].([]string)
	if !ok || len(sessions) != 2 {
		t.Fatalf("expected sessions metadata, got %#v", mapped.Metadata["sessions"])
	}

	mapped = MapError(&EnvelopeError{Cause: ErrSignatureMismatch})
	if !errors.Is(mapped, ErrSignatureMismatch) {
		t.Fatalf("expected signature mismatch sentinel through the envelope")
	}
}

func TestMapError_PreservesRichErrors(t *testing.T) {
	rich := goerrors.New("upstream unavailable", goerrors.CategoryExternal)
	mapped := MapError(fmt.Errorf("wrapped: %w", rich))
	if mapped != rich {
		t.Fatalf("expected the existing envelope to be returned")
	}
	if mapped.Code != http.StatusBadGateway || mapped.TextCode != ErrorExternalFailure {
		t.Fatalf("expected default code fill, got code=%d text=%q", mapped.Code, mapped.TextCode)
	}
	if MapError(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestAPIError_Message(t *testing.T) {
	err := newAPIError(map[string]any{"type": "OAuthException", "message": "expired"})
	if got := err.Error(); got != "core: remote api error: OAuthException: expired" {
		t.Fatalf("unexpected message %q", got)
	}
	if empty := newAPIError(nil); len(empty.Details) != 0 || empty.Error() != ErrAPI.Error() {
		t.Fatalf("expected bare api error, got %#v", empty)
	}
}
