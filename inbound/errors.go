package inbound

import (
	"encoding/json"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-graphauth/core"
)

func inboundWrapError(
	source error,
	category goerrors.Category,
	message string,
	code int,
	textCode string,
) *goerrors.Error {
	if source == nil {
		return goerrors.New(message, category).
			WithCode(code).
			WithTextCode(textCode)
	}
	return goerrors.Wrap(source, category, message).
		WithCode(code).
		WithTextCode(textCode)
}

// unauthorizedError keeps the text code of an already mapped session error
// and forces the 401 status.
func unauthorizedError(err error) *goerrors.Error {
	var rich *goerrors.Error
	textCode := core.ErrorUnauthorized
	if goerrors.As(err, &rich) && rich.TextCode != "" {
		textCode = rich.TextCode
	}
	rejected := inboundWrapError(
		nil,
		goerrors.CategoryAuth,
		"inbound: session cookie rejected",
		http.StatusUnauthorized,
		textCode,
	)
	if err != nil {
		rejected.WithMetadata(map[string]any{"cause": err.Error()})
	}
	return rejected
}

type errorBody struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Category string `json:"category"`
	Code     int    `json:"code"`
	TextCode string `json:"text_code"`
	Message  string `json:"message"`
}

// WriteError renders err as a JSON error envelope with its HTTP status.
func WriteError(w http.ResponseWriter, err error) {
	rich := core.MapError(err)
	if rich == nil {
		rich = core.MapError(goerrors.New("inbound: unknown error", goerrors.CategoryInternal))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rich.Code)
	_ = json.NewEncoder(w).Encode(errorBody{Error: errorPayload{
		Category: string(rich.Category),
		Code:     rich.Code,
		TextCode: rich.TextCode,
		Message:  rich.Message,
	}})
}
