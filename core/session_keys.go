package core

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// ExchangeSessionKeys converts legacy session keys into access tokens. The
// result has one slot per input session, in order; a slot is nil when the
// endpoint returned null or no access token for that session.
func (c *TokenExchangeClient) ExchangeSessionKeys(
	ctx context.Context,
	sessions []string,
	opts TokenRequestOptions,
) ([]*AccessTokenInfo, error) {
	request := c.clientCredentials(strings.Join(sessions, ","))
	body, err := c.fetch(ctx, ExchangeSessionsPath, request, http.MethodPost, opts)
	if err != nil {
		return nil, err
	}
	if body == "" {
		return nil, newEmptyResponseError(sessions)
	}
	if strings.Contains(body, "error") {
		return nil, decodeRemoteError(body)
	}

	var entries []map[string]any
	decoder := json.NewDecoder(strings.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&entries); err != nil {
		return nil, &APIError{
			Type:    "ParseError",
			Message: "session key exchange returned an undecodable body",
			Details: map[string]any{"type": "ParseError", "body": body},
		}
	}

	tokens := make([]*AccessTokenInfo, len(sessions))
	for idx := range tokens {
		if idx >= len(entries) || entries[idx] == nil {
			continue
		}
		token := readAnyString(entries[idx]["access_token"])
		if token == "" {
			continue
		}
		fields := make(map[string]string, len(entries[idx]))
		for key, value := range entries[idx] {
			fields[key] = readAnyString(value)
		}
		info := newAccessTokenInfo(fields)
		tokens[idx] = &info
	}
	return tokens, nil
}

// ExchangeSessionKey exchanges a single session key. It returns nil when the
// endpoint yielded no token for it.
func (c *TokenExchangeClient) ExchangeSessionKey(
	ctx context.Context,
	session string,
	opts TokenRequestOptions,
) (*AccessTokenInfo, error) {
	tokens, err := c.ExchangeSessionKeys(ctx, []string{session}, opts)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}
	return tokens[0], nil
}
