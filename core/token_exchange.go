package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-querystring/query"
)

const (
	AuthorizePath        = "/oauth/authorize"
	AccessTokenPath      = "/oauth/access_token"
	ExchangeSessionsPath = "/oauth/exchange_sessions"

	grantTypeClientCredentials = "client_cred"
)

type codeTokenRequest struct {
	ClientID     string `url:"client_id"`
	ClientSecret string `url:"client_secret"`
	Code         string `url:"code"`
	RedirectURI  string `url:"redirect_uri"`
}

type clientCredentialRequest struct {
	ClientID     string `url:"client_id"`
	ClientSecret string `url:"client_secret"`
	Type         string `url:"type"`
	Sessions     string `url:"sessions,omitempty"`
}

// TokenExchangeClient talks to the token endpoints on behalf of one
// application.
type TokenExchangeClient struct {
	credentials AppCredentials
	graphHost   string
	transport   GraphTransport
	defaults    RequestOptions
}

// NewTokenExchangeClient binds credentials to a transport. defaults are the
// request options applied under every call's own options.
func NewTokenExchangeClient(
	credentials AppCredentials,
	graphHost string,
	transport GraphTransport,
	defaults RequestOptions,
) *TokenExchangeClient {
	graphHost = strings.TrimSpace(graphHost)
	if graphHost == "" {
		graphHost = DefaultGraphHost
	}
	return &TokenExchangeClient{
		credentials: credentials,
		graphHost:   graphHost,
		transport:   transport,
		defaults:    defaults,
	}
}

// ExchangeCode trades an authorization code for an access token. The
// redirect URI is sent exactly as given, including when empty.
func (c *TokenExchangeClient) ExchangeCode(
	ctx context.Context,
	code string,
	redirectURI string,
	opts TokenRequestOptions,
) (AccessTokenInfo, error) {
	body, err := c.fetch(ctx, AccessTokenPath, codeTokenRequest{
		ClientID:     c.credentials.AppID(),
		ClientSecret: c.credentials.Secret(),
		Code:         code,
		RedirectURI:  redirectURI,
	}, http.MethodGet, opts)
	if err != nil {
		return AccessTokenInfo{}, err
	}
	return parseTokenResponse(body)
}

// ExchangeCodeDefault is ExchangeCode with the configured callback URL as the
// redirect URI.
func (c *TokenExchangeClient) ExchangeCodeDefault(ctx context.Context, code string, opts TokenRequestOptions) (AccessTokenInfo, error) {
	return c.ExchangeCode(ctx, code, c.credentials.CallbackURL(), opts)
}

// AppToken requests an application access token with the client credential
// grant.
func (c *TokenExchangeClient) AppToken(ctx context.Context, opts TokenRequestOptions) (AccessTokenInfo, error) {
	body, err := c.fetch(ctx, AccessTokenPath, c.clientCredentials(""), http.MethodPost, opts)
	if err != nil {
		return AccessTokenInfo{}, err
	}
	return parseTokenResponse(body)
}

func (c *TokenExchangeClient) clientCredentials(sessions string) clientCredentialRequest {
	return clientCredentialRequest{
		ClientID:     c.credentials.AppID(),
		ClientSecret: c.credentials.Secret(),
		Type:         grantTypeClientCredentials,
		Sessions:     sessions,
	}
}

func (c *TokenExchangeClient) fetch(
	ctx context.Context,
	path string,
	request any,
	defaultMethod string,
	opts TokenRequestOptions,
) (string, error) {
	if c == nil || c.transport == nil {
		return "", fmt.Errorf("core: token exchange transport is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	values, err := query.Values(request)
	if err != nil {
		return "", fmt.Errorf("core: encode token request: %w", err)
	}
	params := make(map[string]string, len(values)+len(opts.Params))
	for key := range values {
		params[key] = values.Get(key)
	}
	for key, value := range opts.Params {
		params[key] = value
	}

	httpOptions := mergeRequestOptions(c.defaults, opts.HTTP)
	method := strings.ToUpper(strings.TrimSpace(httpOptions.Method))
	if method == "" {
		method = defaultMethod
	}
	httpOptions.Method = method

	response, err := c.transport.Perform(ctx, GraphRequest{
		Host:    c.graphHost,
		Path:    path,
		Params:  params,
		Method:  method,
		Options: httpOptions,
	})
	if err != nil {
		return "", err
	}
	return response.Body, nil
}

func mergeRequestOptions(defaults RequestOptions, override RequestOptions) RequestOptions {
	merged := defaults
	if strings.TrimSpace(override.Method) != "" {
		merged.Method = override.Method
	}
	if override.RequireTLS != nil {
		requireTLS := *override.RequireTLS
		merged.RequireTLS = &requireTLS
	}
	if override.Timeout > 0 {
		merged.Timeout = override.Timeout
	}
	if override.NoFollowRedirects {
		merged.NoFollowRedirects = true
	}
	headers := cloneStringMap(defaults.Headers)
	for key, value := range override.Headers {
		headers[key] = value
	}
	merged.Headers = headers
	return merged
}

// parseTokenResponse treats any body mentioning "error" as a remote error and
// everything else as form-encoded key=value pairs.
func parseTokenResponse(body string) (AccessTokenInfo, error) {
	if strings.Contains(body, "error") {
		return AccessTokenInfo{}, decodeRemoteError(body)
	}
	return newAccessTokenInfo(ParseFormBody(body)), nil
}

// decodeRemoteError extracts the nested "error" object. A body that cannot be
// decoded yields empty details instead of a decode failure.
func decodeRemoteError(body string) *APIError {
	var decoded map[string]any
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		return newAPIError(nil)
	}
	switch typed := decoded["error"].(type) {
	case map[string]any:
		return newAPIError(typed)
	case string:
		// RFC 6749 style: {"error":"invalid_grant","error_description":"..."}
		details := map[string]any{"type": typed}
		if description, ok := decoded["error_description"].(string); ok {
			details["message"] = description
		}
		return newAPIError(details)
	default:
		return newAPIError(nil)
	}
}

// ParseFormBody splits body on '&' and each entry on its first '='. Later
// duplicates replace earlier ones. Values are not unescaped.
func ParseFormBody(body string) map[string]string {
	fields := map[string]string{}
	if body == "" {
		return fields
	}
	for _, entry := range strings.Split(body, "&") {
		key, value, _ := strings.Cut(entry, "=")
		fields[key] = value
	}
	return fields
}
