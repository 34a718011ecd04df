package core

import (
	"net/url"
	"sort"
	"strings"
)

// URLOptions is the caller-supplied option set for the URL builders. Values
// are rendered as strings; slices are comma-joined.
type URLOptions map[string]any

func (o URLOptions) clone() URLOptions {
	out := make(URLOptions, len(o))
	for key, value := range o {
		out[key] = value
	}
	return out
}

// AuthorizationURLBuilder assembles authorize, dialog and token URLs for one
// application.
type AuthorizationURLBuilder struct {
	credentials AppCredentials
	graphHost   string
	dialogHost  string
}

func NewAuthorizationURLBuilder(credentials AppCredentials, graphHost string, dialogHost string) *AuthorizationURLBuilder {
	graphHost = strings.TrimSpace(graphHost)
	if graphHost == "" {
		graphHost = DefaultGraphHost
	}
	dialogHost = strings.TrimSpace(dialogHost)
	if dialogHost == "" {
		dialogHost = DefaultDialogHost
	}
	return &AuthorizationURLBuilder{
		credentials: credentials,
		graphHost:   graphHost,
		dialogHost:  dialogHost,
	}
}

// AuthorizeURL builds the OAuth authorize URL. A permissions option becomes
// the scope parameter.
func (b *AuthorizationURLBuilder) AuthorizeURL(opts URLOptions) (string, error) {
	options := opts.clone()
	if permissions, ok := options["permissions"]; ok {
		delete(options, "permissions")
		if permissions != nil {
			options["scope"] = readAnyString(permissions)
		}
	}
	merged := withDefaults(URLOptions{"client_id": b.credentials.AppID()}, options)
	return b.BuildURL("https://"+b.graphHost+AuthorizePath, true, merged)
}

// DialogURL builds a dialog URL. Both app_id and client_id are sent since
// dialogs accept either.
func (b *AuthorizationURLBuilder) DialogURL(dialogType string, opts URLOptions) (string, error) {
	merged := withDefaults(URLOptions{
		"app_id":    b.credentials.AppID(),
		"client_id": b.credentials.AppID(),
	}, opts)
	base := "https://" + b.dialogHost + "/dialog/" + url.PathEscape(strings.TrimSpace(dialogType))
	return b.BuildURL(base, true, merged)
}

// TokenURL builds the access token URL for an authorization code. The result
// embeds the app secret and must not be logged.
func (b *AuthorizationURLBuilder) TokenURL(code string, opts URLOptions) (string, error) {
	merged := withDefaults(URLOptions{
		"client_id":     b.credentials.AppID(),
		"code":          code,
		"client_secret": b.credentials.Secret(),
	}, opts)
	return b.BuildURL("https://"+b.graphHost+AccessTokenPath, true, merged)
}

// BuildURL appends the encoded options to base. When requireRedirectURI is
// set the redirect_uri is taken from redirect_uri, then callback, then the
// configured callback URL. A redirect_uri or callback option that is present
// is used even when empty.
func (b *AuthorizationURLBuilder) BuildURL(base string, requireRedirectURI bool, opts URLOptions) (string, error) {
	options := opts.clone()
	if requireRedirectURI {
		redirect, ok := presentOption(options, "redirect_uri")
		if !ok {
			if redirect, ok = presentOption(options, "callback"); ok {
				delete(options, "callback")
			}
		}
		if !ok {
			redirect = b.credentials.CallbackURL()
			if redirect == "" {
				return "", ErrRedirectURIRequired
			}
		}
		options["redirect_uri"] = redirect
	}

	encoded := EncodeParams(options)
	if encoded == "" {
		return base, nil
	}
	return base + "?" + encoded, nil
}

// EncodeParams renders each option as key=escaped(value) and joins the pairs
// in sorted order.
func EncodeParams(options map[string]any) string {
	pairs := make([]string, 0, len(options))
	for key, value := range options {
		pairs = append(pairs, url.QueryEscape(key)+"="+url.QueryEscape(readAnyString(value)))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "&")
}

func withDefaults(defaults URLOptions, opts URLOptions) URLOptions {
	merged := defaults.clone()
	for key, value := range opts {
		merged[key] = value
	}
	return merged
}

func presentOption(options URLOptions, key string) (string, bool) {
	value, ok := options[key]
	if !ok || value == nil {
		return "", false
	}
	return readAnyString(value), true
}
