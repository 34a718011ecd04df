package transport

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-graphauth/core"
)

const formContentType = "application/x-www-form-urlencoded"

// GraphTransport implements core.GraphTransport on top of a TransportAdapter.
// GET requests carry params in the query string; every other method sends
// them as a form body.
type GraphTransport struct {
	Adapter core.TransportAdapter
}

func NewGraphTransport(adapter core.TransportAdapter) *GraphTransport {
	if adapter == nil {
		adapter = NewRESTAdapter(nil)
	}
	return &GraphTransport{Adapter: adapter}
}

func (t *GraphTransport) Perform(ctx context.Context, req core.GraphRequest) (core.GraphResponse, error) {
	if t == nil || t.Adapter == nil {
		return core.GraphResponse{}, transportError(
			"transport: graph transport requires an adapter",
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			nil,
		)
	}
	host := strings.TrimSpace(req.Host)
	if host == "" {
		return core.GraphResponse{}, transportError(
			"transport: graph host is required",
			goerrors.CategoryBadInput,
			http.StatusBadRequest,
			map[string]any{"path": req.Path},
		)
	}

	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = strings.ToUpper(strings.TrimSpace(req.Options.Method))
	}
	if method == "" {
		method = http.MethodGet
	}

	headers := map[string]string{}
	for key, value := range req.Options.Headers {
		headers[key] = value
	}
	transportReq := core.TransportRequest{
		Method:            method,
		URL:               GraphURL(host, req.Path, req.Options.TLSRequired()),
		Headers:           headers,
		Timeout:           req.Options.Timeout,
		NoFollowRedirects: req.Options.NoFollowRedirects,
	}
	if method == http.MethodGet {
		transportReq.Query = cloneParams(req.Params)
	} else {
		form := url.Values{}
		for key, value := range req.Params {
			form.Set(key, value)
		}
		transportReq.Body = []byte(form.Encode())
		if _, ok := headers["Content-Type"]; !ok {
			headers["Content-Type"] = formContentType
		}
	}

	response, err := t.Adapter.Do(ctx, transportReq)
	if err != nil {
		return core.GraphResponse{}, err
	}
	return core.GraphResponse{
		StatusCode: response.StatusCode,
		Body:       string(response.Body),
	}, nil
}

// GraphURL joins scheme, host and path. requireTLS selects https.
func GraphURL(host string, path string, requireTLS bool) string {
	scheme := "https"
	if !requireTLS {
		scheme = "http"
	}
	path = strings.TrimSpace(path)
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return scheme + "://" + strings.TrimSpace(host) + path
}

func cloneParams(params map[string]string) map[string]string {
	out := make(map[string]string, len(params))
	for key, value := range params {
		out[key] = value
	}
	return out
}

var _ core.GraphTransport = (*GraphTransport)(nil)
