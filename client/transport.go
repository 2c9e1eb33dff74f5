package client

import (
	"net/http"
	"strings"
)

// Transport resolves relative request paths against BaseURL and asserts
// User on every request.
type Transport struct {
	BaseURL string
	User    string
	Base    http.RoundTripper
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	baseURL := strings.TrimSuffix(t.BaseURL, "/")
	path := "/" + strings.TrimPrefix(req.URL.RequestURI(), "/")
	newURL, err := req.URL.Parse(baseURL + path)
	if err != nil {
		return nil, err
	}

	// RoundTrippers must not modify the caller's request
	out := req.Clone(req.Context())
	out.URL = newURL
	out.Host = newURL.Host
	if t.User != "" {
		out.Header.Set("User", t.User)
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(out)
}
