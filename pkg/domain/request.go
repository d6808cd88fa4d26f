package domain

import (
	"fmt"
	"net/http"
	"net/url"
)

// Cookie is a single request cookie.
type Cookie struct {
	Name  string
	Value string
}

// Request is the canonical in-flight HTTP request.
//
// A Request is owned by exactly one caller at a time: the pipeline owns it
// from creation until it is handed to the transport, which consumes it.
type Request struct {
	Method  string
	URL     *url.URL
	Headers Headers
	Cookies []Cookie
	Body    []byte
}

// NewRequest creates a GET request for rawURL.
// The URL must be absolute with an http or https scheme and a host.
func NewRequest(rawURL string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, ErrInvalidInput(fmt.Sprintf("parse url %q: %v", rawURL, err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrInvalidInput(fmt.Sprintf("url %q: unsupported scheme %q", rawURL, u.Scheme))
	}
	if u.Host == "" {
		return nil, ErrInvalidInput(fmt.Sprintf("url %q: missing host", rawURL))
	}

	return &Request{
		Method: http.MethodGet,
		URL:    u,
	}, nil
}

// AddCookie appends a cookie to the request's cookie set.
func (r *Request) AddCookie(name, value string) {
	r.Cookies = append(r.Cookies, Cookie{Name: name, Value: value})
}

// SetBody replaces the request body.
func (r *Request) SetBody(body []byte) {
	r.Body = body
}
