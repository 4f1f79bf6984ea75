// Package rawhttp provides a minimal, raw-socket HTTP/1.x client: build a
// request with ClientBuilder, send it over plain TCP, TLS, or a SOCKS5
// tunnel, and get back a parsed Response with redirects already followed.
package rawhttp

import (
	"context"

	"github.com/WhileEndless/go-rawhttp/v2/pkg/client"
	"github.com/WhileEndless/go-rawhttp/v2/pkg/header"
	"github.com/WhileEndless/go-rawhttp/v2/pkg/method"
	"github.com/WhileEndless/go-rawhttp/v2/pkg/rawurl"
	"github.com/WhileEndless/go-rawhttp/v2/pkg/response"
	"github.com/WhileEndless/go-rawhttp/v2/pkg/rherrors"
)

// Version is the current version of the rawhttp library.
const Version = "3.0.0"

// Re-export the package types most callers need, so `import rawhttp` is
// enough for common use; the pkg/* packages remain directly importable
// for anything more specific.
type (
	// ClientBuilder accumulates request configuration and dials the
	// transport on Build.
	ClientBuilder = client.ClientBuilder

	// Client holds a dialed transport and the request it will send.
	Client = client.Client

	// Response is a parsed status line, headers, and body.
	Response = response.Response

	// Headers is the case-insensitive header multimap.
	Headers = header.Headers

	// Method is a request verb.
	Method = method.Method

	// URL is the parsed target or proxy address value type.
	URL = rawurl.URL

	// Error is the engine's closed error taxonomy type.
	Error = rherrors.Error

	// ErrorKind classifies an Error.
	ErrorKind = rherrors.Kind
)

// Re-export the nine standard verbs.
var (
	GET     = method.GET
	HEAD    = method.HEAD
	POST    = method.POST
	PUT     = method.PUT
	DELETE  = method.DELETE
	CONNECT = method.CONNECT
	OPTIONS = method.OPTIONS
	TRACE   = method.TRACE
	PATCH   = method.PATCH
)

// NewBuilder returns a ClientBuilder with the engine's defaults: GET,
// HTTP/1.1, and a redirect budget of 10.
func NewBuilder() *ClientBuilder {
	return client.NewBuilder()
}

// Get is a convenience one-shot: build a GET client for url, send it, and
// return the response.
func Get(ctx context.Context, url string) (*Response, error) {
	c, err := client.NewBuilder().Get(url).Build(ctx)
	if err != nil {
		return nil, err
	}
	return c.Send(ctx)
}

// IsKind reports whether err is a rawhttp Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	rerr, ok := err.(*Error)
	return ok && rerr.Kind == kind
}
