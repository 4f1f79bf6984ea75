// Package request holds the Request value type and its wire serialization,
// grounded on the teacher's header-writing convention and the Rust
// original's Request::to_vec layout.
package request

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/WhileEndless/go-rawhttp/v2/pkg/header"
	"github.com/WhileEndless/go-rawhttp/v2/pkg/method"
	"github.com/WhileEndless/go-rawhttp/v2/pkg/rawurl"
)

// Request is a fully-configured outgoing HTTP message: method, target URL,
// protocol version, headers, optional body, and the proxy (if any) it will
// be sent through.
type Request struct {
	Method  method.Method
	URL     rawurl.URL
	Version string
	Headers *header.Headers
	Body    []byte
	Proxy   *rawurl.URL
}

// New builds a request with the teacher's defaults: GET, HTTP/1.1, and the
// Host/Connection: Close header pair.
func New(u rawurl.URL) *Request {
	return &Request{
		Method:  method.GET,
		URL:     u,
		Version: "HTTP/1.1",
		Headers: header.DefaultHTTP(u.HostHeader()),
	}
}

// SetBody stores body and stamps Content-Length to its length. A nil body
// clears both the bytes and the header.
func (r *Request) SetBody(body []byte) {
	if body == nil {
		r.Body = nil
		r.Headers.Remove("Content-Length")
		return
	}
	r.Body = body
	r.Headers.Set("Content-Length", strconv.Itoa(len(body)))
}

// SetBasicAuth writes an Authorization header with base64(user:pass).
func (r *Request) SetBasicAuth(user, pass string) {
	r.Headers.Set("Authorization", "Basic "+basicToken(user, pass))
}

// SetProxy attaches a forward proxy. If the proxy URL carries userinfo, a
// Proxy-Authorization header is written; clearing the proxy (nil) removes
// it.
func (r *Request) SetProxy(p *rawurl.URL) {
	r.Proxy = p
	if p == nil {
		r.Headers.Remove("Proxy-Authorization")
		return
	}
	if p.HasUserinfo() {
		r.Headers.Set("Proxy-Authorization", "Basic "+basicToken(p.User, p.Password))
	} else {
		r.Headers.Remove("Proxy-Authorization")
	}
}

func basicToken(user, pass string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
}

// usesForwardProxy reports whether this request is sent in absolute-form
// (http/https forward proxy), as opposed to SOCKS5 tunneling or no proxy,
// both of which keep origin-form.
func (r *Request) usesForwardProxy() bool {
	if r.Proxy == nil {
		return false
	}
	switch r.Proxy.Scheme {
	case "http", "https":
		return true
	default:
		return false
	}
}

// ToBytes serializes the request line, headers, a blank line, and the body
// in the order the headers were set.
func (r *Request) ToBytes() []byte {
	var b strings.Builder
	b.WriteString(r.Method.String())
	b.WriteByte(' ')
	b.WriteString(r.URL.RequestTarget(r.usesForwardProxy()))
	b.WriteByte(' ')
	b.WriteString(r.Version)
	b.WriteString("\r\n")

	r.Headers.Each(func(name, value string) {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\r\n")
	})
	b.WriteString("\r\n")

	out := make([]byte, 0, b.Len()+len(r.Body))
	out = append(out, []byte(b.String())...)
	out = append(out, r.Body...)
	return out
}
