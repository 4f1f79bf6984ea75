// Package response holds the parsed Response value type: status line,
// headers, the method that produced it, and body bytes. The header-block
// split is grounded on the Rust original's Response::from_header; the
// has_body/has_chuncked_body predicates are ported verbatim in meaning.
package response

import (
	"strings"
	"unicode/utf8"

	"github.com/WhileEndless/go-rawhttp/v2/pkg/header"
	"github.com/WhileEndless/go-rawhttp/v2/pkg/httpstatus"
	"github.com/WhileEndless/go-rawhttp/v2/pkg/method"
	"github.com/WhileEndless/go-rawhttp/v2/pkg/rherrors"
)

// Response is a parsed HTTP response: status line, headers, the method of
// the request that produced it, and the body.
type Response struct {
	Status  httpstatus.Status
	Headers *header.Headers
	Method  method.Method
	Body    []byte
}

// FromHeader splits the head block at the first LF into a status line and
// the remaining header lines, parsing each.
func FromHeader(head []byte) (*Response, error) {
	text := string(head)
	idx := strings.IndexByte(text, '\n')
	var statusLine, rest string
	if idx < 0 {
		statusLine, rest = text, ""
	} else {
		statusLine, rest = text[:idx], text[idx+1:]
	}

	status, err := httpstatus.Parse(statusLine)
	if err != nil {
		return nil, rherrors.NewStatusErr(err)
	}

	headers, err := header.ParseBlock(rest)
	if err != nil {
		return nil, rherrors.NewHeadersErr(err)
	}

	return &Response{
		Status:  status,
		Headers: headers,
		Method:  method.GET,
	}, nil
}

// HasBody reports whether this response carries a body: the producing
// method is not HEAD, and the status is not in the no-body set
// (informational, 204, 304).
func (r *Response) HasBody() bool {
	return !r.Method.Equal(method.HEAD) && !r.Status.Code.IsNoBody()
}

// HasChunkedBody reports whether the body is chunk-encoded: version 1.1,
// HasBody true, and Transfer-Encoding contains "chunked".
func (r *Response) HasChunkedBody() bool {
	if r.Status.Version != "HTTP/1.1" {
		return false
	}
	if !r.HasBody() {
		return false
	}
	for _, v := range r.Headers.Array("Transfer-Encoding") {
		if strings.EqualFold(v, "chunked") {
			return true
		}
	}
	return false
}

// ContentLength returns the parsed Content-Length, if present and valid.
func (r *Response) ContentLength() (int64, bool, error) {
	return r.Headers.ContentLength()
}

// Text decodes the body as UTF-8, substituting the replacement character
// for invalid sequences.
func (r *Response) Text() string {
	if utf8.Valid(r.Body) {
		return string(r.Body)
	}
	var b strings.Builder
	body := r.Body
	for len(body) > 0 {
		rn, size := utf8.DecodeRune(body)
		b.WriteRune(rn)
		body = body[size:]
	}
	return b.String()
}
