package request

import (
	"strings"
	"testing"

	"github.com/WhileEndless/go-rawhttp/v2/pkg/rawurl"
)

func TestNewDefaults(t *testing.T) {
	u, _ := rawurl.Parse("http://example.com/path")
	r := New(u)
	if r.Method.String() != "GET" || r.Version != "HTTP/1.1" {
		t.Errorf("New defaults = %v %v", r.Method, r.Version)
	}
	host, _ := r.Headers.Get("Host")
	conn, _ := r.Headers.Get("Connection")
	if host != "example.com" || conn != "Close" {
		t.Errorf("default headers = %q %q", host, conn)
	}
}

func TestSetBodySetsContentLength(t *testing.T) {
	u, _ := rawurl.Parse("http://example.com/")
	r := New(u)
	r.SetBody([]byte("hello"))
	cl, ok := r.Headers.Get("Content-Length")
	if !ok || cl != "5" {
		t.Errorf("Content-Length = %q,%v want 5,true", cl, ok)
	}
}

func TestSetBodyNilClearsHeader(t *testing.T) {
	u, _ := rawurl.Parse("http://example.com/")
	r := New(u)
	r.SetBody([]byte("hello"))
	r.SetBody(nil)
	if _, ok := r.Headers.Get("Content-Length"); ok {
		t.Errorf("Content-Length should be removed")
	}
}

func TestSetProxyWithUserinfoAddsHeader(t *testing.T) {
	u, _ := rawurl.Parse("http://target/")
	r := New(u)
	proxy, _ := rawurl.Parse("http://u:p@proxy:8080")
	r.SetProxy(&proxy)
	v, ok := r.Headers.Get("Proxy-Authorization")
	if !ok || v != "Basic dTpw" {
		t.Errorf("Proxy-Authorization = %q,%v want Basic dTpw,true", v, ok)
	}
}

func TestSetProxyNilRemovesHeader(t *testing.T) {
	u, _ := rawurl.Parse("http://target/")
	r := New(u)
	proxy, _ := rawurl.Parse("http://u:p@proxy:8080")
	r.SetProxy(&proxy)
	r.SetProxy(nil)
	if _, ok := r.Headers.Get("Proxy-Authorization"); ok {
		t.Errorf("Proxy-Authorization should be removed")
	}
}

func TestToBytesForwardProxyAbsoluteForm(t *testing.T) {
	u, _ := rawurl.Parse("http://target/")
	r := New(u)
	proxy, _ := rawurl.Parse("http://u:p@proxy:8080")
	r.SetProxy(&proxy)
	out := string(r.ToBytes())
	if !strings.HasPrefix(out, "GET http://target/ HTTP/1.1\r\n") {
		t.Errorf("request line = %q", strings.SplitN(out, "\r\n", 2)[0])
	}
	if !strings.Contains(out, "Proxy-Authorization: Basic dTpw\r\n") {
		t.Errorf("missing Proxy-Authorization header in %q", out)
	}
}

func TestToBytesOriginForm(t *testing.T) {
	u, _ := rawurl.Parse("http://example.com/path?q=1")
	r := New(u)
	out := string(r.ToBytes())
	if !strings.HasPrefix(out, "GET /path?q=1 HTTP/1.1\r\n") {
		t.Errorf("request line = %q", strings.SplitN(out, "\r\n", 2)[0])
	}
	if !strings.HasSuffix(out, "\r\n\r\n") {
		t.Errorf("expected blank line terminator, got %q", out)
	}
}

func TestToBytesSingleCRLFPerHeader(t *testing.T) {
	u, _ := rawurl.Parse("http://example.com/")
	r := New(u)
	out := string(r.ToBytes())
	if strings.Contains(out, "\r\n\r\n\r\n") {
		t.Errorf("too many CRLFs in %q", out)
	}
	headerBlock := strings.SplitN(out, "\r\n\r\n", 2)[0]
	for _, line := range strings.Split(headerBlock, "\r\n")[1:] {
		if line == "" {
			continue
		}
		if strings.Count(line, "\r\n") != 0 {
			t.Errorf("embedded CRLF in header line %q", line)
		}
	}
}
