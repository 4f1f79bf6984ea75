// Package rawurl is the URL value type used throughout the client engine:
// scheme, host, port, path, query, fragment and optional userinfo, plus the
// derived accessors the wire layer needs (host header, request target,
// socket address). It is a thin wrapper over net/url, the same parser the
// teacher's proxy-URL helper used.
package rawurl

import (
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/WhileEndless/go-rawhttp/v2/pkg/rherrors"
)

// defaultPorts is consulted when a URL omits an explicit port.
var defaultPorts = map[string]int{
	"http":    80,
	"https":   443,
	"socks5":  1080,
	"socks5h": 1080,
}

// URL is a parsed target or proxy address.
type URL struct {
	Scheme   string
	Host     string
	Port     int
	Path     string
	Query    string
	Fragment string
	User     string
	Password string
	hasAuth  bool
}

// Parse parses an absolute URL. Scheme, host, and (optionally) a numeric
// port, userinfo, path, query and fragment are all recognized per RFC 3986,
// delegated to net/url.
func Parse(raw string) (URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return URL{}, rherrors.NewParseURL("parse_url", err)
	}
	return fromNetURL(u)
}

func fromNetURL(u *url.URL) (URL, error) {
	out := URL{
		Scheme:   strings.ToLower(u.Scheme),
		Path:     u.Path,
		Query:    u.RawQuery,
		Fragment: u.Fragment,
	}
	if u.User != nil {
		out.hasAuth = true
		out.User = u.User.Username()
		out.Password, _ = u.User.Password()
	}

	host := u.Host
	if host == "" {
		out.Host = ""
		return out, nil
	}
	if h, p, err := net.SplitHostPort(host); err == nil {
		out.Host = h
		n, err := strconv.Atoi(p)
		if err != nil {
			return URL{}, rherrors.NewParseURL("parse_port", err)
		}
		out.Port = n
	} else {
		out.Host = host
		out.Port = defaultPorts[out.Scheme]
	}
	return out, nil
}

// IsAbsolute reports whether raw parses to a URL with a scheme and host —
// used by the redirect resolver to distinguish a Location that is a full
// URL from one that is a bare path.
func IsAbsolute(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.IsAbs() && u.Host != ""
}

// ResolveReference resolves a Location value against the current URL: an
// absolute Location is used as-is, otherwise it is treated as a new path
// (optionally with query/fragment) on the current host.
func (u URL) ResolveReference(location string) (URL, error) {
	if IsAbsolute(location) {
		return Parse(location)
	}
	base := &url.URL{
		Scheme: u.Scheme,
		Host:   u.hostPort(),
	}
	ref, err := url.Parse(location)
	if err != nil {
		return URL{}, rherrors.NewParseURL("parse_location", err)
	}
	resolved := base.ResolveReference(ref)
	out, err := fromNetURL(resolved)
	if err != nil {
		return URL{}, err
	}
	out.User, out.Password, out.hasAuth = u.User, u.Password, u.hasAuth
	return out, nil
}

func (u URL) hostPort() string {
	if u.Port != 0 && u.Port != defaultPorts[u.Scheme] {
		return net.JoinHostPort(u.Host, strconv.Itoa(u.Port))
	}
	return u.Host
}

// HasUserinfo reports whether a username (possibly with empty password) was
// present in the URL.
func (u URL) HasUserinfo() bool {
	return u.hasAuth
}

// HostHeader is host, or host:port when the port is not the scheme default.
func (u URL) HostHeader() string {
	if u.Port != 0 && u.Port != defaultPorts[u.Scheme] {
		return net.JoinHostPort(u.Host, strconv.Itoa(u.Port))
	}
	return u.Host
}

// RequestTarget renders origin-form ("/path?query#fragment") or, when
// absoluteForm is requested (forward HTTP proxy), the full URL including
// scheme and authority.
func (u URL) RequestTarget(absoluteForm bool) string {
	path := u.Path
	if path == "" {
		path = "/"
	}
	suffix := path
	if u.Query != "" {
		suffix += "?" + u.Query
	}
	if u.Fragment != "" {
		suffix += "#" + u.Fragment
	}
	if !absoluteForm {
		return suffix
	}
	return u.Scheme + "://" + u.HostHeader() + suffix
}

// SocketAddress is the "host:port" string ready for net.Dial.
func (u URL) SocketAddress() string {
	return net.JoinHostPort(u.Host, strconv.Itoa(u.Port))
}

// Validate enforces the transport invariant: a URL used to dial a
// connection must carry a non-empty host.
func (u URL) Validate() error {
	if u.Host == "" {
		return rherrors.NewEmptyHost()
	}
	return nil
}

func (u URL) String() string {
	var b strings.Builder
	if u.Scheme != "" {
		b.WriteString(u.Scheme)
		b.WriteString("://")
	}
	if u.hasAuth {
		b.WriteString(u.User)
		if u.Password != "" {
			b.WriteByte(':')
			b.WriteString(u.Password)
		}
		b.WriteByte('@')
	}
	b.WriteString(u.HostHeader())
	b.WriteString(u.RequestTarget(false))
	return b.String()
}
