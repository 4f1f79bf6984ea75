// Package transport provides the byte-stream abstraction layered over
// plain TCP, TLS-over-TCP, or a SOCKS5-tunneled TCP connection, plus the
// wire-read framing helpers (header block, chunked body) the response
// parser needs. Proxy dispatch is grounded on the teacher's
// connectViaSOCKS5Proxy/upgradeTLS/ConfigureSNI; the framing helpers are
// grounded on the Rust original's stream.rs byte-at-a-time reader.
package transport

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	netproxy "golang.org/x/net/proxy"

	"github.com/WhileEndless/go-rawhttp/v2/pkg/rawurl"
	"github.com/WhileEndless/go-rawhttp/v2/pkg/rherrors"
)

const (
	headerMaxLength    = 4096
	chunkMaxLineLength = 4096
)

// Options configures how Connect dials and upgrades a connection.
type Options struct {
	NoDelay        bool
	ConnectTimeout time.Duration
}

// Connect dispatches on the proxy scheme per the table in the transport
// design: no proxy dials the origin directly (TLS-wrapped for https);
// an http/https proxy dials the proxy's address in the clear, leaving
// absolute-form request serialization to do the rest; socks5/socks5h
// tunnels to the origin through the proxy and then TLS-wraps if the
// origin is https.
func Connect(ctx context.Context, target rawurl.URL, proxy *rawurl.URL, opts Options) (net.Conn, error) {
	if proxy == nil {
		if err := target.Validate(); err != nil {
			return nil, err
		}
		conn, err := dialTCP(ctx, target.SocketAddress(), opts.ConnectTimeout)
		if err != nil {
			return nil, err
		}
		if target.Scheme == "https" {
			return upgradeTLS(ctx, conn, target.Host)
		}
		trySetNoDelay(conn, opts.NoDelay)
		return conn, nil
	}

	switch proxy.Scheme {
	case "http", "https":
		if err := proxy.Validate(); err != nil {
			return nil, err
		}
		conn, err := dialTCP(ctx, proxy.SocketAddress(), opts.ConnectTimeout)
		if err != nil {
			return nil, err
		}
		trySetNoDelay(conn, opts.NoDelay)
		return conn, nil

	case "socks5", "socks5h":
		if err := target.Validate(); err != nil {
			return nil, err
		}
		conn, err := connectViaSOCKS5(ctx, *proxy, target, opts.ConnectTimeout)
		if err != nil {
			return nil, err
		}
		if target.Scheme == "https" {
			return upgradeTLS(ctx, conn, target.Host)
		}
		return conn, nil

	default:
		return nil, rherrors.NewUnsupportedProxyScheme(proxy.Scheme)
	}
}

func dialTCP(ctx context.Context, addr string, timeout time.Duration) (net.Conn, error) {
	d := &net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, rherrors.NewIO("dial", err)
	}
	return conn, nil
}

// trySetNoDelay is a no-op unless conn is a plain *net.TCPConn, mirroring
// the Rust original's set_nodelay call being meaningful only on the raw TCP
// variant.
func trySetNoDelay(conn net.Conn, enable bool) {
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(enable)
	}
}

// connectViaSOCKS5 tunnels to target through proxy, using hostname
// addressing (socks5h semantics: DNS happens at the proxy) and optional
// username/password authentication.
func connectViaSOCKS5(ctx context.Context, proxy rawurl.URL, target rawurl.URL, timeout time.Duration) (net.Conn, error) {
	if err := proxy.Validate(); err != nil {
		return nil, err
	}
	var auth *netproxy.Auth
	if proxy.HasUserinfo() {
		auth = &netproxy.Auth{User: proxy.User, Password: proxy.Password}
	}
	dialer, err := netproxy.SOCKS5("tcp", proxy.SocketAddress(), auth, &net.Dialer{Timeout: timeout})
	if err != nil {
		return nil, rherrors.NewSocks5(err)
	}
	ctxDialer, ok := dialer.(netproxy.ContextDialer)
	var conn net.Conn
	if ok {
		conn, err = ctxDialer.DialContext(ctx, "tcp", target.SocketAddress())
	} else {
		conn, err = dialer.Dial("tcp", target.SocketAddress())
	}
	if err != nil {
		return nil, rherrors.NewSocks5(err)
	}
	return conn, nil
}

// upgradeTLS wraps conn in a TLS client handshake using the system trust
// store, with SNI set to host.
func upgradeTLS(ctx context.Context, conn net.Conn, host string) (net.Conn, error) {
	cfg := &tls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
	}
	tlsConn := tls.Client(conn, cfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		if strings.Contains(err.Error(), "not a valid") || strings.Contains(err.Error(), "cannot validate") {
			return nil, rherrors.NewInvalidDnsName(host)
		}
		return nil, rherrors.New(rherrors.IO, "tls_handshake", err.Error(), err)
	}
	return tlsConn, nil
}

// SendMessage writes msg in full. net.Conn has no internal buffering to
// flush, unlike a bufio.Writer, so Write alone satisfies the "write and
// flush" contract.
func SendMessage(w io.Writer, msg []byte) error {
	if _, err := w.Write(msg); err != nil {
		return rherrors.NewIO("write", err)
	}
	return nil
}

// ReadResponseHead reads byte-by-byte until the literal sequence
// CR LF CR LF appears, returning everything read including the
// terminator. More than 4096 bytes without seeing it is HeaderTooBig;
// reaching end-of-stream first is HeaderIncomplete, or EmptyResponse when
// no byte arrived at all.
func ReadResponseHead(r *bufio.Reader) ([]byte, error) {
	var head []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			if len(head) == 0 {
				return nil, rherrors.NewEmptyResponse()
			}
			return nil, rherrors.NewHeaderIncomplete()
		}
		head = append(head, b)
		if len(head) > 4 && bytes.Equal(head[len(head)-4:], []byte("\r\n\r\n")) {
			return head, nil
		}
		if len(head) > headerMaxLength {
			return nil, rherrors.NewHeaderTooBig()
		}
	}
}

// ReadChunkedBody decodes an HTTP/1.1 chunked transfer body: a sequence of
// "<hex-size>[;ext]\r\n<payload>\r\n" chunks terminated by a zero-size
// chunk and a trailing CRLF. Chunk extensions are discarded. A trailer
// section is not accepted: anything other than CRLF right after the
// zero-size chunk is InvalidChunkEOL.
func ReadChunkedBody(r *bufio.Reader) ([]byte, error) {
	var body []byte
	for {
		size, err := readChunkLine(r)
		if err != nil {
			return nil, err
		}
		if size == 0 {
			break
		}
		buf := make([]byte, size)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, rherrors.NewIO("read_chunk", err)
		}
		body = append(body, buf...)
		if err := expectCRLF(r); err != nil {
			return nil, err
		}
	}
	// Trailers are not retained, but the terminating CRLF must still be
	// present and literal.
	if err := expectCRLF(r); err != nil {
		return nil, rherrors.NewInvalidChunkEOL()
	}
	return body, nil
}

func expectCRLF(r *bufio.Reader) error {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return rherrors.NewIO("read_crlf", err)
	}
	if buf[0] != '\r' || buf[1] != '\n' {
		return rherrors.NewInvalidChunkEOL()
	}
	return nil
}

// readChunkLine reads a chunk-size line (hex digits, optional ";ext",
// terminated by CRLF) and returns the parsed size.
func readChunkLine(r *bufio.Reader) (int, error) {
	var line []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, rherrors.NewIO("read_chunk_line", err)
		}
		line = append(line, b)
		if len(line) > 1 && line[len(line)-2] == '\r' && line[len(line)-1] == '\n' {
			break
		}
		pending := len(line)
		if b == '\r' {
			pending-- // may be the start of the terminating CRLF
		}
		if pending > chunkMaxLineLength {
			return 0, rherrors.NewChunkLineTooLong(len(line))
		}
	}
	withoutCRLF := line[:len(line)-2]
	withoutExt := withoutCRLF
	if idx := bytes.IndexByte(withoutCRLF, ';'); idx >= 0 {
		withoutExt = withoutCRLF[:idx]
	}
	size, err := strconv.ParseUint(strings.TrimSpace(string(withoutExt)), 16, 64)
	if err != nil {
		return 0, rherrors.NewInvalidChunkSize(err)
	}
	return int(size), nil
}
