package transport

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/WhileEndless/go-rawhttp/v2/pkg/rherrors"
)

func TestReadResponseHead(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello"
	r := bufio.NewReader(strings.NewReader(raw))
	head, err := ReadResponseHead(r)
	if err != nil {
		t.Fatalf("ReadResponseHead: %v", err)
	}
	want := "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\n"
	if string(head) != want {
		t.Errorf("head = %q, want %q", head, want)
	}
	rest, _ := r.ReadString(0)
	if rest != "hello" {
		t.Errorf("remaining = %q, want hello", rest)
	}
}

func TestReadResponseHeadIncomplete(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("HTTP/1.1 200 OK\r\n"))
	_, err := ReadResponseHead(r)
	if !errorIsKind(err, rherrors.HeaderIncomplete) {
		t.Errorf("expected HeaderIncomplete, got %v", err)
	}
}

func TestReadResponseHeadTooBig(t *testing.T) {
	huge := strings.Repeat("a", 5000) + "\r\n\r\n"
	r := bufio.NewReader(strings.NewReader(huge))
	_, err := ReadResponseHead(r)
	if !errorIsKind(err, rherrors.HeaderTooBig) {
		t.Errorf("expected HeaderTooBig, got %v", err)
	}
}

func TestReadResponseHeadExactly4096NotTooBig(t *testing.T) {
	// 4092 filler bytes + terminator = 4096 total, must NOT trip the cap.
	body := strings.Repeat("a", 4092) + "\r\n\r\n"
	r := bufio.NewReader(strings.NewReader(body))
	head, err := ReadResponseHead(r)
	if err != nil {
		t.Fatalf("expected success at exactly 4096 bytes, got %v", err)
	}
	if len(head) != 4096 {
		t.Fatalf("head length = %d, want 4096", len(head))
	}
}

func TestReadChunkedBody(t *testing.T) {
	raw := "5\r\nhello\r\n6\r\n world\r\n0\r\n\r\n"
	r := bufio.NewReader(strings.NewReader(raw))
	body, err := ReadChunkedBody(r)
	if err != nil {
		t.Fatalf("ReadChunkedBody: %v", err)
	}
	if string(body) != "hello world" {
		t.Errorf("body = %q, want %q", body, "hello world")
	}
}

func TestReadChunkedBodyWithExtension(t *testing.T) {
	raw := "5;ext=foo\r\nhello\r\n0\r\n\r\n"
	r := bufio.NewReader(strings.NewReader(raw))
	body, err := ReadChunkedBody(r)
	if err != nil {
		t.Fatalf("ReadChunkedBody: %v", err)
	}
	if string(body) != "hello" {
		t.Errorf("body = %q, want hello", body)
	}
}

func TestReadChunkedBodyInvalidEOL(t *testing.T) {
	raw := "5\r\nhelloXX0\r\n\r\n"
	r := bufio.NewReader(strings.NewReader(raw))
	_, err := ReadChunkedBody(r)
	if !errorIsKind(err, rherrors.InvalidChunkEOL) {
		t.Errorf("expected InvalidChunkEOL, got %v", err)
	}
}

func TestReadChunkLineTooLong(t *testing.T) {
	raw := strings.Repeat("f", 5000) + "\r\n"
	r := bufio.NewReader(strings.NewReader(raw))
	_, err := readChunkLine(r)
	if !errorIsKind(err, rherrors.ChunkLineTooLong) {
		t.Errorf("expected ChunkLineTooLong, got %v", err)
	}
}

func TestSendMessage(t *testing.T) {
	var buf bytes.Buffer
	if err := SendMessage(&buf, []byte("hi")); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if buf.String() != "hi" {
		t.Errorf("buf = %q", buf.String())
	}
}

func errorIsKind(err error, kind rherrors.Kind) bool {
	rerr, ok := err.(*rherrors.Error)
	return ok && rerr.Kind == kind
}
