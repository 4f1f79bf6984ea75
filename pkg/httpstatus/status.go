// Package httpstatus provides the status line value type: version, numeric
// code, and reason phrase, plus the IANA reason-phrase table and the
// classification predicates spec'd on the code.
package httpstatus

import (
	"strconv"
	"strings"

	"github.com/WhileEndless/go-rawhttp/v2/pkg/rherrors"
)

// Code is a validated HTTP status code in [100, 600).
type Code uint16

// FromU16 rejects anything outside [100, 600).
func FromU16(code uint16) (Code, error) {
	if code < 100 || code >= 600 {
		return 0, rherrors.NewInvalidStatusCode(int(code))
	}
	return Code(code), nil
}

func (c Code) AsU16() uint16 { return uint16(c) }

func (c Code) IsInfo() bool       { return c >= 100 && c < 200 }
func (c Code) IsSuccess() bool    { return c >= 200 && c < 300 }
func (c Code) IsRedirect() bool   { return c >= 300 && c < 400 }
func (c Code) IsClientErr() bool  { return c >= 400 && c < 500 }
func (c Code) IsServerErr() bool  { return c >= 500 && c < 600 }
func (c Code) IsNoBody() bool     { return c.IsInfo() || c == 204 || c == 304 }

func (c Code) String() string {
	return strconv.Itoa(int(c))
}

// Reason returns the canonical IANA phrase for known codes, false otherwise.
func (c Code) Reason() (string, bool) {
	r, ok := reasons[uint16(c)]
	return r, ok
}

var reasons = map[uint16]string{
	100: "Continue",
	101: "Switching Protocols",
	102: "Processing",
	103: "Early Hints",
	200: "OK",
	201: "Created",
	202: "Accepted",
	203: "Non Authoritative Information",
	204: "No Content",
	205: "Reset Content",
	206: "Partial Content",
	207: "Multi-Status",
	208: "Already Reported",
	226: "IM Used",
	300: "Multiple Choices",
	301: "Moved Permanently",
	302: "Found",
	303: "See Other",
	304: "Not Modified",
	305: "Use Proxy",
	306: "Switch Proxy",
	307: "Temporary Redirect",
	308: "Permanent Redirect",
	400: "Bad Request",
	401: "Unauthorized",
	402: "Payment Required",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	406: "Not Acceptable",
	407: "Proxy Authentication Required",
	408: "Request Timeout",
	409: "Conflict",
	410: "Gone",
	411: "Length Required",
	412: "Precondition Failed",
	413: "Payload Too Large",
	414: "URI Too Long",
	415: "Unsupported Media Type",
	416: "Range Not Satisfiable",
	417: "Expectation Failed",
	418: "I'm a teapot",
	421: "Misdirected Request",
	422: "Unprocessable Entity",
	423: "Locked",
	424: "Failed Dependency",
	425: "Too Early",
	426: "Upgrade Required",
	428: "Precondition Required",
	429: "Too Many Requests",
	431: "Request Header Fields Too Large",
	451: "Unavailable For Legal Reasons",
	500: "Internal Server Error",
	501: "Not Implemented",
	502: "Bad Gateway",
	503: "Service Unavailable",
	504: "Gateway Timeout",
	505: "HTTP Version Not Supported",
	506: "Variant Also Negotiates",
	507: "Insufficient Storage",
	508: "Loop Detected",
	510: "Not Extended",
	511: "Network Authentication Required",
}

// Status is a full status line: version, code, reason.
type Status struct {
	Version string
	Code    Code
	Reason  string
}

// Parse splits a status line "<Version> SP <Code> SP <Reason>" with
// whitespace-tolerant splitting on up to 3 fields. A missing reason falls
// back to the canonical phrase, or "Unknown".
func Parse(line string) (Status, error) {
	line = strings.TrimSpace(line)
	version, rest, _ := strings.Cut(line, " ")
	if version == "" {
		return Status{}, rherrors.NewEmptyVersion()
	}
	codeText, reasonText, _ := strings.Cut(strings.TrimSpace(rest), " ")
	if codeText == "" {
		return Status{}, rherrors.NewEmptyStatus()
	}
	n, err := strconv.ParseUint(codeText, 10, 16)
	if err != nil {
		return Status{}, rherrors.NewParseInt(err)
	}
	code, err := FromU16(uint16(n))
	if err != nil {
		return Status{}, err
	}

	var reason string
	if r := strings.TrimSpace(reasonText); r != "" {
		reason = r
	} else if r, ok := code.Reason(); ok {
		reason = r
	} else {
		reason = "Unknown"
	}

	return Status{Version: version, Code: code, Reason: reason}, nil
}
