// Package header implements a case-insensitive header multimap with the
// typed accessors a wire-level HTTP client needs: content-length, a
// comma-split array form, and quality-factor parsing.
package header

import (
	"sort"
	"strconv"
	"strings"

	"github.com/WhileEndless/go-rawhttp/v2/pkg/rherrors"
)

// entry keeps the original-cased name alongside its value so iteration can
// render headers the way they were set, while lookups stay case-insensitive.
type entry struct {
	name  string
	value string
}

// Headers is a case-insensitive name -> value map. Insert replaces any
// existing value for that name; insertion order is preserved for iteration.
type Headers struct {
	order []string // lower-cased keys, insertion order
	m     map[string]entry
}

// New returns an empty header set.
func New() *Headers {
	return &Headers{m: make(map[string]entry)}
}

// DefaultHTTP seeds the Host and Connection: Close headers a freshly built
// request carries.
func DefaultHTTP(hostHeader string) *Headers {
	h := New()
	h.Set("Host", hostHeader)
	h.Set("Connection", "Close")
	return h
}

func lower(s string) string {
	return strings.ToLower(s)
}

// Set inserts or replaces the value for name.
func (h *Headers) Set(name, value string) {
	key := lower(name)
	if _, exists := h.m[key]; !exists {
		h.order = append(h.order, key)
	}
	h.m[key] = entry{name: name, value: value}
}

// Get looks up a header case-insensitively.
func (h *Headers) Get(name string) (string, bool) {
	e, ok := h.m[lower(name)]
	if !ok {
		return "", false
	}
	return e.value, true
}

// Remove deletes a header case-insensitively. Reports whether it was present.
func (h *Headers) Remove(name string) bool {
	key := lower(name)
	if _, ok := h.m[key]; !ok {
		return false
	}
	delete(h.m, key)
	for i, k := range h.order {
		if k == key {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	return true
}

// Names returns the header names in insertion order, each in its
// originally-set casing.
func (h *Headers) Names() []string {
	names := make([]string, 0, len(h.order))
	for _, key := range h.order {
		names = append(names, h.m[key].name)
	}
	return names
}

// Each calls fn for every header in insertion order.
func (h *Headers) Each(fn func(name, value string)) {
	for _, key := range h.order {
		e := h.m[key]
		fn(e.name, e.value)
	}
}

// Clone returns a deep copy.
func (h *Headers) Clone() *Headers {
	c := New()
	h.Each(func(name, value string) {
		c.Set(name, value)
	})
	return c
}

// ContentLength parses the Content-Length header as a non-negative integer.
func (h *Headers) ContentLength() (int64, bool, error) {
	v, ok := h.Get("Content-Length")
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || n < 0 {
		return 0, true, rherrors.NewParseInt(err)
	}
	return n, true, nil
}

// Array splits the named header's value on ',', trimming whitespace and
// dropping empty segments.
func (h *Headers) Array(name string) []string {
	v, ok := h.Get(name)
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// QValue is one element of a quality-factor header (e.g. Accept-Language).
type QValue struct {
	Name string
	Q    float64
}

// QualityValues parses a header such as "da, en-gb;q=0.8, en;q=0.7" into
// name/quality pairs. A missing ";q=" defaults to 1.0. Results are sorted by
// descending quality, stable on original order for ties.
func (h *Headers) QualityValues(name string) []QValue {
	raw := h.Array(name)
	out := make([]QValue, 0, len(raw))
	for _, item := range raw {
		q := 1.0
		n := item
		if idx := strings.Index(item, ";"); idx >= 0 {
			n = strings.TrimSpace(item[:idx])
			params := item[idx+1:]
			for _, p := range strings.Split(params, ";") {
				p = strings.TrimSpace(p)
				if strings.HasPrefix(p, "q=") {
					if parsed, err := strconv.ParseFloat(strings.TrimSpace(p[2:]), 64); err == nil {
						q = parsed
					}
				}
			}
		}
		out = append(out, QValue{Name: n, Q: q})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Q > out[j].Q })
	return out
}

// ParseBlock parses a CRLF- or LF-separated block of "name: value" lines,
// as found after the status line in a response head. A line with no ':'
// yields HeaderWrongName; an empty name yields HeaderWrongNameStart.
func ParseBlock(block string) (*Headers, error) {
	h := New()
	lines := strings.Split(strings.ReplaceAll(block, "\r\n", "\n"), "\n")
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		idx := strings.Index(line, ":")
		if idx < 0 {
			return nil, rherrors.NewHeaderWrongName()
		}
		name := strings.TrimSpace(line[:idx])
		value := strings.TrimLeft(line[idx+1:], " \t")
		value = strings.TrimRight(value, " \t")
		if name == "" {
			return nil, rherrors.NewHeaderWrongNameStart()
		}
		h.Set(name, value)
	}
	return h, nil
}
