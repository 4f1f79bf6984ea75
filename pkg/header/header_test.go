package header

import "testing"

func TestSetGetCaseInsensitive(t *testing.T) {
	h := New()
	h.Set("Host", "example.com")
	for _, name := range []string{"Host", "host", "HOST", "HoSt"} {
		v, ok := h.Get(name)
		if !ok || v != "example.com" {
			t.Errorf("Get(%q) = %q,%v want example.com,true", name, v, ok)
		}
	}
}

func TestSetReplaces(t *testing.T) {
	h := New()
	h.Set("X-Foo", "1")
	h.Set("X-Foo", "2")
	v, _ := h.Get("X-Foo")
	if v != "2" {
		t.Errorf("Get(X-Foo) = %q, want 2", v)
	}
	if len(h.Names()) != 1 {
		t.Errorf("Names() = %v, want single entry", h.Names())
	}
}

func TestRemove(t *testing.T) {
	h := New()
	h.Set("X-Foo", "1")
	if !h.Remove("x-foo") {
		t.Fatalf("Remove should report true")
	}
	if _, ok := h.Get("X-Foo"); ok {
		t.Errorf("header should be gone")
	}
	if h.Remove("x-foo") {
		t.Errorf("second Remove should report false")
	}
}

func TestDefaultHTTP(t *testing.T) {
	h := DefaultHTTP("example.com")
	host, _ := h.Get("Host")
	conn, _ := h.Get("Connection")
	if host != "example.com" || conn != "Close" {
		t.Errorf("DefaultHTTP = Host:%q Connection:%q", host, conn)
	}
}

func TestContentLength(t *testing.T) {
	h := New()
	h.Set("Content-Length", "100")
	n, present, err := h.ContentLength()
	if err != nil || !present || n != 100 {
		t.Errorf("ContentLength = %d,%v,%v", n, present, err)
	}

	h2 := New()
	_, present, err = h2.ContentLength()
	if err != nil || present {
		t.Errorf("ContentLength absent should be 0,false,nil: got present=%v err=%v", present, err)
	}
}

func TestArray(t *testing.T) {
	h := New()
	h.Set("Accept-Encoding", "compress, gzip")
	h.Set("Accept-Language", "da, en-gb;q=0.8, , en;q=0.7")

	got := h.Array("accept-encoding")
	want := []string{"compress", "gzip"}
	if len(got) != len(want) {
		t.Fatalf("Array = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Array[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if len(h.Array("accept-language")) != 3 {
		t.Errorf("empty segment should be dropped, got %v", h.Array("accept-language"))
	}
}

func TestQualityValues(t *testing.T) {
	h := New()
	h.Set("Accept-Language", "da, en-gb;q=0.8, en;q=0.7")
	qs := h.QualityValues("accept-language")
	if len(qs) != 3 {
		t.Fatalf("QualityValues = %v", qs)
	}
	if qs[0].Name != "da" || qs[0].Q != 1.0 {
		t.Errorf("first entry should default to q=1.0, got %+v", qs[0])
	}
}

func TestParseBlock(t *testing.T) {
	block := "Date: Sat, 11 Jan 2003 02:44:04 GMT\r\nContent-Type: text/html\r\nContent-Length: 100\r\n"
	h, err := ParseBlock(block)
	if err != nil {
		t.Fatalf("ParseBlock: %v", err)
	}
	if v, _ := h.Get("content-type"); v != "text/html" {
		t.Errorf("Content-Type = %q", v)
	}
	if v, _ := h.Get("date"); v != "Sat, 11 Jan 2003 02:44:04 GMT" {
		t.Errorf("Date = %q", v)
	}
}

func TestParseBlockMalformed(t *testing.T) {
	if _, err := ParseBlock("not-a-header-line\r\n"); err == nil {
		t.Errorf("expected error for missing ':'")
	}
}

func TestIterationOrderPreserved(t *testing.T) {
	h := New()
	h.Set("B", "2")
	h.Set("A", "1")
	h.Set("C", "3")
	names := h.Names()
	want := []string{"B", "A", "C"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names() = %v, want %v", names, want)
		}
	}
}
