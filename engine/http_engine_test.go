package engine

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/use-agent/clipper/config"
	"golang.org/x/text/encoding/korean"
)

const pageHTML = `<html><head><title> 한글 기사 </title></head><body><p>본문</p></body></html>`

func testFetchConfig() config.FetchConfig {
	return config.FetchConfig{Timeout: 5 * time.Second, MaxBodyBytes: 1 << 20}
}

func compress(t *testing.T, coding string, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	switch coding {
	case "gzip":
		w := gzip.NewWriter(&buf)
		w.Write(data)
		w.Close()
	case "br":
		w := brotli.NewWriter(&buf)
		w.Write(data)
		w.Close()
	case "zstd":
		w, err := zstd.NewWriter(&buf)
		if err != nil {
			t.Fatal(err)
		}
		w.Write(data)
		w.Close()
	default:
		buf.Write(data)
	}
	return buf.Bytes()
}

func TestHTTPEngineFetchDecodes(t *testing.T) {
	for _, coding := range []string{"", "gzip", "br", "zstd"} {
		t.Run("coding="+coding, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Accept-Encoding"); got != acceptEncoding {
					t.Errorf("Accept-Encoding = %q", got)
				}
				if !strings.HasPrefix(r.Header.Get("Accept-Language"), "ko-KR") {
					t.Errorf("Accept-Language = %q", r.Header.Get("Accept-Language"))
				}
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				if coding != "" {
					w.Header().Set("Content-Encoding", coding)
				}
				w.Write(compress(t, coding, []byte(pageHTML)))
			}))
			defer srv.Close()

			e := NewHTTPEngine(testFetchConfig())
			defer e.Close()
			page, err := e.Fetch(context.Background(), srv.URL+"/a", nil)
			if err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			if page.HTML != pageHTML {
				t.Errorf("HTML = %q", page.HTML)
			}
			if page.Title() != "한글 기사" {
				t.Errorf("Title = %q", page.Title())
			}
			if page.Encoding != "utf-8" || page.StatusCode != http.StatusOK {
				t.Errorf("Encoding = %q, StatusCode = %d", page.Encoding, page.StatusCode)
			}
		})
	}
}

func TestHTTPEngineTranscodesEUCKR(t *testing.T) {
	doc := `<html><head><meta charset="euc-kr"><title>한글</title></head><body>뉴스</body></html>`
	encoded, err := korean.EUCKR.NewEncoder().Bytes([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write(encoded)
	}))
	defer srv.Close()

	page, err := NewHTTPEngine(testFetchConfig()).Fetch(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if page.Encoding != "euc-kr" {
		t.Errorf("Encoding = %q, want euc-kr", page.Encoding)
	}
	if !strings.Contains(page.HTML, "<title>한글</title>") {
		t.Errorf("HTML not transcoded: %q", page.HTML)
	}
}

func TestHTTPEngineForceCharset(t *testing.T) {
	encoded, _ := korean.EUCKR.NewEncoder().Bytes([]byte("<title>기사</title>"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.Write(encoded)
	}))
	defer srv.Close()

	cfg := testFetchConfig()
	cfg.ForceCharset = "euc-kr"
	page, err := NewHTTPEngine(cfg).Fetch(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if page.Title() != "기사" {
		t.Errorf("Title = %q", page.Title())
	}
}

func TestHTTPEngineFetchErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})
	mux.HandleFunc("/json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testFetchConfig()
	cfg.Timeout = 100 * time.Millisecond
	e := NewHTTPEngine(cfg)
	for _, path := range []string{"/missing", "/json", "/slow"} {
		if _, err := e.Fetch(context.Background(), srv.URL+path, nil); err == nil {
			t.Errorf("Fetch(%s): expected error", path)
		}
	}
}

func TestHTTPEngineHeadersOverride(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(pageHTML))
	}))
	defer srv.Close()

	_, err := NewHTTPEngine(testFetchConfig()).Fetch(context.Background(), srv.URL, map[string]string{"User-Agent": "clipper-test"})
	if err != nil {
		t.Fatal(err)
	}
	if gotUA != "clipper-test" {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestNeedsRendering(t *testing.T) {
	long := strings.Repeat("본문 텍스트 ", 100)
	tests := []struct {
		name string
		html string
		want bool
	}{
		{"empty shell", `<html><body><div id="root"></div><script src="app.js"></script></body></html>`, true},
		{"noscript warning", `<html><body><noscript>Please enable JavaScript</noscript><p>` + long + `</p></body></html>`, true},
		{"server rendered", `<html><body><article><p>` + long + `</p></article></body></html>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Page{HTML: tt.html}).NeedsRendering(); got != tt.want {
				t.Errorf("NeedsRendering = %v, want %v", got, tt.want)
			}
		})
	}
}
