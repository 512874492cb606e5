package download

import (
	"context"
	"encoding/pem"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFetchOK(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		io.WriteString(w, "payload")
	}))
	defer srv.Close()

	f := NewFetcher(Options{})
	resp, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "payload" {
		t.Errorf("body = %q, want payload", body)
	}
	if !strings.HasPrefix(gotUA, "nodekit/") {
		t.Errorf("User-Agent = %q, want nodekit/<version>", gotUA)
	}
}

func TestFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcher(Options{})
	_, err := f.Fetch(context.Background(), srv.URL+"/missing")
	var bad *BadStatusError
	if !errors.As(err, &bad) {
		t.Fatalf("Fetch = %v, want BadStatusError", err)
	}
	if bad.Code != http.StatusNotFound {
		t.Errorf("Code = %d, want 404", bad.Code)
	}
}

func TestFetchUnresolvableHost(t *testing.T) {
	f := NewFetcher(Options{})
	_, err := f.Fetch(context.Background(), "http://host.invalid.nodekit.test/file")
	if !errors.Is(err, ErrNetworkUnreachable) {
		t.Fatalf("Fetch = %v, want ErrNetworkUnreachable", err)
	}
	if !strings.Contains(err.Error(), "proxy") {
		t.Errorf("error %q should mention proxy/network", err)
	}
}

func TestProxyFuncExplicitWins(t *testing.T) {
	t.Setenv("http_proxy", "http://from-env:8080")

	fn, err := proxyFunc("http://explicit:3128")
	if err != nil {
		t.Fatal(err)
	}
	req, _ := http.NewRequest(http.MethodGet, "http://example.com/", nil)
	u, err := fn(req)
	if err != nil {
		t.Fatal(err)
	}
	if u == nil || u.Host != "explicit:3128" {
		t.Errorf("proxy = %v, want explicit:3128", u)
	}
}

func TestProxyFuncBadSchemeIgnored(t *testing.T) {
	fn, err := proxyFunc("socks5://nope:1080")
	if err != nil {
		t.Fatalf("bad proxy scheme should not be fatal: %v", err)
	}
	if fn != nil {
		t.Error("expected nil proxy func for unsupported scheme")
	}
}

func TestLoadCAFile(t *testing.T) {
	dir := t.TempDir()

	// Not a valid PEM: no certificates should be found.
	empty := filepath.Join(dir, "empty.pem")
	if err := os.WriteFile(empty, []byte("not a certificate"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadCAFile(empty); err == nil {
		t.Error("loadCAFile accepted a bundle with no certificates")
	}

	if _, err := loadCAFile(filepath.Join(dir, "does-not-exist.pem")); err == nil {
		t.Error("loadCAFile accepted a missing file")
	}

	// A real certificate from a test TLS server parses and loads.
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()
	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: srv.Certificate().Raw,
	})
	bundle := filepath.Join(dir, "bundle.pem")
	if err := os.WriteFile(bundle, pemBytes, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadCAFile(bundle); err != nil {
		t.Errorf("loadCAFile(%s): %v", bundle, err)
	}
}
