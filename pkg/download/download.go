// Package download issues the HTTP GETs for release artifacts, with
// proxy and custom-CA support and errors classified so the installer
// can tell a network problem from a bad mirror.
package download

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"nodekit/pkg/version"
)

// ErrNetworkUnreachable means the host could not be resolved. This is
// almost always a connectivity or proxy problem on the caller's side.
var ErrNetworkUnreachable = errors.New("network unreachable")

// ErrTransport covers every other transport-level failure.
var ErrTransport = errors.New("transport error")

// BadStatusError reports a non-200 response.
type BadStatusError struct {
	Code int
	URL  string
}

func (e *BadStatusError) Error() string {
	return fmt.Sprintf("%d status code downloading %s", e.Code, e.URL)
}

// Options configure a Fetcher.
type Options struct {
	// Proxy is an explicit proxy URL. Takes precedence over the
	// http_proxy/https_proxy environment variables.
	Proxy string
	// CAFile is a PEM bundle of additional trusted certificates.
	CAFile string
}

// Fetcher is a reusable downloader. The underlying HTTP client is
// built once on first use.
type Fetcher struct {
	opts   Options
	once   sync.Once
	client *http.Client
	err    error
}

func NewFetcher(opts Options) *Fetcher {
	return &Fetcher{opts: opts}
}

// Fetch issues a GET for url and returns the open response. The caller
// owns resp.Body. A non-200 status is returned as *BadStatusError with
// the body already closed.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*http.Response, error) {
	f.once.Do(func() {
		f.client, f.err = buildClient(f.opts)
	})
	if f.err != nil {
		return nil, f.err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Connection", "keep-alive")

	slog.Debug("http request", "url", rawURL)
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(rawURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &BadStatusError{Code: resp.StatusCode, URL: rawURL}
	}
	return resp, nil
}

func classify(rawURL string, err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("%w: could not resolve host for %s; this is most likely a network connectivity or proxy configuration problem", ErrNetworkUnreachable, rawURL)
	}
	return fmt.Errorf("%w: %v", ErrTransport, err)
}

func buildClient(opts Options) (*http.Client, error) {
	proxyFn, err := proxyFunc(opts.Proxy)
	if err != nil {
		return nil, err
	}

	tlsConfig := &tls.Config{}
	if opts.CAFile != "" {
		pool, err := loadCAFile(opts.CAFile)
		if err != nil {
			return nil, err
		}
		tlsConfig.RootCAs = pool
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 proxyFn,
			DialContext:           dialer.DialContext,
			TLSClientConfig:       tlsConfig,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}, nil
}

// proxyFunc picks the proxy for outgoing requests: the explicit option
// wins, then the usual environment variables. A proxy with a scheme
// other than http/https is ignored with a warning instead of failing
// the download outright.
func proxyFunc(explicit string) (func(*http.Request) (*url.URL, error), error) {
	candidate := explicit
	if candidate == "" {
		for _, name := range []string{"https_proxy", "HTTPS_PROXY", "http_proxy", "HTTP_PROXY"} {
			if v := os.Getenv(name); v != "" {
				candidate = v
				break
			}
		}
	}
	if candidate == "" {
		return http.ProxyFromEnvironment, nil
	}

	u, err := url.Parse(candidate)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		slog.Warn("ignoring proxy with unsupported scheme", "proxy", candidate)
		return nil, nil
	}
	return http.ProxyURL(u), nil
}

// loadCAFile reads a PEM bundle and splits it on certificate boundary
// markers, appending each certificate to a pool layered over the system
// roots.
func loadCAFile(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}

	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}

	const boundary = "-----END CERTIFICATE-----"
	added := 0
	for _, chunk := range strings.SplitAfter(string(data), boundary) {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		if pool.AppendCertsFromPEM([]byte(chunk)) {
			added++
		}
	}
	if added == 0 {
		return nil, fmt.Errorf("no certificates found in %s", path)
	}
	slog.Debug("loaded extra CA certificates", "file", path, "count", added)
	return pool, nil
}
