// Package transport is the HTTP verb layer every ACVP call goes
// through: TLS setup (including optional mTLS), bearer-credential
// attachment, User-Agent, and a capped response buffer. It mirrors the
// teacher's pkg/apiclient.Client.do in shape but keeps no client-level
// token field — credential choice is an explicit per-call parameter,
// not mutable client state (spec.md §9 Open Question resolution).
package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/acvp-tools/libacvp-go/pkg/acvp"
)

// ATTR_URL_MAX (named per spec.md §4.G) bounds a built query URL.
const attrURLMax = 4096

// Credential selects which bearer token a single call presents.
type Credential struct {
	Token     string
	SingleUse bool
}

// NoCredential is the zero Credential: no Authorization header is sent.
var NoCredential = Credential{}

// Config configures a Transport's TLS and buffering behavior.
type Config struct {
	CAFile           string
	ClientCertFile   string
	ClientKeyFile    string
	MaxResponseBytes int
	UserAgent        string
	Timeout          time.Duration
}

// Transport issues HTTP requests over a TLS configuration fixed at
// construction time. One Transport is safe for concurrent use by
// multiple sessions; it carries no per-session state.
type Transport struct {
	client           *http.Client
	maxResponseBytes int
	userAgent        string
}

// New builds a Transport from cfg. TLS 1.2 is the floor and server
// verification is always on, matching spec.md §4.G — there is no way to
// construct a Transport that skips verification.
func New(cfg Config) (*Transport, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if cfg.CAFile != "" {
		pool, err := loadCAPool(cfg.CAFile)
		if err != nil {
			return nil, acvp.Errorf(acvp.InvalidArg, "transport.New", err)
		}
		tlsConfig.RootCAs = pool
	}

	if cfg.ClientCertFile != "" || cfg.ClientKeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCertFile, cfg.ClientKeyFile)
		if err != nil {
			return nil, acvp.Errorf(acvp.InvalidArg, "transport.New", fmt.Errorf("loading client cert/key: %w", err))
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	maxResp := cfg.MaxResponseBytes
	if maxResp == 0 {
		maxResp = acvp.DefaultMaxResponseBytes
	}

	return &Transport{
		client: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{TLSClientConfig: tlsConfig},
		},
		maxResponseBytes: maxResp,
		userAgent:        cfg.UserAgent,
	}, nil
}

func loadCAPool(caFile string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("reading CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", caFile)
	}
	return pool, nil
}

// Get issues a GET request.
func (t *Transport) Get(ctx context.Context, rawURL string, cred Credential) (status int, respBody []byte, err error) {
	return t.do(ctx, http.MethodGet, rawURL, nil, cred)
}

// Post issues a POST request with a JSON body.
func (t *Transport) Post(ctx context.Context, rawURL string, body any, cred Credential) (status int, respBody []byte, err error) {
	return t.doJSON(ctx, http.MethodPost, rawURL, body, cred)
}

// Put issues a PUT request with a JSON body.
func (t *Transport) Put(ctx context.Context, rawURL string, body any, cred Credential) (status int, respBody []byte, err error) {
	return t.doJSON(ctx, http.MethodPut, rawURL, body, cred)
}

func (t *Transport) doJSON(ctx context.Context, method, rawURL string, body any, cred Credential) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, acvp.Errorf(acvp.JsonErr, "transport.doJSON", err)
		}
		reader = bytes.NewReader(data)
	}
	return t.do(ctx, method, rawURL, reader, cred)
}

func (t *Transport) do(ctx context.Context, method, rawURL string, body io.Reader, cred Credential) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return 0, nil, acvp.Errorf(acvp.InvalidArg, "transport.do", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	if cred.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cred.Token)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, nil, acvp.Errorf(acvp.TransportFail, "transport.do", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := readCapped(resp.Body, t.maxResponseBytes)
	if err != nil {
		return 0, nil, acvp.Errorf(acvp.TransportFail, "transport.do", err)
	}

	return resp.StatusCode, respBody, nil
}

// readCapped reads at most max+1 bytes: reading one byte past the cap
// lets it distinguish "exactly at the cap" from "oversize" without
// buffering an unbounded response first (spec.md §4.G Scenario 5).
func readCapped(r io.Reader, max int) ([]byte, error) {
	limited := io.LimitReader(r, int64(max)+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(data) > max {
		return nil, fmt.Errorf("response body exceeds %d bytes", max)
	}
	return data, nil
}

// BuildQueryURL appends params to base as a percent-encoded query
// string, rejecting the result if it would exceed ATTR_URL_MAX bytes
// (spec.md §4.G).
func BuildQueryURL(base string, params map[string]string) (string, error) {
	if len(params) == 0 {
		if len(base) > attrURLMax {
			return "", acvp.Errorf(acvp.InvalidArg, "transport.BuildQueryURL", fmt.Errorf("url exceeds %d bytes", attrURLMax))
		}
		return base, nil
	}

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	built := base + sep + values.Encode()
	if len(built) > attrURLMax {
		return "", acvp.Errorf(acvp.InvalidArg, "transport.BuildQueryURL", fmt.Errorf("url exceeds %d bytes", attrURLMax))
	}
	return built, nil
}
