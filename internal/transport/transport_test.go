package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tr, err := New(Config{})
	require.NoError(t, err)

	status, body, err := tr.Get(context.Background(), srv.URL, Credential{Token: "abc123"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Bearer abc123", gotAuth)
	assert.Contains(t, string(body), "ok")
}

func TestPostSendsJSONContentType(t *testing.T) {
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	tr, err := New(Config{})
	require.NoError(t, err)

	status, _, err := tr.Post(context.Background(), srv.URL, map[string]string{"a": "b"}, NoCredential)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "application/json", gotContentType)
}

func TestOversizeResponseFailsWithNoPartialBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(w, strings.NewReader(strings.Repeat("x", 100)))
	}))
	defer srv.Close()

	tr, err := New(Config{MaxResponseBytes: 10})
	require.NoError(t, err)

	_, body, err := tr.Get(context.Background(), srv.URL, NoCredential)
	require.Error(t, err)
	assert.Nil(t, body)
}

func TestBuildQueryURLEncodesAndJoins(t *testing.T) {
	built, err := BuildQueryURL("https://example.org/votes", map[string]string{"algo": "ACVP-TDES-ECB"})
	require.NoError(t, err)
	assert.Contains(t, built, "algo=ACVP-TDES-ECB")
	assert.True(t, strings.HasPrefix(built, "https://example.org/votes?"))
}

func TestBuildQueryURLRejectsOversizeResult(t *testing.T) {
	huge := strings.Repeat("a", 5000)
	_, err := BuildQueryURL("https://example.org/votes", map[string]string{"q": huge})
	require.Error(t, err)
}

func TestUserAgentHeaderSent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	tr, err := New(Config{UserAgent: "libacvp/1.0;linux/6.0;amd64;generic;gc/1.23"})
	require.NoError(t, err)

	_, _, err = tr.Get(context.Background(), srv.URL, NoCredential)
	require.NoError(t, err)
	assert.Equal(t, "libacvp/1.0;linux/6.0;amd64;generic;gc/1.23", gotUA)
}
