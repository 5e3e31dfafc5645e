package kodi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func TestParseTarget(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw     string
		want    Target
		wantErr error
	}{
		{raw: "kodi:secret@media:8080", want: Target{Login: "kodi", Password: "secret", Host: "media", Port: 8080}},
		{raw: "kodi@media", want: Target{Login: "kodi", Host: "media", Port: DefaultPort}},
		{raw: "media:8080", want: Target{Host: "media", Port: 8080}},
		{raw: "kodi:pa:ss@media:1", want: Target{Login: "kodi", Password: "pa:ss", Host: "media", Port: 1}},
		{raw: "kodi:secret@", want: Target{Login: "kodi", Password: "secret", Host: DefaultHost, Port: DefaultPort}},
		{raw: "", want: Target{Host: DefaultHost, Port: DefaultPort}},
		{raw: "a@b@c", wantErr: ErrTooManyAt},
		{raw: "kodi@host:1:2", wantErr: ErrTooManyColon},
		{raw: "kodi@host:abc", wantErr: ErrBadPort},
		{raw: "kodi@host:0", wantErr: ErrBadPort},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			t.Parallel()
			got, err := ParseTarget(tc.raw)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ParseTarget(%q) error = %v, want %v", tc.raw, err, tc.wantErr)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ParseTarget(%q) mismatch (-want +got):\n%s", tc.raw, diff)
			}
		})
	}
}

func TestTargetString(t *testing.T) {
	t.Parallel()
	if got := (Target{Login: "kodi", Password: "secret", Host: "media", Port: 80}).String(); got != "kodi:***@media:80" {
		t.Errorf("String() = %q", got)
	}
	if got := (Target{Host: "media", Port: 80}).String(); got != "media:80" {
		t.Errorf("String() = %q", got)
	}
}

// targetFor points a Target at an httptest server.
func targetFor(t *testing.T, srv *httptest.Server, login, password string) Target {
	t.Helper()
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	port, _ := strconv.Atoi(u.Port())
	return Target{Login: login, Password: password, Host: u.Hostname(), Port: port}
}

func TestRefresh(t *testing.T) {
	t.Parallel()
	var got rpcRequest
	var user, pass string
	var authOK bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/jsonrpc" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Errorf("Content-Type = %q", ct)
		}
		user, pass, authOK = r.BasicAuth()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"tvshelf","jsonrpc":"2.0","result":"OK"}`))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	n := NewNotifier(targetFor(t, srv, "kodi", "secret"), zerolog.New(&buf))
	if !n.Refresh(context.Background()) {
		t.Fatalf("Refresh() = false, log: %s", buf.String())
	}
	if diff := cmp.Diff(rpcRequest{JSONRPC: "2.0", Method: "VideoLibrary.Scan", ID: "tvshelf"}, got); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
	if !authOK || user != "kodi" || pass != "secret" {
		t.Errorf("basic auth = %q/%q (%v)", user, pass, authOK)
	}
	if !strings.Contains(buf.String(), "Kodi Database update started") {
		t.Errorf("log = %s", buf.String())
	}
}

func TestRefreshWithoutCredentials(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); ok {
			t.Error("no credentials should be sent")
		}
	}))
	defer srv.Close()

	if !NewNotifier(targetFor(t, srv, "", ""), zerolog.Nop()).Refresh(context.Background()) {
		t.Error("Refresh() = false")
	}
}

func TestRefreshFailure(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	if NewNotifier(targetFor(t, srv, "kodi", "wrong"), zerolog.New(&buf)).Refresh(context.Background()) {
		t.Fatal("Refresh() = true on 401")
	}
	if !strings.Contains(buf.String(), "Failed to trigger Kodi Database update (401)") {
		t.Errorf("log = %s", buf.String())
	}
}

func TestRefreshUnreachable(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	target := targetFor(t, srv, "", "")
	srv.Close()

	var buf bytes.Buffer
	if NewNotifier(target, zerolog.New(&buf)).Refresh(context.Background()) {
		t.Fatal("Refresh() = true for a closed server")
	}
	if !strings.Contains(buf.String(), "Failed to trigger Kodi Database update") {
		t.Errorf("log = %s", buf.String())
	}
}
