package httpjson

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	providertypes "edutune/pkg/provider/types"
)

func TestGetDecodesJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != acceptMediaType {
			t.Errorf("accept = %q, want %q", got, acceptMediaType)
		}
		if got := r.Header.Get("X-Test"); got != "1" {
			t.Errorf("x-test = %q, want 1", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"value":"ok"}`))
	}))
	t.Cleanup(server.Close)

	var out struct {
		Value string `json:"value"`
	}
	client := New("test", time.Second)
	if err := client.Get(context.Background(), server.URL, http.Header{"X-Test": {"1"}}, &out); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if out.Value != "ok" {
		t.Fatalf("value = %q, want %q", out.Value, "ok")
	}
}

func TestGetReportsStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, strings.Repeat("x", 500), http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	err := New("test", time.Second).Get(context.Background(), server.URL, nil, nil)
	if err == nil {
		t.Fatal("expected status error")
	}
	if got := providertypes.HTTPStatus(err); got != http.StatusBadGateway {
		t.Fatalf("HTTPStatus(%v) = %d, want %d", err, got, http.StatusBadGateway)
	}
	if len(err.Error()) > errorBodyLimit+50 {
		t.Fatalf("error body not truncated: %d bytes", len(err.Error()))
	}
}

func TestGetRejectsInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	t.Cleanup(server.Close)

	var out map[string]any
	if err := New("test", time.Second).Get(context.Background(), server.URL, nil, &out); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestGetHonorsTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	start := time.Now()
	err := New("test", 50*time.Millisecond).Get(context.Background(), server.URL, nil, nil)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("request was not bounded by client timeout")
	}
}
