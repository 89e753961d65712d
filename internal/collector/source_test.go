package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		w.Write([]byte("node_load1 0.5\n"))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, time.Second)
	body, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if body != "node_load1 0.5\n" {
		t.Errorf("body = %q", body)
	}
}

func TestHTTPSource_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, time.Second).Fetch(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", statusErr.StatusCode)
	}
}

func TestHTTPSource_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewHTTPSource(srv.URL, 50*time.Millisecond).Fetch(context.Background())
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestHTTPSource_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if _, err := NewHTTPSource(url, time.Second).Fetch(context.Background()); err == nil {
		t.Fatal("expected connection error")
	}
}

func TestHTTPSource_OversizedBodyIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("node_load1 0.5\nnode_load5 12345\n"))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, time.Second)
	src.maxBody = 20
	if body, err := src.Fetch(context.Background()); err == nil {
		t.Fatalf("Fetch() = %q, want size error", body)
	}

	src.maxBody = 32
	body, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("body at the limit should be accepted: %v", err)
	}
	if body != "node_load1 0.5\nnode_load5 12345\n" {
		t.Errorf("body = %q", body)
	}
}
