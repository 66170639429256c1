package enrichment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestReader_Scrape(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("# Acme\nRockets."))
	}))
	defer srv.Close()

	reader := NewReaderWithClient(srv.URL, "reader-key", srv.Client())

	text, err := reader.Scrape(context.Background(), "https://acme.example.com")
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
	if text != "# Acme\nRockets." {
		t.Errorf("text = %q", text)
	}
	if gotPath != "/https://acme.example.com" {
		t.Errorf("path = %q, want the target URL appended to the base", gotPath)
	}
	if gotAuth != "Bearer reader-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestReader_Scrape_NoKeyNoAuthHeader(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("Authorization header should be absent without a key")
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	if _, err := NewReaderWithClient(srv.URL+"/", "", srv.Client()).Scrape(context.Background(), "https://x.example.com"); err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
}

func TestReader_Scrape_Non2xx(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusBadRequest, http.StatusTooManyRequests, http.StatusBadGateway} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		_, err := NewReaderWithClient(srv.URL, "", srv.Client()).Scrape(context.Background(), "https://x.example.com")
		if !errors.Is(err, ErrScrapeFailed) {
			t.Errorf("status %d: error = %v, want ErrScrapeFailed", status, err)
		}
		srv.Close()
	}
}

func TestReader_Scrape_NetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewReader(url, "", time.Second).Scrape(context.Background(), "https://x.example.com")
	if !errors.Is(err, ErrScrapeFailed) {
		t.Errorf("error = %v, want ErrScrapeFailed", err)
	}
}

func TestReader_Scrape_Timeout(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	client := srv.Client()
	client.Timeout = 50 * time.Millisecond

	_, err := NewReaderWithClient(srv.URL, "", client).Scrape(context.Background(), "https://slow.example.com")
	if !errors.Is(err, ErrScrapeFailed) {
		t.Errorf("error = %v, want ErrScrapeFailed", err)
	}
}
