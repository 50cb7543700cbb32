package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPublishedManifest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/core/packages/p-1.0-any-none-any.mhl.mip.json":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"name":"p","version":"1.0","build_number":2}`))
		case "/core/packages/corrupt.mhl.mip.json":
			w.Write([]byte("{not json"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL + "/core/packages"}
	ctx := context.Background()

	m, err := c.PublishedManifest(ctx, "p-1.0-any-none-any.mhl")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if m == nil || m.Name != "p" || m.BuildNumber != 2 {
		t.Fatalf("manifest=%+v", m)
	}

	m, err = c.PublishedManifest(ctx, "absent.mhl")
	if err != nil || m != nil {
		t.Fatalf("404 should be (nil, nil), got %+v %v", m, err)
	}

	if _, err := c.PublishedManifest(ctx, "corrupt.mhl"); err == nil {
		t.Fatal("corrupt metadata should error")
	}
}

func TestPublishedManifestNoBaseURL(t *testing.T) {
	var c *Client
	m, err := c.PublishedManifest(context.Background(), "x.mhl")
	if m != nil || err != nil {
		t.Fatalf("nil client should be a no-op, got %+v %v", m, err)
	}
	c = &Client{}
	m, err = c.PublishedManifest(context.Background(), "x.mhl")
	if m != nil || err != nil {
		t.Fatalf("empty base URL should be a no-op, got %+v %v", m, err)
	}
}
