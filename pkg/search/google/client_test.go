package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

func TestClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if e, g := "golang", r.URL.Query().Get("q"); e != g {
			t.Errorf("q: expected %q, got %q", e, g)
		}

		if e, g := "engine-id", r.URL.Query().Get("cx"); e != g {
			t.Errorf("cx: expected %q, got %q", e, g)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"title": "The Go Programming Language", "link": "https://go.dev/", "snippet": "Go is an open source programming language."},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("api-key", "engine-id", WithClientOptions(
		option.WithEndpoint(srv.URL),
		option.WithHTTPClient(srv.Client()),
	))

	results, err := client.Search(context.Background(), "golang")
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := 1, len(results); e != g {
		t.Fatalf("len(results): expected %d, got %d", e, g)
	}

	if e, g := "https://go.dev/", results[0].Link; e != g {
		t.Errorf("results[0].Link: expected %q, got %q", e, g)
	}

	if e, g := "Go is an open source programming language.", results[0].Summary; e != g {
		t.Errorf("results[0].Summary: expected %q, got %q", e, g)
	}
}
