package search

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bornholm/ownsearch/pkg/search"
	"github.com/bornholm/ownsearch/pkg/search/remote"
	"github.com/bornholm/ownsearch/pkg/widget"
	"github.com/pkg/errors"
)

func newTestEndpoint(t *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.PostFormValue(remote.QueryField)

		response := search.NewResponse([]search.Result{
			{Title: "Result for " + query, Link: "http://example.com/" + query, Summary: "About " + query},
		})

		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(response); err != nil {
			t.Errorf("%+v", errors.WithStack(err))
		}
	}))

	t.Cleanup(server.Close)

	return server
}

func TestInteractive(t *testing.T) {
	endpoint := newTestEndpoint(t)

	client, err := remote.NewClient(endpoint.URL)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	var out, errOut bytes.Buffer

	controller := widget.NewController(client, widget.NewTerminalView(&out, &errOut))

	input := strings.NewReader("\ngopher\n")

	if err := Interactive(context.Background(), controller, input); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := widget.ErrEmptyQuery.Message+"\n", errOut.String(); e != g {
		t.Errorf("alert: expected %q, got %q", e, g)
	}

	for _, expected := range []string{"Searching...", "Result for gopher", "http://example.com/gopher"} {
		if !strings.Contains(out.String(), expected) {
			t.Errorf("expected output to contain %q, got:\n%s", expected, out.String())
		}
	}
}

func TestExport(t *testing.T) {
	endpoint := newTestEndpoint(t)

	client, err := remote.NewClient(endpoint.URL)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	view, err := widget.NewDocumentView(nil)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	controller := widget.NewController(client, view)

	if err := controller.Submit(context.Background(), "gopher"); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	controller.Wait()

	html, err := export(view, FormatHTML)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if !strings.Contains(html, `<div class="res-item">`) {
		t.Errorf("expected html export to contain a result item, got:\n%s", html)
	}

	markdown, err := export(view, FormatMarkdown)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if !strings.Contains(markdown, "Result for gopher") {
		t.Errorf("expected markdown export to contain the result title, got:\n%s", markdown)
	}

	if e, g := "md", extension(FormatMarkdown); e != g {
		t.Errorf("extension: expected '%s', got '%s'", e, g)
	}
}
