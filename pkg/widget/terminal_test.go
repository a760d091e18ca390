package widget

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/bornholm/ownsearch/pkg/search"
	"github.com/pkg/errors"
)

func TestTerminalView(t *testing.T) {
	var out, errOut bytes.Buffer

	client := newStubClient()
	client.results["gopher"] = []search.Result{
		{Title: "Gophers", Link: "http://go.dev", Summary: "All about gophers"},
	}

	controller := NewController(client, NewTerminalView(&out, &errOut))

	if err := controller.Submit(context.Background(), ""); err == nil {
		t.Fatal("expected an error")
	}

	if err := controller.Submit(context.Background(), "gopher"); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	controller.Wait()

	if e, g := ErrEmptyQuery.Message+"\n", errOut.String(); e != g {
		t.Errorf("alert: expected %q, got %q", e, g)
	}

	for _, expected := range []string{"Searching...", "Gophers", "http://go.dev", "All about gophers"} {
		if !strings.Contains(out.String(), expected) {
			t.Errorf("expected output to contain %q, got:\n%s", expected, out.String())
		}
	}
}
