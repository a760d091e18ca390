package schema

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
)

func TestGenerate(t *testing.T) {
	data, err := Generate()
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	var schema struct {
		Required   []string `json:"required"`
		Properties map[string]struct {
			Type  string `json:"type"`
			Items struct {
				Required   []string       `json:"required"`
				Properties map[string]any `json:"properties"`
			} `json:"items"`
		} `json:"properties"`
	}

	if err := json.Unmarshal(data, &schema); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	items, exists := schema.Properties["items"]
	if !exists {
		t.Fatalf("schema.Properties: missing 'items' property")
	}

	if e, g := "array", items.Type; e != g {
		t.Errorf("items.Type: expected '%s', got '%s'", e, g)
	}

	for _, field := range []string{"title", "link", "summary"} {
		if _, exists := items.Items.Properties[field]; !exists {
			t.Errorf("items.Items.Properties: missing '%s' property", field)
		}
	}

	if e, g := 3, len(items.Items.Required); e != g {
		t.Errorf("len(items.Items.Required): expected %d, got %d", e, g)
	}
}
