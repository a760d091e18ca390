package search

import "context"

type Client interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// Result is a single search hit as exchanged on the /q endpoint.
type Result struct {
	Title   string `json:"title" jsonschema:"required,description=Title of the matching page"`
	Link    string `json:"link" jsonschema:"required,description=URL of the matching page"`
	Summary string `json:"summary" jsonschema:"required,description=Short text snippet of the matching page"`
}

// Response is the JSON body returned by the /q endpoint.
type Response struct {
	Items []Result `json:"items" jsonschema:"required,description=Matching pages ordered by relevance"`
}

// NewResponse wraps results so that an empty result set is encoded as an
// empty array and never as null.
func NewResponse(results []Result) Response {
	if results == nil {
		results = make([]Result, 0)
	}

	return Response{Items: results}
}
