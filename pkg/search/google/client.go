package google

import (
	"context"
	"log/slog"

	"github.com/bornholm/ownsearch/pkg/search"
	"github.com/pkg/errors"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

const DefaultNum = 10

// Client implements the search.Client interface using Google Custom Search API.
type Client struct {
	apiKey  string
	cx      string
	num     int64
	options []option.ClientOption
}

type OptionFunc func(c *Client)

// WithNum sets the number of results requested, between 1 and 10.
func WithNum(num int64) OptionFunc {
	return func(c *Client) {
		c.num = num
	}
}

// WithClientOptions appends options used to create the API service.
func WithClientOptions(options ...option.ClientOption) OptionFunc {
	return func(c *Client) {
		c.options = append(c.options, options...)
	}
}

// Search implements the search.Client interface.
func (c *Client) Search(ctx context.Context, query string) ([]search.Result, error) {
	options := append([]option.ClientOption{option.WithAPIKey(c.apiKey)}, c.options...)

	service, err := customsearch.NewService(ctx, options...)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	slog.DebugContext(ctx, "executing search", slog.String("query", query))

	call := service.Cse.List().
		Q(query).
		Cx(c.cx).
		Num(c.num).
		Context(ctx)

	searchResult, err := call.Do()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	results := make([]search.Result, 0, len(searchResult.Items))
	for _, item := range searchResult.Items {
		results = append(results, search.Result{
			Title:   item.Title,
			Link:    item.Link,
			Summary: item.Snippet,
		})
	}

	return results, nil
}

// NewClient creates a new Google Custom Search API client.
func NewClient(apiKey, cx string, funcs ...OptionFunc) *Client {
	c := &Client{
		apiKey: apiKey,
		cx:     cx,
		num:    DefaultNum,
	}

	for _, fn := range funcs {
		fn(c)
	}

	return c
}

var _ search.Client = &Client{}
