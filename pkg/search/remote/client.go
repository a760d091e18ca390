// Package remote implements a search client for the /q endpoint of an
// ownsearch server.
package remote

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/bornholm/ownsearch/pkg/search"
	"github.com/pkg/errors"
)

const (
	DefaultPath = "/q"
	// QueryField is the form field carrying the user's query text.
	QueryField = "query"
)

type Client struct {
	endpoint string
	client   *http.Client
}

type OptionFunc func(c *Client)

func WithHTTPClient(client *http.Client) OptionFunc {
	return func(c *Client) {
		c.client = client
	}
}

// Search implements search.Client.
func (c *Client) Search(ctx context.Context, query string) ([]search.Result, error) {
	form := url.Values{}
	form.Set(QueryField, query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	slog.DebugContext(ctx, "executing remote search", slog.String("endpoint", c.endpoint))

	res, err := c.client.Do(req)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		body, err := io.ReadAll(io.LimitReader(res.Body, 4e+6)) // Restrict to 4MB
		if err != nil {
			return nil, errors.WithStack(err)
		}

		return nil, errors.Errorf("unexpected response http status %d (%s):\n%s", res.StatusCode, res.Status, body)
	}

	var payload search.Response
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "could not decode search response")
	}

	return payload.Items, nil
}

// NewClient returns a client posting queries to the given endpoint. A base
// URL without path is completed with DefaultPath.
func NewClient(endpoint string, funcs ...OptionFunc) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("invalid search endpoint '%s'", endpoint)
	}

	if u.Path == "" || u.Path == "/" {
		u.Path = DefaultPath
	}

	c := &Client{
		endpoint: u.String(),
		client:   http.DefaultClient,
	}

	for _, fn := range funcs {
		fn(c)
	}

	return c, nil
}

var _ search.Client = &Client{}
