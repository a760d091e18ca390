// Package meta merges the results of several search clients queried
// concurrently.
package meta

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bornholm/ownsearch/pkg/search"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

type Client struct {
	clients []search.Client
}

// Search implements search.Client. Results are merged in client order and
// deduplicated by link. An error is returned only when every client failed.
func (s *Client) Search(ctx context.Context, query string) ([]search.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	perClient := make([][]search.Result, len(s.clients))

	var errLock sync.Mutex
	var aggregatedErr error
	failures := 0

	var wg sync.WaitGroup

	wg.Add(len(s.clients))

	for i, c := range s.clients {
		go func(i int, client search.Client) {
			defer wg.Done()

			results, err := client.Search(ctx, query)
			if err != nil {
				errLock.Lock()
				aggregatedErr = multierror.Append(aggregatedErr, errors.WithStack(err))
				failures++
				errLock.Unlock()
				return
			}

			perClient[i] = results
		}(i, c)
	}

	wg.Wait()

	if len(s.clients) > 0 && failures == len(s.clients) {
		return nil, aggregatedErr
	}

	if aggregatedErr != nil {
		slog.WarnContext(ctx, "some search clients failed", slog.Any("error", aggregatedErr))
	}

	merged := make([]search.Result, 0)
	seen := make(map[string]struct{})

	for _, results := range perClient {
		for _, r := range results {
			if _, exists := seen[r.Link]; exists {
				continue
			}

			merged = append(merged, r)
			seen[r.Link] = struct{}{}
		}
	}

	return merged, nil
}

func NewClient(clients ...search.Client) *Client {
	return &Client{
		clients: clients,
	}
}

var _ search.Client = &Client{}
