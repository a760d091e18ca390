// Package surf fetches pages with a client impersonating a real browser TLS
// and HTTP/2 fingerprint.
package surf

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/bornholm/ownsearch/pkg/scraper"
	"github.com/enetx/g"
	"github.com/enetx/surf"
	"github.com/pkg/errors"
)

type Options struct {
	Proxy     string
	Timeout   time.Duration
	Retries   int
	RetryWait time.Duration
}

type OptionFunc func(opts *Options)

func WithProxy(proxy string) OptionFunc {
	return func(opts *Options) {
		opts.Proxy = proxy
	}
}

func WithTimeout(timeout time.Duration) OptionFunc {
	return func(opts *Options) {
		opts.Timeout = timeout
	}
}

func WithRetry(retries int, wait time.Duration) OptionFunc {
	return func(opts *Options) {
		opts.Retries = retries
		opts.RetryWait = wait
	}
}

type Scraper struct {
	opts   *Options
	once   sync.Once
	client *surf.Client
}

// Check implements scraper.Scraper.
func (s *Scraper) Check(ctx context.Context, url string) (bool, error) {
	resp := s.getClient().Get(g.String(url)).WithContext(ctx).Do()
	if resp.IsErr() {
		return false, errors.WithStack(resp.Err())
	}

	return resp.IsOk(), nil
}

// Get implements scraper.Scraper.
func (s *Scraper) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	resp := s.getClient().Get(g.String(url)).WithContext(ctx).Do()
	if resp.IsErr() {
		return nil, errors.WithStack(resp.Err())
	}

	return resp.Ok().Body.Reader, nil
}

func (s *Scraper) getClient() *surf.Client {
	s.once.Do(func() {
		builder := surf.NewClient().
			Builder()

		if s.opts.Proxy != "" {
			builder = builder.Proxy(s.opts.Proxy)
		}

		builder = builder.Impersonate().RandomOS().Chrome().
			Timeout(s.opts.Timeout).
			Retry(s.opts.Retries, s.opts.RetryWait).
			Session()

		s.client = builder.Build()
	})

	return s.client
}

func NewScraper(funcs ...OptionFunc) *Scraper {
	opts := &Options{
		Proxy:     os.Getenv("HTTP_PROXY"),
		Timeout:   30 * time.Second,
		Retries:   5,
		RetryWait: time.Second,
	}

	for _, fn := range funcs {
		fn(opts)
	}

	return &Scraper{
		opts: opts,
	}
}

var _ scraper.Scraper = &Scraper{}
