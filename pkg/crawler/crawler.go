// Package crawler walks a website from a start URL and hands every HTML page
// it visits to the registered consumers.
package crawler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/gocolly/colly"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

const DefaultUserAgent = "Mozilla/5.0 (compatible; ownsearch/1.0; +https://github.com/bornholm/ownsearch)"

// Consumer receives crawled pages. Consumers may be called concurrently.
type Consumer func(ctx context.Context, page Page) error

type Options struct {
	MaxDepth       int
	Parallelism    int
	IgnoreExternal bool
	Include        []string
	Exclude        []string
	RequestTimeout time.Duration
	UserAgent      string
	SummaryLength  int
	Transport      http.RoundTripper
}

type OptionFunc func(opts *Options)

func NewOptions(funcs ...OptionFunc) *Options {
	opts := &Options{
		MaxDepth:       2,
		Parallelism:    4,
		IgnoreExternal: true,
		RequestTimeout: 30 * time.Second,
		UserAgent:      DefaultUserAgent,
		SummaryLength:  DefaultSummaryLength,
	}

	for _, fn := range funcs {
		fn(opts)
	}

	return opts
}

// WithMaxDepth limits the link depth of the crawl. The start page is at depth
// 1, so a depth of 1 only visits the start page.
func WithMaxDepth(depth int) OptionFunc {
	return func(opts *Options) {
		opts.MaxDepth = depth
	}
}

func WithParallelism(parallelism int) OptionFunc {
	return func(opts *Options) {
		opts.Parallelism = parallelism
	}
}

func WithIgnoreExternal(ignore bool) OptionFunc {
	return func(opts *Options) {
		opts.IgnoreExternal = ignore
	}
}

// WithInclude restricts the crawl to URLs matching at least one of the glob
// patterns.
func WithInclude(patterns ...string) OptionFunc {
	return func(opts *Options) {
		opts.Include = patterns
	}
}

// WithExclude skips URLs matching any of the glob patterns.
func WithExclude(patterns ...string) OptionFunc {
	return func(opts *Options) {
		opts.Exclude = patterns
	}
}

func WithRequestTimeout(timeout time.Duration) OptionFunc {
	return func(opts *Options) {
		opts.RequestTimeout = timeout
	}
}

func WithUserAgent(userAgent string) OptionFunc {
	return func(opts *Options) {
		opts.UserAgent = userAgent
	}
}

func WithSummaryLength(length int) OptionFunc {
	return func(opts *Options) {
		opts.SummaryLength = length
	}
}

func WithTransport(transport http.RoundTripper) OptionFunc {
	return func(opts *Options) {
		opts.Transport = transport
	}
}

type Crawler struct {
	opts      *Options
	include   []glob.Glob
	exclude   []glob.Glob
	consumers []Consumer
}

// OnPage registers a page consumer.
func (c *Crawler) OnPage(consumer Consumer) {
	c.consumers = append(c.consumers, consumer)
}

// Crawl visits startURL and the pages it links to, up to the configured
// depth. Errors returned by consumers are aggregated; pages that could not be
// fetched are only logged.
func (c *Crawler) Crawl(ctx context.Context, startURL string) (int, error) {
	start, err := url.Parse(startURL)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	if start.Scheme != "http" && start.Scheme != "https" {
		return 0, errors.Errorf("unsupported start url '%s'", startURL)
	}

	collector := colly.NewCollector(
		colly.MaxDepth(c.opts.MaxDepth),
		colly.Async(true),
		colly.UserAgent(c.opts.UserAgent),
	)

	collector.SetRequestTimeout(c.opts.RequestTimeout)

	if c.opts.Transport != nil {
		collector.WithTransport(c.opts.Transport)
	}

	if err := collector.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: c.opts.Parallelism}); err != nil {
		return 0, errors.WithStack(err)
	}

	var (
		lock          sync.Mutex
		aggregatedErr error
		pages         int
	)

	collector.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}

		slog.DebugContext(ctx, "crawling page", slog.String("url", r.URL.String()), slog.Int("depth", r.Depth))
	})

	collector.OnError(func(r *colly.Response, err error) {
		slog.WarnContext(ctx, "could not crawl page", slog.String("url", r.Request.URL.String()), slog.Int("status", r.StatusCode), slog.Any("error", errors.WithStack(err)))
	})

	collector.OnHTML("html", func(e *colly.HTMLElement) {
		page := ExtractPage(e.Request.URL, e.DOM, c.opts.SummaryLength)
		page.Depth = e.Request.Depth

		lock.Lock()
		pages++
		lock.Unlock()

		for _, consume := range c.consumers {
			if err := consume(ctx, page); err != nil {
				lock.Lock()
				aggregatedErr = multierror.Append(aggregatedErr, errors.Wrapf(err, "could not consume page '%s'", page.Link))
				lock.Unlock()
			}
		}

		for _, link := range ExtractLinks(e.Request.URL, e.DOM) {
			if !c.allowed(start, link) {
				continue
			}

			if err := e.Request.Visit(link); err != nil && !isVisitSkipped(err) {
				slog.DebugContext(ctx, "could not visit link", slog.String("url", link), slog.Any("error", err))
			}
		}
	})

	if err := collector.Visit(start.String()); err != nil {
		return 0, errors.WithStack(err)
	}

	collector.Wait()

	if err := ctx.Err(); err != nil {
		return pages, errors.WithStack(err)
	}

	if aggregatedErr != nil {
		return pages, aggregatedErr
	}

	return pages, nil
}

func (c *Crawler) allowed(start *url.URL, link string) bool {
	if c.opts.IgnoreExternal {
		u, err := url.Parse(link)
		if err != nil || u.Host != start.Host {
			return false
		}
	}

	for _, p := range c.exclude {
		if p.Match(link) {
			return false
		}
	}

	if len(c.include) == 0 {
		return true
	}

	for _, p := range c.include {
		if p.Match(link) {
			return true
		}
	}

	return false
}

func isVisitSkipped(err error) bool {
	return errors.Is(err, colly.ErrAlreadyVisited) || errors.Is(err, colly.ErrMaxDepth)
}

func compilePatterns(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		pattern, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid pattern '%s'", p)
		}

		compiled = append(compiled, pattern)
	}

	return compiled, nil
}

func NewCrawler(funcs ...OptionFunc) (*Crawler, error) {
	opts := NewOptions(funcs...)

	if opts.MaxDepth < 1 {
		return nil, errors.Errorf("invalid max depth %d, must be at least 1", opts.MaxDepth)
	}

	include, err := compilePatterns(opts.Include)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	exclude, err := compilePatterns(opts.Exclude)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &Crawler{
		opts:    opts,
		include: include,
		exclude: exclude,
	}, nil
}
