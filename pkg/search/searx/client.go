package searx

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/bornholm/ownsearch/pkg/search"
	"github.com/gocolly/colly"
	"github.com/pkg/errors"
)

const (
	DefaultInstancesURL = "https://searx.space/data/instances.json"
	defaultMaxRetries   = 3
)

type Client struct {
	instancesURL string
	instance     string
	language     string
	maxRetries   int
	httpClient   *http.Client
	transport    http.RoundTripper
}

type OptionFunc func(c *Client)

// WithInstance pins the searx instance instead of picking one from the
// public instances list.
func WithInstance(instance string) OptionFunc {
	return func(c *Client) {
		c.instance = instance
	}
}

func WithInstancesURL(instancesURL string) OptionFunc {
	return func(c *Client) {
		c.instancesURL = instancesURL
	}
}

func WithLanguage(language string) OptionFunc {
	return func(c *Client) {
		c.language = language
	}
}

func WithHTTPClient(client *http.Client) OptionFunc {
	return func(c *Client) {
		c.httpClient = client
		if client.Transport != nil {
			c.transport = client.Transport
		}
	}
}

func (c *Client) getInstanceURL(ctx context.Context, query string, ignored ...string) (*url.URL, error) {
	if c.instance != "" {
		u, err := url.Parse(c.instance)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		return u, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.instancesURL, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	defer res.Body.Close()

	decoder := json.NewDecoder(res.Body)

	var instances Instances
	if err := decoder.Decode(&instances); err != nil {
		return nil, errors.WithStack(err)
	}

	bestURL, found := selectInstance(instances, query, ignored...)
	if !found {
		return nil, errors.New("no available instance")
	}

	u, err := url.Parse(bestURL)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return u, nil
}

// selectInstance returns the fastest healthy instance supporting the engines
// requested with bang operators in the query.
func selectInstance(instances Instances, query string, ignored ...string) (string, bool) {
	var bestInstance *Instance
	var bestURL string

	for instanceURL, inst := range instances.Instances {
		if slices.Contains(ignored, instanceURL) {
			continue
		}

		includeSearchEngine := true
		for seOperator, seName := range searchEnginesOperators {
			if strings.Contains(query, "!"+seOperator) {
				engine, included := inst.Engines[seName]
				if !included || engine.ErrorRate > 50 {
					includeSearchEngine = false
					break
				}
			}
		}
		if !includeSearchEngine {
			continue
		}

		if inst.HTTP.StatusCode != http.StatusOK || inst.NetworkType != "normal" || inst.Timing.SearchGo.SuccessPercentage < 80 {
			continue
		}

		if bestInstance == nil {
			bestURL = instanceURL
			bestInstance = &inst
			continue
		}

		if bestInstance.Timing.Search.All.Mean > inst.Timing.Search.All.Mean || len(bestInstance.Engines) < len(inst.Engines) {
			bestURL = instanceURL
			bestInstance = &inst
			continue
		}
	}

	return bestURL, bestInstance != nil
}

// Search implements search.Client.
func (c *Client) Search(ctx context.Context, query string) ([]search.Result, error) {
	ignored := make([]string, 0)
	retries := 0
	for {
		serverURL, err := c.getInstanceURL(ctx, query, ignored...)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		results, err := c.doSearch(ctx, serverURL, query)
		if err != nil {
			if retries >= c.maxRetries || c.instance != "" || ctx.Err() != nil {
				return nil, errors.WithStack(err)
			}

			retries++
			ignored = append(ignored, serverURL.String())
			time.Sleep(time.Second * time.Duration(rand.Float64()))
			continue
		}

		if len(results) == 0 && c.instance == "" && retries < c.maxRetries {
			ignored = append(ignored, serverURL.String())
			retries++
			continue
		}

		return results, nil
	}
}

func (c *Client) doSearch(ctx context.Context, serverURL *url.URL, query string) ([]search.Result, error) {
	searchURL := serverURL.JoinPath("/search")

	params := searchURL.Query()
	params.Set("q", query)
	params.Set("language", c.language)
	searchURL.RawQuery = params.Encode()

	slog.DebugContext(ctx, "executing search", slog.String("url", searchURL.String()))

	results := make([]search.Result, 0)

	collector := colly.NewCollector(
		colly.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36"),
	)

	collector.WithTransport(c.transport)

	collector.OnHTML("html", func(h *colly.HTMLElement) {
		h.DOM.Find("head > link").Each(func(i int, s *goquery.Selection) {
			href := s.AttrOr("href", "")
			if strings.HasPrefix(href, "/client") && strings.HasSuffix(href, ".css") {
				h.Request.Visit(href)
			}
		})
	})

	collector.OnHTML("body", func(h *colly.HTMLElement) {
		h.DOM.Find(".result").Each(func(i int, s *goquery.Selection) {
			link := s.Find("h3 > a[href]")

			href := link.AttrOr("href", "")
			if href == "" {
				return
			}

			title := strings.TrimSpace(link.Text())
			if title == "" {
				return
			}

			summary := strings.TrimSpace(s.Find(".content").Text())
			if summary == "" {
				return
			}

			results = append(results, search.Result{
				Title:   title,
				Link:    href,
				Summary: summary,
			})
		})
	})

	collector.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}

		r.Headers.Set("Accept-Language", c.language+";q=0.9,en-US;q=0.8,en;q=0.7")
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
		r.Headers.Set("Connection", "keep-alive")
		r.Headers.Set("Sec-Fetch-Mode", "navigate")
		r.Headers.Set("Sec-Fetch-Dest", "document")
		r.Headers.Set("sec-fetch-site", "none")
		r.Headers.Set("Pragma", "no-cache")
		r.Headers.Set("Cache-Control", "no-cache")
	})

	if err := collector.Visit(searchURL.String()); err != nil {
		return nil, errors.WithStack(err)
	}

	return results, nil
}

func NewClient(funcs ...OptionFunc) *Client {
	c := &Client{
		instancesURL: DefaultInstancesURL,
		language:     "en",
		maxRetries:   defaultMaxRetries,
		httpClient:   http.DefaultClient,
		transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	for _, fn := range funcs {
		fn(c)
	}

	return c
}

var _ search.Client = &Client{}
