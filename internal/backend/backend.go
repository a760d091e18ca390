// Package backend builds the search client answering the /q endpoint from
// the configuration.
package backend

import (
	"net/http"
	"time"

	"github.com/bornholm/ownsearch/internal/config"
	"github.com/bornholm/ownsearch/pkg/scraper"
	"github.com/bornholm/ownsearch/pkg/scraper/chromedp"
	"github.com/bornholm/ownsearch/pkg/scraper/surf"
	"github.com/bornholm/ownsearch/pkg/search"
	"github.com/bornholm/ownsearch/pkg/search/duckduckgo"
	"github.com/bornholm/ownsearch/pkg/search/google"
	"github.com/bornholm/ownsearch/pkg/search/index"
	"github.com/bornholm/ownsearch/pkg/search/meta"
	"github.com/bornholm/ownsearch/pkg/search/searx"
	"github.com/pkg/errors"
)

const (
	KindIndex      = "index"
	KindDuckDuckGo = "duckduckgo"
	KindSearx      = "searx"
	KindGoogle     = "google"
	KindMeta       = "meta"

	ScraperHTTP     = "http"
	ScraperSurf     = "surf"
	ScraperChromedp = "chromedp"
)

const (
	retries        = 2
	retryBaseDelay = 500 * time.Millisecond
)

// New returns the search client selected by conf.Backend and a function
// releasing its resources. The index is only required by the index backend.
func New(conf *config.Config, idx *index.Index) (search.Client, func(), error) {
	noop := func() {}

	switch conf.Backend {
	case KindIndex, "":
		if idx == nil {
			return nil, noop, errors.New("index backend requires an index")
		}

		return idx, noop, nil

	case KindDuckDuckGo:
		s, release, err := NewScraper(conf.Scraper)
		if err != nil {
			return nil, noop, errors.WithStack(err)
		}

		return search.WithRetry(duckduckgo.NewClient(s), retries, retryBaseDelay), release, nil

	case KindSearx:
		return searx.NewClient(), noop, nil

	case KindGoogle:
		if conf.Google.APIKey == "" || conf.Google.CX == "" {
			return nil, noop, errors.New("google backend requires an api key and a search engine id")
		}

		return search.WithRetry(google.NewClient(conf.Google.APIKey, conf.Google.CX), retries, retryBaseDelay), noop, nil

	case KindMeta:
		s, release, err := NewScraper(conf.Scraper)
		if err != nil {
			return nil, noop, errors.WithStack(err)
		}

		clients := []search.Client{
			search.WithRetry(duckduckgo.NewClient(s), retries, retryBaseDelay),
			searx.NewClient(),
		}

		if conf.Google.APIKey != "" && conf.Google.CX != "" {
			clients = append(clients, google.NewClient(conf.Google.APIKey, conf.Google.CX))
		}

		if idx != nil {
			clients = append([]search.Client{idx}, clients...)
		}

		return meta.NewClient(clients...), release, nil

	default:
		return nil, noop, errors.Errorf("unknown search backend '%s'", conf.Backend)
	}
}

// NewScraper returns the page fetcher of the given kind and a function
// releasing its resources.
func NewScraper(kind string) (scraper.Scraper, func(), error) {
	switch kind {
	case ScraperHTTP, "":
		return scraper.NewHTTPScraper(&http.Client{Timeout: 30 * time.Second}), func() {}, nil

	case ScraperSurf:
		return surf.NewScraper(), func() {}, nil

	case ScraperChromedp:
		s, err := chromedp.NewScraper(true)
		if err != nil {
			return nil, func() {}, errors.WithStack(err)
		}

		return s, s.Close, nil

	default:
		return nil, func() {}, errors.Errorf("unknown scraper '%s'", kind)
	}
}
