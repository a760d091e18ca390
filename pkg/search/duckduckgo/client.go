package duckduckgo

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bornholm/ownsearch/pkg/scraper"
	"github.com/bornholm/ownsearch/pkg/search"
	"github.com/pkg/errors"
)

var ErrCaptcha = errors.New("captcha challenge")

const DefaultBaseURL = "https://duckduckgo.com/html/"

type Client struct {
	scraper scraper.Scraper
	baseURL string
}

type OptionFunc func(c *Client)

func WithBaseURL(baseURL string) OptionFunc {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// Search implements search.Client.
func (c *Client) Search(ctx context.Context, query string) ([]search.Result, error) {
	searchURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	params := searchURL.Query()
	params.Set("q", query)
	searchURL.RawQuery = params.Encode()

	slog.DebugContext(ctx, "scraping duckduckgo results", slog.String("url", searchURL.String()))

	body, err := c.scraper.Get(ctx, searchURL.String())
	if err != nil {
		return nil, errors.WithStack(err)
	}

	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	captcha := doc.Find("#challenge-form")
	if captcha.Length() > 0 {
		return nil, errors.WithStack(ErrCaptcha)
	}

	results := make([]search.Result, 0)

	if doc.Find(".no-results").Length() > 0 {
		return results, nil
	}

	resultElements := doc.Find(".result")
	if resultElements.Length() == 0 {
		return nil, errors.Errorf("unexpected result:\n%s", doc.Text())
	}

	resultElements.Each(func(i int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find(".result__title").Text())
		if title == "" {
			return
		}

		rawDDGLink := s.Find(".result__a").AttrOr("href", "")
		if rawDDGLink == "" {
			return
		}

		ddgLink, err := url.Parse(rawDDGLink)
		if err != nil {
			return
		}

		link := ddgLink.Query().Get("uddg")
		if link == "" {
			link = rawDDGLink
		}

		snippet := strings.TrimSpace(s.Find(".result__snippet").Text())
		if snippet == "" {
			return
		}

		results = append(results, search.Result{
			Title:   title,
			Link:    link,
			Summary: snippet,
		})
	})

	return results, nil
}

func NewClient(scraper scraper.Scraper, funcs ...OptionFunc) *Client {
	c := &Client{
		scraper: scraper,
		baseURL: DefaultBaseURL,
	}

	for _, fn := range funcs {
		fn(c)
	}

	return c
}

var _ search.Client = &Client{}
