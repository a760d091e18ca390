// Package chromedp fetches pages through a headless Chrome instance, for
// search engines that only serve results to script-capable clients.
package chromedp

import (
	"bytes"
	"context"
	"io"
	"os"
	"time"

	"github.com/bornholm/ownsearch/pkg/scraper"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"

	cu "github.com/Davincible/chromedp-undetected"
)

const defaultTimeout = 30 * time.Second

type Scraper struct {
	chromeCtx    context.Context
	cancelChrome context.CancelFunc
	timeout      time.Duration
}

// Check implements scraper.Scraper.
func (s *Scraper) Check(ctx context.Context, url string) (bool, error) {
	tabCtx, cancel := s.newTab(ctx)
	defer cancel()

	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	)
	if err != nil {
		return false, errors.WithStack(err)
	}

	return true, nil
}

// Get implements scraper.Scraper.
func (s *Scraper) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	tabCtx, cancel := s.newTab(ctx)
	defer cancel()

	var html string

	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			node, err := dom.GetDocument().Do(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			res, err := dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			html = res

			return nil
		}),
	)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return io.NopCloser(bytes.NewBufferString(html)), nil
}

// newTab opens a dedicated tab which is closed when ctx is done or the
// returned cancel func is called.
func (s *Scraper) newTab(ctx context.Context) (context.Context, context.CancelFunc) {
	tabCtx, cancelTab := chromedp.NewContext(s.chromeCtx)
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, s.timeout)

	stop := context.AfterFunc(ctx, cancelTab)

	return tabCtx, func() {
		stop()
		cancelTimeout()
		cancelTab()
	}
}

func (s *Scraper) Close() {
	s.cancelChrome()
}

func NewScraper(headless bool) (*Scraper, error) {
	options := []cu.Option{}
	if headless {
		options = append(options, cu.WithHeadless())
	}

	if httpProxy := os.Getenv("HTTP_PROXY"); httpProxy != "" {
		options = append(options, cu.WithChromeFlags(chromedp.ProxyServer(httpProxy)))
	}

	chromeCtx, cancelChrome, err := cu.New(cu.NewConfig(options...))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &Scraper{
		chromeCtx:    chromeCtx,
		cancelChrome: cancelChrome,
		timeout:      defaultTimeout,
	}, nil
}

var _ scraper.Scraper = &Scraper{}
