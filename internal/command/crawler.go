package command

import (
	"context"

	"github.com/bornholm/ownsearch/internal/config"
	"github.com/bornholm/ownsearch/pkg/crawler"
	"github.com/bornholm/ownsearch/pkg/search/index"
	"github.com/pkg/errors"
)

// NewCrawler returns a crawler configured from conf.Crawl which indexes every
// page it visits into idx.
func NewCrawler(conf *config.Config, idx *index.Index) (*crawler.Crawler, error) {
	c, err := crawler.NewCrawler(
		crawler.WithMaxDepth(conf.Crawl.Depth),
		crawler.WithParallelism(conf.Crawl.Parallelism),
		crawler.WithIgnoreExternal(!conf.Crawl.AllowExternal),
		crawler.WithInclude(conf.Crawl.Include...),
		crawler.WithExclude(conf.Crawl.Exclude...),
	)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	c.OnPage(func(ctx context.Context, page crawler.Page) error {
		return idx.Index(ctx, index.Document{
			Title:   page.Title,
			Link:    page.Link,
			Summary: page.Summary,
		})
	})

	return c, nil
}
