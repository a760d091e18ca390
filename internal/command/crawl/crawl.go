package crawl

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/bornholm/ownsearch/internal/command"
	"github.com/bornholm/ownsearch/pkg/crawler"
	"github.com/bornholm/ownsearch/pkg/search/index"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func Crawl() *cli.Command {
	return &cli.Command{
		Name:  "crawl",
		Usage: "Crawl a website and index its pages",
		Flags: []cli.Flag{
			command.ConfigFlag(),
			&cli.StringFlag{
				Name:    "start-url",
				Aliases: []string{"u"},
				EnvVars: []string{"OWNSEARCH_START_URL"},
				Usage:   "Url the crawl starts from",
			},
			&cli.StringFlag{
				Name:      "index",
				Aliases:   []string{"i"},
				EnvVars:   []string{"OWNSEARCH_INDEX"},
				Usage:     "Path of the search index",
				TakesFile: true,
			},
			&cli.IntFlag{
				Name:    "depth",
				Aliases: []string{"d"},
				EnvVars: []string{"OWNSEARCH_CRAWL_DEPTH"},
				Usage:   "Maximum link depth, the start page is at depth 1",
			},
			&cli.IntFlag{
				Name:    "parallelism",
				EnvVars: []string{"OWNSEARCH_CRAWL_PARALLELISM"},
				Usage:   "Maximum number of concurrent requests",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Only follow urls matching one of these glob patterns",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Never follow urls matching one of these glob patterns",
			},
			&cli.BoolFlag{
				Name:  "allow-external",
				Usage: "Follow links to other hosts",
			},
		},
		Action: func(cliCtx *cli.Context) error {
			conf, err := command.LoadConfig(cliCtx)
			if err != nil {
				return errors.WithStack(err)
			}

			if cliCtx.IsSet("start-url") {
				conf.StartURL = cliCtx.String("start-url")
			}

			if cliCtx.IsSet("index") {
				conf.Index = cliCtx.String("index")
			}

			if cliCtx.IsSet("depth") {
				conf.Crawl.Depth = cliCtx.Int("depth")
			}

			if cliCtx.IsSet("parallelism") {
				conf.Crawl.Parallelism = cliCtx.Int("parallelism")
			}

			if cliCtx.IsSet("include") {
				conf.Crawl.Include = cliCtx.StringSlice("include")
			}

			if cliCtx.IsSet("exclude") {
				conf.Crawl.Exclude = cliCtx.StringSlice("exclude")
			}

			if cliCtx.IsSet("allow-external") {
				conf.Crawl.AllowExternal = cliCtx.Bool("allow-external")
			}

			if err := conf.Validate(); err != nil {
				return errors.WithStack(err)
			}

			if conf.StartURL == "" {
				return errors.New("a start url is required")
			}

			if conf.Index == "" {
				return errors.New("an index path is required")
			}

			ctx, stop := signal.NotifyContext(cliCtx.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			idx, err := index.Open(conf.Index)
			if err != nil {
				return errors.WithStack(err)
			}

			defer idx.Close()

			c, err := command.NewCrawler(conf, idx)
			if err != nil {
				return errors.WithStack(err)
			}

			c.OnPage(func(ctx context.Context, page crawler.Page) error {
				slog.InfoContext(ctx, "page crawled", slog.String("url", page.Link), slog.String("title", page.Title), slog.Int("depth", page.Depth))
				return nil
			})

			pages, err := c.Crawl(ctx, conf.StartURL)
			if err != nil {
				return errors.Wrapf(err, "crawl failed after %d pages", pages)
			}

			count, err := idx.Count()
			if err != nil {
				return errors.WithStack(err)
			}

			slog.InfoContext(ctx, "crawl completed", slog.Int("pages", pages), slog.Uint64("indexed", count), slog.String("index", conf.Index))

			return nil
		},
	}
}
