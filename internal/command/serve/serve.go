package serve

import (
	"context"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"

	"github.com/bornholm/ownsearch/internal/backend"
	"github.com/bornholm/ownsearch/internal/command"
	"github.com/bornholm/ownsearch/internal/config"
	"github.com/bornholm/ownsearch/internal/server"
	"github.com/bornholm/ownsearch/pkg/search/index"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func Serve() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the search page and the /q endpoint",
		Flags: []cli.Flag{
			command.ConfigFlag(),
			&cli.StringFlag{
				Name:    "host",
				EnvVars: []string{"OWNSEARCH_HOST"},
				Usage:   "Address the server listens on",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				EnvVars: []string{"OWNSEARCH_PORT"},
				Usage:   "Port the server listens on",
			},
			&cli.StringFlag{
				Name:      "index",
				Aliases:   []string{"i"},
				EnvVars:   []string{"OWNSEARCH_INDEX"},
				Usage:     "Path of the search index, empty for an in-memory index",
				TakesFile: true,
			},
			&cli.StringFlag{
				Name:    "backend",
				Aliases: []string{"b"},
				EnvVars: []string{"OWNSEARCH_BACKEND"},
				Usage:   "Search backend: index, duckduckgo, searx, google or meta",
			},
			&cli.StringFlag{
				Name:    "scraper",
				EnvVars: []string{"OWNSEARCH_SCRAPER"},
				Usage:   "Page fetcher used by web backends: http, surf or chromedp",
			},
			&cli.StringFlag{
				Name:    "start-url",
				Aliases: []string{"u"},
				EnvVars: []string{"OWNSEARCH_START_URL"},
				Usage:   "Crawl this url in background and index its pages",
			},
			&cli.IntFlag{
				Name:    "crawl-depth",
				EnvVars: []string{"OWNSEARCH_CRAWL_DEPTH"},
				Usage:   "Maximum depth of the background crawl, the start page is at depth 1",
			},
		},
		Action: func(cliCtx *cli.Context) error {
			conf, err := command.LoadConfig(cliCtx)
			if err != nil {
				return errors.WithStack(err)
			}

			applyFlags(cliCtx, conf)

			if err := conf.Validate(); err != nil {
				return errors.WithStack(err)
			}

			ctx, stop := signal.NotifyContext(cliCtx.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var idx *index.Index

			if conf.Backend == "" || conf.Backend == backend.KindIndex || conf.Backend == backend.KindMeta || conf.StartURL != "" {
				idx, err = openIndex(conf.Index)
				if err != nil {
					return errors.WithStack(err)
				}

				defer func() {
					if err := idx.Close(); err != nil {
						slog.ErrorContext(ctx, "could not close index", slog.Any("error", errors.WithStack(err)))
					}
				}()
			}

			client, release, err := backend.New(conf, idx)
			if err != nil {
				return errors.Wrap(err, "could not create search backend")
			}

			defer release()

			if conf.StartURL != "" {
				var wg sync.WaitGroup

				wg.Add(1)
				go func() {
					defer wg.Done()
					crawlInBackground(ctx, conf, idx)
				}()

				// The crawl must be over before the index is closed
				defer func() {
					stop()
					wg.Wait()
				}()
			}

			srv, err := server.New(client, server.WithAddress(conf.Address()))
			if err != nil {
				return errors.WithStack(err)
			}

			if err := srv.Run(ctx); err != nil {
				return errors.WithStack(err)
			}

			return nil
		},
	}
}

func applyFlags(cliCtx *cli.Context, conf *config.Config) {
	if cliCtx.IsSet("host") {
		conf.Host = cliCtx.String("host")
	}

	if cliCtx.IsSet("port") {
		conf.Port = cliCtx.Int("port")
	}

	if cliCtx.IsSet("index") {
		conf.Index = cliCtx.String("index")
	}

	if cliCtx.IsSet("backend") {
		conf.Backend = cliCtx.String("backend")
	}

	if cliCtx.IsSet("scraper") {
		conf.Scraper = cliCtx.String("scraper")
	}

	if cliCtx.IsSet("start-url") {
		conf.StartURL = cliCtx.String("start-url")
	}

	if cliCtx.IsSet("crawl-depth") {
		conf.Crawl.Depth = cliCtx.Int("crawl-depth")
	}
}

func openIndex(path string) (*index.Index, error) {
	if path == "" {
		return index.NewMemOnly()
	}

	return index.Open(path)
}

func crawlInBackground(ctx context.Context, conf *config.Config, idx *index.Index) {
	c, err := command.NewCrawler(conf, idx)
	if err != nil {
		slog.ErrorContext(ctx, "could not create crawler", slog.Any("error", errors.WithStack(err)))
		return
	}

	slog.InfoContext(ctx, "crawling", slog.String("url", conf.StartURL))

	pages, err := c.Crawl(ctx, conf.StartURL)
	if err != nil {
		slog.ErrorContext(ctx, "crawl failed", slog.Int("pages", pages), slog.Any("error", errors.WithStack(err)))
		return
	}

	slog.InfoContext(ctx, "crawl completed", slog.Int("pages", pages))
}
