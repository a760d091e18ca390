package search

import (
	"bufio"
	"context"
	"html/template"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bornholm/ownsearch/pkg/render"
	"github.com/bornholm/ownsearch/pkg/search/remote"
	"github.com/bornholm/ownsearch/pkg/widget"
	"github.com/gosimple/slug"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

func Search() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Query the /q endpoint of a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "endpoint",
				Aliases: []string{"e"},
				Value:   "http://127.0.0.1:8080" + remote.DefaultPath,
				EnvVars: []string{"OWNSEARCH_ENDPOINT"},
				Usage:   "Url of the search endpoint",
			},
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Run a single query and write the rendered results, read queries from stdin otherwise",
			},
			&cli.StringFlag{
				Name:    "format",
				Value:   FormatHTML,
				EnvVars: []string{"OWNSEARCH_FORMAT"},
				Usage:   "Output format of a single query: html or markdown",
			},
			&cli.StringFlag{
				Name:      "output",
				Aliases:   []string{"o"},
				Usage:     "Output file of a single query, default to the slug of the query",
				TakesFile: true,
			},
		},
		Action: func(cliCtx *cli.Context) error {
			ctx, stop := signal.NotifyContext(cliCtx.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client, err := remote.NewClient(cliCtx.String("endpoint"))
			if err != nil {
				return errors.WithStack(err)
			}

			if !cliCtx.IsSet("query") {
				view := widget.NewTerminalView(cliCtx.App.Writer, cliCtx.App.ErrWriter)
				controller := widget.NewController(client, view)

				return Interactive(ctx, controller, cliCtx.App.Reader)
			}

			query := cliCtx.String("query")
			format := cliCtx.String("format")

			if format != FormatHTML && format != FormatMarkdown {
				return errors.Errorf("unknown format '%s'", format)
			}

			view, err := widget.NewDocumentView(nil)
			if err != nil {
				return errors.WithStack(err)
			}

			controller := widget.NewController(client, view)

			if err := controller.Submit(ctx, query); err != nil {
				return errors.WithStack(err)
			}

			controller.Wait()

			output := cliCtx.String("output")
			if output == "" {
				output = slug.Make(query) + "." + extension(format)
			}

			data, err := export(view, format)
			if err != nil {
				return errors.WithStack(err)
			}

			if err := os.WriteFile(output, []byte(data), 0644); err != nil {
				return errors.Wrapf(err, "failed to write results")
			}

			slog.InfoContext(ctx, "results written", slog.String("output", output))

			return nil
		},
	}
}

// Interactive submits each line read from input as a query. A new line
// supersedes the query still in flight.
func Interactive(ctx context.Context, controller *widget.Controller, input io.Reader) error {
	scanner := bufio.NewScanner(input)

	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}

		if err := controller.Submit(ctx, scanner.Text()); err != nil {
			var validationErr *widget.ValidationError
			if errors.As(err, &validationErr) {
				continue
			}

			return errors.WithStack(err)
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.WithStack(err)
	}

	controller.Wait()

	return nil
}

func export(view *widget.DocumentView, format string) (string, error) {
	if format == FormatHTML {
		return view.HTML()
	}

	content, err := view.Content()
	if err != nil {
		return "", errors.WithStack(err)
	}

	markdown, err := render.Markdown(template.HTML(content))
	if err != nil {
		return "", errors.WithStack(err)
	}

	return markdown, nil
}

func extension(format string) string {
	if format == FormatMarkdown {
		return "md"
	}

	return "html"
}
