package command

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/bornholm/ownsearch/internal/logx"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

func Main(name string, version string, usage string, commands ...*cli.Command) {
	app := &cli.App{
		Name:     name,
		Usage:    usage,
		Commands: commands,
		Version:  version,
		Before: func(ctx *cli.Context) error {
			workdir := ctx.String("workdir")
			// Switch to new working directory if defined
			if workdir != "" {
				if err := os.Chdir(workdir); err != nil {
					return errors.Wrap(err, "could not change working directory")
				}
			}

			level := ParseLogLevel(ctx.String("log-level"))
			if ctx.Bool("debug") {
				level = slog.LevelDebug
			}

			logger, err := NewLogger(os.Stderr, ctx.String("log-format"), level)
			if err != nil {
				return errors.WithStack(err)
			}

			slog.SetDefault(logger.With(slog.String("app", name)))

			return nil
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "workdir",
				Value:   "",
				EnvVars: []string{"OWNSEARCH_WORKDIR"},
				Usage:   "The working directory",
			},
			&cli.BoolFlag{
				Name:    "debug",
				EnvVars: []string{"OWNSEARCH_DEBUG"},
				Usage:   "Enable debug mode, implies debug log level and stack traces on errors",
			},
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{"OWNSEARCH_LOG_LEVEL"},
				Usage:   "Set logging level: debug, info, warn or error",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "log-format",
				EnvVars: []string{"OWNSEARCH_LOG_FORMAT"},
				Usage:   "Set logging format: text or json",
				Value:   LogFormatText,
			},
		},
	}

	app.ExitErrHandler = func(ctx *cli.Context, err error) {
		if err == nil {
			return
		}

		if !ctx.Bool("debug") {
			slog.ErrorContext(ctx.Context, err.Error())
		} else {
			slog.ErrorContext(ctx.Context, fmt.Sprintf("%+v", err))
		}
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		os.Exit(1)
	}
}

// ParseLogLevel maps a level name to its slog level, warn for unknown names.
func ParseLogLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// NewLogger returns a logger writing to w whose records carry the attributes
// attached to their context with logx.WithAttrs.
func NewLogger(w io.Writer, format string, level slog.Level) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler

	switch format {
	case LogFormatText, "":
		handler = slog.NewTextHandler(w, opts)
	case LogFormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, errors.Errorf("unknown log format '%s'", format)
	}

	return slog.New(logx.ContextHandler{Handler: handler}), nil
}
