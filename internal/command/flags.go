package command

import (
	"github.com/bornholm/ownsearch/internal/config"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

const FlagConfig = "config"

func ConfigFlag() cli.Flag {
	return &cli.StringFlag{
		Name:      FlagConfig,
		Value:     config.DefaultPath,
		Aliases:   []string{"f"},
		EnvVars:   []string{"OWNSEARCH_CONFIG"},
		Usage:     "Path to the YAML configuration file",
		TakesFile: true,
	}
}

// LoadConfig loads the configuration file named by the config flag. The
// default file is optional, an explicitly given one is not.
func LoadConfig(ctx *cli.Context) (*config.Config, error) {
	conf, err := config.Load(ctx.String(FlagConfig), ctx.IsSet(FlagConfig))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return conf, nil
}
