package schema

import (
	"encoding/json"
	"fmt"

	"github.com/bornholm/ownsearch/pkg/search"
	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func Schema() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON schema of the /q endpoint response",
		Action: func(cliCtx *cli.Context) error {
			data, err := Generate()
			if err != nil {
				return errors.WithStack(err)
			}

			fmt.Fprintln(cliCtx.App.Writer, string(data))

			return nil
		},
	}
}

// Generate returns the indented JSON schema of search.Response.
func Generate() ([]byte, error) {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
	}

	schema := reflector.Reflect(&search.Response{})

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return data, nil
}
