package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-inputfilter/framework/app"
)

// errInvalid makes the process exit non-zero after the report was printed.
var errInvalid = errors.New("input is invalid")

type cli struct {
	envFiles []string
	app      *app.Application
	root     *cobra.Command
}

func newCLI() *cli {
	c := &cli{}

	c.root = &cobra.Command{
		Use:     "inputfilter",
		Version: app.Version,
		Short:   "Filter and validate structured data against a declarative spec",
		Long: `inputfilter builds an input filter tree from a YAML spec, runs a JSON or
YAML document through it and prints the filtered values and failure messages.

Quick Start:
  inputfilter validate --spec signup.yaml --data request.json
  cat request.json | inputfilter validate --spec signup.yaml
  inputfilter steps                       List registered filters and validators`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c.app = app.New(c.envFiles...)
			return c.app.Boot()
		},
	}
	c.root.PersistentFlags().StringSliceVar(&c.envFiles, "env", nil, "env files to load (default .env)")

	c.root.AddCommand(newValidateCmd(c), newStepsCmd(c))
	return c
}

// execute runs the command tree and closes the application afterwards.
// cobra skips post-run hooks when RunE fails, so closing happens here.
func (c *cli) execute(ctx context.Context) (err error) {
	defer func() {
		if c.app == nil || c.app.Closed() {
			return
		}
		if cerr := c.app.Close(); err == nil {
			err = cerr
		}
	}()
	return c.root.ExecuteContext(ctx)
}
