package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-inputfilter/framework/inputfilter"
)

// report is the JSON document printed by validate.
type report struct {
	Valid    bool           `json:"valid"`
	Values   map[string]any `json:"values"`
	Messages map[string]any `json:"messages"`
	Unknown  map[string]any `json:"unknown,omitempty"`
}

type validateOptions struct {
	spec   string
	data   string
	group  []string
	raw    bool
	strict bool
	indent bool
	watch  bool
}

func newValidateCmd(c *cli) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:     "validate",
		Aliases: []string{"v"},
		Short:   "Validate a data document against a spec",
		Long: `Validate loads the spec, reads the data document (a file, or stdin when
--data is omitted or "-"), and prints {valid, values, messages, unknown} as JSON.
The exit status is non-zero when the data is invalid.

With --watch the spec and data files are re-read and validated on every change
until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.watch {
				return c.watch(cmd, opts)
			}
			valid, err := c.validate(cmd, opts)
			if err != nil {
				return err
			}
			if !valid {
				return errInvalid
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.spec, "spec", "s", "", "spec file (relative paths resolve against INPUTFILTER_SPEC_DIR)")
	cmd.Flags().StringVarP(&opts.data, "data", "d", "-", "data file, JSON or YAML (- for stdin)")
	cmd.Flags().StringSliceVarP(&opts.group, "group", "g", nil, "validate only these top-level fields")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "print raw values instead of filtered ones")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail when the data has unknown fields (also INPUTFILTER_STRICT_UNKNOWN)")
	cmd.Flags().BoolVar(&opts.indent, "pretty", true, "indent the JSON output")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-validate whenever the spec or data file changes")
	_ = cmd.MarkFlagRequired("spec")

	return cmd
}

// specPath resolves the --spec flag against INPUTFILTER_SPEC_DIR.
func (c *cli) specPath(opts *validateOptions) string {
	if filepath.IsAbs(opts.spec) {
		return opts.spec
	}
	return filepath.Join(c.app.Config().InputFilter.SpecDir, opts.spec)
}

// validate runs one spec/data pass and prints the report.
func (c *cli) validate(cmd *cobra.Command, opts *validateOptions) (bool, error) {
	cfg := c.app.Config()
	logger, err := c.app.Logger()
	if err != nil {
		return false, err
	}
	factory, err := c.app.Factory()
	if err != nil {
		return false, err
	}

	specPath := c.specPath(opts)
	spec, err := inputfilter.LoadSpecFile(specPath)
	if err != nil {
		return false, err
	}
	form, err := factory.CreateInputFilter(spec)
	if err != nil {
		return false, fmt.Errorf("build %s: %w", specPath, err)
	}
	if err := form.SetValidationGroup(opts.group...); err != nil {
		return false, err
	}

	data, err := readData(cmd.InOrStdin(), opts.data)
	if err != nil {
		return false, err
	}
	if err := form.SetData(data); err != nil {
		return false, err
	}

	valid, err := form.IsValid(nil)
	if err != nil {
		return false, err
	}
	unknown, err := form.Unknown()
	if err != nil {
		return false, err
	}

	out := report{Valid: valid, Values: form.Values(), Messages: form.Messages(), Unknown: unknown}
	if opts.raw {
		out.Values = form.RawValues()
	}
	if (opts.strict || cfg.InputFilter.StrictUnknown) && len(unknown) > 0 {
		out.Valid = false
	}

	logger.Info("validated",
		zap.String("spec", specPath),
		zap.Bool("valid", out.Valid),
		zap.Int("failed", len(out.Messages)),
		zap.Int("unknown", len(unknown)),
	)

	enc := json.NewEncoder(cmd.OutOrStdout())
	if opts.indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(out); err != nil {
		return false, err
	}
	return out.Valid, nil
}

// readData decodes a JSON or YAML mapping; JSON is read by the YAML decoder.
func readData(r io.Reader, path string) (map[string]any, error) {
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	data := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&data); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	return data, nil
}
