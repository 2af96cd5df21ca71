package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStepsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "List the filters and validators a spec can name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := c.app.Registry()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Filters:")
			for _, name := range reg.Filters() {
				fmt.Fprintf(out, "  %s\n", name)
			}
			fmt.Fprintln(out, "Validators:")
			for _, name := range reg.Validators() {
				fmt.Fprintf(out, "  %s\n", name)
			}
			return nil
		},
	}
}
