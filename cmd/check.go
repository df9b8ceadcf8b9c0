package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"oifits/pkg/check"
	"oifits/pkg/oiio"
	"oifits/pkg/ui"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE",
		Short: "Check an OIFITS file for conformity",
		Long: `Check runs every conformity check on FILE and prints a report.
The command fails when any check finds a breach worse than a warning.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := oiio.Read(args[0])
			if err != nil {
				return err
			}
			reports := check.RunAll(ds, a.cfg.MaxReports)
			fmt.Fprint(cmd.OutOrStdout(), ui.CheckReport(args[0], reports))
			if worst := check.Worst(reports); worst > check.Warning {
				return fmt.Errorf("%s: %s", args[0], worst)
			}
			return nil
		},
	}
}
