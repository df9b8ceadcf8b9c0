package cmd

import (
	"github.com/spf13/cobra"

	"oifits/pkg/merge"
	"oifits/pkg/oiio"
)

func newUpgradeCmd(a *app) *cobra.Command {
	var clobber bool
	cmd := &cobra.Command{
		Use:   "upgrade INFILE OUTFILE",
		Short: "Convert an OIFITS 1 file to OIFITS 2",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := oiio.Read(args[0])
			if err != nil {
				return err
			}
			return oiio.Write(merge.Upgrade(ds), args[1], clobber)
		},
	}
	cmd.Flags().BoolVar(&clobber, "clobber", false, "overwrite an existing output file")
	return cmd
}
