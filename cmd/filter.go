package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"oifits/pkg/filter"
	"oifits/pkg/oiio"
)

func newFilterCmd(a *app) *cobra.Command {
	var (
		clobber  bool
		specPath string
		spec     = filter.Default()
	)
	cmd := &cobra.Command{
		Use:   "filter [flags] INFILE OUTFILE",
		Short: "Keep the subset of an OIFITS file selected by the filter flags",
		Long: `Filter copies INFILE to OUTFILE keeping only the data selected by the
flags. Name patterns are globs. Ranges are inclusive. Flags given on the
command line override the values read from --spec.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveSpec(cmd.Flags(), specPath, spec)
			if err != nil {
				return err
			}
			ds, err := oiio.Read(args[0])
			if err != nil {
				return err
			}
			out, err := filter.Apply(ds, s)
			if err != nil {
				return err
			}
			return oiio.Write(out, args[1], clobber)
		},
	}
	cmd.Flags().BoolVar(&clobber, "clobber", false, "overwrite an existing output file")
	cmd.Flags().StringVar(&specPath, "spec", "", "filter spec file (yaml or toml)")
	spec.BindFlags(cmd.Flags())
	return cmd
}

// resolveSpec returns flagSpec when no spec file is given. Otherwise it
// loads the file and reapplies the filter flags set on the command line.
func resolveSpec(flags *pflag.FlagSet, path string, flagSpec filter.Spec) (filter.Spec, error) {
	if path == "" {
		return flagSpec, nil
	}
	spec, err := filter.LoadSpec(path)
	if err != nil {
		return spec, err
	}

	overlay := pflag.NewFlagSet("overlay", pflag.ContinueOnError)
	spec.BindFlags(overlay)
	flags.Visit(func(f *pflag.Flag) {
		if overlay.Lookup(f.Name) != nil && err == nil {
			err = overlay.Set(f.Name, f.Value.String())
		}
	})
	if err != nil {
		return spec, err
	}
	return spec, spec.Validate()
}
