package cmd

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"oifits/pkg/logging"
	"oifits/pkg/merge"
	"oifits/pkg/oifits"
	"oifits/pkg/oiio"
)

// maxParallelReads bounds the number of input files read at once.
const maxParallelReads = 4

func newMergeCmd(a *app) *cobra.Command {
	var clobber bool
	cmd := &cobra.Command{
		Use:   "merge OUTFILE INFILE1 INFILE2 [INFILE...]",
		Short: "Merge several OIFITS files into one",
		Long: `Merge combines the input files, in command-line order, into OUTFILE.
Targets are matched by name, identical arrays and wavelength tables are
shared, and colliding names are renamed.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := readAll(args[1:])
			if err != nil {
				return err
			}
			out, err := merge.Merge(inputs)
			if err != nil {
				return err
			}
			return oiio.Write(out, args[0], clobber)
		},
	}
	cmd.Flags().BoolVar(&clobber, "clobber", false, "overwrite an existing output file")
	return cmd
}

// readAll reads the files concurrently and returns them in argument order.
func readAll(paths []string) ([]*oifits.Dataset, error) {
	inputs := make([]*oifits.Dataset, len(paths))
	var g errgroup.Group
	g.SetLimit(maxParallelReads)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			ds, err := oiio.Read(path)
			if err != nil {
				return err
			}
			inputs[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logging.WithComponent("merge").Info("inputs read", "count", len(inputs))
	return inputs, nil
}
