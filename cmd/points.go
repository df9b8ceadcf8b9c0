package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"oifits/pkg/filter"
	"oifits/pkg/iterator"
	"oifits/pkg/oifits"
	"oifits/pkg/oiio"
)

func newPointsCmd(a *app) *cobra.Command {
	var (
		kind string
		spec = filter.Default()
	)
	cmd := &cobra.Command{
		Use:   "points [flags] FILE",
		Short: "List the data points selected by the filter flags",
		Long: `Points prints one line per (record, channel) data point of the chosen
kind (vis, vis2 or t3) that passes the filter flags.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := oiio.Read(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			switch kind {
			case "vis":
				it, err := iterator.NewVisIterator(ds, &spec)
				if err != nil {
					return err
				}
				return printPoints(w, it, func(r oifits.VisRecord, ch int) string {
					return fmt.Sprintf("%g %g", r.VisAmp[ch], r.VisPhi[ch])
				})
			case "vis2":
				it, err := iterator.NewVis2Iterator(ds, &spec)
				if err != nil {
					return err
				}
				return printPoints(w, it, func(r oifits.Vis2Record, ch int) string {
					return fmt.Sprintf("%g %g", r.Vis2Data[ch], r.Vis2Err[ch])
				})
			case "t3":
				it, err := iterator.NewT3Iterator(ds, &spec)
				if err != nil {
					return err
				}
				return printPoints(w, it, func(r oifits.T3Record, ch int) string {
					return fmt.Sprintf("%g %g", r.T3Amp[ch], r.T3Phi[ch])
				})
			default:
				return fmt.Errorf("unknown kind %q, want vis, vis2 or t3", kind)
			}
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "vis2", "data kind: vis, vis2 or t3")
	spec.BindFlags(cmd.Flags())
	return cmd
}

// printPoints writes "target mjd wavelength values..." for every point.
func printPoints[R oifits.Record[R]](w io.Writer, it *iterator.PointIterator[R], values func(R, int) string) error {
	for it.HasNext() {
		p, err := it.Next()
		if err != nil {
			return err
		}
		name := ""
		if t := it.Target(p); t != nil {
			name = t.Name
		}
		if _, err := fmt.Fprintf(w, "%q %.5f %.4e %s\n", name, p.Record.ObsMJD(), p.EffWave,
			values(p.Record, p.Channel)); err != nil {
			return err
		}
	}
	return nil
}
