// Package cmd implements the oifits command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"oifits/pkg/config"
	"oifits/pkg/logging"
)

// app holds the state shared by the subcommands of one command tree.
type app struct {
	v   *viper.Viper
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           "oifits",
		Short:         "Merge, filter and check OIFITS interferometry files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Close()
		},
	}

	flags := config.FlagSet()
	root.PersistentFlags().AddFlagSet(flags)
	cobra.CheckErr(config.BindFlags(a.v, root.PersistentFlags()))

	root.AddCommand(
		newMergeCmd(a),
		newFilterCmd(a),
		newCheckCmd(a),
		newUpgradeCmd(a),
		newPointsCmd(a),
	)
	return root
}

// init resolves the configuration and starts logging.
func (a *app) init(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(a.v, path)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if err := logging.Init(cfg.Log); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	return nil
}

// Execute runs the command line and exits with status 1 on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "oifits:", err)
		_ = logging.Close()
		os.Exit(1)
	}
}
