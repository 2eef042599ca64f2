package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath  string
	manifestDir string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "routekit",
		Short:         "routekit composes plugin routes into a deterministic route table",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", defaultConfigPath, "Path to the routekit configuration file")
	cmd.PersistentFlags().StringVarP(&flags.manifestDir, "manifests", "m", "", "Plugin manifest directory (overrides the configuration)")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(newTableCmd(flags))
	cmd.AddCommand(newResolveCmd(flags))
	cmd.AddCommand(newValidateCmd(flags))
	cmd.AddCommand(newPluginsCmd(flags))
	cmd.AddCommand(newWatchCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
