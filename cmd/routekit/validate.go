package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/routekit/internal/plugin"
)

func newValidateCmd(rootFlags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and every plugin manifest",
		Long: "Validate parses the configuration and every manifest, then composes the route table " +
			"with conflicts rejected. It fails on the first invalid file or on any route conflict.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, rootFlags)
		},
	}

	return cmd
}

func runValidate(cmd *cobra.Command, rootFlags *rootFlags) error {
	app, err := newAppContext(cmd.Context(), cmd, rootFlags, appOptions{
		policy:             plugin.PolicyReject,
		requireManifestDir: true,
	})
	if err != nil {
		return err
	}

	if app.SyncErr != nil {
		return newCommandError("validate", "composing the route table", app.SyncErr, "Mark one of the conflicting routes with 'override: true' or change its pattern.")
	}

	table := app.Registry.CurrentTable()
	s := newStyler(cmd.OutOrStdout())
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d manifests valid: %d routes, %d overridden (table v%d)\n",
		s.check(),
		len(app.Watcher.Sources()),
		table.Len(),
		len(table.Overridden()),
		table.Version(),
	)
	return nil
}
