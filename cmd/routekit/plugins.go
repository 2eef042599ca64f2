package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/routekit/internal/plugin"
)

type pluginsOptions struct {
	jsonOutput bool
}

func newPluginsCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &pluginsOptions{}

	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "List registered plugins and their state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlugins(cmd, rootFlags, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

type pluginJSON struct {
	ID       string       `json:"id"`
	State    plugin.State `json:"state"`
	Sequence uint64       `json:"sequence"`
	Routes   int          `json:"routes"`
	Source   string       `json:"source"`
}

func runPlugins(cmd *cobra.Command, rootFlags *rootFlags, opts *pluginsOptions) error {
	app, err := newAppContext(cmd.Context(), cmd, rootFlags, appOptions{})
	if err != nil {
		return err
	}
	reportSyncErrors(cmd, app)

	sources := app.Watcher.Sources()
	statuses := app.Registry.Plugins()

	rows := make([]pluginJSON, len(statuses))
	for i, st := range statuses {
		source, ok := sources[st.ID]
		if !ok {
			source = "built-in"
		}
		rows[i] = pluginJSON{ID: st.ID, State: st.State, Sequence: st.Sequence, Routes: st.Routes, Source: source}
	}

	if opts.jsonOutput {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(rows)
	}

	s := newStyler(cmd.OutOrStdout())
	writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tSTATE\tSEQ\tROUTES\tSOURCE")
	for _, row := range rows {
		source := row.Source
		if source != "built-in" {
			source = filepath.Base(source)
		}
		fmt.Fprintf(writer, "%s\t%s\t%d\t%d\t%s\n", row.ID, s.state(row.State), row.Sequence, row.Routes, source)
	}
	return writer.Flush()
}
