package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/routekit/internal/routing"
)

type tableOptions struct {
	jsonOutput bool
}

func newTableCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &tableOptions{}

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the composed route table in resolution order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTable(cmd, rootFlags, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func runTable(cmd *cobra.Command, rootFlags *rootFlags, opts *tableOptions) error {
	app, err := newAppContext(cmd.Context(), cmd, rootFlags, appOptions{})
	if err != nil {
		return err
	}
	reportSyncErrors(cmd, app)

	table := app.Registry.CurrentTable()
	if opts.jsonOutput {
		return renderTableJSON(cmd.OutOrStdout(), table)
	}
	return renderTableText(cmd.OutOrStdout(), table)
}

func renderTableText(out io.Writer, table *routing.Table) error {
	s := newStyler(out)

	fmt.Fprintln(out, s.header(fmt.Sprintf("Route table v%d (%d routes)", table.Version(), table.Len())))

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "#\tPATTERN\tPLUGIN\tPRIORITY\tOVERRIDE\tHANDLER")
	for i, e := range table.Entries() {
		fmt.Fprintf(writer, "%d\t%s\t%s\t%d\t%s\t%s\n",
			i+1,
			e.Pattern().String(),
			e.PluginID,
			e.Route.Priority,
			strconv.FormatBool(e.Route.Override),
			handlerName(e.Route.Handler),
		)
	}
	if err := writer.Flush(); err != nil {
		return err
	}

	overridden := table.Overridden()
	if len(overridden) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, s.muted("Overridden routes:"))
	writer = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, e := range overridden {
		fmt.Fprintf(writer, "  %s\t%s\t%s\n", e.Pattern().String(), e.PluginID, handlerName(e.Route.Handler))
	}
	return writer.Flush()
}

type tableJSONRoute struct {
	Pattern  string `json:"pattern"`
	Plugin   string `json:"plugin"`
	Priority int    `json:"priority"`
	Override bool   `json:"override"`
	Handler  string `json:"handler"`
}

type tableJSONPayload struct {
	Version    uint64           `json:"version"`
	Count      int              `json:"count"`
	Routes     []tableJSONRoute `json:"routes"`
	Overridden []tableJSONRoute `json:"overridden"`
}

func renderTableJSON(out io.Writer, table *routing.Table) error {
	payload := tableJSONPayload{
		Version:    table.Version(),
		Count:      table.Len(),
		Routes:     toJSONRoutes(table.Entries()),
		Overridden: toJSONRoutes(table.Overridden()),
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func toJSONRoutes(entries []routing.Entry) []tableJSONRoute {
	out := make([]tableJSONRoute, len(entries))
	for i, e := range entries {
		out[i] = tableJSONRoute{
			Pattern:  e.Pattern().String(),
			Plugin:   e.PluginID,
			Priority: e.Route.Priority,
			Override: e.Route.Override,
			Handler:  handlerName(e.Route.Handler),
		}
	}
	return out
}

func handlerName(handler any) string {
	switch h := handler.(type) {
	case nil:
		return "-"
	case string:
		return h
	case fmt.Stringer:
		return h.String()
	default:
		return fmt.Sprintf("%v", h)
	}
}

// reportSyncErrors prints manifest registration failures without failing
// commands that only read the table.
func reportSyncErrors(cmd *cobra.Command, app *AppContext) {
	if app.SyncErr == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "warning: some plugins were not added to the table:\n%v\n", app.SyncErr)
}
