package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/routekit/internal/routing"
)

type resolveOptions struct {
	jsonOutput bool
	strict     bool
}

func newResolveCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve <path>...",
		Short: "Resolve request paths against the route table",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, rootFlags, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail when any path has no matching route")

	return cmd
}

type resolveResult struct {
	Path    string            `json:"path"`
	Found   bool              `json:"found"`
	Plugin  string            `json:"plugin,omitempty"`
	Pattern string            `json:"pattern,omitempty"`
	Handler string            `json:"handler,omitempty"`
	Params  map[string]string `json:"params,omitempty"`
}

func runResolve(cmd *cobra.Command, rootFlags *rootFlags, opts *resolveOptions, paths []string) error {
	app, err := newAppContext(cmd.Context(), cmd, rootFlags, appOptions{})
	if err != nil {
		return err
	}
	reportSyncErrors(cmd, app)

	results := make([]resolveResult, len(paths))
	var missing []string
	for i, path := range paths {
		results[i] = toResolveResult(path, app.Registry.Resolve(path))
		if !results[i].Found {
			missing = append(missing, path)
		}
	}

	if opts.jsonOutput {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			return err
		}
	} else if err := renderResolveText(cmd.OutOrStdout(), results); err != nil {
		return err
	}

	if opts.strict && len(missing) > 0 {
		return newCommandError("resolve", "matching paths", fmt.Errorf("no route matches %s", strings.Join(missing, ", ")), "Run 'routekit table' to inspect the registered routes.")
	}
	return nil
}

func toResolveResult(path string, m routing.Match) resolveResult {
	if !m.Found {
		return resolveResult{Path: path}
	}
	return resolveResult{
		Path:    path,
		Found:   true,
		Plugin:  m.PluginID,
		Pattern: canonicalPattern(m.Route),
		Handler: handlerName(m.Route.Handler),
		Params:  m.Params,
	}
}

// canonicalPattern prints routes the way the table stores them, so /feed/
// declared by a plugin shows as /feed.
func canonicalPattern(r routing.Route) string {
	if p, ok := r.Compiled(); ok {
		return p.String()
	}
	return r.Pattern
}

func renderResolveText(out io.Writer, results []resolveResult) error {
	s := newStyler(out)
	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "PATH\tPLUGIN\tPATTERN\tHANDLER\tPARAMS")
	for _, r := range results {
		if !r.Found {
			fmt.Fprintf(writer, "%s\t%s\t-\t-\t-\n", r.Path, s.muted("no match"))
			continue
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n", r.Path, r.Plugin, r.Pattern, r.Handler, formatParams(r.Params))
	}
	return writer.Flush()
}

func formatParams(params map[string]string) string {
	if len(params) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + params[k]
	}
	return strings.Join(pairs, " ")
}
