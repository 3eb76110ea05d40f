package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/app"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/kernel"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/pathsupport"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/routing"
)

func newRoutesCmd(flags *cliFlags) *cobra.Command {
	var jsonapiOrder bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the route table",
		Long: `Print the route table in matching order. With --jsonapi the table is
printed in the order used for requests carrying the JSON:API media type.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags.configPath)
			if err != nil {
				return err
			}

			routes := app.BuildSite(cfg).Routes
			if jsonapiOrder {
				req := &kernel.Request{Header: http.Header{"Content-Type": {pathsupport.MediaType}}}
				routes = pathsupport.RouteFilter{}.Filter(routes, req)
			}
			return printRoutes(cmd.OutOrStdout(), routes)
		},
	}

	cmd.Flags().BoolVar(&jsonapiOrder, "jsonapi", false, "order routes as for JSON:API requests")
	return cmd
}

func printRoutes(out io.Writer, routes *routing.Collection) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tMETHODS\tPATH\tFORMAT\tCONTROLLER\tCONDITION")

	for name, route := range routes.All() {
		methods := "ANY"
		if len(route.Methods) > 0 {
			methods = strings.Join(route.Methods, "|")
		}
		condition := route.Condition
		if condition == "" {
			condition = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			name, methods, route.Path, strings.Join(route.Formats(), "|"), route.Controller(), condition)
	}
	return w.Flush()
}
