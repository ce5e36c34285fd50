package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/newthinker/quotegate/internal/router"
	"github.com/spf13/cobra"
)

var routeCmd = &cobra.Command{
	Use:   "route SYMBOL...",
	Short: "Show the data source and vendor symbol for each argument",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRoute,
}

func init() {
	rootCmd.AddCommand(routeCmd)
}

func runRoute(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	r := router.New(cfg.Routing.RouterConfig(), nil)

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tSOURCE\tCANONICAL")
	for _, sym := range args {
		decision, canonical := r.Route(sym)
		fmt.Fprintf(tw, "%s\t%s\t%q\n", sym, decision, canonical)
	}
	return tw.Flush()
}
