package commands

import (
	"fmt"

	"github.com/rcm-tools/revenue-atlas/pkg/models/domain"
	"github.com/rcm-tools/revenue-atlas/pkg/services/params"
	"github.com/spf13/cobra"
)

func NewTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List report types, time frames and comparison modes",
		RunE:  runTypes,
	}
}

func runTypes(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Report types:")
	for _, rt := range domain.ReportTypes {
		groupBy, sortBy := params.DefaultGrouping(rt)
		if groupBy == "" {
			fmt.Fprintf(out, "  %-28s %s\n", string(rt), rt.Label())
			continue
		}
		fmt.Fprintf(out, "  %-28s %s (grouped by %s, sorted by %s)\n", string(rt), rt.Label(), groupBy, sortBy)
	}

	fmt.Fprintln(out, "\nTime frames:")
	for _, tf := range domain.TimeFrames {
		fmt.Fprintf(out, "  %-28s %s\n", string(tf), tf.Label())
	}

	fmt.Fprintln(out, "\nComparison types:")
	for _, ct := range domain.ComparisonTypes {
		fmt.Fprintf(out, "  %-28s %s\n", string(ct), ct.Label())
	}
	return nil
}
