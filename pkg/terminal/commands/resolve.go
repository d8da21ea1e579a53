package commands

import (
	"fmt"
	"time"

	"github.com/rcm-tools/revenue-atlas/pkg/models/domain"
	"github.com/rcm-tools/revenue-atlas/pkg/services/report"
	"github.com/rcm-tools/revenue-atlas/pkg/services/timeframe"
	"github.com/spf13/cobra"
)

type ResolveCmd struct {
	reportType string
	timeFrame  string
	comparison string
	startDate  string
	endDate    string
	now        string
}

func NewResolveCmd() *cobra.Command {
	rc := &ResolveCmd{}
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve report parameters into concrete date windows",
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.reportType, "type", "", "Report type (see 'types')")
	cmd.Flags().StringVar(&rc.timeFrame, "time-frame", "", "Symbolic time frame override")
	cmd.Flags().StringVar(&rc.comparison, "comparison", "", "Comparison mode override")
	cmd.Flags().StringVar(&rc.startDate, "start", "", "Custom range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&rc.endDate, "end", "", "Custom range end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&rc.now, "now", "", "Anchor date for relative frames (YYYY-MM-DD, defaults to today)")

	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func (rc *ResolveCmd) run(cmd *cobra.Command, args []string) error {
	now, err := parseDateFlag("now", rc.now)
	if err != nil {
		return err
	}

	req, err := buildResolveRequest(rc.reportType, rc.timeFrame, rc.comparison, rc.startDate, rc.endDate)
	if err != nil {
		return err
	}

	resolved := report.Resolve(req, now)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Report type: %s\n", req.Type.Label())
	fmt.Fprintf(out, "Time frame: %s\n", resolved.TimeFrame.Label())
	fmt.Fprintf(out, "Period: %s to %s\n", resolved.DateRange.Start(), resolved.DateRange.End())
	fmt.Fprintf(out, "Comparison: %s\n", resolved.ComparisonType.Label())
	if resolved.ComparisonDateRange.IsResolved() {
		fmt.Fprintf(out, "Comparison period: %s to %s\n",
			resolved.ComparisonDateRange.Start(), resolved.ComparisonDateRange.End())
	}
	if resolved.GroupBy != "" {
		fmt.Fprintf(out, "Grouped by %s, sorted by %s, top %d\n", resolved.GroupBy, resolved.SortBy, resolved.Limit)
	}
	return nil
}

// buildResolveRequest translates the shared flag set into a resolve request.
// A custom range without an explicit time frame implies the custom frame.
func buildResolveRequest(reportType, timeFrame, comparison, startDate, endDate string) (report.ResolveRequest, error) {
	req := report.ResolveRequest{Type: domain.ReportType(reportType)}

	if timeFrame != "" {
		tf := domain.TimeFrame(timeFrame)
		req.TimeFrame = &tf
	}
	if comparison != "" {
		ct := domain.ComparisonType(comparison)
		req.ComparisonType = &ct
	}
	if startDate != "" || endDate != "" {
		if startDate == "" || endDate == "" {
			return report.ResolveRequest{}, fmt.Errorf("custom ranges need both --start and --end")
		}
		cr := domain.NewDateRange(startDate, endDate)
		req.CustomRange = &cr
		if req.TimeFrame == nil {
			tf := domain.TimeFrameCustom
			req.TimeFrame = &tf
		}
	}
	return req, nil
}

func parseDateFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC(), nil
	}
	t, ok := timeframe.ParseDate(value)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid --%s date %q. Expected format: YYYY-MM-DD", name, value)
	}
	return t, nil
}
