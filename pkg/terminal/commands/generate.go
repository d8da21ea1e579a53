package commands

import (
	"fmt"

	"github.com/rcm-tools/revenue-atlas/pkg/models/domain"
	"github.com/rcm-tools/revenue-atlas/pkg/services/report"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb/metrics"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb/runs"
	"github.com/spf13/cobra"
)

// Reporter renders one generated report. Satisfied by the plain and table
// reporters in pkg/terminal.
type Reporter interface {
	Handle(report *domain.Report) error
}

type GenerateCmd struct {
	dbPath     string
	reportType string
	timeFrame  string
	comparison string
	startDate  string
	endDate    string
	groupBy    string
	sortBy     string
	limit      int
	now        string
	plain      bool

	tableReporter Reporter
	plainReporter Reporter
}

func NewGenerateCmd(dbPath string, table, plain Reporter) *cobra.Command {
	gc := &GenerateCmd{dbPath: dbPath, tableReporter: table, plainReporter: plain}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a report from the local claim store",
		RunE:  gc.run,
	}

	cmd.Flags().StringVar(&gc.dbPath, "db", dbPath, "Path to the local duckdb store")
	cmd.Flags().StringVar(&gc.reportType, "type", "", "Report type (see 'types')")
	cmd.Flags().StringVar(&gc.timeFrame, "time-frame", "", "Symbolic time frame override")
	cmd.Flags().StringVar(&gc.comparison, "comparison", "", "Comparison mode override")
	cmd.Flags().StringVar(&gc.startDate, "start", "", "Custom range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&gc.endDate, "end", "", "Custom range end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&gc.groupBy, "group-by", "", "Grouping dimension override")
	cmd.Flags().StringVar(&gc.sortBy, "sort-by", "", "Sort key override")
	cmd.Flags().IntVar(&gc.limit, "limit", 0, "Row limit override")
	cmd.Flags().StringVar(&gc.now, "now", "", "Anchor date for relative frames (YYYY-MM-DD, defaults to today)")
	cmd.Flags().BoolVar(&gc.plain, "plain", false, "Render without table borders")

	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func (gc *GenerateCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	now, err := parseDateFlag("now", gc.now)
	if err != nil {
		return err
	}

	req, err := buildResolveRequest(gc.reportType, gc.timeFrame, gc.comparison, gc.startDate, gc.endDate)
	if err != nil {
		return err
	}

	reportParams := report.Resolve(req, now)
	if gc.groupBy != "" {
		reportParams.GroupBy = gc.groupBy
	}
	if gc.sortBy != "" {
		reportParams.SortBy = gc.sortBy
	}
	if gc.limit > 0 {
		reportParams.Limit = gc.limit
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: gc.dbPath})
	if err != nil {
		return fmt.Errorf("failed to open local store %s: %w", gc.dbPath, err)
	}
	defer db.Close()

	metricStore, err := metrics.NewStore(db)
	if err != nil {
		return err
	}
	runStore, err := runs.NewStore(db)
	if err != nil {
		return err
	}
	generator, err := report.NewGenerator(metricStore)
	if err != nil {
		return err
	}
	svc, err := report.NewService(generator, runStore)
	if err != nil {
		return err
	}

	generated, err := svc.Generate(ctx, report.GenerateRequest{
		Type:       req.Type,
		Parameters: reportParams,
	})
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	reporter := gc.tableReporter
	if gc.plain {
		reporter = gc.plainReporter
	}
	return reporter.Handle(generated)
}
