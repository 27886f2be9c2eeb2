package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Amadeus750/spend-streamlet/pkg/models/domain"
	"github.com/Amadeus750/spend-streamlet/pkg/runtime/terminal/export"
	"github.com/Amadeus750/spend-streamlet/pkg/services/config"
	"github.com/Amadeus750/spend-streamlet/pkg/services/spend"
)

type ReportCmd struct {
	profile              string
	datasetPath          string
	fiscalYearStartMonth int
	currency             string
	fiscalYears          []int
	categories           []string
	subCategories        []string
	vendors              []string
	top                  int

	registry spend.Registry
	profiles config.ProfileRegistry
	reporter *export.Reporter
}

func NewReportCmd(registry spend.Registry, profiles config.ProfileRegistry, reporter *export.Reporter) *cobra.Command {
	rc := &ReportCmd{registry: registry, profiles: profiles, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize spend for a dataset",
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.profile, "profile", "", "Dataset profile name from the registry")
	cmd.Flags().StringVar(&rc.datasetPath, "dataset", "", "Path to a spend file (CSV or Parquet)")
	cmd.Flags().IntVar(&rc.fiscalYearStartMonth, "fiscal-year-start", 1, "First month of the fiscal year for --dataset files")
	cmd.Flags().StringVar(&rc.currency, "currency", "USD", "Display currency for --dataset files")
	cmd.Flags().IntSliceVar(&rc.fiscalYears, "fiscal-year", nil, "Restrict the report to these fiscal years")
	cmd.Flags().StringSliceVar(&rc.categories, "category", nil, "Restrict the report to these categories")
	cmd.Flags().StringSliceVar(&rc.subCategories, "sub-category", nil, "Restrict the report to these sub categories")
	cmd.Flags().StringSliceVar(&rc.vendors, "vendor", nil, "Restrict the report to these vendors")
	cmd.Flags().IntVar(&rc.top, "top", 10, "Number of categories to list")

	return cmd
}

func (rc *ReportCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ref, err := resolveDatasetRef(ctx, rc.profiles, datasetFlags{
		profile:              rc.profile,
		path:                 rc.datasetPath,
		fiscalYearStartMonth: rc.fiscalYearStartMonth,
		currency:             rc.currency,
	})
	if err != nil {
		return err
	}

	explorer, err := rc.registry.ResolveExplorer(ctx, *ref)
	if err != nil {
		return fmt.Errorf("failed to open dataset %s: %w", ref.Name, err)
	}

	report, err := explorer.Report(ctx, domain.Selection{
		FiscalYears:   rc.fiscalYears,
		Categories:    rc.categories,
		SubCategories: rc.subCategories,
		Vendors:       rc.vendors,
	}, rc.top)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	return rc.reporter.Handle(report)
}
