package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Amadeus750/spend-streamlet/pkg/models/domain"
	"github.com/Amadeus750/spend-streamlet/pkg/services/config"
	"github.com/Amadeus750/spend-streamlet/pkg/services/spend"
)

type DimensionsCmd struct {
	profile              string
	datasetPath          string
	fiscalYearStartMonth int
	currency             string

	registry spend.Registry
	profiles config.ProfileRegistry
}

func NewDimensionsCmd(registry spend.Registry, profiles config.ProfileRegistry) *cobra.Command {
	dc := &DimensionsCmd{registry: registry, profiles: profiles}
	cmd := &cobra.Command{
		Use:   "dimensions",
		Short: "List filterable values for a dataset",
		RunE:  dc.run,
	}

	cmd.Flags().StringVar(&dc.profile, "profile", "", "Dataset profile name from the registry")
	cmd.Flags().StringVar(&dc.datasetPath, "dataset", "", "Path to a spend file (CSV or Parquet)")
	cmd.Flags().IntVar(&dc.fiscalYearStartMonth, "fiscal-year-start", 1, "First month of the fiscal year for --dataset files")
	cmd.Flags().StringVar(&dc.currency, "currency", "USD", "Display currency for --dataset files")

	return cmd
}

func (dc *DimensionsCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ref, err := resolveDatasetRef(ctx, dc.profiles, datasetFlags{
		profile:              dc.profile,
		path:                 dc.datasetPath,
		fiscalYearStartMonth: dc.fiscalYearStartMonth,
		currency:             dc.currency,
	})
	if err != nil {
		return err
	}

	explorer, err := dc.registry.ResolveExplorer(ctx, *ref)
	if err != nil {
		return fmt.Errorf("failed to open dataset %s: %w", ref.Name, err)
	}

	options, err := explorer.FilterOptions(ctx, domain.Selection{})
	if err != nil {
		return fmt.Errorf("failed to list dimensions: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Dimensions for %s:\n\n", ref.Name)

	fmt.Fprintln(out, "Fiscal years:")
	if len(options.FiscalYears) == 0 {
		fmt.Fprintln(out, "  (none)")
	}
	for _, y := range options.FiscalYears {
		fmt.Fprintf(out, "  FY%d (%d transactions)\n", y.Year, y.Transactions)
	}

	printOptions(out, "Categories", options.Categories)
	printOptions(out, "Sub categories", options.SubCategories)
	printOptions(out, "Vendors", options.Vendors)

	return nil
}

func printOptions(out io.Writer, title string, options []domain.FilterOption) {
	fmt.Fprintf(out, "\n%s:\n", title)
	if len(options) == 0 {
		fmt.Fprintln(out, "  (none)")
		return
	}
	for _, o := range options {
		fmt.Fprintf(out, "  %s (%d transactions)\n", o.Value, o.Transactions)
	}
}
