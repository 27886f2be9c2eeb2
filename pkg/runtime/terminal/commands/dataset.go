package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Amadeus750/spend-streamlet/pkg/models/domain"
	"github.com/Amadeus750/spend-streamlet/pkg/services/config"
)

// datasetFlags are the dataset selection flags shared by every command:
// either a named profile from the registry or a direct file path with its
// own fiscal calendar and currency.
type datasetFlags struct {
	profile              string
	path                 string
	fiscalYearStartMonth int
	currency             string
}

func resolveDatasetRef(ctx context.Context, profiles config.ProfileRegistry, flags datasetFlags) (*domain.DatasetRef, error) {
	switch {
	case flags.profile != "" && flags.path != "":
		return nil, fmt.Errorf("--profile and --dataset are mutually exclusive")
	case flags.profile != "":
		if profiles == nil {
			return nil, fmt.Errorf("no profile registry configured; use --dataset instead")
		}
		return profiles.GetProfile(ctx, flags.profile)
	case flags.path != "":
		if flags.fiscalYearStartMonth < 1 || flags.fiscalYearStartMonth > 12 {
			return nil, fmt.Errorf("fiscal year start month %d out of range", flags.fiscalYearStartMonth)
		}
		return &domain.DatasetRef{
			Name:                 datasetName(flags.path),
			Path:                 flags.path,
			FiscalYearStartMonth: flags.fiscalYearStartMonth,
			Currency:             flags.currency,
		}, nil
	default:
		return nil, fmt.Errorf("either --profile or --dataset is required")
	}
}

// datasetName derives a dataset name from a file path, stripping the whole
// extension chain so spend.csv.gz and spend.parquet share a name.
func datasetName(path string) string {
	name := filepath.Base(path)
	for {
		ext := filepath.Ext(name)
		if ext == "" || ext == name {
			return name
		}
		name = strings.TrimSuffix(name, ext)
	}
}
