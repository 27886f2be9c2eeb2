package spend

import (
	"fmt"
	"sort"
	"time"

	"github.com/Amadeus750/spend-streamlet/pkg/models/domain"
	"github.com/Amadeus750/spend-streamlet/pkg/models/store"
)

// fillMonths turns the observed month totals into a dense ascending series.
// Months between the first and last observed transaction with no activity
// appear as zero points; a gap rendered as a missing bucket would read as a
// chart artifact rather than as no spend.
func fillMonths(totals []store.MonthlyTotal) []domain.TrendPoint {
	points := make([]domain.TrendPoint, 0, len(totals))
	if len(totals) == 0 {
		return points
	}

	observed := make(map[string]store.MonthlyTotal, len(totals))
	for _, t := range totals {
		observed[monthLabel(t.Year, t.Month)] = t
	}

	first := time.Date(totals[0].Year, totals[0].Month, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(totals[len(totals)-1].Year, totals[len(totals)-1].Month, 1, 0, 0, 0, 0, time.UTC)

	for cursor := first; !cursor.After(last); cursor = cursor.AddDate(0, 1, 0) {
		label := monthLabel(cursor.Year(), cursor.Month())
		point := domain.TrendPoint{Label: label}
		if t, ok := observed[label]; ok {
			point.Total = t.Total
			point.Transactions = t.Transactions
		}
		points = append(points, point)
	}
	return points
}

// fillFiscalYears does the same densification for fiscal year buckets.
func fillFiscalYears(totals []store.FiscalYearTotal) []domain.TrendPoint {
	points := make([]domain.TrendPoint, 0, len(totals))
	if len(totals) == 0 {
		return points
	}

	observed := make(map[int]store.FiscalYearTotal, len(totals))
	for _, t := range totals {
		observed[t.Year] = t
	}

	for year := totals[0].Year; year <= totals[len(totals)-1].Year; year++ {
		point := domain.TrendPoint{Label: fiscalYearLabel(year)}
		if t, ok := observed[year]; ok {
			point.Total = t.Total
			point.Transactions = t.Transactions
		}
		points = append(points, point)
	}
	return points
}

// assembleSunburst groups sub category totals under their categories. The
// parent figures are accumulated from the children, never queried
// separately, so both rings always add up to the same spend.
func assembleSunburst(totals []store.SubCategoryTotal) []domain.SunburstNode {
	nodes := make([]domain.SunburstNode, 0)
	index := make(map[string]int)

	for _, t := range totals {
		i, ok := index[t.Category]
		if !ok {
			i = len(nodes)
			index[t.Category] = i
			nodes = append(nodes, domain.SunburstNode{Category: t.Category})
		}
		nodes[i].Total += t.Total
		nodes[i].Transactions += t.Transactions
		nodes[i].Children = append(nodes[i].Children, domain.SunburstSlice{
			SubCategory:  t.SubCategory,
			Total:        t.Total,
			Transactions: t.Transactions,
		})
	}

	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Total != nodes[j].Total {
			return nodes[i].Total > nodes[j].Total
		}
		return nodes[i].Category < nodes[j].Category
	})
	return nodes
}

func monthLabel(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

func fiscalYearLabel(year int) string {
	return fmt.Sprintf("FY%d", year)
}
