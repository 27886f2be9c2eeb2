package spend

import (
	"strings"

	"github.com/Amadeus750/spend-streamlet/pkg/models/store"
)

// buildPredicate compiles a filter into the WHERE clause shared by every
// read query: the dataset guard plus one IN clause per restricted
// dimension. Dimensions with an empty allowed set add no clause, so an
// empty filter selects the whole dataset, and re-applying a selection
// composes to the same predicate.
func buildPredicate(dataset string, filter store.SpendFilter) (string, []interface{}) {
	clauses := []string{"dataset = ?"}
	args := []interface{}{dataset}

	if len(filter.FiscalYears) > 0 {
		clauses = append(clauses, "fiscal_year IN ("+placeholders(len(filter.FiscalYears))+")")
		for _, year := range filter.FiscalYears {
			args = append(args, year)
		}
	}
	if len(filter.Categories) > 0 {
		clauses = append(clauses, "category IN ("+placeholders(len(filter.Categories))+")")
		args = appendStrings(args, filter.Categories)
	}
	if len(filter.SubCategories) > 0 {
		clauses = append(clauses, "sub_category IN ("+placeholders(len(filter.SubCategories))+")")
		args = appendStrings(args, filter.SubCategories)
	}
	if len(filter.Vendors) > 0 {
		clauses = append(clauses, "vendor IN ("+placeholders(len(filter.Vendors))+")")
		args = appendStrings(args, filter.Vendors)
	}

	return strings.Join(clauses, " AND "), args
}

// buildSearch appends a case-insensitive substring clause over the visible
// text columns. Dates and amounts are filter axes, not search targets.
func buildSearch(term string) (string, []interface{}) {
	if term == "" {
		return "", nil
	}
	pattern := "%" + escapeLike(term) + "%"
	clause := `(vendor ILIKE ? ESCAPE '\'
		OR category ILIKE ? ESCAPE '\'
		OR sub_category ILIKE ? ESCAPE '\'
		OR COALESCE(description, '') ILIKE ? ESCAPE '\'
		OR COALESCE(CAST(attrs AS VARCHAR), '') ILIKE ? ESCAPE '\')`
	return clause, []interface{}{pattern, pattern, pattern, pattern, pattern}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func appendStrings(args []interface{}, values []string) []interface{} {
	for _, v := range values {
		args = append(args, v)
	}
	return args
}

// escapeLike neutralizes LIKE metacharacters in user-entered search terms.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
