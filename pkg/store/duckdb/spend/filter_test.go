package spend

import (
	"testing"

	"github.com/Amadeus750/spend-streamlet/pkg/models/store"
	"github.com/stretchr/testify/assert"
)

func TestBuildPredicate(t *testing.T) {
	cases := []struct {
		name   string
		filter store.SpendFilter
		clause string
		args   []interface{}
	}{
		{
			name:   "empty filter keeps only the dataset guard",
			filter: store.SpendFilter{},
			clause: "dataset = ?",
			args:   []interface{}{"procurement"},
		},
		{
			name:   "single dimension",
			filter: store.SpendFilter{Categories: []string{"Office"}},
			clause: "dataset = ? AND category IN (?)",
			args:   []interface{}{"procurement", "Office"},
		},
		{
			name: "all dimensions joined with AND",
			filter: store.SpendFilter{
				FiscalYears:   []int{2025, 2026},
				Categories:    []string{"Office"},
				SubCategories: []string{"Supplies", "Paper"},
				Vendors:       []string{"Staples"},
			},
			clause: "dataset = ? AND fiscal_year IN (?,?) AND category IN (?) AND sub_category IN (?,?) AND vendor IN (?)",
			args:   []interface{}{"procurement", 2025, 2026, "Office", "Supplies", "Paper", "Staples"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clause, args := buildPredicate("procurement", tc.filter)
			assert.Equal(t, tc.clause, clause)
			assert.Equal(t, tc.args, args)
		})
	}
}

func TestBuildSearch(t *testing.T) {
	t.Run("empty term adds no clause", func(t *testing.T) {
		clause, args := buildSearch("")
		assert.Empty(t, clause)
		assert.Empty(t, args)
	})

	t.Run("term is matched against every text column", func(t *testing.T) {
		clause, args := buildSearch("desk")
		assert.Contains(t, clause, "vendor ILIKE ?")
		assert.Contains(t, clause, "sub_category ILIKE ?")
		assert.Len(t, args, 5)
		assert.Equal(t, "%desk%", args[0])
	})

	t.Run("metacharacters escaped", func(t *testing.T) {
		_, args := buildSearch(`50%_off\`)
		assert.Equal(t, `%50\%\_off\\%`, args[0])
	})
}

func TestSortExpression(t *testing.T) {
	cases := []struct {
		name   string
		sortBy string
		expr   string
		args   []interface{}
	}{
		{name: "default is transaction date", sortBy: "", expr: "txn_date"},
		{name: "date alias", sortBy: "date", expr: "txn_date"},
		{name: "physical column", sortBy: "amount", expr: "amount"},
		{
			name:   "attribute key goes through the json document",
			sortBy: "Cost Center",
			expr:   "json_extract_string(attrs, ?)",
			args:   []interface{}{`$."Cost Center"`},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expr, args := sortExpression(tc.sortBy)
			assert.Equal(t, tc.expr, expr)
			assert.Equal(t, tc.args, args)
		})
	}
}
