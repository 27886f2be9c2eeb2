package spend

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrMissingColumn     = errors.New("required column missing")
	ErrInvalidRecords    = errors.New("file contains invalid records")
)

type ImportOptions struct {
	// FiscalYearStartMonth controls the fiscal year derived for files that
	// carry no fiscal_year column. 1 means calendar years; any later month
	// labels the year by the calendar year it ends in.
	FiscalYearStartMonth int
}

type ImportResult struct {
	RowCount    int64
	Format      string
	AttrColumns []string
}

// sourceFile is a readable reference to an on-disk file: the DuckDB table
// function that scans it plus the canonical format name.
type sourceFile struct {
	expr   string
	format string
}

func sourceFor(path string) (sourceFile, error) {
	name := strings.ToLower(path)
	literal := strings.ReplaceAll(path, "'", "''")
	switch {
	case strings.HasSuffix(name, ".parquet"):
		return sourceFile{expr: fmt.Sprintf("read_parquet('%s')", literal), format: "parquet"}, nil
	case strings.HasSuffix(name, ".csv"), strings.HasSuffix(name, ".csv.gz"):
		return sourceFile{expr: fmt.Sprintf("read_csv('%s')", literal), format: "csv"}, nil
	default:
		return sourceFile{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// columnLayout maps the canonical spend columns onto the physical column
// names found in a source file. Optional columns are empty when absent;
// attrs lists every column left over after canonical mapping, in file order.
type columnLayout struct {
	date        string
	amount      string
	vendor      string
	category    string
	subCategory string
	fiscalYear  string
	description string
	attrs       []string
}

func mapColumns(columns []string) (columnLayout, error) {
	var layout columnLayout
	assign := func(target *string, column string) bool {
		if *target != "" {
			return false
		}
		*target = column
		return true
	}

	for _, column := range columns {
		normalized := strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToLower(strings.TrimSpace(column)))
		matched := false
		switch normalized {
		case "date":
			matched = assign(&layout.date, column)
		case "amount":
			matched = assign(&layout.amount, column)
		case "vendor":
			matched = assign(&layout.vendor, column)
		case "category":
			matched = assign(&layout.category, column)
		case "sub_category", "subcategory":
			matched = assign(&layout.subCategory, column)
		case "fiscal_year", "fiscalyear":
			matched = assign(&layout.fiscalYear, column)
		case "description":
			matched = assign(&layout.description, column)
		}
		if !matched {
			layout.attrs = append(layout.attrs, column)
		}
	}

	missing := make([]string, 0)
	for _, required := range []struct {
		name  string
		value string
	}{
		{"date", layout.date},
		{"amount", layout.amount},
		{"vendor", layout.vendor},
		{"category", layout.category},
		{"sub_category", layout.subCategory},
	} {
		if required.value == "" {
			missing = append(missing, required.name)
		}
	}
	if len(missing) > 0 {
		return columnLayout{}, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return layout, nil
}

// ImportFile replaces the dataset's rows with the contents of the given
// file. Validation runs against the raw source before any row is touched,
// so a file with missing columns or unusable records leaves the previous
// load intact. Callers wanting records and snapshot written atomically put
// a transaction on the context.
func (s *spendStore) ImportFile(ctx context.Context, dataset string, path string, opts ImportOptions) (*ImportResult, error) {
	src, err := sourceFor(path)
	if err != nil {
		return nil, err
	}

	columns, err := s.describeSource(ctx, src)
	if err != nil {
		return nil, err
	}
	layout, err := mapColumns(columns)
	if err != nil {
		return nil, err
	}
	if err := s.checkSource(ctx, src, layout); err != nil {
		return nil, err
	}

	conn := s.conn(ctx)
	if _, err := conn.ExecContext(ctx, `DELETE FROM spend_records WHERE dataset = ?`, dataset); err != nil {
		return nil, fmt.Errorf("clear dataset: %w", err)
	}

	result, err := conn.ExecContext(ctx, buildInsert(src, layout, opts), dataset)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("count loaded records: %w", err)
	}

	return &ImportResult{
		RowCount:    count,
		Format:      src.format,
		AttrColumns: layout.attrs,
	}, nil
}

func (s *spendStore) describeSource(ctx context.Context, src sourceFile) ([]string, error) {
	query := fmt.Sprintf(`SELECT column_name FROM (DESCRIBE SELECT * FROM %s)`, src.expr)
	rows, err := s.conn(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("describe source: %w", err)
	}
	defer rows.Close()

	columns := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}

// checkSource counts unusable records in a single scan so the error can
// name every problem at once instead of failing on the first bad row.
func (s *spendStore) checkSource(ctx context.Context, src sourceFile, layout columnLayout) error {
	date := quoteIdent(layout.date)
	amount := quoteIdent(layout.amount)

	checks := []string{
		fmt.Sprintf(`COUNT(*) FILTER (WHERE %s IS NULL OR TRY_CAST(%s AS DATE) IS NULL)`, date, date),
		fmt.Sprintf(`COUNT(*) FILTER (WHERE %s IS NULL OR TRY_CAST(%s AS DOUBLE) IS NULL OR NOT isfinite(TRY_CAST(%s AS DOUBLE)))`, amount, amount, amount),
		blankCheck(layout.vendor),
		blankCheck(layout.category),
		blankCheck(layout.subCategory),
	}
	labels := []string{"date", "amount", "vendor", "category", "sub_category"}

	if layout.fiscalYear != "" {
		fy := quoteIdent(layout.fiscalYear)
		checks = append(checks, fmt.Sprintf(`COUNT(*) FILTER (WHERE %s IS NULL OR TRY_CAST(%s AS INTEGER) IS NULL)`, fy, fy))
		labels = append(labels, "fiscal_year")
	}

	query := fmt.Sprintf(`SELECT %s FROM %s`, strings.Join(checks, ", "), src.expr)
	counts := make([]int64, len(checks))
	targets := make([]interface{}, len(checks))
	for i := range counts {
		targets[i] = &counts[i]
	}
	if err := s.conn(ctx).QueryRowContext(ctx, query).Scan(targets...); err != nil {
		return fmt.Errorf("validate source: %w", err)
	}

	problems := make([]string, 0)
	for i, count := range counts {
		if count > 0 {
			problems = append(problems, fmt.Sprintf("%d records with a missing or invalid %s", count, labels[i]))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRecords, strings.Join(problems, "; "))
	}
	return nil
}

func buildInsert(src sourceFile, layout columnLayout, opts ImportOptions) string {
	date := fmt.Sprintf(`CAST(%s AS DATE)`, quoteIdent(layout.date))

	fiscalYear := fmt.Sprintf(`year(%s)`, date)
	switch {
	case layout.fiscalYear != "":
		fiscalYear = fmt.Sprintf(`CAST(%s AS INTEGER)`, quoteIdent(layout.fiscalYear))
	case opts.FiscalYearStartMonth > 1:
		fiscalYear = fmt.Sprintf(`CASE WHEN month(%s) >= %d THEN year(%s) + 1 ELSE year(%s) END`,
			date, opts.FiscalYearStartMonth, date, date)
	}

	description := "NULL"
	if layout.description != "" {
		description = fmt.Sprintf(`NULLIF(TRIM(CAST(%s AS VARCHAR)), '')`, quoteIdent(layout.description))
	}

	attrs := "NULL"
	if len(layout.attrs) > 0 {
		pairs := make([]string, 0, len(layout.attrs)*2)
		for _, column := range layout.attrs {
			pairs = append(pairs,
				fmt.Sprintf(`'%s'`, strings.ReplaceAll(column, "'", "''")),
				fmt.Sprintf(`COALESCE(CAST(%s AS VARCHAR), '')`, quoteIdent(column)))
		}
		attrs = fmt.Sprintf(`json_object(%s)`, strings.Join(pairs, ", "))
	}

	return fmt.Sprintf(`
		INSERT INTO spend_records (
			dataset, record_id, txn_date, fiscal_year, amount,
			vendor, category, sub_category, description, attrs
		)
		SELECT
			?, row_number() OVER (), %s, %s, CAST(%s AS DOUBLE),
			TRIM(CAST(%s AS VARCHAR)), TRIM(CAST(%s AS VARCHAR)), TRIM(CAST(%s AS VARCHAR)), %s, %s
		FROM %s
	`,
		date, fiscalYear, quoteIdent(layout.amount),
		quoteIdent(layout.vendor), quoteIdent(layout.category), quoteIdent(layout.subCategory),
		description, attrs, src.expr)
}

func blankCheck(column string) string {
	quoted := quoteIdent(column)
	return fmt.Sprintf(`COUNT(*) FILTER (WHERE %s IS NULL OR TRIM(CAST(%s AS VARCHAR)) = '')`, quoted, quoted)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
