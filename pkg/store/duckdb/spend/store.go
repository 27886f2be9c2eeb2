package spend

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Amadeus750/spend-streamlet/pkg/store/duckdb"

	"github.com/Amadeus750/spend-streamlet/pkg/models/store"
)

// Store supports both ingestion (Add, ImportFile) and read operations for
// spend records in DuckDB. Read methods aggregate over one dataset, so bind
// the store to it via NewDatasetStore; ingestion methods take the dataset
// explicitly because they run before any binding exists.
type Store interface {
	Add(ctx context.Context, dataset string, records []store.SpendRecord) error
	ImportFile(ctx context.Context, dataset string, path string, opts ImportOptions) (*ImportResult, error)
	Summary(ctx context.Context, filter store.SpendFilter) (*store.SpendSummary, error)
	FiscalYears(ctx context.Context, filter store.SpendFilter) ([]store.FiscalYearValue, error)
	Values(ctx context.Context, column string, filter store.SpendFilter) ([]store.DimensionValue, error)
	CategoryTotals(ctx context.Context, filter store.SpendFilter) ([]store.CategoryTotal, error)
	SubCategoryTotals(ctx context.Context, filter store.SpendFilter) ([]store.SubCategoryTotal, error)
	MonthlyTotals(ctx context.Context, filter store.SpendFilter) ([]store.MonthlyTotal, error)
	FiscalYearTotals(ctx context.Context, filter store.SpendFilter) ([]store.FiscalYearTotal, error)
	Records(ctx context.Context, query store.RecordQuery) (*store.RecordPage, error)
	Stats(ctx context.Context, filter store.SpendFilter) (*store.DatasetStats, error)
}

// valueColumns are the dimensions Values may group by. Anything else is a
// caller bug, not user input, so it fails loudly.
var valueColumns = map[string]bool{
	"category":     true,
	"sub_category": true,
	"vendor":       true,
}

// sortColumns maps accepted sort keys to physical columns. Keys outside the
// map are treated as passthrough attribute names and sorted via the attrs
// JSON document.
var sortColumns = map[string]string{
	"date":         "txn_date",
	"txn_date":     "txn_date",
	"fiscal_year":  "fiscal_year",
	"amount":       "amount",
	"vendor":       "vendor",
	"category":     "category",
	"sub_category": "sub_category",
	"description":  "description",
	"record_id":    "record_id",
}

type spendStore struct {
	db      *sql.DB
	dataset string // optional; required for read methods
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &spendStore{
		db: db,
	}, nil
}

// NewDatasetStore returns a Store bound to a specific dataset for read operations
func NewDatasetStore(db *sql.DB, dataset string) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if dataset == "" {
		return nil, fmt.Errorf("dataset is required for read store")
	}
	return &spendStore{
		db:      db,
		dataset: dataset,
	}, nil
}

func (s *spendStore) ensureDataset() error {
	if s.dataset == "" {
		return fmt.Errorf("read operation requires dataset-bound store; use NewDatasetStore")
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx so writes can join a
// transaction placed on the context by the caller.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (s *spendStore) conn(ctx context.Context) querier {
	if tx := duckdb.GetTransaction(ctx); tx != nil {
		return tx
	}
	return s.db
}

func (s *spendStore) Add(ctx context.Context, dataset string, records []store.SpendRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO spend_records (
			dataset, record_id, txn_date, fiscal_year, amount,
			vendor, category, sub_category, description, attrs
		) VALUES (
			?, ?, CAST(? AS DATE), ?, ?, ?, ?, ?, ?, ?
		)`

	conn := s.conn(ctx)
	for _, record := range records {
		var description interface{}
		if record.Description != "" {
			description = record.Description
		}
		var attrs interface{}
		if len(record.Attrs) > 0 {
			raw, err := json.Marshal(record.Attrs)
			if err != nil {
				return fmt.Errorf("marshal attrs: %w", err)
			}
			attrs = string(raw)
		}

		_, err := conn.ExecContext(ctx, query,
			dataset,
			record.ID,
			record.Date,
			record.FiscalYear,
			record.Amount,
			record.Vendor,
			record.Category,
			record.SubCategory,
			description,
			attrs,
		)
		if err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
	}

	return nil
}

func (s *spendStore) Summary(ctx context.Context, filter store.SpendFilter) (*store.SpendSummary, error) {
	if err := s.ensureDataset(); err != nil {
		return nil, err
	}
	predicate, args := buildPredicate(s.dataset, filter)
	query := fmt.Sprintf(`
		SELECT
			COALESCE(SUM(amount), 0) AS total_spend,
			COUNT(DISTINCT vendor) AS vendor_count,
			COUNT(*) AS transaction_count,
			COUNT(DISTINCT category) AS category_count
		FROM spend_records
		WHERE %s
	`, predicate)

	summary := &store.SpendSummary{}
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&summary.TotalSpend,
		&summary.VendorCount,
		&summary.TransactionCount,
		&summary.CategoryCount,
	)
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	return summary, nil
}

func (s *spendStore) FiscalYears(ctx context.Context, filter store.SpendFilter) ([]store.FiscalYearValue, error) {
	if err := s.ensureDataset(); err != nil {
		return nil, err
	}
	predicate, args := buildPredicate(s.dataset, filter)
	query := fmt.Sprintf(`
		SELECT fiscal_year, COUNT(*) AS transactions
		FROM spend_records
		WHERE %s
		GROUP BY fiscal_year
		ORDER BY fiscal_year
	`, predicate)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query fiscal years: %w", err)
	}
	defer rows.Close()

	values := make([]store.FiscalYearValue, 0)
	for rows.Next() {
		var v store.FiscalYearValue
		if err := rows.Scan(&v.Year, &v.Transactions); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (s *spendStore) Values(ctx context.Context, column string, filter store.SpendFilter) ([]store.DimensionValue, error) {
	if err := s.ensureDataset(); err != nil {
		return nil, err
	}
	if !valueColumns[column] {
		return nil, fmt.Errorf("unsupported dimension column %q", column)
	}
	predicate, args := buildPredicate(s.dataset, filter)
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) AS transactions
		FROM spend_records
		WHERE %s
		GROUP BY 1
		ORDER BY 1
	`, column, predicate)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s values: %w", column, err)
	}
	defer rows.Close()

	values := make([]store.DimensionValue, 0)
	for rows.Next() {
		var v store.DimensionValue
		if err := rows.Scan(&v.Value, &v.Transactions); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (s *spendStore) CategoryTotals(ctx context.Context, filter store.SpendFilter) ([]store.CategoryTotal, error) {
	if err := s.ensureDataset(); err != nil {
		return nil, err
	}
	predicate, args := buildPredicate(s.dataset, filter)
	query := fmt.Sprintf(`
		SELECT category, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS transactions
		FROM spend_records
		WHERE %s
		GROUP BY category
		ORDER BY total DESC, category ASC
	`, predicate)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query category totals: %w", err)
	}
	defer rows.Close()

	totals := make([]store.CategoryTotal, 0)
	for rows.Next() {
		var t store.CategoryTotal
		if err := rows.Scan(&t.Category, &t.Total, &t.Transactions); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (s *spendStore) SubCategoryTotals(ctx context.Context, filter store.SpendFilter) ([]store.SubCategoryTotal, error) {
	if err := s.ensureDataset(); err != nil {
		return nil, err
	}
	predicate, args := buildPredicate(s.dataset, filter)
	query := fmt.Sprintf(`
		SELECT category, sub_category, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS transactions
		FROM spend_records
		WHERE %s
		GROUP BY category, sub_category
		ORDER BY category ASC, total DESC, sub_category ASC
	`, predicate)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sub category totals: %w", err)
	}
	defer rows.Close()

	totals := make([]store.SubCategoryTotal, 0)
	for rows.Next() {
		var t store.SubCategoryTotal
		if err := rows.Scan(&t.Category, &t.SubCategory, &t.Total, &t.Transactions); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (s *spendStore) MonthlyTotals(ctx context.Context, filter store.SpendFilter) ([]store.MonthlyTotal, error) {
	if err := s.ensureDataset(); err != nil {
		return nil, err
	}
	predicate, args := buildPredicate(s.dataset, filter)
	query := fmt.Sprintf(`
		SELECT year(txn_date) AS y, month(txn_date) AS m,
			COALESCE(SUM(amount), 0) AS total, COUNT(*) AS transactions
		FROM spend_records
		WHERE %s
		GROUP BY y, m
		ORDER BY y, m
	`, predicate)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query monthly totals: %w", err)
	}
	defer rows.Close()

	totals := make([]store.MonthlyTotal, 0)
	for rows.Next() {
		var (
			year, month  int
			total        float64
			transactions int64
		)
		if err := rows.Scan(&year, &month, &total, &transactions); err != nil {
			return nil, err
		}
		totals = append(totals, store.MonthlyTotal{
			Year:         year,
			Month:        time.Month(month),
			Total:        total,
			Transactions: transactions,
		})
	}
	return totals, rows.Err()
}

func (s *spendStore) FiscalYearTotals(ctx context.Context, filter store.SpendFilter) ([]store.FiscalYearTotal, error) {
	if err := s.ensureDataset(); err != nil {
		return nil, err
	}
	predicate, args := buildPredicate(s.dataset, filter)
	query := fmt.Sprintf(`
		SELECT fiscal_year, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS transactions
		FROM spend_records
		WHERE %s
		GROUP BY fiscal_year
		ORDER BY fiscal_year
	`, predicate)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query fiscal year totals: %w", err)
	}
	defer rows.Close()

	totals := make([]store.FiscalYearTotal, 0)
	for rows.Next() {
		var t store.FiscalYearTotal
		if err := rows.Scan(&t.Year, &t.Total, &t.Transactions); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (s *spendStore) Records(ctx context.Context, query store.RecordQuery) (*store.RecordPage, error) {
	if err := s.ensureDataset(); err != nil {
		return nil, err
	}

	predicate, args := buildPredicate(s.dataset, query.Filter)
	if clause, searchArgs := buildSearch(query.Search); clause != "" {
		predicate += " AND " + clause
		args = append(args, searchArgs...)
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM spend_records WHERE %s`, predicate)
	var total int64
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}

	orderExpr, orderArgs := sortExpression(query.SortBy)
	direction := "ASC"
	if query.SortDesc {
		direction = "DESC"
	}

	selectQuery := fmt.Sprintf(`
		SELECT record_id, txn_date, fiscal_year, amount, vendor, category, sub_category,
			COALESCE(description, '') AS description,
			COALESCE(CAST(attrs AS VARCHAR), '') AS attrs
		FROM spend_records
		WHERE %s
		ORDER BY %s %s, record_id ASC
		LIMIT ? OFFSET ?
	`, predicate, orderExpr, direction)

	selectArgs := append(args, orderArgs...)
	selectArgs = append(selectArgs, query.Limit, query.Offset)

	rows, err := s.db.QueryContext(ctx, selectQuery, selectArgs...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records, err := scanSpendRows(rows)
	if err != nil {
		return nil, err
	}
	return &store.RecordPage{Records: records, Total: total}, nil
}

func (s *spendStore) Stats(ctx context.Context, filter store.SpendFilter) (*store.DatasetStats, error) {
	if err := s.ensureDataset(); err != nil {
		return nil, err
	}
	predicate, args := buildPredicate(s.dataset, filter)
	query := fmt.Sprintf(`
		SELECT COUNT(*) AS total_records, MIN(txn_date) AS first_date, MAX(txn_date) AS last_date
		FROM spend_records
		WHERE %s
	`, predicate)

	var (
		total       int64
		first, last sql.NullTime
	)
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total, &first, &last); err != nil {
		return nil, fmt.Errorf("get dataset stats: %w", err)
	}
	stats := &store.DatasetStats{RecordsCount: total}
	if first.Valid {
		t := first.Time
		stats.FirstDate = &t
	}
	if last.Valid {
		t := last.Time
		stats.LastDate = &t
	}
	return stats, nil
}

// sortExpression resolves a sort key to an ORDER BY expression. Canonical
// keys map onto physical columns; anything else is assumed to be a
// passthrough attribute, validated by the caller against the dataset
// snapshot, and sorted through the attrs JSON document.
func sortExpression(sortBy string) (string, []interface{}) {
	if sortBy == "" {
		return "txn_date", nil
	}
	if column, ok := sortColumns[sortBy]; ok {
		return column, nil
	}
	path := `$."` + strings.ReplaceAll(sortBy, `"`, ``) + `"`
	return "json_extract_string(attrs, ?)", []interface{}{path}
}

func scanSpendRows(rows *sql.Rows) ([]store.SpendRecord, error) {
	records := make([]store.SpendRecord, 0)
	for rows.Next() {
		var (
			record   store.SpendRecord
			attrsRaw string
		)
		if err := rows.Scan(
			&record.ID,
			&record.Date,
			&record.FiscalYear,
			&record.Amount,
			&record.Vendor,
			&record.Category,
			&record.SubCategory,
			&record.Description,
			&attrsRaw,
		); err != nil {
			return nil, err
		}
		if attrsRaw != "" {
			attrs := map[string]string{}
			_ = json.Unmarshal([]byte(attrsRaw), &attrs)
			record.Attrs = attrs
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
