package tablestore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// Column declares one column of a table: its name and the type+constraint text,
// e.g. {"size", "BIGINT DEFAULT 0"}.
type Column struct {
	Name string
	Decl string
}

// Schema is an ordered list of column declarations.
type Schema []Column

// Values maps column names to the values to write.
type Values map[string]any

// Where is an equality conjunction: every column must equal its value.
// An empty Where matches all rows.
type Where map[string]any

// Clause orders and limits Find results. OrderBy is appended verbatim as the
// ORDER BY expression; Limit 0 means no limit.
type Clause struct {
	OrderBy string
	Limit   int
}

// InsertResult tells whether Insert wrote a row.
type InsertResult int

const (
	Inserted InsertResult = iota + 1
	AlreadyPresent
)

func (r InsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case AlreadyPresent:
		return "already_present"
	default:
		return "unknown"
	}
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func checkIdent(names ...string) error {
	for _, n := range names {
		if !identRe.MatchString(n) {
			return fmt.Errorf("%w: %q", ErrInvalidIdentifier, n)
		}
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// whereQuery is the part of bun's select/update/delete builders used here.
type whereQuery[Q any] interface {
	Where(query string, args ...any) Q
}

func applyWhere[Q whereQuery[Q]](q Q, where Where, requireOne bool) (Q, error) {
	keys := sortedKeys(where)
	if err := checkIdent(keys...); err != nil {
		return q, err
	}
	if len(keys) == 0 && requireOne {
		// bun refuses UPDATE/DELETE without a WHERE clause.
		return q.Where("1 = 1"), nil
	}
	for _, k := range keys {
		q = q.Where("? = ?", bun.Ident(k), where[k])
	}
	return q, nil
}

// CreateTable creates the table if it does not exist yet. Existing tables and
// their rows are left untouched.
func (s *Store) CreateTable(ctx context.Context, name string, schema Schema) error {
	if err := checkIdent(name); err != nil {
		return err
	}
	if len(schema) == 0 {
		return ErrEmptyValues
	}

	defs := make([]string, 0, len(schema))
	for _, col := range schema {
		if err := checkIdent(col.Name); err != nil {
			return err
		}
		defs = append(defs, fmt.Sprintf("%q %s", col.Name, strings.TrimSpace(col.Decl)))
	}

	_, err := s.db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS ? (?)", bun.Ident(name), bun.Safe(strings.Join(defs, ", ")))
	if err != nil {
		return fmt.Errorf("failed to create table %s: %w", name, err)
	}
	return nil
}

// HasTable reports whether a table exists.
func (s *Store) HasTable(ctx context.Context, name string) (bool, error) {
	if err := checkIdent(name); err != nil {
		return false, err
	}

	var query string
	switch s.db.Dialect().Name() {
	case dialect.SQLite:
		query = "SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?"
	case dialect.PG:
		query = "SELECT count(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?"
	default:
		return false, fmt.Errorf("%w: %s", ErrUnsupportedDriver, s.db.Dialect().Name())
	}

	var n int
	if err := s.db.NewRaw(query, name).Scan(ctx, &n); err != nil {
		return false, fmt.Errorf("failed to look up table %s: %w", name, err)
	}
	return n > 0, nil
}

// Insert writes one row. A primary-key or unique conflict is not an error: the
// existing row is kept and AlreadyPresent is returned.
func (s *Store) Insert(ctx context.Context, table string, values Values) (InsertResult, error) {
	if err := checkIdent(table); err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, ErrEmptyValues
	}
	if err := checkIdent(sortedKeys(values)...); err != nil {
		return 0, err
	}

	row := map[string]any(values)
	res, err := s.db.NewInsert().
		Model(&row).
		TableExpr("?", bun.Ident(table)).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", table, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return AlreadyPresent, nil
	}
	return Inserted, nil
}

// Get returns the first row matching where, or ErrNotFound.
func (s *Store) Get(ctx context.Context, table string, where Where) (Row, error) {
	rows, err := s.find(ctx, table, where, Clause{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

// Find returns every row matching where, ordered by clause.
func (s *Store) Find(ctx context.Context, table string, where Where, clause Clause) ([]Row, error) {
	return s.find(ctx, table, where, clause)
}

func (s *Store) find(ctx context.Context, table string, where Where, clause Clause) ([]Row, error) {
	if err := checkIdent(table); err != nil {
		return nil, err
	}

	q, err := applyWhere(s.db.NewSelect().TableExpr("?", bun.Ident(table)), where, false)
	if err != nil {
		return nil, err
	}
	if clause.OrderBy != "" {
		q = q.OrderExpr(clause.OrderBy)
	}
	if clause.Limit > 0 {
		q = q.Limit(clause.Limit)
	}

	var raw []map[string]any
	if err := q.Scan(ctx, &raw); err != nil {
		return nil, fmt.Errorf("failed to select from %s: %w", table, err)
	}

	rows := make([]Row, len(raw))
	for i, r := range raw {
		rows[i] = Row(r)
	}
	return rows, nil
}

// Update sets columns on every row matching where and returns how many rows
// changed. Matching nothing is not an error.
func (s *Store) Update(ctx context.Context, table string, set Values, where Where) (int64, error) {
	if err := checkIdent(table); err != nil {
		return 0, err
	}
	if len(set) == 0 {
		return 0, ErrEmptyValues
	}
	cols := sortedKeys(set)
	if err := checkIdent(cols...); err != nil {
		return 0, err
	}

	q := s.db.NewUpdate().TableExpr("?", bun.Ident(table))
	for _, c := range cols {
		q = q.Set("? = ?", bun.Ident(c), set[c])
	}
	q, err := applyWhere(q, where, true)
	if err != nil {
		return 0, err
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to update %s: %w", table, err)
	}
	return rowsAffected(res.RowsAffected())
}

// Delete removes every row matching where and returns how many were removed.
func (s *Store) Delete(ctx context.Context, table string, where Where) (int64, error) {
	if err := checkIdent(table); err != nil {
		return 0, err
	}

	q, err := applyWhere(s.db.NewDelete().TableExpr("?", bun.Ident(table)), where, true)
	if err != nil {
		return 0, err
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return rowsAffected(res.RowsAffected())
}

func rowsAffected(n int64, err error) (int64, error) {
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// IsNotFound reports whether err means a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
