package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"persuader/internal/ports"
)

// ErrNotFound is returned when an update matches no record.
var ErrNotFound = errors.New("record not found")

// SQLStore implements ports.RecordStore on top of database/sql.
type SQLStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.RecordStore = (*SQLStore)(nil)

// OpenSQL opens a database handle for the "postgres" or "sqlite" driver.
func OpenSQL(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// a single connection keeps ":memory:" databases shared
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// NewSQLStore wires a sql.DB; driver selects the placeholder dialect.
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	var format sq.PlaceholderFormat = sq.Question
	if driver == "postgres" {
		format = sq.Dollar
	}
	return &SQLStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(format),
	}
}

// EnsureSchema creates the pipeline tables when they do not exist yet.
func (s *SQLStore) EnsureSchema(ctx context.Context, schema Schema) error {
	for _, stmt := range schema.DDL() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Query selects every column of table rows matching filter.
func (s *SQLStore) Query(ctx context.Context, table string, filter ports.Filter, limit int) ([]ports.Record, error) {
	if s.db == nil {
		return nil, fmt.Errorf("sql store has no database")
	}

	query := s.builder.Select("*").From(table)
	if len(filter) > 0 {
		query = query.Where(sq.Eq(filter))
	}
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query on %s: %w", table, err)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}

	records, err := scanRecords(rows)
	if err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("scan %s: %w", table, err)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return records, nil
}

// Update applies patch to the row identified by keyColumn = key.
func (s *SQLStore) Update(ctx context.Context, table, keyColumn string, key any, patch ports.Record) error {
	if s.db == nil {
		return fmt.Errorf("sql store has no database")
	}
	if len(patch) == 0 {
		return nil
	}

	stmt, args, err := s.builder.Update(table).
		SetMap(map[string]any(patch)).
		Where(sq.Eq{keyColumn: key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update on %s: %w", table, err)
	}

	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update %s %s=%v: %w", table, keyColumn, key, ErrNotFound)
	}

	return nil
}

func scanRecords(rows *sql.Rows) ([]ports.Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records []ports.Record
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		record := make(ports.Record, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				record[col] = string(b)
				continue
			}
			record[col] = values[i]
		}
		records = append(records, record)
	}

	return records, rows.Err()
}
