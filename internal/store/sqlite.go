package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sells-group/quickmap/internal/table"
)

// SQLiteSource implements Source using modernc.org/sqlite.
type SQLiteSource struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path.
func NewSQLite(dsn string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "sqlite: exec PRAGMA busy_timeout")
	}
	return &SQLiteSource{db: db}, nil
}

// Exec runs a statement that returns no rows.
func (s *SQLiteSource) Exec(ctx context.Context, query string, args ...any) error {
	_, err := s.db.ExecContext(ctx, query, args...)
	return eris.Wrap(err, "sqlite: exec")
}

// Query runs query and collects every row. Columns declared BOOLEAN are read as bool.
func (s *SQLiteSource) Query(ctx context.Context, query string, args ...any) (*table.Table, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query")
	}
	defer rows.Close() //nolint:errcheck

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: column types")
	}
	columns := make([]string, len(types))
	boolCols := make([]bool, len(types))
	for i, ct := range types {
		columns[i] = ct.Name()
		switch strings.ToUpper(ct.DatabaseTypeName()) {
		case "BOOLEAN", "BOOL":
			boolCols[i] = true
		}
	}

	var data [][]any
	for rows.Next() {
		vals := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan row")
		}
		for i, v := range vals {
			vals[i] = sqliteValue(v, boolCols[i])
		}
		data = append(data, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate rows")
	}

	t, err := table.New(columns, data)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: build table")
	}
	zap.L().Debug("sqlite: query loaded", zap.Int("rows", t.Len()), zap.Int("columns", len(columns)))
	return t, nil
}

// Close closes the database.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

func sqliteValue(v any, isBool bool) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case int64:
		if isBool {
			return x != 0
		}
	}
	return v
}
