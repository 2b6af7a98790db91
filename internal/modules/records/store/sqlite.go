package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	"powertrack/internal/modules/records/types"
)

//go:embed sql/load-records.sql
var loadRecordsSQL string

//go:embed sql/delete-records.sql
var deleteRecordsSQL string

//go:embed sql/insert-record.sql
var insertRecordSQL string

// SQLiteStore keeps the collection in the records table, ordered by seq.
// Save replaces every row inside one transaction.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore expects the records schema to be migrated already. The
// caller owns db and closes it.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Load(ctx context.Context) (types.Collection, error) {
	rows, err := s.db.QueryContext(ctx, loadRecordsSQL)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close records rows", "error", err)
		}
	}()

	out := types.Collection{}
	for rows.Next() {
		var r types.Record
		if err := rows.Scan(&r.ID, &r.Date, &r.Reading); err != nil {
			return nil, fmt.Errorf("%w: scan record: %v", ErrCorrupt, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Save(ctx context.Context, c types.Collection) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Error("rollback records save", "error", rbErr)
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, deleteRecordsSQL); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}

	if len(c) > 0 {
		stmt, prepErr := tx.PrepareContext(ctx, insertRecordSQL)
		if prepErr != nil {
			err = prepErr
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, r := range c {
			if _, err = stmt.ExecContext(ctx, r.ID, r.Date, r.Reading); err != nil {
				return fmt.Errorf("insert record %s: %w", r.ID, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	var ok int
	if err := s.db.QueryRowContext(ctx, `SELECT 1`).Scan(&ok); err != nil {
		return err
	}
	if ok != 1 {
		return fmt.Errorf("unexpected ping result %d", ok)
	}
	return nil
}
