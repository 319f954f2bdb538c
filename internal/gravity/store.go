package gravity

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

// Store restores archive batches into the gravity database at a fixed path.
// It holds no connection: every call opens its own handle and closes it
// before returning.
type Store struct {
	path   string
	policy Policy
	logger *zap.Logger
}

// NewStore creates a Store for the database file at path.
func NewStore(path string, policy Policy, logger *zap.Logger) *Store {
	return &Store{
		path:   path,
		policy: policy,
		logger: logger.Named("gravity"),
	}
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Check verifies the database file exists and answers a ping. The SQLite
// driver opens the path on the host filesystem, so the existence check uses
// os.Stat rather than an injected afero.Fs.
func (s *Store) Check(ctx context.Context) error {
	if _, err := os.Stat(s.path); err != nil {
		return fmt.Errorf("gravity db %s: %w", s.path, err)
	}
	db, err := OpenDB(s.path)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping gravity db %s: %w", s.path, err)
	}
	return nil
}

// InitSchema creates any missing gravity tables.
func (s *Store) InitSchema() error {
	db, err := OpenDB(s.path)
	if err != nil {
		return err
	}
	defer db.Close()
	return MigrateGravityDB(db)
}

// RestoreDomainList decodes a JSON array of domains from r and restores them
// as list type t. With flush set, only rows of type t are deleted first.
func (s *Store) RestoreDomainList(ctx context.Context, t DomainType, r io.Reader, flush bool) (Result, error) {
	if !t.IsValid() {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidDomainType, t)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("read %s domains: %w", t, err)
	}
	records, err := decodeRecords[Domain](data)
	if err != nil {
		return Result{}, fmt.Errorf("decode %s domains: %w", t, err)
	}
	set, err := NewDomainList(t, records)
	if err != nil {
		return Result{}, err
	}
	condition := ""
	if flush {
		condition = t.flushCondition()
	}
	return s.restore(ctx, set, flush, condition)
}

// RestoreTable decodes a JSON array for table from r and restores it. With
// flush set, the whole table is cleared first.
func (s *Store) RestoreTable(ctx context.Context, table string, r io.Reader, flush bool) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", table, err)
	}
	set, err := decodeTable(table, data)
	if err != nil {
		return Result{}, fmt.Errorf("decode %s: %w", table, err)
	}
	return s.restore(ctx, set, flush, "")
}

func (s *Store) restore(ctx context.Context, set Restorer, flush bool, condition string) (res Result, err error) {
	s.logger.Debug("connecting to gravity db", zap.String("path", s.path))
	db, err := OpenDB(s.path)
	if err != nil {
		return Result{}, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("begin restore tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if flush {
		if _, err := FlushTable(ctx, tx, set.TableName(), condition, s.logger); err != nil {
			return Result{}, err
		}
	}

	res, err = Restore(ctx, tx, set, s.policy, s.logger)
	if err != nil {
		return res, err
	}
	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("commit %s: %w", set.TableName(), err)
	}
	return res, nil
}
