package gravity

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// Restorer is implemented by every record batch that can be written to its
// table with a single prepared insert-or-ignore statement.
type Restorer interface {
	TableName() string
	// UpsertStatement returns the INSERT OR IGNORE text with named placeholders.
	// Values that are not record fields (the list type) are embedded directly.
	UpsertStatement() string
	Len() int
	// BindParameters returns the named arguments for record i.
	BindParameters(i int) []any
}

// RecordSet is the Restorer for one decoded batch of R.
type RecordSet[R any] struct {
	table     string
	statement string
	records   []R
	bind      func(R) []any
}

func (s *RecordSet[R]) TableName() string       { return s.table }
func (s *RecordSet[R]) UpsertStatement() string { return s.statement }
func (s *RecordSet[R]) Len() int                { return len(s.records) }

func (s *RecordSet[R]) BindParameters(i int) []any {
	return s.bind(s.records[i])
}

// Records returns the decoded batch.
func (s *RecordSet[R]) Records() []R { return s.records }

// Policy controls how record-level failures are handled.
type Policy struct {
	// Strict aborts the batch on its first failing record and rolls back
	// everything the batch wrote. The default logs and continues.
	Strict bool
}

// Result reports the outcome of one batch restore.
type Result struct {
	// Attempted counts every record an insert was executed for. It is an upper
	// bound on what changed.
	Attempted int
	// Inserted counts rows actually written; ignored duplicates add nothing.
	Inserted int64
	Failed   int
}

// Restore prepares r's statement once on tx and executes it for every record.
func Restore(ctx context.Context, tx *sql.Tx, r Restorer, policy Policy, logger *zap.Logger) (Result, error) {
	table := r.TableName()
	stmt, err := tx.PrepareContext(ctx, r.UpsertStatement())
	if err != nil {
		return Result{}, fmt.Errorf("prepare insert into %s: %w", table, err)
	}
	defer stmt.Close()

	logger.Debug("restoring table", zap.String("table", table), zap.Int("records", r.Len()))

	var res Result
	for i := 0; i < r.Len(); i++ {
		res.Attempted++
		out, err := stmt.ExecContext(ctx, r.BindParameters(i)...)
		if err != nil {
			if policy.Strict {
				return res, fmt.Errorf("insert record %d into %s: %w", i, table, err)
			}
			res.Failed++
			logger.Warn("error while inserting an entry",
				zap.String("table", table), zap.Int("index", i), zap.Error(err))
			continue
		}
		if n, err := out.RowsAffected(); err == nil {
			res.Inserted += n
		}
	}
	return res, nil
}
