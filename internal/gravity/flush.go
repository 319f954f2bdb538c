package gravity

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// FlushTable deletes rows from table, optionally scoped by condition
// (for example "WHERE type = 1"). A missing table fails with ErrTableNotFound.
func FlushTable(ctx context.Context, q queryer, table, condition string, logger *zap.Logger) (int64, error) {
	exists, err := hasTable(ctx, q, table)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, fmt.Errorf("cannot flush %s: %w", table, ErrTableNotFound)
	}

	clearSQL := fmt.Sprintf("DELETE FROM %q%s", table, normalizeCondition(condition))
	res, err := q.ExecContext(ctx, clearSQL)
	if err != nil {
		return 0, fmt.Errorf("flush %s: %w", table, err)
	}
	count, _ := res.RowsAffected()
	logger.Debug("flushed table", zap.String("table", table), zap.Int64("rows", count))
	return count, nil
}

// normalizeCondition prefixes a non-empty condition with a single space
// unless it already starts with one. The result is appended to the DELETE
// verbatim.
func normalizeCondition(condition string) string {
	if condition == "" || strings.HasPrefix(condition, " ") {
		return condition
	}
	return " " + condition
}
