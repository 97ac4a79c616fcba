package dbopen

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const attempts = 3

// IsBusy reports whether err is SQLite refusing a lock.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// Exec runs query, retrying a busy database with a linear backoff.
func Exec(ctx context.Context, db *sql.DB, query string, args ...any) (sql.Result, error) {
	var lastErr error
	for i := range attempts {
		res, err := db.ExecContext(ctx, query, args...)
		if !IsBusy(err) {
			return res, err
		}
		lastErr = err
		t := time.NewTimer(time.Duration(100*(i+1)) * time.Millisecond)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, fmt.Errorf("dbopen: exec: %w", ctx.Err())
		case <-t.C:
		}
	}
	return nil, fmt.Errorf("dbopen: exec: busy after %d attempts: %w", attempts, lastErr)
}
