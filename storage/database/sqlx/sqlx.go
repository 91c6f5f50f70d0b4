// Package sqlxrepos implements the repositories on postgres, through sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/PARTHSHARMA4010/ClarityAI/core"
)

const uniqueViolation = "23505"

func getExec(db core.DBExecutor, svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return db
}

func namedExec(ctx context.Context, exec core.DBExecutor, query string, arg interface{}) (sql.Result, error) {
	return sqlx.NamedExecContext(ctx, exec, query, arg)
}

func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == uniqueViolation
}

// validUUIDs drops the ids postgres would reject as uuid.
func validUUIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	return valid
}

// inTx runs fn inside a new transaction, unless the caller already provided an executor.
func inTx(ctx context.Context, db core.DB, svcExec []core.DBExecutor, fn func(exec core.DBExecutor) error) (err error) {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return fn(svcExec[0])
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
