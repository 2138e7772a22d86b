package repository

import (
	"database/sql"
	"strings"

	"github.com/lib/pq"

	apperrors "github.com/kirimku/smartseller-backend/internal/domain/errors"
)

// MapPostgreSQLError turns a raw database/sql or lib/pq error into one of
// the domain's typed AppErrors. baseSKU/partnerSKU are only used to
// annotate a DuplicateEdge error's message; callers outside the edges
// table pass empty strings.
func MapPostgreSQLError(err error, baseSKU, partnerSKU string) error {
	if err == nil {
		return nil
	}

	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505": // unique_violation
			return apperrors.NewDuplicateEdge(baseSKU, partnerSKU, err)

		case "40001", "40P01": // serialization_failure, deadlock_detected
			return apperrors.NewTransientStorage("storage operation must be retried", err)

		case "08000", "08003", "08006", "08001", "08004": // connection_exception family
			return apperrors.NewTransientStorage("database connection failure", err)
		}
		return apperrors.NewTransientStorage("database error", err)
	}

	if err == sql.ErrNoRows {
		return err
	}

	if isConnectionError(err) {
		return apperrors.NewTransientStorage("database connection failure", err)
	}

	return apperrors.NewTransientStorage("database error", err)
}

func isConnectionError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "i/o timeout")
}
