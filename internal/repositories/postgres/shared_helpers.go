package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/academic-records-service/internal/repositories"
)

// PostgreSQL error codes the repositories translate
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// handleDBError maps driver errors onto repository errors and adds the operation name
func handleDBError(err error, operation string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s failed: %w", operation, repositories.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s failed: %w", operation, &repositories.DuplicateError{
				Constraint: pgErr.ConstraintName,
				Err:        err,
			})
		case pgForeignKeyViolation:
			if isDeleteOrUpdate(pgErr) {
				return fmt.Errorf("%s failed: %w", operation, repositories.ErrReferenced)
			}
			return fmt.Errorf("%s failed: %w", operation, repositories.ErrNotFound)
		}
	}

	return fmt.Errorf("%s failed: %w", operation, err)
}

// isDeleteOrUpdate reports whether a foreign key violation came from removing a
// referenced row, as opposed to inserting a row pointing at a missing parent.
func isDeleteOrUpdate(pgErr *pgconn.PgError) bool {
	// "update or delete on table ... violates foreign key constraint"
	return strings.HasPrefix(pgErr.Message, "update or delete")
}

// requireAffected turns a zero-row write into ErrNotFound
func requireAffected(result *gorm.DB, operation string) error {
	if result.Error != nil {
		return handleDBError(result.Error, operation)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s failed: %w", operation, repositories.ErrNotFound)
	}
	return nil
}

// applyPagination applies limit and offset when set
func applyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
