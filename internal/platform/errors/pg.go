package errors

// Postgres helpers: SQLSTATE mapping, retry and connectivity classification

import (
	"context"
	stderrs "errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgErrUniqueViolation           = "23505"
	pgErrForeignKeyViolation       = "23503"
	pgErrNotNullViolation          = "23502"
	pgErrCheckViolation            = "23514"
	pgErrStringDataRightTruncation = "22001"
	pgErrInvalidTextRepresentation = "22P02"

	pgErrSerializationFailure   = "40001"
	pgErrDeadlockDetected       = "40P01"
	pgErrLockNotAvailable       = "55P03"
	pgErrReadOnlySQLTransaction = "25006"
	pgErrAdminShutdown          = "57P01"
	pgErrCrashShutdown          = "57P02"
	pgErrCannotConnectNow       = "57P03"

	// class 08 is "connection exception"
	pgClassConnection = "08"
)

// ExtractPgError returns the *pgconn.PgError at the root of err
func ExtractPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsSQLState reports whether err is a Postgres error with SQLSTATE code
func IsSQLState(err error, code string) bool {
	pgErr, ok := ExtractPgError(err)
	return ok && pgErr.Code == code
}

// IsDuplicateKey reports a unique constraint violation
func IsDuplicateKey(err error) bool { return IsSQLState(err, pgErrUniqueViolation) }

// DBErrorCode maps a Postgres error to an ErrorCode; ok is false for non-Postgres errors
func DBErrorCode(err error) (ErrorCode, bool) {
	pgErr, ok := ExtractPgError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}
	switch {
	case pgErr.Code == pgErrUniqueViolation:
		return ErrorCodeDuplicateKey, true
	case pgErr.Code == pgErrForeignKeyViolation,
		pgErr.Code == pgErrStringDataRightTruncation,
		pgErr.Code == pgErrInvalidTextRepresentation:
		return ErrorCodeInvalidArgument, true
	case pgErr.Code == pgErrNotNullViolation, pgErr.Code == pgErrCheckViolation:
		return ErrorCodeValidation, true
	case pgErr.Code == pgErrReadOnlySQLTransaction,
		pgErr.Code == pgErrCannotConnectNow,
		pgErr.Code == pgErrAdminShutdown,
		pgErr.Code == pgErrCrashShutdown,
		strings.HasPrefix(pgErr.Code, pgClassConnection):
		return ErrorCodeUnavailable, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps err with its mapped code; nil stays nil.
// Connection failures that never reached the server map to Unavailable.
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	if code, ok := DBErrorCode(err); ok {
		return Wrap(err, code, msg)
	}
	if IsConnectivity(err) {
		return Wrap(err, ErrorCodeUnavailable, msg)
	}
	return Wrap(err, ErrorCodeDB, msg)
}

// FromPostgresf is FromPostgres with a formatted message
func FromPostgresf(err error, format string, a ...any) error {
	return FromPostgres(err, fmt.Sprintf(format, a...))
}

// IsRetryable reports database contention worth retrying in place.
// Local cancellation is never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pgErr, ok := ExtractPgError(err); ok {
		switch pgErr.Code {
		case pgErrSerializationFailure, pgErrDeadlockDetected, pgErrLockNotAvailable:
			return true
		}
		return false
	}
	s := strings.ToLower(Root(err).Error())
	for _, pat := range []string{
		"commit unexpectedly resulted in rollback",
		"deadlock detected",
		"could not serialize access",
		"canceling statement due to lock timeout",
	} {
		if strings.Contains(s, pat) {
			return true
		}
	}
	return false
}

// IsConnectivity reports whether err means the database itself is unreachable,
// as opposed to a failed statement. Backfill runs abort only on these.
func IsConnectivity(err error) bool {
	if err == nil {
		return false
	}
	var connErr *pgconn.ConnectError
	if stderrs.As(err, &connErr) {
		return true
	}
	if pgErr, ok := ExtractPgError(err); ok {
		switch {
		case strings.HasPrefix(pgErr.Code, pgClassConnection),
			pgErr.Code == pgErrAdminShutdown,
			pgErr.Code == pgErrCrashShutdown,
			pgErr.Code == pgErrCannotConnectNow:
			return true
		}
		return false
	}
	var opErr *net.OpError
	if stderrs.As(err, &opErr) {
		return true
	}
	s := strings.ToLower(Root(err).Error())
	return strings.Contains(s, "closed pool") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "conn closed")
}
