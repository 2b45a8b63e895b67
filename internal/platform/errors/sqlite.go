package errors

// SQLite-specific helpers for mapping modernc.org/sqlite errors to project
// ErrorCode, extracting fields, and retry semantics

import (
	stderrs "errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
)

// Primary and extended SQLite result codes we care about
// https://www.sqlite.org/rescode.html
const (
	sqliteErrConstraint           = 19
	sqliteErrConstraintUnique     = 19 | (8 << 8)  // SQLITE_CONSTRAINT_UNIQUE
	sqliteErrConstraintForeignKey = 19 | (3 << 8)  // SQLITE_CONSTRAINT_FOREIGNKEY
	sqliteErrConstraintNotNull    = 19 | (5 << 8)  // SQLITE_CONSTRAINT_NOTNULL
	sqliteErrConstraintPrimary    = 19 | (6 << 8)  // SQLITE_CONSTRAINT_PRIMARYKEY
	sqliteErrConstraintCheck      = 19 | (1 << 8)  // SQLITE_CONSTRAINT_CHECK
	sqliteErrBusy                 = 5
	sqliteErrLocked               = 6
	sqliteErrReadonly             = 8
	sqliteErrIOErr                = 10
	sqliteErrCorrupt              = 11
	sqliteErrCantOpen             = 14
)

// ExtractSQLiteError returns (*sqlite.Error, true) if the root cause came from
// the sqlite driver
func ExtractSQLiteError(err error) (*sqlite.Error, bool) {
	var sErr *sqlite.Error
	if stderrs.As(Root(err), &sErr) {
		return sErr, true
	}
	return nil, false
}

// IsResultCode reports whether err is a sqlite error with the given extended code
func IsResultCode(err error, code int) bool {
	sErr, ok := ExtractSQLiteError(err)
	return ok && sErr.Code() == code
}

// IsDuplicateKey reports whether the error is a unique/primary key constraint violation
func IsDuplicateKey(err error) bool {
	return IsResultCode(err, sqliteErrConstraintUnique) || IsResultCode(err, sqliteErrConstraintPrimary)
}

// IsForeignKeyViolation reports whether the error is a foreign key constraint violation
func IsForeignKeyViolation(err error) bool { return IsResultCode(err, sqliteErrConstraintForeignKey) }

// IsNotNullViolation reports whether the error is a not-null constraint violation
func IsNotNullViolation(err error) bool { return IsResultCode(err, sqliteErrConstraintNotNull) }

// IsCheckViolation reports whether the error is a check constraint violation
func IsCheckViolation(err error) bool { return IsResultCode(err, sqliteErrConstraintCheck) }

// IsBusy reports whether the database was locked by another connection/writer
func IsBusy(err error) bool {
	sErr, ok := ExtractSQLiteError(err)
	if !ok {
		return false
	}
	primary := sErr.Code() & 0xff
	return primary == sqliteErrBusy || primary == sqliteErrLocked
}

// DBErrorCode maps a sqlite error to an ErrorCode with an ok flag
// !ok means err wasn't a sqlite.Error; caller may fall back to generic handling
func DBErrorCode(err error) (ErrorCode, bool) {
	sErr, ok := ExtractSQLiteError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}

	switch sErr.Code() & 0xff {
	case sqliteErrConstraint:
		if IsDuplicateKey(err) {
			return ErrorCodeDuplicateKey, true
		}
		if IsForeignKeyViolation(err) || IsNotNullViolation(err) || IsCheckViolation(err) {
			return ErrorCodeValidation, true
		}
		return ErrorCodeInvalidArgument, true
	case sqliteErrBusy, sqliteErrLocked:
		return ErrorCodeUnavailable, true
	case sqliteErrReadonly, sqliteErrCantOpen:
		return ErrorCodeUnavailable, true
	case sqliteErrIOErr, sqliteErrCorrupt:
		return ErrorCodeDB, true
	}
	return ErrorCodeDB, true
}

// FromSQLite wraps a sqlite error with a mapped ErrorCode and message
// If err is nil, returns nil
func FromSQLite(err error, msg string) error {
	if err == nil {
		return nil
	}
	if code, ok := DBErrorCode(err); ok {
		return Wrap(err, code, msg)
	}
	return Wrap(err, ErrorCodeDB, msg)
}

// FromSQLitef is the formatted variant of FromSQLite
func FromSQLitef(err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	if code, ok := DBErrorCode(err); ok {
		return Wrap(err, code, fmt.Sprintf(format, a...))
	}
	return Wrap(err, ErrorCodeDB, fmt.Sprintf(format, a...))
}

// IsRetryable reports whether a database error represents a transient condition
// worth retrying, e.g. SQLITE_BUSY from a concurrent reader holding a lock
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if IsBusy(err) {
		return true
	}
	s := strings.ToLower(Root(err).Error())
	switch {
	case strings.Contains(s, "database is locked"),
		strings.Contains(s, "database table is locked"),
		strings.Contains(s, "busy"):
		return true
	default:
		return false
	}
}
