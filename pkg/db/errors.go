package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type ErrorKind int

const (
	KindOther ErrorKind = iota
	// KindConflict: unique, foreign key or check constraint rejected the write.
	KindConflict
	// KindTransient: the same statement may succeed if retried.
	KindTransient
)

func (k ErrorKind) String() string {
	switch k {
	case KindConflict:
		return "conflict"
	case KindTransient:
		return "transient"
	default:
		return "other"
	}
}

// Classify sorts a storage error into a retry/conflict bucket.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindOther
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey),
		errors.Is(err, gorm.ErrForeignKeyViolated),
		errors.Is(err, gorm.ErrCheckConstraintViolated):
		return KindConflict
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, io.ErrUnexpectedEOF):
		return KindTransient
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifySQLState(pgErr.Code)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return KindTransient
	}
	if pgconn.Timeout(err) {
		return KindTransient
	}

	return classifyMessage(err.Error())
}

func classifySQLState(code string) ErrorKind {
	switch code {
	case "23505", "23503", "23514":
		return KindConflict
	case "40001", "40P01", "55P03", "57014", "53300", "57P01":
		return KindTransient
	}
	if strings.HasPrefix(code, "08") {
		return KindTransient
	}
	return KindOther
}

// sqlite reports constraint and locking failures only as text.
func classifyMessage(msg string) ErrorKind {
	m := strings.ToLower(msg)
	switch {
	case strings.Contains(m, "unique constraint failed"),
		strings.Contains(m, "foreign key constraint failed"),
		strings.Contains(m, "check constraint failed"):
		return KindConflict
	case strings.Contains(m, "database is locked"),
		strings.Contains(m, "sqlite_busy"),
		strings.Contains(m, "connection refused"),
		strings.Contains(m, "broken pipe"):
		return KindTransient
	}
	return KindOther
}
