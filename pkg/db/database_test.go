package db

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "")
	require.Error(t, err)
}

func TestOpen_SQLiteEnforcesForeignKeys(t *testing.T) {
	dsn := "sqlite:" + filepath.Join(t.TempDir(), "open.db")
	gdb, err := Open(context.Background(), dsn)
	require.NoError(t, err)

	var enabled int
	require.NoError(t, gdb.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	require.NoError(t, sqlDB.Close())
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "a.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("a.db"))
	assert.Equal(t, "a.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("a.db?mode=rwc"))
	assert.Equal(t, "a.db?_pragma=foreign_keys(0)", sqliteDSN("a.db?_pragma=foreign_keys(0)"))
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "nil", err: nil, want: KindOther},
		{name: "duplicated key", err: fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), want: KindConflict},
		{name: "fk violated", err: gorm.ErrForeignKeyViolated, want: KindConflict},
		{name: "pg unique", err: &pgconn.PgError{Code: "23505"}, want: KindConflict},
		{name: "pg check", err: &pgconn.PgError{Code: "23514"}, want: KindConflict},
		{name: "pg serialization", err: &pgconn.PgError{Code: "40001"}, want: KindTransient},
		{name: "pg deadlock", err: &pgconn.PgError{Code: "40P01"}, want: KindTransient},
		{name: "pg lock timeout", err: &pgconn.PgError{Code: "55P03"}, want: KindTransient},
		{name: "pg connection class", err: &pgconn.PgError{Code: "08006"}, want: KindTransient},
		{name: "pg syntax", err: &pgconn.PgError{Code: "42601"}, want: KindOther},
		{name: "deadline", err: fmt.Errorf("tx: %w", context.DeadlineExceeded), want: KindTransient},
		{name: "sqlite unique", err: errors.New("constraint failed: UNIQUE constraint failed: orders.payment_reference (2067)"), want: KindConflict},
		{name: "sqlite busy", err: errors.New("database is locked (5) (SQLITE_BUSY)"), want: KindTransient},
		{name: "plain", err: errors.New("boom"), want: KindOther},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestGormLogger_ParamsFilterDropsValues(t *testing.T) {
	l := NewGormLogger(time.Second)
	sql, vars := l.ParamsFilter(context.Background(), "SELECT * FROM riders WHERE password = ?", "secret")
	assert.Equal(t, "SELECT * FROM riders WHERE password = ?", sql)
	assert.Nil(t, vars)
}
