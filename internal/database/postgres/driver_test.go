package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/koustreak/schemadiff/internal/database"
	"github.com/koustreak/schemadiff/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind errs.ErrKind
	}{
		{"deadline", context.DeadlineExceeded, errs.ErrKindTimeout},
		{"no rows", pgx.ErrNoRows, errs.ErrKindNotFound},
		{"undefined table", &pgconn.PgError{Code: "42P01", Message: "relation does not exist"}, errs.ErrKindNotFound},
		{"insufficient privilege", &pgconn.PgError{Code: "42501"}, errs.ErrKindPermissionDenied},
		{"bad password", &pgconn.PgError{Code: "28P01"}, errs.ErrKindPermissionDenied},
		{"connection class", &pgconn.PgError{Code: "08006"}, errs.ErrKindConnectionFailed},
		{"data exception", &pgconn.PgError{Code: "22P02"}, errs.ErrKindInvalidInput},
		{"statement canceled", &pgconn.PgError{Code: "57014"}, errs.ErrKindTimeout},
		{"syntax", &pgconn.PgError{Code: "42601"}, errs.ErrKindQueryFailed},
		{"network", errors.New("dial tcp: refused"), errs.ErrKindConnectionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, "op")
			require.NotNil(t, got)
			assert.Equal(t, tt.kind, got.Kind)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestNew_InvalidDSN(t *testing.T) {
	_, err := New(context.Background(), database.DefaultConfig(database.DriverPostgres, "postgres://%zz"))
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestDriver_Dialect(t *testing.T) {
	var d Driver
	assert.Equal(t, database.DialectPostgres, d.Dialect())
}
