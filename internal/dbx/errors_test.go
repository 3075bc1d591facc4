package dbx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConstraintClassification(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	fk := &pgconn.PgError{Code: "23503"}

	tests := []struct {
		name       string
		err        error
		wantUnique bool
		wantFK     bool
	}{
		{name: "unique", err: unique, wantUnique: true},
		{name: "wrapped unique", err: fmt.Errorf("db error: %w", unique), wantUnique: true},
		{name: "foreign key", err: fk, wantFK: true},
		{name: "other pg error", err: &pgconn.PgError{Code: "42P01"}},
		{name: "plain error", err: errors.New("boom")},
		{name: "nil", err: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantUnique, IsUniqueViolation(tt.err))
			assert.Equal(t, tt.wantFK, IsForeignKeyViolation(tt.err))
		})
	}
}
