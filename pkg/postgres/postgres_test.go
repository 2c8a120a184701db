package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrationURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"postgres scheme", "postgres://u:p@db:5432/ghostnet", "pgx5://u:p@db:5432/ghostnet"},
		{"postgresql scheme", "postgresql://u:p@db:5432/ghostnet?sslmode=disable", "pgx5://u:p@db:5432/ghostnet?sslmode=disable"},
		{"already pgx5", "pgx5://u:p@db:5432/ghostnet", "pgx5://u:p@db:5432/ghostnet"},
		{"unknown scheme kept", "mysql://db", "mysql://db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MigrationURL(tt.in))
		})
	}
}
