package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_EmbeddedInOrder(t *testing.T) {
	names, err := fs.Glob(Migrations, "*.sql")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"00001_user_groups.sql",
		"00002_users.sql",
		"00003_activation_tokens.sql",
		"00004_refresh_sessions.sql",
	}, names)

	for _, n := range names {
		b, err := Migrations.ReadFile(n)
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(b), "-- +goose Up"), n)
		assert.True(t, strings.Contains(string(b), "-- +goose Down"), n)
	}
}
