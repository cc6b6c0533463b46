package database

import (
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	dsn := DSN("app", "s3cret", "db", "3306", "courts")
	assert.Equal(t, "app:s3cret@tcp(db:3306)/courts?charset=utf8mb4&parseTime=true&loc=UTC", dsn)

	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "courts", cfg.DBName)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, "UTC", cfg.Loc.String())

	assert.Equal(t, "app@tcp(db:3306)/courts?charset=utf8mb4&parseTime=true&loc=UTC", DSN("app", "", "db", "3306", "courts"))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := migrationFS.ReadDir("migrations")
	require.NoError(t, err)
	up, down := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			up++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			down++
		}
	}
	assert.Equal(t, 4, up)
	assert.Equal(t, up, down)
}
