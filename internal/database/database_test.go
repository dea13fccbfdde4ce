package database

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestMigrateUpAndDown(t *testing.T) {
	db, err := Open(":memory:", logger.Silent)
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	version, err := SchemaVersion(db)
	require.NoError(t, err)
	require.Equal(t, int64(1), version)

	for _, table := range []string{"users", "projects", "tasks", "comments"} {
		require.True(t, db.Migrator().HasTable(table), table)
	}

	// Re-running is a no-op.
	require.NoError(t, Migrate(db))

	require.NoError(t, MigrateDown(db))
	require.False(t, db.Migrator().HasTable("tasks"))
}

func TestForeignKeysEnforced(t *testing.T) {
	db, err := Open(":memory:", logger.Silent)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	err = db.Exec("INSERT INTO tasks (titre, etat, project_id) VALUES ('orphan', 'en attente', 999)").Error
	require.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, logger.Silent, ParseLogLevel("silent"))
	require.Equal(t, logger.Info, ParseLogLevel("INFO"))
	require.Equal(t, logger.Warn, ParseLogLevel("bogus"))
}
