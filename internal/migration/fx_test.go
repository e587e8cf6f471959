package migration

import (
	"io/fs"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/crm/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestMigrateAutoMigratesNonPostgres(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	err = Migrate(db, config.Config{DBType: "sqlite", DBAutoMigrate: true}, zap.NewNop())
	require.NoError(t, err)

	for _, table := range []string{"companies", "subscription_items", "billing_settings", "quote_items", "activities", "invitations", "audit_logs"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestMigrateDisabled(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(db, config.Config{DBType: "sqlite"}, zap.NewNop()))
	assert.False(t, db.Migrator().HasTable("companies"))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(embeddedMigrations, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(embeddedMigrations, "migrations/*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}
