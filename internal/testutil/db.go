package testutil

import (
	"fmt"
	"testing"

	"socialhub/internal/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenSQLite opens a private in-memory SQLite database with foreign keys on.
// The single connection keeps the in-memory schema alive for the test.
func OpenSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// NewSQLiteDB returns an in-memory database with the full application schema.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()
	db := OpenSQLite(t)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}
