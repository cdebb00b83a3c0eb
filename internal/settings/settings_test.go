package settings_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thoughtburn/internal/settings"
	"thoughtburn/internal/testsupport"
)

func TestStoreGet(t *testing.T) {
	ctx := context.Background()

	t.Run("reports missing keys as not found", func(t *testing.T) {
		dbManager, logger := testsupport.SetupTestDBManager(t)
		store := settings.NewStore(dbManager.GetConnection(), logger)

		value, found, err := store.Get(ctx, "non_existent")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, value)
	})

	t.Run("returns value for existing setting", func(t *testing.T) {
		dbManager, logger := testsupport.SetupTestDBManager(t)
		store := settings.NewStore(dbManager.GetConnection(), logger)

		require.NoError(t, store.Set(ctx, "test_setting", "test_value"))

		value, found, err := store.Get(ctx, "test_setting")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "test_value", value)
	})

	t.Run("distinguishes empty values from missing keys", func(t *testing.T) {
		dbManager, logger := testsupport.SetupTestDBManager(t)
		store := settings.NewStore(dbManager.GetConnection(), logger)

		require.NoError(t, store.Set(ctx, "empty_setting", ""))

		value, found, err := store.Get(ctx, "empty_setting")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Empty(t, value)
	})
}

func TestStoreSet(t *testing.T) {
	ctx := context.Background()

	t.Run("overwrites existing setting in place", func(t *testing.T) {
		dbManager, logger := testsupport.SetupTestDBManager(t)
		db := dbManager.GetConnection()
		testsupport.CleanAllTables(db)
		store := settings.NewStore(db, logger)

		require.NoError(t, store.Set(ctx, "test_setting", "initial_value"))
		require.NoError(t, store.Set(ctx, "test_setting", "updated_value"))

		value, _, err := store.Get(ctx, "test_setting")
		require.NoError(t, err)
		assert.Equal(t, "updated_value", value)

		var count int64
		require.NoError(t, db.Model(&settings.Setting{}).Where("key = ?", "test_setting").Count(&count).Error)
		assert.Equal(t, int64(1), count, "upsert must not create duplicate rows")
	})

	t.Run("lists stored keys", func(t *testing.T) {
		dbManager, logger := testsupport.SetupTestDBManager(t)
		db := dbManager.GetConnection()
		testsupport.CleanAllTables(db)
		store := settings.NewStore(db, logger)

		require.NoError(t, store.Set(ctx, "b", "2"))
		require.NoError(t, store.Set(ctx, "a", "1"))

		keys, err := store.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, keys)
	})
}
