package migration

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/examforge/examforge/internal/shared/constants"
	appLogger "github.com/examforge/examforge/internal/shared/logger"
)

func TestEmbeddedVersions(t *testing.T) {
	versions, err := EmbeddedVersions()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4}, versions)
}

func TestEmbeddedScripts_HaveUpAndDown(t *testing.T) {
	entries, err := fs.ReadDir(embeddedScripts, scriptsDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, e := range entries {
		body, err := fs.ReadFile(embeddedScripts, scriptsDir+"/"+e.Name())
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", e.Name())
		assert.Contains(t, string(body), "-- +goose Down", e.Name())
	}
}

func TestNewManager_StrategyByEnvironment(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{env: constants.EnvDevelopment, want: "gorm_auto_migrate"},
		{env: strings.ToUpper(constants.EnvDevelopment), want: "gorm_auto_migrate"},
		{env: constants.EnvTest, want: "goose"},
		{env: constants.EnvProduction, want: "goose"},
		{env: "", want: "goose"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			assert.Equal(t, tt.want, NewManager(tt.env).GetStrategy().GetName())
		})
	}
}

func TestGormAutoMigrateStrategy_CreatesTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	m := NewManagerWithStrategy(NewGormAutoMigrateStrategy(appLogger.NewDiscard()), appLogger.NewDiscard())
	require.NoError(t, m.Migrate(db))

	for _, table := range []string{
		constants.TablePlans,
		constants.TableUsers,
		constants.TablePayments,
		constants.TableWebhookEvents,
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestGooseStrategy_MigrateDownRejectsZeroSteps(t *testing.T) {
	err := NewGooseStrategy(appLogger.NewDiscard()).MigrateDown(nil, 0)
	assert.ErrorContains(t, err, "steps must be at least 1")
}
