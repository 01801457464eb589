package gorm_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	gormrepo "github.com/mealbuddy/engine/internal/infrastructure/persistence/gorm"
	"github.com/mealbuddy/engine/internal/infrastructure/persistence/sqlite"
)

type observation struct {
	operation string
	err       error
}

func TestQueryMonitor_ObservesStatements(t *testing.T) {
	db, err := sqlite.SetupDatabase("", nil)
	require.NoError(t, err)

	var seen []observation
	monitor := gormrepo.NewQueryMonitor(zap.NewNop(), 0, func(operation string, d time.Duration, err error) {
		assert.GreaterOrEqual(t, d, time.Duration(0))
		seen = append(seen, observation{operation, err})
	})
	require.NoError(t, db.Use(monitor))

	require.NoError(t, db.Create(&gormrepo.ProfileModel{UserID: uuid.New(), Location: "Austin, Texas"}).Error)

	var missing gormrepo.ProfileModel
	err = db.Where("user_id = ?", uuid.New()).First(&missing).Error
	require.Error(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, "create", seen[0].operation)
	assert.NoError(t, seen[0].err)
	assert.Equal(t, "query", seen[1].operation)
	// not found is a normal outcome, not a failed statement
	assert.NoError(t, seen[1].err)
}

func TestQueryMonitor_LogsSlowQueries(t *testing.T) {
	db, err := sqlite.SetupDatabase("", nil)
	require.NoError(t, err)

	core, logs := observer.New(zapcore.WarnLevel)
	require.NoError(t, db.Use(gormrepo.NewQueryMonitor(zap.New(core), time.Nanosecond, nil)))

	var count int64
	require.NoError(t, db.Model(&gormrepo.ProfileModel{}).Where("location = ?", "O'Fallon, Missouri").Count(&count).Error)

	entries := logs.FilterMessage("Slow query detected").All()
	require.NotEmpty(t, entries)
	sql := entries[0].ContextMap()["sql"].(string)
	assert.NotContains(t, sql, "'")
}
