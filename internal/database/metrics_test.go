package database

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/connectos/backend/internal/metrics"
	"github.com/connectos/backend/internal/models"
)

func queriesTotal(op, table, status string) float64 {
	return testutil.ToFloat64(metrics.Get().DatabaseQueriesTotal.WithLabelValues(op, table, status))
}

func TestMetricsCallbacksCountQueries(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	require.NoError(t, RegisterMetricsCallbacks(db))

	createsBefore := queriesTotal("create", "users", "ok")
	queriesBefore := queriesTotal("query", "users", "ok")

	user := models.User{Username: "ada", Email: "ada@example.com"}
	require.NoError(t, db.Create(&user).Error)

	var users []models.User
	require.NoError(t, db.Find(&users).Error)

	assert.Equal(t, createsBefore+1, queriesTotal("create", "users", "ok"))
	assert.Equal(t, queriesBefore+1, queriesTotal("query", "users", "ok"))
}

func TestMetricsCallbacksTreatRecordNotFoundAsOK(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	require.NoError(t, RegisterMetricsCallbacks(db))

	okBefore := queriesTotal("query", "users", "ok")
	errBefore := queriesTotal("query", "users", "error")

	var user models.User
	assert.ErrorIs(t, db.First(&user, "id = ?", "missing").Error, gorm.ErrRecordNotFound)

	assert.Equal(t, okBefore+1, queriesTotal("query", "users", "ok"),
		"an empty result is not a query failure")
	assert.Equal(t, errBefore, queriesTotal("query", "users", "error"))
}
