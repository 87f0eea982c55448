package database

import (
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/connectos/backend/internal/metrics"
)

const queryStartKey = "metrics:query_start"

// RegisterMetricsCallbacks instruments every gorm operation with the
// database duration and count families. Call once per *gorm.DB.
func RegisterMetricsCallbacks(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("metrics:before_query", beforeOp); err != nil {
		return err
	}
	if err := db.Callback().Query().After("gorm:query").Register("metrics:after_query", afterOp("query")); err != nil {
		return err
	}
	if err := db.Callback().Create().Before("gorm:create").Register("metrics:before_create", beforeOp); err != nil {
		return err
	}
	if err := db.Callback().Create().After("gorm:create").Register("metrics:after_create", afterOp("create")); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("metrics:before_update", beforeOp); err != nil {
		return err
	}
	if err := db.Callback().Update().After("gorm:update").Register("metrics:after_update", afterOp("update")); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("metrics:before_delete", beforeOp); err != nil {
		return err
	}
	if err := db.Callback().Delete().After("gorm:delete").Register("metrics:after_delete", afterOp("delete")); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("metrics:before_row", beforeOp); err != nil {
		return err
	}
	return db.Callback().Row().After("gorm:row").Register("metrics:after_row", afterOp("row"))
}

func beforeOp(tx *gorm.DB) {
	tx.InstanceSet(queryStartKey, time.Now())
}

func afterOp(op string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		v, ok := tx.InstanceGet(queryStartKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}

		table := tx.Statement.Table
		if table == "" {
			table = "unknown"
		}
		status := "ok"
		if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			status = "error"
		}

		m := metrics.Get()
		m.DatabaseQueryDuration.WithLabelValues(op, table).Observe(time.Since(start).Seconds())
		m.DatabaseQueriesTotal.WithLabelValues(op, table, status).Inc()
	}
}

// reportConnectionStats keeps the open-connections gauge current. Runs until
// stop is closed.
func reportConnectionStats(sqlDB *sql.DB, stop <-chan struct{}) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			metrics.Get().DatabaseConnectionsOpen.WithLabelValues("postgres").
				Set(float64(sqlDB.Stats().OpenConnections))
		case <-stop:
			return
		}
	}
}
