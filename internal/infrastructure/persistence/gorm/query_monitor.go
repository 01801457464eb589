package gorm

import (
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	queryMonitorName     = "mealbuddy:query_monitor"
	queryMonitorStartKey = "query_monitor:start"
	maxLoggedSQL         = 500
)

// QueryObserver receives one observation per executed statement
type QueryObserver func(operation string, duration time.Duration, err error)

// QueryMonitor is a GORM plugin that times every statement, reports it to
// an observer and logs statements slower than the threshold
type QueryMonitor struct {
	logger        *zap.Logger
	slowThreshold time.Duration
	observe       QueryObserver
}

// NewQueryMonitor creates a query monitor. A zero threshold disables slow
// query logging; a nil observer only logs.
func NewQueryMonitor(logger *zap.Logger, slowThreshold time.Duration, observe QueryObserver) *QueryMonitor {
	if observe == nil {
		observe = func(string, time.Duration, error) {}
	}
	return &QueryMonitor{
		logger:        logger.Named("query-monitor"),
		slowThreshold: slowThreshold,
		observe:       observe,
	}
}

var _ gorm.Plugin = (*QueryMonitor)(nil)

// Name implements gorm.Plugin
func (qm *QueryMonitor) Name() string {
	return queryMonitorName
}

// Initialize registers the timing callbacks around every processor
func (qm *QueryMonitor) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	hooks := []struct {
		operation string
		before    func(name string, fn func(*gorm.DB)) error
		after     func(name string, fn func(*gorm.DB)) error
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}

	for _, h := range hooks {
		if err := h.before(queryMonitorName+":before_"+h.operation, qm.before); err != nil {
			return err
		}
		if err := h.after(queryMonitorName+":after_"+h.operation, qm.after(h.operation)); err != nil {
			return err
		}
	}
	return nil
}

func (qm *QueryMonitor) before(db *gorm.DB) {
	db.InstanceSet(queryMonitorStartKey, time.Now())
}

func (qm *QueryMonitor) after(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		value, ok := db.InstanceGet(queryMonitorStartKey)
		if !ok {
			return
		}
		start, ok := value.(time.Time)
		if !ok {
			return
		}

		duration := time.Since(start)
		err := db.Error
		if err == gorm.ErrRecordNotFound {
			err = nil
		}
		qm.observe(operation, duration, err)

		if qm.slowThreshold > 0 && duration > qm.slowThreshold {
			qm.logger.Warn("Slow query detected",
				zap.String("operation", operation),
				zap.Duration("duration", duration),
				zap.String("sql", sanitizeSQL(db.Statement.SQL.String())),
				zap.Error(err),
			)
		}
	}
}

// sanitizeSQL strips literals and bounds the length for logging
func sanitizeSQL(sql string) string {
	sanitized := strings.ReplaceAll(sql, "'", "?")
	if len(sanitized) > maxLoggedSQL {
		sanitized = sanitized[:maxLoggedSQL] + "..."
	}
	return sanitized
}
