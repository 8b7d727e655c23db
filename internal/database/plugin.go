package database

import (
	"time"

	"socialhub/internal/observability"

	"gorm.io/gorm"
)

const startedAtKey = "socialhub:query_started_at"

// MetricsPlugin records the latency of every GORM statement in
// observability.DatabaseQueryLatency.
type MetricsPlugin struct{}

// Name implements gorm.Plugin.
func (*MetricsPlugin) Name() string { return "socialhub:metrics" }

// Initialize implements gorm.Plugin.
func (p *MetricsPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		op     string
		before func(string, func(*gorm.DB)) error
		after  func(string, func(*gorm.DB)) error
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}

	for _, h := range hooks {
		if err := h.before(p.Name()+":before_"+h.op, start); err != nil {
			return err
		}
		if err := h.after(p.Name()+":after_"+h.op, observe(h.op)); err != nil {
			return err
		}
	}
	return nil
}

func start(db *gorm.DB) {
	db.InstanceSet(startedAtKey, time.Now())
}

func observe(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(startedAtKey)
		if !ok {
			return
		}
		began, ok := v.(time.Time)
		if !ok {
			return
		}
		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		observability.DatabaseQueryLatency.WithLabelValues(op, table).Observe(time.Since(began).Seconds())
	}
}
