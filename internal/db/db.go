package db

import (
	"fmt"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

// AutoMigrate creates the key-value table used by kv.Postgres and the
// index that keeps prefix scans off a sequential scan.
func AutoMigrate(gdb *gorm.DB, table string) error {
	t := pq.QuoteIdentifier(table)
	idx := pq.QuoteIdentifier("idx_" + table + "_key_prefix")

	stmts := []string{
		`create table if not exists ` + t + ` (key text not null primary key, value jsonb not null)`,
		// LIKE 'prefix%' only uses a btree index under text_pattern_ops
		// unless the database collation is C.
		`create index if not exists ` + idx + ` on ` + t + ` (key text_pattern_ops)`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("migrate exec failed: %w (sql=%s)", err, s)
		}
	}
	return nil
}
