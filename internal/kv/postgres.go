package kv

import (
	"context"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Postgres is a Store over a two-column table (key text primary key,
// value jsonb). The table is created by db.AutoMigrate.
type Postgres struct {
	DB    *gorm.DB
	table string
}

func NewPostgres(db *gorm.DB, table string) *Postgres {
	return &Postgres{DB: db, table: pq.QuoteIdentifier(table)}
}

type kvRow struct {
	Key   string
	Value string
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var rows []kvRow
	err := p.DB.WithContext(ctx).
		Raw(`select key, value from `+p.table+` where key = ? limit 1`, key).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return []byte(rows[0].Value), nil
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte) error {
	return p.DB.WithContext(ctx).Exec(`
insert into `+p.table+` (key, value) values (?, ?)
on conflict (key) do update set value = excluded.value`, key, string(value)).Error
}

func (p *Postgres) Insert(ctx context.Context, key string, value []byte) error {
	res := p.DB.WithContext(ctx).Exec(`
insert into `+p.table+` (key, value) values (?, ?)
on conflict (key) do nothing`, key, string(value))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrExists
	}
	return nil
}

func (p *Postgres) ScanPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	var rows []kvRow
	err := p.DB.WithContext(ctx).
		Raw(`select key, value from `+p.table+` where key like ? escape '\' order by key`, likePrefix(prefix)).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, Entry{Key: r.Key, Value: []byte(r.Value)})
	}
	return out, nil
}

func (p *Postgres) Close() error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePrefix turns a literal prefix into a LIKE pattern. "msg_" would
// otherwise match "msgX..." since _ is a single-char wildcard.
func likePrefix(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}
