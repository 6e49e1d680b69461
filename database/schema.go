package database

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"
)

// schemaGuard runs a table migration once per process. A failed attempt is
// retried on the next call.
type schemaGuard struct {
	mu    sync.Mutex
	ready bool
	model any
}

func (g *schemaGuard) ensure(ctx context.Context, db *gorm.DB) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ready {
		return nil
	}
	if err := db.WithContext(ctx).AutoMigrate(g.model); err != nil {
		return fmt.Errorf("migrate %T: %w", g.model, err)
	}
	g.ready = true
	return nil
}

// withConn checks a dedicated connection out of the pool for the duration of
// fn and hands it back on every exit path.
func withConn(ctx context.Context, db *gorm.DB, guard *schemaGuard, fn func(tx *gorm.DB) error) error {
	if err := guard.ensure(ctx, db); err != nil {
		return err
	}
	return db.WithContext(ctx).Connection(fn)
}
