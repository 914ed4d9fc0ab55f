package database

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// OpenFunc opens and prepares a database connection.
type OpenFunc func(ctx context.Context) (*gorm.DB, error)

// Gateway lazily opens one connection and hands it to every caller.
// Concurrent first callers share the same in-flight open; a failed open is
// not cached, so the next call tries again.
type Gateway struct {
	open  OpenFunc
	group singleflight.Group

	mu sync.RWMutex
	db *gorm.DB
}

func NewGateway(open OpenFunc) *Gateway {
	return &Gateway{open: open}
}

// NewStaticGateway wraps an already open connection.
func NewStaticGateway(db *gorm.DB) *Gateway {
	return &Gateway{db: db}
}

func (g *Gateway) DB(ctx context.Context) (*gorm.DB, error) {
	if db := g.cached(); db != nil {
		return db.WithContext(ctx), nil
	}
	if g.open == nil {
		return nil, errors.New("database gateway has no opener")
	}

	v, err, _ := g.group.Do("connect", func() (interface{}, error) {
		if db := g.cached(); db != nil {
			return db, nil
		}
		// The open is shared, so one caller going away must not fail it.
		db, err := g.open(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		g.mu.Lock()
		g.db = db
		g.mu.Unlock()
		return db, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*gorm.DB).WithContext(ctx), nil
}

func (g *Gateway) cached() *gorm.DB {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.db
}

// Close closes the underlying connection pool if one was opened.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	g.db = nil
	return sqlDB.Close()
}
