package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/samandartukhtayev/rawsock-users/config"
)

// Conn is a database handle borrowed from a Connector.
// Release must be called once the caller is done with it.
type Conn struct {
	*sqlx.DB
	release func() error
}

// NewConn wraps db; release runs once the borrower is done with it
func NewConn(db *sqlx.DB, release func() error) *Conn {
	return &Conn{DB: db, release: release}
}

// Release returns the connection to its connector
func (c *Conn) Release() error {
	if c.release == nil {
		return nil
	}
	return c.release()
}

// Connector hands out database connections.
// Every session, reads included, runs on the primary so a read always
// observes the writes that preceded it.
type Connector interface {
	Primary(ctx context.Context) (*Conn, error)
	Close() error
}

// ConnectFunc opens a verified database handle
type ConnectFunc func(ctx context.Context, driver, dsn string) (*sqlx.DB, error)

// New builds the connector selected by the configuration
func New(ctx context.Context, cfg *config.Config) (Connector, error) {
	if cfg.Pool {
		return NewPoolConnector(ctx, cfg, sqlx.ConnectContext)
	}
	return NewDirectConnector(cfg, sqlx.ConnectContext), nil
}

// DirectConnector opens a fresh connection for every request and closes it
// on release. Nothing is shared between requests.
type DirectConnector struct {
	driver  string
	dsn     string
	connect ConnectFunc
}

// NewDirectConnector creates a connector without pooling
func NewDirectConnector(cfg *config.Config, connect ConnectFunc) *DirectConnector {
	return &DirectConnector{
		driver:  cfg.Driver,
		dsn:     cfg.DatabaseURL,
		connect: connect,
	}
}

// Primary opens a new connection
func (c *DirectConnector) Primary(ctx context.Context) (*Conn, error) {
	db, err := c.connect(ctx, c.driver, c.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return NewConn(db, db.Close), nil
}

// Close is a no-op since every connection is closed on release
func (c *DirectConnector) Close() error {
	return nil
}

// PoolConnector shares one long-lived pool between requests
type PoolConnector struct {
	primary *sqlx.DB
	mu      sync.RWMutex
}

// NewPoolConnector connects to the primary up front
func NewPoolConnector(ctx context.Context, cfg *config.Config, connect ConnectFunc) (*PoolConnector, error) {
	primary, err := connect(ctx, cfg.Driver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to primary: %w", err)
	}
	configurePool(primary)

	return NewPoolConnectorFromDB(primary), nil
}

// NewPoolConnectorFromDB wraps an already opened handle
func NewPoolConnectorFromDB(primary *sqlx.DB) *PoolConnector {
	return &PoolConnector{
		primary: primary,
	}
}

func configurePool(db *sqlx.DB) {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
}

// Primary returns the shared pool; releasing it is a no-op
func (pc *PoolConnector) Primary(ctx context.Context) (*Conn, error) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	return NewConn(pc.primary, nil), nil
}

// Close closes the pool
func (pc *PoolConnector) Close() error {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if err := pc.primary.Close(); err != nil {
		return fmt.Errorf("failed to close primary: %w", err)
	}

	return nil
}
