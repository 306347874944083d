package repository

import (
	"context"
	"errors"
	"fmt"

	"katalog-produk/config"
	"katalog-produk/db"
)

// ErrUnknownDriver is returned for a store driver with no repository
var ErrUnknownDriver = errors.New("unknown store driver")

// NewProductRepository opens the configured store.
// The returned close function releases any connection and is never nil.
func NewProductRepository(ctx context.Context, cfg config.StoreConfig) (ProductRepositoryInterface, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.DriverFirestore:
		repo, err := NewFirestoreProductRepository(ctx, cfg.Firestore, cfg.Collection)
		if err != nil {
			return nil, noop, err
		}
		return repo, noop, nil

	case config.DriverPostgres:
		conn, err := db.OpenPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to initialize database: %w", err)
		}
		return NewPostgresProductRepository(conn, cfg.Collection), conn.Close, nil

	case config.DriverSQLite:
		conn, err := db.OpenSQLite(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, noop, err
		}
		repo, err := NewSQLiteProductRepository(ctx, conn, cfg.Collection)
		if err != nil {
			conn.Close()
			return nil, noop, err
		}
		return repo, conn.Close, nil

	case config.DriverS3:
		repo, err := NewS3ProductRepository(ctx, cfg.S3, cfg.Collection)
		if err != nil {
			return nil, noop, err
		}
		return repo, noop, nil

	default:
		return nil, noop, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
