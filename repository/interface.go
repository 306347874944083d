package repository

import (
	"context"

	"katalog-produk/models"
)

// ProductRepositoryInterface defines the contract for reading the product collection.
// Implementations return the full collection in store order; filtering happens client-side.
type ProductRepositoryInterface interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
}
