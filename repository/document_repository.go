package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"katalog-produk/models"
	"katalog-produk/utils"
)

// The PostgreSQL and SQLite stores share one layout:
// one row per document, the payload kept as JSON
const (
	postgresListQuery = `
		SELECT id, data::text
		FROM documents
		WHERE collection = $1
		ORDER BY created_at ASC, id ASC
	`
	sqliteListQuery = `
		SELECT id, data
		FROM documents
		WHERE collection = ?
		ORDER BY rowid ASC
	`
	sqliteSchema = `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			data TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (collection, id)
		)
	`
)

// documentRepository reads a collection of JSON documents from a SQL table
type documentRepository struct {
	db         *sql.DB
	collection string
	listQuery  string
	driver     string
}

// ListProducts retrieves every document of the collection and maps it to a Product
func (r *documentRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	log.Printf("🔍 ListProducts: Fetching collection=%s from %s", r.collection, r.driver)

	rows, err := r.db.QueryContext(ctx, r.listQuery, r.collection)
	if err != nil {
		log.Printf("❌ Error querying documents: %v", err)
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			log.Printf("❌ Error scanning document: %v", err)
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}

		product, err := utils.ProductFromJSON(id, []byte(data))
		if err != nil {
			log.Printf("❌ Error decoding document %s: %v", id, err)
			return nil, err
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		log.Printf("❌ Error iterating documents: %v", err)
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	log.Printf("✓ Successfully fetched %d products (collection=%s)", len(products), r.collection)
	return products, nil
}

// PostgresProductRepository reads products from a PostgreSQL documents table (JSONB payload)
type PostgresProductRepository struct {
	documentRepository
}

// NewPostgresProductRepository creates a new PostgresProductRepository
func NewPostgresProductRepository(db *sql.DB, collection string) *PostgresProductRepository {
	return &PostgresProductRepository{documentRepository{
		db:         db,
		collection: collection,
		listQuery:  postgresListQuery,
		driver:     "postgres",
	}}
}

// SQLiteProductRepository reads products from a local SQLite documents table
type SQLiteProductRepository struct {
	documentRepository
}

// NewSQLiteProductRepository creates a new SQLiteProductRepository, creating the table if missing
func NewSQLiteProductRepository(ctx context.Context, db *sql.DB, collection string) (*SQLiteProductRepository, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}
	return &SQLiteProductRepository{documentRepository{
		db:         db,
		collection: collection,
		listQuery:  sqliteListQuery,
		driver:     "sqlite",
	}}, nil
}

// Ensure the SQL repositories implement ProductRepositoryInterface
var (
	_ ProductRepositoryInterface = (*PostgresProductRepository)(nil)
	_ ProductRepositoryInterface = (*SQLiteProductRepository)(nil)
)
