package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path"

	"google.golang.org/api/firestore/v1"
	"google.golang.org/api/option"

	"katalog-produk/config"
	"katalog-produk/models"
	"katalog-produk/utils"
)

const firestorePageSize = 300

// FirestoreProductRepository reads products from a Cloud Firestore collection over REST
type FirestoreProductRepository struct {
	client     *firestore.Service
	parent     string
	collection string
}

// NewFirestoreProductRepository creates a Firestore client.
// CredentialsFile should be the path to the Service Account JSON file; when empty the
// default credentials chain is used. A custom Endpoint (emulator) disables authentication.
func NewFirestoreProductRepository(ctx context.Context, cfg config.FirestoreConfig, collection string) (*FirestoreProductRepository, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	}

	client, err := firestore.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore service: %w", err)
	}

	databaseID := cfg.DatabaseID
	if databaseID == "" {
		databaseID = "(default)"
	}

	return &FirestoreProductRepository{
		client:     client,
		parent:     fmt.Sprintf("projects/%s/databases/%s/documents", cfg.ProjectID, databaseID),
		collection: collection,
	}, nil
}

// Ensure FirestoreProductRepository implements ProductRepositoryInterface
var _ ProductRepositoryInterface = (*FirestoreProductRepository)(nil)

// ListProducts retrieves all documents of the collection, following page tokens
func (r *FirestoreProductRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	log.Printf("📦 Loading products from Firestore (%s/%s)...", r.parent, r.collection)

	var docs []*firestore.Document
	pageToken := ""
	for {
		call := r.client.Projects.Databases.Documents.List(r.parent, r.collection).
			PageSize(firestorePageSize).
			Context(ctx)

		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			log.Printf("❌ Error listing firestore documents: %v", err)
			return nil, fmt.Errorf("failed to list documents: %w", err)
		}

		docs = append(docs, resp.Documents...)
		pageToken = resp.NextPageToken

		if pageToken == "" {
			break
		}
	}

	products := make([]models.Product, 0, len(docs))
	for _, doc := range docs {
		product, err := productFromFirestore(doc)
		if err != nil {
			log.Printf("❌ Error decoding firestore document %s: %v", doc.Name, err)
			return nil, err
		}
		products = append(products, product)
	}

	log.Printf("✅ Loaded %d products", len(products))
	return products, nil
}

// productFromFirestore maps a Firestore document onto a Product.
// The document id is the last segment of its resource name.
func productFromFirestore(doc *firestore.Document) (models.Product, error) {
	id := path.Base(doc.Name)

	raw, err := json.Marshal(doc.Fields)
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to encode fields of %s: %w", id, err)
	}
	fields, err := utils.FlattenFirestoreFields(raw)
	if err != nil {
		return models.Product{}, err
	}
	return utils.ProductFromDocument(id, fields), nil
}
