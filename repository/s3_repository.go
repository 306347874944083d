package repository

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"katalog-produk/config"
	"katalog-produk/models"
	"katalog-produk/utils"
)

// s3API is the subset of the S3 client used to read a collection
type s3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3ProductRepository reads products stored as JSON objects under <collection>/<id>.json
type S3ProductRepository struct {
	client s3API
	bucket string
	prefix string
}

// NewS3ProductRepository creates an S3-backed repository (AWS S3 or MinIO)
func NewS3ProductRepository(ctx context.Context, cfg config.S3Config, collection string) (*S3ProductRepository, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return newS3ProductRepository(client, cfg.Bucket, collection), nil
}

func newS3ProductRepository(client s3API, bucket, collection string) *S3ProductRepository {
	return &S3ProductRepository{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(collection, "/") + "/",
	}
}

// Ensure S3ProductRepository implements ProductRepositoryInterface
var _ ProductRepositoryInterface = (*S3ProductRepository)(nil)

// ListProducts lists the collection prefix and decodes every JSON object, in key order
func (r *S3ProductRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	log.Printf("📦 Loading products from s3://%s/%s", r.bucket, r.prefix)

	var keys []string
	var token *string
	for {
		out, err := r.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(r.bucket),
			Prefix:            aws.String(r.prefix),
			ContinuationToken: token,
		})
		if err != nil {
			log.Printf("❌ Error listing objects: %v", err)
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			// Only direct children of the collection prefix are documents
			if !strings.HasSuffix(key, ".json") || strings.Contains(strings.TrimPrefix(key, r.prefix), "/") {
				continue
			}
			keys = append(keys, key)
		}
		if aws.ToBool(out.IsTruncated) && out.NextContinuationToken != nil {
			token = out.NextContinuationToken
			continue
		}
		break
	}

	products := make([]models.Product, 0, len(keys))
	for _, key := range keys {
		product, err := r.getProduct(ctx, key)
		if err != nil {
			log.Printf("❌ Error reading %s: %v", key, err)
			return nil, err
		}
		products = append(products, product)
	}

	log.Printf("✅ Loaded %d products", len(products))
	return products, nil
}

func (r *S3ProductRepository) getProduct(ctx context.Context, key string) (models.Product, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to read object %s: %w", key, err)
	}

	id := strings.TrimSuffix(path.Base(key), ".json")
	return utils.ProductFromJSON(id, body)
}
