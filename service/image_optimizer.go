package service

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"katalog-produk/models"
	"katalog-produk/utils"
)

const (
	SizeThumb  = "thumb"
	SizeMedium = "medium"

	// Quality settings
	qualityThumb  = 60
	qualityMedium = 75
	// Size settings (max dimension)
	maxSizeThumb  = 300
	maxSizeMedium = 800

	maxSourceBytes = 15 << 20
)

// ErrNoImage is returned for a product without images
var ErrNoImage = errors.New("product has no image")

// ImageService produces resized JPEG copies of a product's first image and keeps
// them in a disk cache
type ImageService struct {
	cacheDir string
	client   *http.Client
}

// NewImageService creates an ImageService caching under cacheDir ("" disables the cache)
func NewImageService(cacheDir string, client *http.Client) *ImageService {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &ImageService{cacheDir: cacheDir, client: client}
}

// Thumbnail returns the optimized first image of p
func (s *ImageService) Thumbnail(ctx context.Context, p models.Product, size string) ([]byte, error) {
	source := p.FirstImage()
	if source == "" {
		return nil, ErrNoImage
	}
	size = normalizeImageSize(size)

	cachePath := s.cachePath(p.ID, source, size)
	if cachePath != "" {
		if data, err := os.ReadFile(cachePath); err == nil {
			return data, nil
		}
	}

	raw, err := s.loadSource(ctx, source)
	if err != nil {
		return nil, err
	}

	optimized, err := OptimizeImage(raw, size)
	if err != nil {
		return nil, err
	}

	if cachePath != "" {
		if err := saveToCache(cachePath, optimized); err != nil {
			log.Printf("⚠️  Warning: %v", err)
		}
	}
	return optimized, nil
}

// loadSource reads the raw bytes of a remote URL or an embedded payload
func (s *ImageService) loadSource(ctx context.Context, source string) ([]byte, error) {
	if !utils.IsRemoteImage(source) {
		return utils.DecodeEmbeddedImage(source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image source returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return data, nil
}

// cachePath keys the cache by product, source and size so that an edited image
// never serves a stale copy
func (s *ImageService) cachePath(productID, source, size string) string {
	if s.cacheDir == "" {
		return ""
	}
	sum := sha1.Sum([]byte(productID + "\x00" + source))
	return filepath.Join(s.cacheDir, fmt.Sprintf("product_%s_%s.jpg", hex.EncodeToString(sum[:8]), size))
}

func saveToCache(cachePath string, imageData []byte) error {
	if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(cachePath, imageData, 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	log.Printf("✓ Image cached: %s", cachePath)
	return nil
}

func normalizeImageSize(size string) string {
	switch size {
	case SizeThumb, SizeMedium:
		return size
	case "":
		return SizeThumb
	default:
		log.Printf("⚠️  Unknown size '%s', defaulting to medium", size)
		return SizeMedium
	}
}

// OptimizeImage converts raw image bytes (PNG, JPEG) to a JPEG no larger than the
// size bucket ("thumb" or "medium")
func OptimizeImage(imageData []byte, size string) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	maxDim, quality := maxSizeMedium, qualityMedium
	if size == SizeThumb {
		maxDim, quality = maxSizeThumb, qualityThumb
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	var resized image.Image = img
	if width > maxDim || height > maxDim {
		// imaging keeps the aspect ratio when one dimension is 0
		if width >= height {
			resized = imaging.Resize(img, maxDim, 0, imaging.Lanczos)
		} else {
			resized = imaging.Resize(img, 0, maxDim, imaging.Lanczos)
		}
		log.Printf("🔄 Resizing %s image: %dx%d -> %dx%d", format, width, height,
			resized.Bounds().Dx(), resized.Bounds().Dy())
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
