package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"katalog-produk/models"
)

func TestBuildProductCard(t *testing.T) {
	tests := []struct {
		name    string
		product models.Product
		check   func(t *testing.T, card models.ProductCard)
	}{
		{
			name:    "remote first image with badge",
			product: models.Product{ID: "1", Name: "Kopi", Price: 15000, Category: "Minuman", Barcode: "111", Images: []string{"https://cdn.example.com/kopi.jpg", "abc", "def"}},
			check: func(t *testing.T, card models.ProductCard) {
				assert.Equal(t, models.ImageRemote, card.ImageKind)
				assert.Equal(t, "https://cdn.example.com/kopi.jpg", card.ImageSrc)
				assert.Equal(t, 2, card.ExtraImages)
				assert.Equal(t, "Rp 15.000", card.PriceText)
				assert.Equal(t, "111", card.Barcode)
				assert.Equal(t, "Kopi", card.ImageAlt)
			},
		},
		{
			name:    "embedded payload becomes a data uri",
			product: models.Product{ID: "2", Name: "Roti", Images: []string{"/9j/4AAQSkZJRg=="}},
			check: func(t *testing.T, card models.ProductCard) {
				assert.Equal(t, models.ImageEmbedded, card.ImageKind)
				assert.Equal(t, "data:image/jpeg;base64,/9j/4AAQSkZJRg==", card.ImageSrc)
				assert.Zero(t, card.ExtraImages)
			},
		},
		{
			name:    "missing fields use placeholders",
			product: models.Product{ID: "3"},
			check: func(t *testing.T, card models.ProductCard) {
				assert.Equal(t, PlaceholderName, card.Name)
				assert.Equal(t, PlaceholderCategory, card.Category)
				assert.Equal(t, "Rp 0", card.PriceText)
				assert.Equal(t, models.ImageNone, card.ImageKind)
				assert.Empty(t, card.ImageSrc)
				assert.Empty(t, card.Barcode)
				assert.Empty(t, card.ThumbnailURL)
				assert.Equal(t, DefaultImageAlt, card.ImageAlt)
				assert.Equal(t, PlaceholderGlyph, card.Placeholder)
			},
		},
		{
			name:    "scheme must be http or https",
			product: models.Product{ID: "4", Name: "Teh", Images: []string{"httpfoo"}},
			check: func(t *testing.T, card models.ProductCard) {
				assert.Equal(t, models.ImageEmbedded, card.ImageKind)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, BuildProductCard(tt.product, ViewOptions{}))
		})
	}
}

func TestBuildProductCardThumbnails(t *testing.T) {
	p := models.Product{ID: "a b", Name: "Kopi", Images: []string{"https://cdn.example.com/kopi.jpg"}}

	card := BuildProductCard(p, ViewOptions{Thumbnails: true})

	assert.Equal(t, "/products/a%20b/thumbnail?size=thumb", card.ThumbnailURL)
	assert.Equal(t, card.ThumbnailURL, card.ImageSrc)
	assert.Equal(t, models.ImageRemote, card.ImageKind)
}

func TestBuildCatalogViewStates(t *testing.T) {
	products := kopiRoti()

	loading := BuildCatalogView(CatalogSnapshot{State: models.DisplayLoading, Products: products}, ViewOptions{})
	assert.Equal(t, models.DisplayLoading, loading.State)
	assert.Empty(t, loading.Cards)

	failed := BuildCatalogView(CatalogSnapshot{State: models.DisplayError, ErrorMessage: LoadFailedMessage, Products: products}, ViewOptions{})
	assert.Equal(t, models.DisplayError, failed.State)
	assert.Equal(t, LoadFailedMessage, failed.ErrorMessage)
	assert.Empty(t, failed.Cards)

	empty := BuildCatalogView(CatalogSnapshot{State: models.DisplayPopulated}, ViewOptions{})
	assert.Equal(t, models.DisplayEmpty, empty.State)
	assert.NotNil(t, empty.Cards)

	populated := BuildCatalogView(CatalogSnapshot{State: models.DisplayEmpty, Products: products}, ViewOptions{})
	assert.Equal(t, models.DisplayPopulated, populated.State)
	require.Len(t, populated.Cards, 2)
	assert.Equal(t, "1", populated.Cards[0].ID)
	assert.Equal(t, "2", populated.Cards[1].ID)
}

func TestBuildCatalogViewIsDeterministic(t *testing.T) {
	snapshot := CatalogSnapshot{
		State:            models.DisplayPopulated,
		SelectedCategory: "Minuman",
		Categories:       []string{"Minuman", "Makanan"},
		Products:         kopiRoti(),
		TotalCount:       2,
	}

	assert.Equal(t, BuildCatalogView(snapshot, ViewOptions{}), BuildCatalogView(snapshot, ViewOptions{}))
}

func TestCategoryOptions(t *testing.T) {
	products := []models.Product{
		{ID: "1", Category: "Minuman"},
		{ID: "2", Category: "Makanan"},
		{ID: "3"},
		{ID: "4", Category: "Minuman"},
		{ID: "5", Category: "Bumbu"},
	}

	got := categoryOptions([]string{"Makanan", "Snack"}, products, "Pakaian")

	assert.Equal(t, []string{"Makanan", "Snack", "Minuman", "Bumbu", "Pakaian"}, got)
}

func TestCategoryChipsExactlyOneActive(t *testing.T) {
	for _, selected := range []string{"", models.AllCategories, "Makanan", "Minuman"} {
		chips := categoryChips([]string{"Minuman", "Makanan"}, selected)

		require.Len(t, chips, 3)
		assert.Equal(t, AllCategoriesLabel, chips[0].Label)

		active := 0
		for _, chip := range chips {
			if chip.Active {
				active++
			}
		}
		assert.Equal(t, 1, active, "selected=%q", selected)
	}
}
