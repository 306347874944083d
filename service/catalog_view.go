package service

import (
	"fmt"
	"net/url"

	"katalog-produk/models"
	"katalog-produk/utils"
)

// Card placeholders
const (
	PlaceholderGlyph    = "inventory_2"
	PlaceholderName     = "Tanpa Nama"
	PlaceholderCategory = "Lainnya"
	AllCategoriesLabel  = "Semua"
	DefaultImageAlt     = "Product"
)

// CatalogSnapshot is the read-only catalog state a view is built from
type CatalogSnapshot struct {
	State            models.DisplayState
	LoadInFlight     bool
	ErrorMessage     string
	SearchText       string
	SelectedCategory string
	Categories       []string
	Products         []models.Product
	TotalCount       int
}

// ViewOptions tweaks how cards reference their images
type ViewOptions struct {
	// Thumbnails points card images at the local thumbnail endpoint instead of the
	// original source (used by the export renderer)
	Thumbnails bool
}

// BuildCatalogView maps a snapshot onto the declarative page description.
// It is a pure function: same snapshot, same view.
func BuildCatalogView(s CatalogSnapshot, opts ViewOptions) models.CatalogView {
	view := models.CatalogView{
		State:      s.State,
		Loading:    s.LoadInFlight,
		SearchText: s.SearchText,
		Categories: categoryChips(s.Categories, s.SelectedCategory),
		Cards:      []models.ProductCard{},
		TotalCount: s.TotalCount,
	}

	switch s.State {
	case models.DisplayLoading:
		return view
	case models.DisplayError:
		view.ErrorMessage = s.ErrorMessage
		return view
	}

	if len(s.Products) == 0 {
		view.State = models.DisplayEmpty
		return view
	}

	view.State = models.DisplayPopulated
	for _, p := range s.Products {
		view.Cards = append(view.Cards, BuildProductCard(p, opts))
	}
	return view
}

// BuildProductCard applies the card policy: first image only, remote URL or embedded
// payload, a badge for the remaining images, placeholders for missing fields
func BuildProductCard(p models.Product, opts ViewOptions) models.ProductCard {
	card := models.ProductCard{
		ID:          p.ID,
		Name:        p.Name,
		PriceText:   utils.FormatRupiah(p.Price),
		Category:    p.Category,
		Barcode:     p.Barcode,
		ImageKind:   models.ImageNone,
		ImageAlt:    p.Name,
		Placeholder: PlaceholderGlyph,
	}
	if card.Name == "" {
		card.Name = PlaceholderName
	}
	if card.ImageAlt == "" {
		card.ImageAlt = DefaultImageAlt
	}
	if card.Category == "" {
		card.Category = PlaceholderCategory
	}

	first := p.FirstImage()
	if first == "" {
		return card
	}

	if utils.IsRemoteImage(first) {
		card.ImageKind = models.ImageRemote
		card.ImageSrc = first
	} else {
		card.ImageKind = models.ImageEmbedded
		card.ImageSrc = utils.EmbeddedImageDataURI(first)
	}
	if len(p.Images) > 1 {
		card.ExtraImages = len(p.Images) - 1
	}

	card.ThumbnailURL = fmt.Sprintf("/products/%s/thumbnail?size=thumb", url.PathEscape(p.ID))
	if opts.Thumbnails {
		card.ImageSrc = card.ThumbnailURL
	}
	return card
}

// categoryOptions lists the configured categories followed by the ones found in the
// products (first appearance order); the selected category is always present
func categoryOptions(configured []string, products []models.Product, selected string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(c string) {
		if c == "" || c == models.AllCategories || seen[c] {
			return
		}
		seen[c] = true
		out = append(out, c)
	}

	for _, c := range configured {
		add(c)
	}
	for _, p := range products {
		add(p.Category)
	}
	add(selected)
	return out
}

// categoryChips prefixes the "all" chip and marks exactly one chip active
func categoryChips(categories []string, selected string) []models.CategoryChip {
	if selected == "" {
		selected = models.AllCategories
	}

	chips := make([]models.CategoryChip, 0, len(categories)+1)
	chips = append(chips, models.CategoryChip{
		Value:  models.AllCategories,
		Label:  AllCategoriesLabel,
		Active: selected == models.AllCategories,
	})
	for _, c := range categories {
		chips = append(chips, models.CategoryChip{
			Value:  c,
			Label:  c,
			Active: c == selected,
		})
	}
	return chips
}
