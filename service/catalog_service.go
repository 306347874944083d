package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"katalog-produk/metrics"
	"katalog-produk/models"
	"katalog-produk/repository"
)

// CatalogService owns the product set and the filtered view shown to the user.
//
// It is not safe for concurrent use: every method must run on the single event
// goroutine that owns the catalog (see app.Session). FetchProducts is the only
// method that touches no state and may run elsewhere.
type CatalogService struct {
	repository repository.ProductRepositoryInterface
	notifier   Notifier
	metrics    *metrics.Metrics
	categories []string

	allProducts      []models.Product
	filteredProducts []models.Product
	selectedCategory string
	searchText       string
	state            models.DisplayState
	errorMessage     string

	// loadGeneration identifies the newest BeginLoad; older completions are dropped
	loadGeneration uint64
	loadInFlight   bool
}

// NewCatalogService creates a CatalogService in the loading state with no products.
// categories lists the chips shown before any category discovered in the data.
func NewCatalogService(
	repo repository.ProductRepositoryInterface,
	notifier Notifier,
	m *metrics.Metrics,
	categories []string,
) *CatalogService {
	return &CatalogService{
		repository:       repo,
		notifier:         notifier,
		metrics:          m,
		categories:       categories,
		allProducts:      []models.Product{},
		filteredProducts: []models.Product{},
		selectedCategory: models.AllCategories,
		state:            models.DisplayLoading,
	}
}

// LoadProducts fetches the full collection and replaces the catalog.
// On failure the catalog keeps its previous products and shows the error state.
func (s *CatalogService) LoadProducts(ctx context.Context) error {
	generation := s.BeginLoad()
	products, err := s.FetchProducts(ctx)
	s.CompleteLoad(generation, products, err)
	return err
}

// BeginLoad switches to the loading state and returns the generation CompleteLoad
// must be called with
func (s *CatalogService) BeginLoad() uint64 {
	s.loadGeneration++
	s.loadInFlight = true
	s.state = models.DisplayLoading
	s.errorMessage = ""
	return s.loadGeneration
}

// FetchProducts reads the collection from the store without touching catalog state.
// Store panics are converted to errors so that a broken store never takes down the caller.
func (s *CatalogService) FetchProducts(ctx context.Context) (products []models.Product, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("product store panicked: %v", r)
		}
	}()

	if s.repository == nil {
		return nil, fmt.Errorf("no product repository configured")
	}
	return s.repository.ListProducts(ctx)
}

// CompleteLoad applies the outcome of a fetch started with BeginLoad.
// A completion from a load that a newer BeginLoad superseded is ignored.
func (s *CatalogService) CompleteLoad(generation uint64, products []models.Product, err error) {
	if generation != s.loadGeneration {
		log.Printf("⚠️  Dropping stale load result (generation %d, current %d)", generation, s.loadGeneration)
		return
	}
	s.loadInFlight = false

	if err != nil {
		log.Printf("❌ Error loading products: %v", err)
		s.metrics.LoadFailed()
		s.state = models.DisplayError
		s.errorMessage = LoadFailedMessage
		return
	}

	s.allProducts = append([]models.Product{}, products...)
	s.filteredProducts = append([]models.Product{}, s.allProducts...)
	s.errorMessage = ""
	s.settleDisplayState()

	log.Printf("✅ Loaded %d products", len(s.allProducts))
	s.metrics.LoadSucceeded(len(s.allProducts))
}

// Search filters by case-insensitive name substring, combined with the selected category
func (s *CatalogService) Search(text string) {
	s.searchText = text
	s.applyFilters()
	s.metrics.FilterApplied("search")
	log.Printf("🔍 Search %q: %d product(s)", text, len(s.filteredProducts))
}

// SelectCategory sets the active category ("" or AllCategories removes the constraint)
// and recombines it with the current search text
func (s *CatalogService) SelectCategory(category string) {
	if category == "" {
		category = models.AllCategories
	}
	s.selectedCategory = category
	s.applyFilters()
	s.metrics.FilterApplied("category")
	log.Printf("🏷️  Category %q: %d product(s)", category, len(s.filteredProducts))
}

// SearchByBarcode shows the products whose barcode equals code exactly, ignoring the
// other filters. With no match the user is notified and the full set is shown again.
// Reports whether anything matched.
func (s *CatalogService) SearchByBarcode(code string) bool {
	log.Printf("🔍 Searching for barcode: %s", code)
	s.metrics.FilterApplied("barcode")

	var matches []models.Product
	if code != "" {
		for _, p := range s.allProducts {
			if p.Barcode == code {
				matches = append(matches, p)
			}
		}
	}

	found := len(matches) > 0
	s.metrics.BarcodeLookup(found)

	if !found {
		s.filteredProducts = append([]models.Product{}, s.allProducts...)
		s.settleDisplayState()
		if s.notifier != nil {
			s.notifier.Notify(fmt.Sprintf(BarcodeNotFoundFormat, code))
		}
		return false
	}

	s.searchText = ""
	s.filteredProducts = matches
	s.settleDisplayState()
	log.Printf("✅ Found %d product(s)", len(matches))
	return true
}

// applyFilters recomputes the filtered view from scratch, keeping store order
func (s *CatalogService) applyFilters() {
	term := strings.ToLower(strings.TrimSpace(s.searchText))

	filtered := make([]models.Product, 0, len(s.allProducts))
	for _, p := range s.allProducts {
		if matchesName(p, term) && matchesCategory(p, s.selectedCategory) {
			filtered = append(filtered, p)
		}
	}
	s.filteredProducts = filtered
	s.settleDisplayState()
}

func matchesName(p models.Product, term string) bool {
	if term == "" {
		return true
	}
	if p.Name == "" {
		return false
	}
	return strings.Contains(strings.ToLower(p.Name), term)
}

func matchesCategory(p models.Product, category string) bool {
	return category == models.AllCategories || p.Category == category
}

// settleDisplayState picks empty or populated from the filtered view size
func (s *CatalogService) settleDisplayState() {
	if len(s.filteredProducts) == 0 {
		s.state = models.DisplayEmpty
		return
	}
	s.state = models.DisplayPopulated
}

// AllProducts returns a copy of the loaded products
func (s *CatalogService) AllProducts() []models.Product {
	return append([]models.Product{}, s.allProducts...)
}

// FilteredProducts returns a copy of the products currently shown
func (s *CatalogService) FilteredProducts() []models.Product {
	return append([]models.Product{}, s.filteredProducts...)
}

func (s *CatalogService) SelectedCategory() string { return s.selectedCategory }
func (s *CatalogService) SearchText() string { return s.searchText }
func (s *CatalogService) DisplayState() models.DisplayState { return s.state }
func (s *CatalogService) ErrorMessage() string { return s.errorMessage }

// LoadInFlight reports whether a fetch started by BeginLoad has not completed yet
func (s *CatalogService) LoadInFlight() bool { return s.loadInFlight }

// Snapshot captures everything the view needs
func (s *CatalogService) Snapshot() CatalogSnapshot {
	return CatalogSnapshot{
		State:            s.state,
		LoadInFlight:     s.loadInFlight,
		ErrorMessage:     s.errorMessage,
		SearchText:       s.searchText,
		SelectedCategory: s.selectedCategory,
		Categories:       categoryOptions(s.categories, s.allProducts, s.selectedCategory),
		Products:         s.FilteredProducts(),
		TotalCount:       len(s.allProducts),
	}
}

// Render builds the declarative view of the current catalog
func (s *CatalogService) Render(opts ViewOptions) models.CatalogView {
	return BuildCatalogView(s.Snapshot(), opts)
}
