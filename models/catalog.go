package models

// DisplayState is the single visible region of the catalog page
type DisplayState string

const (
	DisplayLoading   DisplayState = "loading"
	DisplayError     DisplayState = "error"
	DisplayEmpty     DisplayState = "empty"
	DisplayPopulated DisplayState = "populated"
)

// AllCategories is the sentinel category value meaning "no category constraint"
const AllCategories = "all"

// ImageKind tells the page how a card image source was built
type ImageKind string

const (
	ImageNone     ImageKind = "none"
	ImageRemote   ImageKind = "remote"
	ImageEmbedded ImageKind = "embedded"
)

// ProductCard represents one rendered product card
type ProductCard struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	PriceText    string    `json:"priceText"`
	Category     string    `json:"category"`
	Barcode      string    `json:"barcode,omitempty"` // Shown only when present
	ImageKind    ImageKind `json:"imageKind"`
	ImageSrc     string    `json:"imageSrc,omitempty"`
	ImageAlt     string    `json:"imageAlt"`
	ExtraImages  int       `json:"extraImages"` // Count badge, 0 hides it
	Placeholder  string    `json:"placeholder"` // Glyph shown when there is no image or it fails to load
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
}

// CategoryChip represents one category selector control
type CategoryChip struct {
	Value  string `json:"value"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// CatalogView is the declarative description of the catalog page
type CatalogView struct {
	State        DisplayState   `json:"state"`
	Loading      bool           `json:"loading"` // A product load is still in flight, whatever the state
	ErrorMessage string         `json:"errorMessage,omitempty"`
	SearchText   string         `json:"searchText"`
	Categories   []CategoryChip `json:"categories"`
	Cards        []ProductCard  `json:"cards"`
	TotalCount   int            `json:"totalCount"`
	ScannerOpen  bool           `json:"scannerOpen"`
}
