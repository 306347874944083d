package models

// Product represents a single product document from the remote store
// Optional string fields are empty when absent in the source document
type Product struct {
	ID       string   `json:"id"`
	Name     string   `json:"name,omitempty"`
	Price    float64  `json:"price"`
	Category string   `json:"category,omitempty"`
	Barcode  string   `json:"barcode,omitempty"`
	Images   []string `json:"images,omitempty"`
}

// FirstImage returns the first image entry, or "" when the product has none
func (p Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
