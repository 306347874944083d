package models

// SearchRequest represents the request body for a text search
type SearchRequest struct {
	Text string `json:"text"`
}

// CategoryRequest represents the request body for a category selection
type CategoryRequest struct {
	Category string `json:"category"`
}

// BarcodeRequest represents the request body for a barcode lookup
type BarcodeRequest struct {
	Code string `json:"code"`
}

// NotificationsResponse represents pending user alerts
type NotificationsResponse struct {
	Messages []string `json:"messages"`
}
