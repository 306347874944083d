package controller

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"katalog-produk/models"
	"katalog-produk/service"
	"katalog-produk/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.New("").Funcs(template.FuncMap{
	"imageSrc": imageSrc,
}).ParseFS(templateFS, "templates/*.html"))

// imageSrc lets card image sources through html/template URL filtering.
// Only http(s) URLs, local paths and data:image URIs are passed.
func imageSrc(src string) template.URL {
	if utils.IsRemoteImage(src) || strings.HasPrefix(src, "/") || strings.HasPrefix(src, "data:image/") {
		return template.URL(src)
	}
	return template.URL("#")
}

const maxBodyBytes = 1 << 20

// CatalogSession runs catalog operations on the catalog's event loop
type CatalogSession interface {
	Do(ctx context.Context, fn func(catalog *service.CatalogService)) error
	Reload(ctx context.Context) error
}

// ModalView reports whether the scanner modal is showing
type ModalView interface {
	IsOpen() bool
}

// CatalogController handles HTTP requests for the catalog page and its filters
type CatalogController struct {
	session       CatalogSession
	notifications *service.NotificationQueue
	modal         ModalView
	images        *service.ImageService
	export        *service.ExportService
	scanner       models.ScannerConfig
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(
	session CatalogSession,
	notifications *service.NotificationQueue,
	modal ModalView,
	images *service.ImageService,
	export *service.ExportService,
	scanner models.ScannerConfig,
) *CatalogController {
	return &CatalogController{
		session:       session,
		notifications: notifications,
		modal:         modal,
		images:        images,
		export:        export,
		scanner:       scanner,
	}
}

// currentView renders the catalog on the event loop
func (c *CatalogController) currentView(ctx context.Context, opts service.ViewOptions) (models.CatalogView, error) {
	var view models.CatalogView
	err := c.session.Do(ctx, func(catalog *service.CatalogService) {
		view = catalog.Render(opts)
	})
	if err != nil {
		return models.CatalogView{}, err
	}
	view.ScannerOpen = c.modal != nil && c.modal.IsOpen()
	return view, nil
}

// respondView writes the current catalog view as JSON
func (c *CatalogController) respondView(w http.ResponseWriter, r *http.Request, handler string) {
	view, err := c.currentView(r.Context(), service.ViewOptions{})
	if err != nil {
		log.Printf("❌ %s: Error rendering catalog: %v", handler, err)
		http.Error(w, fmt.Sprintf("Failed to render catalog: %v", err), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, view, handler)
}

// Index handles GET /
func (c *CatalogController) Index(w http.ResponseWriter, r *http.Request) {
	view, err := c.currentView(r.Context(), service.ViewOptions{})
	if err != nil {
		log.Printf("❌ Index: Error rendering catalog: %v", err)
		http.Error(w, "Failed to render catalog", http.StatusServiceUnavailable)
		return
	}

	data := struct {
		View    models.CatalogView
		Scanner models.ScannerConfig
	}{View: view, Scanner: c.scanner}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := pageTemplates.ExecuteTemplate(w, "index.html", data); err != nil {
		log.Printf("❌ Index: Error executing template: %v", err)
	}
}

// GetCatalog handles GET /api/catalog
func (c *CatalogController) GetCatalog(w http.ResponseWriter, r *http.Request) {
	c.respondView(w, r, "GetCatalog")
}

// Search handles POST /api/search
func (c *CatalogController) Search(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if !decodeJSON(w, r, &req, "Search") {
		return
	}

	if err := c.session.Do(r.Context(), func(catalog *service.CatalogService) {
		catalog.Search(req.Text)
	}); err != nil {
		log.Printf("❌ Search: %v", err)
		http.Error(w, "Catalog unavailable", http.StatusServiceUnavailable)
		return
	}
	c.respondView(w, r, "Search")
}

// SelectCategory handles POST /api/category
func (c *CatalogController) SelectCategory(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryRequest
	if !decodeJSON(w, r, &req, "SelectCategory") {
		return
	}

	if err := c.session.Do(r.Context(), func(catalog *service.CatalogService) {
		catalog.SelectCategory(strings.TrimSpace(req.Category))
	}); err != nil {
		log.Printf("❌ SelectCategory: %v", err)
		http.Error(w, "Catalog unavailable", http.StatusServiceUnavailable)
		return
	}
	c.respondView(w, r, "SelectCategory")
}

// SearchBarcode handles POST /api/barcode (manual barcode entry)
func (c *CatalogController) SearchBarcode(w http.ResponseWriter, r *http.Request) {
	var req models.BarcodeRequest
	if !decodeJSON(w, r, &req, "SearchBarcode") {
		return
	}

	if err := c.session.Do(r.Context(), func(catalog *service.CatalogService) {
		catalog.SearchByBarcode(req.Code)
	}); err != nil {
		log.Printf("❌ SearchBarcode: %v", err)
		http.Error(w, "Catalog unavailable", http.StatusServiceUnavailable)
		return
	}
	c.respondView(w, r, "SearchBarcode")
}

// Reload handles POST /api/reload
func (c *CatalogController) Reload(w http.ResponseWriter, r *http.Request) {
	log.Printf("🔄 Reload requested")
	if err := c.session.Reload(r.Context()); err != nil {
		// The error state is part of the view
		log.Printf("⚠️  Reload: %v", err)
	}
	c.respondView(w, r, "Reload")
}

// DrainNotifications handles POST /api/notifications/drain
func (c *CatalogController) DrainNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.NotificationsResponse{Messages: c.notifications.Drain()}, "DrainNotifications")
}

// Thumbnail handles GET /products/{id}/thumbnail?size=thumb|medium.
// Any failure is a 404 so the page falls back to the placeholder glyph.
func (c *CatalogController) Thumbnail(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	size := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("size")))

	var product models.Product
	found := false
	if err := c.session.Do(r.Context(), func(catalog *service.CatalogService) {
		for _, p := range catalog.AllProducts() {
			if p.ID == id {
				product = p
				found = true
				return
			}
		}
	}); err != nil {
		log.Printf("❌ Thumbnail: %v", err)
		http.Error(w, "Catalog unavailable", http.StatusServiceUnavailable)
		return
	}
	if !found {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	data, err := c.images.Thumbnail(r.Context(), product, size)
	if err != nil {
		if !errors.Is(err, service.ErrNoImage) {
			log.Printf("⚠️  Thumbnail: product=%s: %v", id, err)
		}
		http.Error(w, "Image not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("❌ Thumbnail: Error writing response: %v", err)
	}
}

// RenderCatalog handles GET /catalog/render.
// Returns the print layout of the current view (used by chromedp for PDF/PNG export).
func (c *CatalogController) RenderCatalog(w http.ResponseWriter, r *http.Request) {
	view, err := c.currentView(r.Context(), service.ViewOptions{Thumbnails: true})
	if err != nil {
		log.Printf("❌ RenderCatalog: Error rendering catalog: %v", err)
		http.Error(w, "Failed to render catalog", http.StatusServiceUnavailable)
		return
	}

	data := struct {
		View        models.CatalogView
		GeneratedAt string
	}{View: view, GeneratedAt: time.Now().Format("02/01/2006 15:04")}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := pageTemplates.ExecuteTemplate(w, "render.html", data); err != nil {
		log.Printf("❌ RenderCatalog: Error executing template: %v", err)
	}
}

// ExportCatalog handles GET /catalog/export?format=pdf|png
func (c *CatalogController) ExportCatalog(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "pdf"
	}

	var (
		data        []byte
		err         error
		contentType string
	)
	switch format {
	case "pdf":
		data, err = c.export.GeneratePDF(r.Context())
		contentType = "application/pdf"
	case "png":
		data, err = c.export.GeneratePNG(r.Context())
		contentType = "image/png"
	default:
		log.Printf("❌ ExportCatalog: Invalid format: %s", format)
		http.Error(w, "Invalid format. Valid formats: pdf, png", http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Printf("❌ ExportCatalog: Error generating %s: %v", format, err)
		http.Error(w, fmt.Sprintf("Failed to generate %s: %v", format, err), http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("katalog_%s.%s", time.Now().Format("20060102_150405"), format)
	id := c.export.Store(service.StoredExport{Filename: filename, ContentType: contentType, Data: data})
	log.Printf("✅ ExportCatalog: %s ready (%d bytes, id=%s)", filename, len(data), id)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":       id,
		"filename": filename,
		"url":      "/catalog/export/" + id,
		"size":     len(data),
	}, "ExportCatalog")
}

// DownloadExport handles GET /catalog/export/{id}
func (c *CatalogController) DownloadExport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	export, ok := c.export.Fetch(id)
	if !ok {
		log.Printf("❌ DownloadExport: Export not found: %s", id)
		http.Error(w, "Export expired or not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", export.Filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(export.Data)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.Data); err != nil {
		log.Printf("❌ DownloadExport: Error writing response: %v", err)
	}
}

// decodeJSON reads a JSON request body; an empty body decodes to the zero value
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, handler string) bool {
	if r.Body == nil {
		return true
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		log.Printf("❌ %s: Invalid request body: %v", handler, err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}, handler string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("❌ %s: Error encoding JSON response: %v", handler, err)
	}
}
