package controller

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"katalog-produk/models"
	"katalog-produk/service"
)

// ScannerController handles the camera modal. The page posts what its camera decodes;
// the first decode of a scan becomes a barcode search on the catalog.
type ScannerController struct {
	scanner *service.ScannerService
	camera  *service.RemoteCamera
	modal   ModalView
	catalog *CatalogController
}

// NewScannerController creates a new ScannerController
func NewScannerController(
	scanner *service.ScannerService,
	camera *service.RemoteCamera,
	modal ModalView,
	catalog *CatalogController,
) *ScannerController {
	return &ScannerController{
		scanner: scanner,
		camera:  camera,
		modal:   modal,
		catalog: catalog,
	}
}

func (c *ScannerController) status() models.ScannerStatus {
	return models.ScannerStatus{
		State:     c.scanner.State(),
		ModalOpen: c.modal.IsOpen(),
		Config:    c.scanner.Config(),
	}
}

// Status handles GET /api/scanner
func (c *ScannerController) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.status(), "ScannerStatus")
}

// Start handles POST /api/scanner/start
func (c *ScannerController) Start(w http.ResponseWriter, r *http.Request) {
	session := c.catalog.session
	err := c.scanner.Start(r.Context(), func(text string) {
		// Runs inside the decode request; the search must finish even if that request is gone
		ctx := context.WithoutCancel(r.Context())
		if err := session.Do(ctx, func(catalog *service.CatalogService) {
			catalog.SearchByBarcode(text)
		}); err != nil {
			log.Printf("❌ ScannerStart: barcode search failed: %v", err)
		}
	})

	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, c.status(), "ScannerStart")
	case errors.Is(err, service.ErrScannerBusy):
		log.Printf("⚠️  ScannerStart: %v", err)
		writeJSON(w, http.StatusConflict, c.status(), "ScannerStart")
	default:
		// The user was already notified; the page reads the alert from the queue
		log.Printf("❌ ScannerStart: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, c.status(), "ScannerStart")
	}
}

// Stop handles POST /api/scanner/stop
func (c *ScannerController) Stop(w http.ResponseWriter, r *http.Request) {
	c.scanner.Stop(r.Context())
	writeJSON(w, http.StatusOK, c.status(), "ScannerStop")
}

// Decode handles POST /api/scanner/decode and returns the resulting catalog view
func (c *ScannerController) Decode(w http.ResponseWriter, r *http.Request) {
	var req models.DecodeRequest
	if !decodeJSON(w, r, &req, "ScannerDecode") {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	if !c.camera.Deliver(req.Text) {
		// Late frame after the scan ended
		writeJSON(w, http.StatusConflict, c.status(), "ScannerDecode")
		return
	}
	c.catalog.respondView(w, r, "ScannerDecode")
}

// CameraError handles POST /api/scanner/camera-error (camera lost or permission denied)
func (c *ScannerController) CameraError(w http.ResponseWriter, r *http.Request) {
	var req models.CameraErrorRequest
	if !decodeJSON(w, r, &req, "ScannerCameraError") {
		return
	}
	message := req.Message
	if message == "" {
		message = "camera failure reported by page"
	}
	c.scanner.CameraFailed(r.Context(), errors.New(message))
	writeJSON(w, http.StatusOK, c.status(), "ScannerCameraError")
}
