package router

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"katalog-produk/app/controller"
)

type Controllers struct {
	Catalog *controller.CatalogController
	Scanner *controller.ScannerController
	Metrics http.Handler
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// recoverMiddleware turns a handler panic into a 500
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("❌ %s %s: panic recovered: %v", r.Method, r.URL.Path, rec)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func NewRouter(controllers *Controllers) *mux.Router {
	r := mux.NewRouter()
	r.Use(recoverMiddleware)

	// Ping endpoint
	r.HandleFunc("/ping", pingHandler).Methods("GET")
	if controllers.Metrics != nil {
		r.Handle("/metrics", controllers.Metrics).Methods("GET")
	}

	// Catalog page and filters
	r.HandleFunc("/", controllers.Catalog.Index).Methods("GET")
	r.HandleFunc("/api/catalog", controllers.Catalog.GetCatalog).Methods("GET")
	r.HandleFunc("/api/search", controllers.Catalog.Search).Methods("POST")
	r.HandleFunc("/api/category", controllers.Catalog.SelectCategory).Methods("POST")
	r.HandleFunc("/api/barcode", controllers.Catalog.SearchBarcode).Methods("POST")
	r.HandleFunc("/api/reload", controllers.Catalog.Reload).Methods("POST")
	r.HandleFunc("/api/notifications/drain", controllers.Catalog.DrainNotifications).Methods("POST")

	// Scanner modal
	r.HandleFunc("/api/scanner", controllers.Scanner.Status).Methods("GET")
	r.HandleFunc("/api/scanner/start", controllers.Scanner.Start).Methods("POST")
	r.HandleFunc("/api/scanner/stop", controllers.Scanner.Stop).Methods("POST")
	r.HandleFunc("/api/scanner/decode", controllers.Scanner.Decode).Methods("POST")
	r.HandleFunc("/api/scanner/camera-error", controllers.Scanner.CameraError).Methods("POST")

	// Images and export
	r.HandleFunc("/products/{id}/thumbnail", controllers.Catalog.Thumbnail).Methods("GET")
	r.HandleFunc("/catalog/render", controllers.Catalog.RenderCatalog).Methods("GET")
	r.HandleFunc("/catalog/export", controllers.Catalog.ExportCatalog).Methods("GET")
	r.HandleFunc("/catalog/export/{id}", controllers.Catalog.DownloadExport).Methods("GET")

	return r
}
