package app

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"katalog-produk/app/controller"
	"katalog-produk/app/router"
	"katalog-produk/config"
	"katalog-produk/metrics"
	"katalog-produk/repository"
	"katalog-produk/service"
)

// App wires the catalog, the scanner and the HTTP surface together
type App struct {
	Config        *config.Config
	Metrics       *metrics.Metrics
	Catalog       *service.CatalogService
	Session       *Session
	Notifications *service.NotificationQueue
	Modal         *service.ModalState
	Camera        *service.RemoteCamera
	Scanner       *service.ScannerService
	Images        *service.ImageService
	Export        *service.ExportService
	Handler       http.Handler

	closeStore func() error
}

// Initialize opens the configured product store and builds the application
func Initialize(ctx context.Context, cfg *config.Config) (*App, error) {
	repo, closeStore, err := repository.NewProductRepository(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize product store: %w", err)
	}
	log.Printf("✅ Product store ready (driver=%s, collection=%s)", cfg.Store.Driver, cfg.Store.Collection)

	a := New(cfg, repo)
	a.closeStore = closeStore
	return a, nil
}

// New builds the application around an already opened repository.
// The session loop is running when New returns; products are not loaded yet.
func New(cfg *config.Config, repo repository.ProductRepositoryInterface) *App {
	m := metrics.New()
	notifications := service.NewNotificationQueue()

	catalog := service.NewCatalogService(repo, notifications, m, cfg.Categories)
	session := NewSession(catalog)
	session.Start()

	modal := &service.ModalState{}
	camera := service.NewRemoteCamera(cfg.Scanner.Enabled)
	scanner := service.NewScannerService(camera, modal, notifications, cfg.Scanner.Capability(), m)

	images := service.NewImageService(cfg.ImageCache, nil)
	export := service.NewExportService(cfg.PublicBaseURL(), cfg.ChromePath)

	catalogController := controller.NewCatalogController(session, notifications, modal, images, export, scanner.Config())
	controllers := &router.Controllers{
		Catalog: catalogController,
		Scanner: controller.NewScannerController(scanner, camera, modal, catalogController),
		Metrics: m.Handler(),
	}

	return &App{
		Config:        cfg,
		Metrics:       m,
		Catalog:       catalog,
		Session:       session,
		Notifications: notifications,
		Modal:         modal,
		Camera:        camera,
		Scanner:       scanner,
		Images:        images,
		Export:        export,
		Handler:       router.NewRouter(controllers),
	}
}

// Close stops the scanner and the session and closes the product store
func (a *App) Close() error {
	a.Scanner.Stop(context.Background())
	a.Session.Close()
	if a.closeStore != nil {
		return a.closeStore()
	}
	return nil
}
