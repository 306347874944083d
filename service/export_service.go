package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
)

const (
	exportTimeout = 45 * time.Second
	exportTTL     = 10 * time.Minute
)

// waitForImagesJS resolves once fonts and every <img> settled (loaded or failed)
const waitForImagesJS = `
(function() {
	return Promise.all([
		document.fonts.ready,
		Promise.all(Array.from(document.querySelectorAll('img')).map(img => {
			return new Promise((resolve) => {
				if (img.complete) { resolve(); return; }
				const timeout = setTimeout(() => resolve(), 5000);
				img.onload = () => { clearTimeout(timeout); resolve(); };
				img.onerror = () => { clearTimeout(timeout); resolve(); };
			});
		}))
	]);
})();
`

// ExportService prints the rendered catalog page with a headless Chrome
type ExportService struct {
	baseURL    string
	chromePath string

	mu      sync.RWMutex
	exports map[string]StoredExport
}

// StoredExport is a generated file kept for a later download
type StoredExport struct {
	Filename    string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// NewExportService creates an ExportService. baseURL is where the render page is
// served; chromePath overrides Chrome detection.
func NewExportService(baseURL, chromePath string) *ExportService {
	return &ExportService{
		baseURL:    baseURL,
		chromePath: chromePath,
		exports:    make(map[string]StoredExport),
	}
}

// detectChromePath checks the configured path first, then common installation paths
func detectChromePath(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// RenderURL is the page Chrome prints
func (s *ExportService) RenderURL() string {
	return s.baseURL + "/catalog/render"
}

func (s *ExportService) browserContext(ctx context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
	)
	if path := detectChromePath(s.chromePath); path != "" {
		opts = append(opts, chromedp.ExecPath(path))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	return chromedpCtx, func() {
		chromedpCancel()
		allocCancel()
	}
}

// GeneratePDF prints the render page to an A4 PDF
func (s *ExportService) GeneratePDF(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, exportTimeout)
	defer cancel()

	chromedpCtx, chromedpCancel := s.browserContext(ctx)
	defer chromedpCancel()

	log.Printf("📄 GeneratePDF: %s", s.RenderURL())

	var pdfBuf []byte
	err := chromedp.Run(chromedpCtx,
		chromedp.EmulateViewport(794, 1123), // 210mm x 297mm at 96 DPI
		chromedp.Navigate(s.RenderURL()),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(waitForImagesJS, nil),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).   // 210mm in inches
				WithPaperHeight(11.69). // 297mm in inches
				WithMarginTop(0.4).
				WithMarginBottom(0.4).
				WithMarginLeft(0.4).
				WithMarginRight(0.4).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return pdfBuf, nil
}

// GeneratePNG captures the whole render page as one PNG
func (s *ExportService) GeneratePNG(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, exportTimeout)
	defer cancel()

	chromedpCtx, chromedpCancel := s.browserContext(ctx)
	defer chromedpCancel()

	log.Printf("📸 GeneratePNG: %s", s.RenderURL())

	var buf []byte
	err := chromedp.Run(chromedpCtx,
		chromedp.EmulateViewport(1024, 768),
		chromedp.Navigate(s.RenderURL()),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(waitForImagesJS, nil),
		chromedp.FullScreenshot(&buf, 100), // quality 100 keeps PNG encoding
	)
	if err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("failed to capture screenshot: empty image")
	}
	return buf, nil
}

// Store keeps an export for exportTTL and returns its download id
func (s *ExportService) Store(export StoredExport) string {
	id := uuid.NewString()
	if export.CreatedAt.IsZero() {
		export.CreatedAt = time.Now()
	}

	s.mu.Lock()
	s.exports[id] = export
	s.mu.Unlock()

	time.AfterFunc(exportTTL, func() { s.Forget(id) })
	return id
}

// Fetch returns a stored export
func (s *ExportService) Fetch(id string) (StoredExport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	export, ok := s.exports[id]
	return export, ok
}

// Forget drops a stored export
func (s *ExportService) Forget(id string) {
	s.mu.Lock()
	delete(s.exports, id)
	s.mu.Unlock()
}
