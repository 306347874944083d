package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"katalog-produk/app"
	"katalog-produk/service"
)

type exportFlags struct {
	configFile string
	format     string
	output     string
	search     string
	category   string
	barcode    string
}

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	flags := &exportFlags{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered catalog to a PDF or PNG file",
		Long: `Load the catalog, apply the filters and print the render page with a headless
Chrome (CHROME_PATH or a detected installation).`,
		Example: `  katalog export --format pdf --output katalog.pdf
  katalog export --format png --category Minuman --output minuman.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runExport(ctx, flags)
		},
	}

	cmd.Flags().StringVar(&flags.configFile, "config", "", "YAML config file (default $CONFIG_FILE)")
	cmd.Flags().StringVar(&flags.format, "format", "pdf", "Output format: pdf or png")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default katalog.<format>)")
	cmd.Flags().StringVar(&flags.search, "search", "", "Filter by product name")
	cmd.Flags().StringVar(&flags.category, "category", "", "Filter by category")
	cmd.Flags().StringVar(&flags.barcode, "barcode", "", "Show products with this exact barcode")
	return cmd
}

func runExport(ctx context.Context, flags *exportFlags) error {
	format := strings.ToLower(strings.TrimSpace(flags.format))
	if format != "pdf" && format != "png" {
		return fmt.Errorf("invalid format %q (valid: pdf, png)", flags.format)
	}
	output := flags.output
	if output == "" {
		output = "katalog." + format
	}

	cfg, err := loadConfig(flags.configFile)
	if err != nil {
		return err
	}

	// Serve the render page on a private loopback port for the headless browser
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	cfg.BaseURL = "http://" + ln.Addr().String()

	a, err := app.Initialize(ctx, &cfg)
	if err != nil {
		ln.Close()
		return err
	}
	defer a.Close()

	srv := &http.Server{Handler: a.Handler}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("❌ Render server error: %v", err)
		}
	}()
	defer srv.Close()

	if err := a.Session.Reload(ctx); err != nil {
		return fmt.Errorf("%s: %w", service.LoadFailedMessage, err)
	}
	if err := a.Session.Do(ctx, func(catalog *service.CatalogService) {
		if flags.barcode != "" {
			catalog.SearchByBarcode(flags.barcode)
			return
		}
		if flags.category != "" {
			catalog.SelectCategory(flags.category)
		}
		if flags.search != "" {
			catalog.Search(flags.search)
		}
	}); err != nil {
		return err
	}
	for _, alert := range a.Notifications.Drain() {
		log.Printf("⚠️  %s", alert)
	}

	var data []byte
	if format == "pdf" {
		data, err = a.Export.GeneratePDF(ctx)
	} else {
		data, err = a.Export.GeneratePNG(ctx)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	log.Printf("✅ Catalog written to %s (%d bytes)", output, len(data))
	return nil
}
