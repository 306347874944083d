package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"katalog-produk/models"
	"katalog-produk/repository"
	"katalog-produk/service"
)

type productsFlags struct {
	configFile string
	search     string
	category   string
	barcode    string
}

// NewProductsCmd creates the products command
func NewProductsCmd() *cobra.Command {
	flags := &productsFlags{}

	cmd := &cobra.Command{
		Use:   "products",
		Short: "Print the catalog to the terminal",
		Long: `Load the product collection once, apply the given filters and print one card per
product. --barcode overrides --search and --category, like a scanned barcode does.`,
		Example: `  katalog products --search kopi
  katalog products --category Makanan
  katalog products --barcode 8991234567890`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, err := loadConfig(flags.configFile)
			if err != nil {
				return err
			}

			repo, closeStore, err := repository.NewProductRepository(ctx, cfg.Store)
			if err != nil {
				return fmt.Errorf("failed to initialize product store: %w", err)
			}
			defer closeStore()

			notifications := service.NewNotificationQueue()
			catalog := service.NewCatalogService(repo, notifications, nil, cfg.Categories)
			view, err := runProducts(ctx, catalog, flags)
			if err != nil {
				return err
			}
			printCatalog(cmd.OutOrStdout(), view, notifications.Drain())
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.configFile, "config", "", "YAML config file (default $CONFIG_FILE)")
	cmd.Flags().StringVar(&flags.search, "search", "", "Filter by product name")
	cmd.Flags().StringVar(&flags.category, "category", "", "Filter by category")
	cmd.Flags().StringVar(&flags.barcode, "barcode", "", "Show products with this exact barcode")
	return cmd
}

// runProducts loads the catalog and applies the filters in the same order the page does
func runProducts(ctx context.Context, catalog *service.CatalogService, flags *productsFlags) (models.CatalogView, error) {
	if err := catalog.LoadProducts(ctx); err != nil {
		return catalog.Render(service.ViewOptions{}), fmt.Errorf("%s: %w", service.LoadFailedMessage, err)
	}

	if flags.barcode != "" {
		catalog.SearchByBarcode(flags.barcode)
		return catalog.Render(service.ViewOptions{}), nil
	}
	if flags.category != "" {
		catalog.SelectCategory(flags.category)
	}
	if flags.search != "" {
		catalog.Search(flags.search)
	}
	return catalog.Render(service.ViewOptions{}), nil
}

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	metaStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	priceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	alertStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	cardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1).
			Width(36)
)

// printCatalog writes the view as terminal cards
func printCatalog(w io.Writer, view models.CatalogView, alerts []string) {
	for _, alert := range alerts {
		fmt.Fprintln(w, alertStyle.Render("! "+alert))
	}

	var chips []string
	for _, chip := range view.Categories {
		if chip.Active {
			chips = append(chips, "["+chip.Label+"]")
		} else {
			chips = append(chips, chip.Label)
		}
	}
	fmt.Fprintln(w, titleStyle.Render("Katalog Produk"))
	fmt.Fprintln(w, metaStyle.Render(strings.Join(chips, "  ")))

	switch view.State {
	case models.DisplayError:
		fmt.Fprintln(w, alertStyle.Render(view.ErrorMessage))
		return
	case models.DisplayLoading:
		fmt.Fprintln(w, metaStyle.Render("Memuat produk..."))
		return
	case models.DisplayEmpty:
		fmt.Fprintln(w, metaStyle.Render("Produk tidak ditemukan."))
		return
	}

	for _, card := range view.Cards {
		fmt.Fprintln(w, renderCard(card))
	}
	fmt.Fprintln(w, metaStyle.Render(fmt.Sprintf("%d dari %d produk", len(view.Cards), view.TotalCount)))
}

func renderCard(card models.ProductCard) string {
	lines := []string{
		titleStyle.Render(card.Name),
		priceStyle.Render(card.PriceText),
		metaStyle.Render(card.Category),
	}
	if card.Barcode != "" {
		lines = append(lines, "Barcode: "+card.Barcode)
	}

	image := card.Placeholder
	switch card.ImageKind {
	case models.ImageRemote:
		image = "gambar: " + card.ImageSrc
	case models.ImageEmbedded:
		image = "gambar: tersemat"
	}
	if card.ExtraImages > 0 {
		image += fmt.Sprintf(" (+%d)", card.ExtraImages)
	}
	lines = append(lines, metaStyle.Render(image))

	return cardStyle.Render(strings.Join(lines, "\n"))
}
