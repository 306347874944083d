package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"katalog-produk/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "katalog",
		Short: "Product catalog viewer",
		Long: `Katalog loads the product collection from a document store and serves a
browsable catalog with search, category chips and barcode scanning.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := cli.NewServeCmd()
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(cli.NewProductsCmd())
	rootCmd.AddCommand(cli.NewExportCmd())

	// Running without a subcommand starts the server
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())
	rootCmd.RunE = serveCmd.RunE

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
