// Package main provides the entry point for the site admin API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sng_admin",
	Short: "Site admin API server",
	Long:  "sng_admin serves the admin panel API: sessions, project/vacancy/document collections, site settings and image uploads.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
