package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ikkim/udonggeum-storefront/config"
	"github.com/ikkim/udonggeum-storefront/internal/app/service"
	"github.com/ikkim/udonggeum-storefront/pkg/upstream"
)

// Writes the order history of the account behind STOREFRONT_TOKEN to an
// .xlsx file, the same workbook GET /api/v1/orders/export serves.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/export/main.go <output.xlsx>")
	}
	filePath := os.Args[1]

	token := os.Getenv("STOREFRONT_TOKEN")
	if token == "" {
		log.Fatal("STOREFRONT_TOKEN is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	api, err := upstream.New(upstream.Config{
		BaseURL: cfg.Upstream.APIBaseURL,
		Timeout: cfg.Upstream.Timeout,
	})
	if err != nil {
		log.Fatal("Failed to create API client:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	user, err := service.NewAuthService(api).LoadUser(ctx, token)
	if err != nil {
		log.Fatal("Failed to load account:", err)
	}
	if user.CustomerID == nil {
		log.Fatal("Account has no customer profile")
	}

	if _, err := os.Stat(filePath); err == nil {
		fmt.Printf("%s exists. Overwrite? (yes/no): ", filePath)
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Export cancelled.")
			return
		}
	}

	fmt.Printf("Exporting orders of customer %d\n", *user.CustomerID)
	data, err := service.NewOrderService(api).ExportOrders(ctx, token, *user.CustomerID)
	if err != nil {
		log.Fatal("Export failed:", err)
	}

	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		log.Fatal("Failed to write file:", err)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", filePath, len(data))
}
