package main

import (
	"context"
	"fmt"
	"os"

	"github.com/storemesh/marketplace-backend/internal/app"
	"github.com/storemesh/marketplace-backend/internal/observability"
	"github.com/storemesh/marketplace-backend/internal/platform/envutil"
)

func main() {
	application, err := app.New()
	if err != nil {
		fmt.Printf("Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	shutdownOTel := observability.InitOTel(context.Background(), application.Log, observability.OtelConfig{
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "marketplace-backend"),
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),
	})
	defer func() {
		_ = shutdownOTel(context.Background())
	}()

	application.Start()

	port := envutil.String("PORT", "8080")
	application.Log.Info("Server listening", "port", port)
	if err := application.Run(":" + port); err != nil {
		application.Log.Error("Server failed", "error", err)
	}
}
