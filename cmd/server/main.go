package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/Brownie44l1/soil-api/internal/app"
	"github.com/Brownie44l1/soil-api/internal/config"
	"github.com/Brownie44l1/soil-api/internal/handlers"
	"github.com/Brownie44l1/soil-api/internal/model"
	"github.com/Brownie44l1/soil-api/internal/soil"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to config.yaml")
	flag.Parse()

	logger := log.New(os.Stderr, "[soil-api] ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Printf("Model strategy: %s", cfg.Model.Strategy)

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize model (%s): %v", model.KindOf(err), err)
	}
	defer a.Close()

	handler := handlers.NewHandler(a.Classifier, a.Recorder, logger, cfg.Server.MaxUploadBytes)
	mux := http.NewServeMux()
	handler.Routes(mux)

	port := cfg.Server.Port

	logger.Printf("Server starting on port %s", port)
	logger.Printf("Classes: %v", soil.Classes())
	logger.Println("Endpoints:")
	logger.Println("  GET  /health          - Health check")
	logger.Println("  POST /predict         - Raw array prediction")
	logger.Println("  POST /predict/image   - Predict from image upload")
	logger.Println("  GET  /recommendations - Crops for ?soil=<class>")
	logger.Println("  GET  /soils           - Soil classes")
	logger.Println("  GET  /history         - Recent classifications")
	logger.Printf("Upload test: curl -X POST -F \"image=@tanah.jpg\" http://localhost:%s/predict/image", port)

	if err := http.ListenAndServe(":"+port, mux); err != nil {
		a.Close()
		logger.Fatalf("Server failed: %v", err)
	}
}
