package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MarsCodex3/Lawclone/internal/api"
	"github.com/MarsCodex3/Lawclone/internal/config"
	"github.com/MarsCodex3/Lawclone/internal/middleware"
	"github.com/MarsCodex3/Lawclone/internal/payment"
	"github.com/MarsCodex3/Lawclone/internal/service"
	"github.com/MarsCodex3/Lawclone/internal/storage/sqlite"
	"github.com/MarsCodex3/Lawclone/pkg/logging"
)

func main() {
	logging.Setup()

	cfg := config.Load()

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	// Payment provider
	gateway := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.BaseURL)
	webhooks := payment.NewStripeWebhook(cfg.StripeWebhookSecret)

	// Services and routes
	invoices := service.NewInvoiceService(store)
	payments := service.NewPaymentService(gateway, store)

	router := mux.NewRouter()
	router.Use(middleware.Metrics)
	api.NewServer(invoices, payments, webhooks).Register(router)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Serve the frontend for all non-API routes
	staticDir, err := filepath.Abs(cfg.StaticPath)
	if err != nil {
		slog.Error("Failed to resolve static path", "error", err)
		os.Exit(1)
	}
	slog.Info("Serving static files", "path", staticDir)

	router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(staticDir, filepath.Clean(urlPath))

		// For SPA-like behavior, serve index.html for unknown paths
		// (/invoices/new, /invoices/{id}, /invoices/{id}/success)
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}

		http.ServeFile(w, r, filePath)
	})

	handler := middleware.Logging(middleware.CORS(router))

	addr := fmt.Sprintf(":%s", cfg.Port)
	slog.Info("Server starting", "address", addr, "base_url", cfg.BaseURL)
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
