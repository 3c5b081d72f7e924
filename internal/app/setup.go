// Package app contains the application setup for the product API.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/productapi/internal/config"
	"github.com/abgdnv/productapi/internal/service"
	"github.com/abgdnv/productapi/internal/store"
	"github.com/abgdnv/productapi/internal/transport/rest"
	"github.com/abgdnv/productapi/pkg/server"
	"github.com/go-chi/chi/v5"
)

type Dependencies struct {
	ProductService service.ProductService
	Logger         *slog.Logger
}

// SetupDependencies builds the service on top of the in-memory store,
// preloaded with the given seed catalog.
func SetupDependencies(seed []store.Product, logger *slog.Logger) *Dependencies {
	pService := service.NewService(store.NewInMemoryStore(seed...))

	return &Dependencies{
		ProductService: pService,
		Logger:         logger,
	}
}

// SetupHttpHandler initializes the router and routes for the product API.
// Used by E2E tests to exercise the full request pipeline without a listener.
func SetupHttpHandler(deps *Dependencies, apiKey string) http.Handler {
	mux := server.NewChiRouter(deps.Logger, apiKey)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the product API.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Logger)
	productHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the product API.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {

	mux := SetupHttpHandler(deps, cfg.Auth.APIKey)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
