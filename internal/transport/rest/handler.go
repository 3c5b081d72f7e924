// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	producterrors "github.com/abgdnv/productapi/internal/errors"
	"github.com/abgdnv/productapi/internal/service"
	"github.com/abgdnv/productapi/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

const welcomeMessage = "Welcome to the Product API! Go to /api/products to see all products."

type Handler struct {
	service  service.ProductService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the product REST API with the provided service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the product API.
// The literal search/stats routes are registered ahead of the {id} pattern so
// those path segments are never taken for product IDs.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Get("/", h.Welcome)

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.handle(h.List))
		r.Post("/", h.handle(h.Create))
		r.Get("/search", h.handle(h.Search))
		r.Get("/stats", h.handle(h.Stats))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handle(h.FindByID))
			r.Put("/", h.handle(h.Update))
			r.Delete("/", h.handle(h.DeleteByID))
		})
	})
}

// handlerFunc is an HTTP handler that reports failures as returned errors
// instead of writing them itself.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts a handlerFunc to http.HandlerFunc. It is the terminal error
// stage of the request pipeline: every error returned by a handler is
// translated here, classified errors to their status and message, anything
// else to a generic 500. Client responses never carry internal detail.
func (h *Handler) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}
		mLogger := h.loggerWithReqID(r)
		var apiErr *producterrors.Error
		if errors.As(err, &apiErr) {
			mLogger.WarnContext(r.Context(), "Request failed",
				"method", r.Method, "path", r.URL.Path, "status", apiErr.Status, "error", err)
			web.RespondError(w, mLogger, apiErr.Status, apiErr.Message)
			return
		}
		mLogger.ErrorContext(r.Context(), "Unhandled error",
			"method", r.Method, "path", r.URL.Path, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Internal Server Error")
	}
}

// Welcome serves the static root message.
func (h *Handler) Welcome(w http.ResponseWriter, _ *http.Request) {
	web.RespondText(w, http.StatusOK, welcomeMessage)
}

// List retrieves one page of products, optionally filtered by category.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) error {
	mLogger := h.loggerWithReqID(r)
	query := service.ListQuery{
		Category: r.URL.Query().Get("category"),
		Page:     intOrDefault(r, "page", service.DefaultPage),
		Limit:    intOrDefault(r, "limit", service.DefaultLimit),
	}

	mLogger.DebugContext(r.Context(), "Received request to list products",
		"category", query.Category, "page", query.Page, "limit", query.Limit)
	page, err := h.service.List(r.Context(), query)
	if err != nil {
		return err
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product page",
		"totalItems", page.TotalItems, "count", len(page.Products))
	web.RespondJSON(w, mLogger, http.StatusOK, page)
	return nil
}

// Search retrieves products whose name contains the requested term.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) error {
	mLogger := h.loggerWithReqID(r)
	name := r.URL.Query().Get("name")
	if name == "" {
		return producterrors.ErrMissingSearchTerm
	}

	mLogger.DebugContext(r.Context(), "Received request to search products", "name", name)
	results, err := h.service.SearchByName(r.Context(), name)
	if err != nil {
		return err
	}
	mLogger.DebugContext(r.Context(), "Search completed", "count", len(results))
	web.RespondJSON(w, mLogger, http.StatusOK, results)
	return nil
}

// Stats retrieves the per-category product counts.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) error {
	mLogger := h.loggerWithReqID(r)
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		return err
	}
	web.RespondJSON(w, mLogger, http.StatusOK, stats)
	return nil
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) error {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")

	mLogger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		return err
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product", "ID", found.ID, "Name", found.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, found)
	return nil
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) error {
	mLogger := h.loggerWithReqID(r)
	payload, err := h.decodePayload(r)
	if err != nil {
		return err
	}

	newProduct, err := h.service.Create(r.Context(), payload)
	if err != nil {
		return err
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", newProduct.ID, "Name", newProduct.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, newProduct)
	return nil
}

// Update replaces an existing product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) error {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")
	payload, err := h.decodePayload(r)
	if err != nil {
		return err
	}

	updated, err := h.service.Update(r.Context(), id, payload)
	if err != nil {
		return err
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
	return nil
}

// DeleteByID deletes a product by its ID and responds with the removed record.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) error {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")

	removed, err := h.service.DeleteByID(r.Context(), id)
	if err != nil {
		return err
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	web.RespondJSON(w, mLogger, http.StatusOK, removed)
	return nil
}

// decodePayload decodes and validates a create/update request body.
// A wrongly typed field or a missing one is the classified validation error;
// a body that is not JSON at all is still a 400 through the same error path.
func (h *Handler) decodePayload(r *http.Request) (service.ProductPayload, error) {
	var payload service.ProductPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return payload, producterrors.ErrInvalidProduct
		}
		return payload, producterrors.Validation("Invalid request body")
	}
	if err := h.validate.Struct(payload); err != nil {
		return payload, producterrors.ErrInvalidProduct
	}
	return payload, nil
}

// intOrDefault parses an integer query parameter, falling back to the default
// when the parameter is absent or not a number.
func intOrDefault(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
