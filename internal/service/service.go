// Package service provides the implementation of product-related business
// logic: CRUD on top of the store plus the query operations (filtering,
// search, pagination, category stats).
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/abgdnv/productapi/internal/store"
)

const (
	// DefaultPage is used when the page query parameter is absent, not a
	// number, or not positive.
	DefaultPage = 1
	// DefaultLimit is used when the limit query parameter is absent, not a
	// number, or not positive.
	DefaultLimit = 10
)

// ProductService defines the methods for managing and querying products.
type ProductService interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id string) (*ProductDto, error)

	// List returns one page of products, optionally filtered by category
	// (case-insensitive equality).
	List(ctx context.Context, query ListQuery) (*ProductPage, error)

	// SearchByName returns every product whose name contains the given term,
	// compared case-insensitively. An empty result is not an error.
	SearchByName(ctx context.Context, name string) ([]ProductDto, error)

	// Stats counts products per category over the whole collection,
	// preserving the order in which categories are first encountered.
	Stats(ctx context.Context) (*CategoryStats, error)

	// Create adds a new product to the system.
	Create(ctx context.Context, payload ProductPayload) (*ProductDto, error)

	// Update replaces every field except the ID of an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id string, payload ProductPayload) (*ProductDto, error)

	// DeleteByID removes a product and returns the removed record.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id string) (*ProductDto, error)
}

// Service implements ProductService on top of a ProductStore.
type Service struct {
	repository store.ProductStore
}

// NewService creates a new instance of ProductService with the provided repository.
func NewService(repo store.ProductStore) *Service {
	return &Service{
		repository: repo,
	}
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	InStock     bool    `json:"inStock"`
}

// ProductPayload represents the create/update request body. Fields are
// pointers so that "required" checks presence without rejecting legitimate
// zero values (price 0, inStock false, empty description).
type ProductPayload struct {
	Name        *string  `json:"name"        validate:"required"`
	Description *string  `json:"description" validate:"required"`
	Price       *float64 `json:"price"       validate:"required"`
	Category    *string  `json:"category"    validate:"required"`
	InStock     *bool    `json:"inStock"     validate:"required"`
}

// ListQuery carries the parsed query parameters of the list endpoint.
// Category is empty when no filter was requested.
type ListQuery struct {
	Category string
	Page     int
	Limit    int
}

// ProductPage is one page of the (optionally filtered) collection.
type ProductPage struct {
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
	TotalItems int          `json:"totalItems"`
	TotalPages int          `json:"totalPages"`
	Products   []ProductDto `json:"products"`
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
func (s *Service) FindByID(_ context.Context, id string) (*ProductDto, error) {
	product, err := s.repository.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}

	return toDto(product), nil
}

// List filters the collection by category, slices out the requested page and
// reports pagination totals over the filtered count.
func (s *Service) List(_ context.Context, query ListQuery) (*ProductPage, error) {
	products, err := s.repository.FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	filtered := products
	if query.Category != "" {
		filtered = make([]store.Product, 0, len(products))
		for _, p := range products {
			if strings.EqualFold(p.Category, query.Category) {
				filtered = append(filtered, p)
			}
		}
	}

	page, limit := query.Page, query.Limit
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	start := (page - 1) * limit
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + limit
	if end > len(filtered) {
		end = len(filtered)
	}

	return &ProductPage{
		Page:       page,
		Limit:      limit,
		TotalItems: len(filtered),
		TotalPages: (len(filtered) + limit - 1) / limit,
		Products:   toDtos(filtered[start:end]),
	}, nil
}

// SearchByName returns every product whose name contains the term,
// case-insensitively.
func (s *Service) SearchByName(_ context.Context, name string) ([]ProductDto, error) {
	products, err := s.repository.FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	term := strings.ToLower(name)
	results := make([]store.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), term) {
			results = append(results, p)
		}
	}

	return toDtos(results), nil
}

// Stats counts products per category over the unfiltered collection.
func (s *Service) Stats(_ context.Context) (*CategoryStats, error) {
	products, err := s.repository.FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	stats := NewCategoryStats()
	for _, p := range products {
		stats.Add(p.Category)
	}
	return stats, nil
}

// Create creates a new product and returns it as a ProductDto.
func (s *Service) Create(_ context.Context, payload ProductPayload) (*ProductDto, error) {
	p, err := s.repository.Create(toFields(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return toDto(p), nil
}

// Update replaces an existing product's fields and returns the updated record.
func (s *Service) Update(_ context.Context, id string, payload ProductPayload) (*ProductDto, error) {
	updated, err := s.repository.Replace(id, toFields(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}

	return toDto(updated), nil
}

// DeleteByID deletes a product by its ID and returns the removed record.
func (s *Service) DeleteByID(_ context.Context, id string) (*ProductDto, error) {
	removed, err := s.repository.DeleteByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete product with ID %s: %w", id, err)
	}

	return toDto(removed), nil
}

// CategoryStats counts products per category while remembering the order in
// which categories were first seen, so the serialized object keeps that order.
type CategoryStats struct {
	categories []string
	counts     map[string]int
}

// NewCategoryStats creates an empty stats accumulator.
func NewCategoryStats() *CategoryStats {
	return &CategoryStats{
		counts: make(map[string]int),
	}
}

// Add records one product occurrence for a category.
func (s *CategoryStats) Add(category string) {
	if _, seen := s.counts[category]; !seen {
		s.categories = append(s.categories, category)
	}
	s.counts[category]++
}

// Count returns the number of products recorded for a category.
func (s *CategoryStats) Count(category string) int {
	return s.counts[category]
}

// Categories returns the category names in first-encountered order.
func (s *CategoryStats) Categories() []string {
	return s.categories
}

// MarshalJSON serializes the stats as a JSON object with keys in
// first-encountered order. encoding/json would sort map keys.
func (s *CategoryStats) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, category := range s.categories {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(category)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(s.counts[category]))
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// toFields converts a validated payload to store fields.
func toFields(payload ProductPayload) store.ProductFields {
	return store.ProductFields{
		Name:        *payload.Name,
		Description: *payload.Description,
		Price:       *payload.Price,
		Category:    *payload.Category,
		InStock:     *payload.InStock,
	}
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Category:    product.Category,
		InStock:     product.InStock,
	}
}

func toDtos(products []store.Product) []ProductDto {
	dtos := make([]ProductDto, len(products))
	for i, p := range products {
		dtos[i] = *toDto(&p)
	}
	return dtos
}
