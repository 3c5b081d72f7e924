package app

// End-to-end tests for the product API: the real handler stack (routing,
// middleware, auth, validation, store) behind an httptest.Server, seeded with
// the default catalog.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abgdnv/productapi/internal/service"
	"github.com/abgdnv/productapi/internal/store"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testAPIKey = "test-api-key"

type ProductAPIE2ESuite struct {
	suite.Suite
	server *httptest.Server
	client *http.Client
}

func TestProductAPIE2ESuite(t *testing.T) {
	suite.Run(t, new(ProductAPIE2ESuite))
}

// SetupTest starts a fresh seeded server so tests cannot observe each other's
// mutations.
func (s *ProductAPIE2ESuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps := SetupDependencies(store.DefaultCatalog(), logger)
	s.server = httptest.NewServer(SetupHttpHandler(deps, testAPIKey))
	s.client = s.server.Client()
}

func (s *ProductAPIE2ESuite) TearDownTest() {
	s.server.Close()
}

// doRequest performs a request with the valid API key attached.
func (s *ProductAPIE2ESuite) doRequest(method, path string, body any) (*http.Response, []byte) {
	s.T().Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(s.T(), err)
	req.Header.Set("x-api-key", testAPIKey)

	resp, err := s.client.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	return resp, raw
}

func validProduct() map[string]any {
	return map[string]any{
		"name":        "Blender",
		"description": "500W blender with glass jar",
		"price":       76.5,
		"category":    "kitchen",
		"inStock":     true,
	}
}

func (s *ProductAPIE2ESuite) TestWelcome() {
	resp, body := s.doRequest(http.MethodGet, "/", nil)

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("Welcome to the Product API! Go to /api/products to see all products.", string(body))
}

func (s *ProductAPIE2ESuite) TestAuthRequired() {
	paths := []string{"/", "/api/products", "/api/products/1", "/api/products/search?name=x", "/api/products/stats"}

	for _, path := range paths {
		// no key at all
		req, err := http.NewRequest(http.MethodGet, s.server.URL+path, nil)
		s.Require().NoError(err)
		resp, err := s.client.Do(req)
		s.Require().NoError(err)
		raw, err := io.ReadAll(resp.Body)
		s.Require().NoError(err)
		resp.Body.Close()
		s.Equal(http.StatusUnauthorized, resp.StatusCode, "missing key on %s", path)
		s.JSONEq(`{"error":"Unauthorized: Invalid API key"}`, string(raw))

		// wrong key
		req, err = http.NewRequest(http.MethodGet, s.server.URL+path, nil)
		s.Require().NoError(err)
		req.Header.Set("x-api-key", "wrong-key")
		resp, err = s.client.Do(req)
		s.Require().NoError(err)
		resp.Body.Close()
		s.Equal(http.StatusUnauthorized, resp.StatusCode, "wrong key on %s", path)
	}
}

func (s *ProductAPIE2ESuite) TestListPagination() {
	resp, body := s.doRequest(http.MethodGet, "/api/products?limit=2&page=1", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var page service.ProductPage
	s.Require().NoError(json.Unmarshal(body, &page))
	s.Equal(1, page.Page)
	s.Equal(2, page.Limit)
	s.Equal(3, page.TotalItems)
	s.Equal(2, page.TotalPages)
	s.Len(page.Products, 2)
	s.Equal("Laptop", page.Products[0].Name)
	s.Equal("Smartphone", page.Products[1].Name)

	resp, body = s.doRequest(http.MethodGet, "/api/products?limit=2&page=2", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Require().NoError(json.Unmarshal(body, &page))
	s.Equal(3, page.TotalItems)
	s.Len(page.Products, 1)
	s.Equal("Coffee Maker", page.Products[0].Name)
}

func (s *ProductAPIE2ESuite) TestCategoryFilter() {
	// query value case differs from the stored category
	resp, body := s.doRequest(http.MethodGet, "/api/products?category=Electronics", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var page service.ProductPage
	s.Require().NoError(json.Unmarshal(body, &page))
	s.Equal(2, page.TotalItems)
	for _, p := range page.Products {
		s.Equal("electronics", p.Category)
	}
}

func (s *ProductAPIE2ESuite) TestSearch() {
	resp, body := s.doRequest(http.MethodGet, "/api/products/search?name=phone", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var results []service.ProductDto
	s.Require().NoError(json.Unmarshal(body, &results))
	s.Require().Len(results, 1)
	s.Equal("Smartphone", results[0].Name)

	// missing name parameter
	resp, body = s.doRequest(http.MethodGet, "/api/products/search", nil)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.JSONEq(`{"error":"Missing \"name\" query parameter"}`, string(body))
}

func (s *ProductAPIE2ESuite) TestStats() {
	resp, body := s.doRequest(http.MethodGet, "/api/products/stats", nil)

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(`{"electronics":2,"kitchen":1}`, string(body))
}

func (s *ProductAPIE2ESuite) TestCreateRoundTrip() {
	// create
	resp, body := s.doRequest(http.MethodPost, "/api/products", validProduct())
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var created service.ProductDto
	s.Require().NoError(json.Unmarshal(body, &created))
	s.NotEmpty(created.ID)
	s.NotContains([]string{"1", "2", "3"}, created.ID, "generated ID must not collide with existing ones")
	s.Equal("Blender", created.Name)
	s.Equal(76.5, created.Price)

	// fetch it back by the returned ID
	resp, body = s.doRequest(http.MethodGet, "/api/products/"+created.ID, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var fetched service.ProductDto
	s.Require().NoError(json.Unmarshal(body, &fetched))
	s.Equal(created, fetched)

	// it is appended to the end of the collection
	resp, body = s.doRequest(http.MethodGet, "/api/products", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var page service.ProductPage
	s.Require().NoError(json.Unmarshal(body, &page))
	s.Equal(4, page.TotalItems)
	s.Equal(created.ID, page.Products[3].ID)
}

func (s *ProductAPIE2ESuite) TestValidation() {
	payload := validProduct()
	payload["price"] = "not-a-number"

	resp, body := s.doRequest(http.MethodPost, "/api/products", payload)

	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.JSONEq(`{"error":"Invalid product data"}`, string(body))
}

func (s *ProductAPIE2ESuite) TestNotFound() {
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		var payload any
		if method == http.MethodPut {
			payload = validProduct()
		}
		resp, body := s.doRequest(method, "/api/products/does-not-exist", payload)
		s.Equal(http.StatusNotFound, resp.StatusCode, "%s should report not found", method)
		s.JSONEq(`{"error":"Product not found"}`, string(body))
	}
}

func (s *ProductAPIE2ESuite) TestUpdate() {
	payload := validProduct()
	payload["name"] = "Gaming Laptop"
	payload["category"] = "electronics"

	resp, body := s.doRequest(http.MethodPut, "/api/products/1", payload)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var updated service.ProductDto
	s.Require().NoError(json.Unmarshal(body, &updated))
	s.Equal("1", updated.ID, "ID is immutable")
	s.Equal("Gaming Laptop", updated.Name)

	// the record keeps its position in the collection
	resp, body = s.doRequest(http.MethodGet, "/api/products", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var page service.ProductPage
	s.Require().NoError(json.Unmarshal(body, &page))
	s.Equal("Gaming Laptop", page.Products[0].Name)
	s.Equal(3, page.TotalItems)
}

func (s *ProductAPIE2ESuite) TestDeleteTwice() {
	// first delete succeeds and returns the removed record
	resp, body := s.doRequest(http.MethodDelete, "/api/products/3", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var removed service.ProductDto
	s.Require().NoError(json.Unmarshal(body, &removed))
	s.Equal("Coffee Maker", removed.Name)

	// second delete of the same ID reports not found
	resp, body = s.doRequest(http.MethodDelete, "/api/products/3", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.JSONEq(`{"error":"Product not found"}`, string(body))

	// remaining records keep their order
	resp, body = s.doRequest(http.MethodGet, "/api/products", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var page service.ProductPage
	s.Require().NoError(json.Unmarshal(body, &page))
	s.Equal(2, page.TotalItems)
	s.Equal("Laptop", page.Products[0].Name)
	s.Equal("Smartphone", page.Products[1].Name)
}

func (s *ProductAPIE2ESuite) TestRoutePrecedence() {
	// "search" and "stats" must not be treated as product IDs
	for _, path := range []string{"/api/products/search?name=x", "/api/products/stats"} {
		resp, body := s.doRequest(http.MethodGet, path, nil)
		s.Equal(http.StatusOK, resp.StatusCode, "%s must not be routed as an ID lookup", path)
		s.NotContains(string(body), "Product not found", fmt.Sprintf("%s must not be routed as an ID lookup", path))
	}
}
