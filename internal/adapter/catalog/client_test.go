package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-core/internal/core/domain"
	"storefront-core/pkg/apperror"
	"storefront-core/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetProductPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/internal/v1/products/prod-1/price", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"product_id": "prod-1", "price": "19.99"})
	}))
	defer srv.Close()

	c := NewClientWithHTTP(srv.URL, srv.Client(), logger.New("error", false))

	price, err := c.GetProductPrice(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("19.99").Equal(price))
}

func TestClient_GetProductPrice_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClientWithHTTP(srv.URL, srv.Client(), logger.New("error", false))

	_, err := c.GetProductPrice(context.Background(), "missing")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "GEN_001", appErr.Code)
}

func TestClient_SetProductPrice(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/internal/v1/products/prod-2/price", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClientWithHTTP(srv.URL, srv.Client(), logger.New("error", false))

	err := c.SetProductPrice(context.Background(), "prod-2", decimal.RequireFromString("42.50"))
	require.NoError(t, err)
	assert.Equal(t, "42.5", gotBody["price"])
}

func TestClient_SetProductPrice_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClientWithHTTP(srv.URL, srv.Client(), logger.New("error", false))

	err := c.SetProductPrice(context.Background(), "prod-3", decimal.NewFromInt(5))
	assert.Error(t, err)
}

func TestClient_CreateCategory(t *testing.T) {
	parent := "cat-root"
	var got domain.CategoryPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/internal/v1/categories", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClientWithHTTP(srv.URL, srv.Client(), logger.New("error", false))

	err := c.CreateCategory(context.Background(), domain.CategoryPayload{Name: "Shoes", ParentID: &parent})
	require.NoError(t, err)
	assert.Equal(t, "Shoes", got.Name)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, parent, *got.ParentID)
}
