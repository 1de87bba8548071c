package main

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemEndpoints(t *testing.T) {
	require.NoError(t, cleanupTestData())

	// two observations of milk at different prices on different days
	for _, c := range []struct {
		date  string
		price float64
	}{
		{"2024-01-15", 3.5},
		{"2024-01-22", 3.75},
	} {
		req := scenarioRequest()
		req.Date = c.date
		req.Items[0].Price = decimal.NewFromFloat(c.price)
		resp := makeJSONRequest(t, "POST", "/api/transactions", req)
		require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	}

	var itemID int64

	t.Run("lists items with their category and unit references", func(t *testing.T) {
		resp := makeRequest("GET", "/api/items", nil)

		require.Equal(t, http.StatusOK, resp.Code)

		var items []Item
		require.NoError(t, parseJSONResponse(resp, &items))
		require.Len(t, items, 1)
		assert.Equal(t, "milk", items[0].Name)
		assert.NotZero(t, items[0].CategoryID)
		assert.NotZero(t, items[0].UnitID)
		itemID = items[0].ID
	})

	t.Run("returns the price history newest first", func(t *testing.T) {
		resp := makeRequest("GET", fmt.Sprintf("/api/items/%d/prices", itemID), nil)

		require.Equal(t, http.StatusOK, resp.Code)

		var prices []Price
		require.NoError(t, parseJSONResponse(resp, &prices))
		require.Len(t, prices, 2)
		assert.Equal(t, "2024-01-22", prices[0].Date)
		assert.True(t, decimal.NewFromFloat(3.75).Equal(prices[0].Value))
		assert.Equal(t, "2024-01-15", prices[1].Date)
	})

	t.Run("unknown item returns 404", func(t *testing.T) {
		resp := makeRequest("GET", "/api/items/999999/prices", nil)

		require.Equal(t, http.StatusNotFound, resp.Code)
		assert.Contains(t, resp.Body.String(), "Item not found")
	})
}
