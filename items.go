package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// resolveItem returns the id of the item with the composite natural key
// (name, category, unit), creating it on first reference. An existing row is
// returned as-is; a same-named item with a different category or unit is a
// distinct item.
func resolveItem(ctx context.Context, tx pgx.Tx, name string, categoryID, unitID int64) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO items (name, category_id, unit_id) VALUES ($1, $2, $3)
		ON CONFLICT (name, category_id, unit_id) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, name, categoryID, unitID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("resolving item %q: %w", name, err)
	}
	return id, nil
}

// resolvePrice returns the id of the price observation (value, date) for the
// given item, creating it on first observation. Repeating an identical
// observation collapses onto the existing row.
func resolvePrice(ctx context.Context, tx pgx.Tx, itemID int64, value decimal.Decimal, date time.Time) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO prices (item_id, value, date) VALUES ($1, $2, $3)
		ON CONFLICT (item_id, value, date) DO UPDATE SET value = EXCLUDED.value
		RETURNING id
	`, itemID, value, date).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("resolving price %s for item %d: %w", value, itemID, err)
	}
	return id, nil
}

// linkTransactionItem records that an item was purchased in a transaction.
// Re-linking an already linked item is a no-op, not a duplicate edge.
func linkTransactionItem(ctx context.Context, tx pgx.Tx, transactionID, itemID int64, quantity float64) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO transaction_items (transaction_id, item_id, quantity) VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`, transactionID, itemID, quantity)
	if err != nil {
		return fmt.Errorf("linking item %d to transaction %d: %w", itemID, transactionID, err)
	}
	return nil
}

// linkTargetItem records that an item has been bought from a target.
// Idempotent like linkTransactionItem.
func linkTargetItem(ctx context.Context, tx pgx.Tx, targetID, itemID int64) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO transaction_target_items (transaction_target_id, item_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, targetID, itemID)
	if err != nil {
		return fmt.Errorf("linking item %d to target %d: %w", itemID, targetID, err)
	}
	return nil
}

// Item handler functions

// @Summary List items
// @Tags items
// @Produce json
// @Success 200 {array} Item "List of items"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/items [get]
func getItems(c *gin.Context) {
	rows, err := dbPool.Query(c.Request.Context(),
		"SELECT id, name, category_id, unit_id, created_at FROM items ORDER BY name, id")
	if err != nil {
		log.Error().Err(err).Msg("Error fetching items")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching items"})
		return
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var i Item
		if err := rows.Scan(&i.ID, &i.Name, &i.CategoryID, &i.UnitID, &i.CreatedAt); err != nil {
			log.Error().Err(err).Msg("Error scanning item")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching items"})
			return
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("Error iterating items")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching items"})
		return
	}

	c.JSON(http.StatusOK, items)
}

// @Summary Get item price history
// @Description Retrieve the observed (value, date) pairs for an item, newest first
// @Tags items
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {array} Price "Price observations"
// @Failure 404 {object} map[string]interface{} "Item not found"
// @Router /api/items/{id}/prices [get]
func getItemPrices(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	ctx := c.Request.Context()
	var exists bool
	if err := dbPool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM items WHERE id = $1)", id).Scan(&exists); err != nil {
		log.Error().Err(err).Int64("item_id", id).Msg("Error checking item")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching prices"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}

	rows, err := dbPool.Query(ctx,
		"SELECT id, item_id, value, date FROM prices WHERE item_id = $1 ORDER BY date DESC, id DESC", id)
	if err != nil {
		log.Error().Err(err).Int64("item_id", id).Msg("Error fetching prices")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching prices"})
		return
	}
	defer rows.Close()

	prices := make([]Price, 0)
	for rows.Next() {
		var p Price
		var date time.Time
		if err := rows.Scan(&p.ID, &p.ItemID, &p.Value, &date); err != nil {
			log.Error().Err(err).Msg("Error scanning price")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching prices"})
			return
		}
		p.Date = date.Format(dateLayout)
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("Error iterating prices")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching prices"})
		return
	}

	c.JSON(http.StatusOK, prices)
}
