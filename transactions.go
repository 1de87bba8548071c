package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// defaultFamily owns payment methods when a request names no family.
const defaultFamily = "shared"

// txBeginner is satisfied by *pgxpool.Pool and by pgx.Tx. Beginning on a tx
// opens a savepoint, so the whole assembly nests inside a caller's
// transaction when one exists.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// assembleTransaction resolves every entity referenced by the request and
// persists the transaction graph in one atomic unit of work. Either the full
// graph commits or nothing does: any resolver failure rolls back every row
// staged during the call, including freshly created reference entities.
func assembleTransaction(ctx context.Context, db txBeginner, req CreateTransactionRequest) (*Transaction, error) {
	if len(req.Items) == 0 {
		return nil, ErrNoItems
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, creationFailed(err)
	}
	defer tx.Rollback(ctx)

	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	familyName := req.Family
	if familyName == "" {
		familyName = defaultFamily
	}

	paymentMethodID, err := resolvePaymentMethod(ctx, tx, req.PaymentMethod.Name, familyName)
	if err != nil {
		return nil, creationFailed(err)
	}

	transaction := &Transaction{PaymentMethodID: paymentMethodID, Date: date.Format(dateLayout)}
	err = tx.QueryRow(ctx, `
		INSERT INTO transactions (payment_method_id, date) VALUES ($1, $2)
		RETURNING id, created_at
	`, paymentMethodID, date).Scan(&transaction.ID, &transaction.CreatedAt)
	if err != nil {
		return nil, creationFailed(err)
	}

	for _, line := range req.Items {
		targetID, err := resolveTransactionTarget(ctx, tx, line.TransactionTarget)
		if err != nil {
			return nil, creationFailed(err)
		}

		categoryID, err := resolveCategory(ctx, tx, line.Category)
		if err != nil {
			return nil, creationFailed(err)
		}

		unitID, err := lookupUnit(ctx, tx, line.Unit)
		if err != nil {
			return nil, creationFailed(err)
		}

		itemID, err := resolveItem(ctx, tx, line.Name, categoryID, unitID)
		if err != nil {
			return nil, creationFailed(err)
		}

		if _, err := resolvePrice(ctx, tx, itemID, line.Price, date); err != nil {
			return nil, creationFailed(err)
		}

		quantity := line.Quantity
		if quantity == 0 {
			quantity = 1
		}
		if err := linkTransactionItem(ctx, tx, transaction.ID, itemID, quantity); err != nil {
			return nil, creationFailed(err)
		}
		if err := linkTargetItem(ctx, tx, targetID, itemID); err != nil {
			return nil, creationFailed(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, creationFailed(err)
	}

	return transaction, nil
}

// Transaction handler functions

// @Summary Create transaction
// @Description Create a spending transaction, resolving or creating every referenced entity atomically
// @Tags transactions
// @Accept json
// @Produce json
// @Param transaction body CreateTransactionRequest true "Transaction data"
// @Success 201 {object} Transaction "Created transaction"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 404 {object} map[string]interface{} "Unknown unit"
// @Router /api/transactions [post]
func createTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := validateCreateTransaction(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	transaction, err := assembleTransaction(c.Request.Context(), dbPool, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidDate):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNoItems):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Transaction needs at least one item"})
		case errors.Is(err, ErrUnitNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "There is no proper unit."})
		default:
			log.Error().Err(errors.Unwrap(err)).Msg("Transaction creation failed")
			c.JSON(http.StatusBadRequest, gin.H{"error": "An error occurred while creating the transaction"})
		}
		return
	}

	c.JSON(http.StatusCreated, transaction)
}

// @Summary List transactions
// @Description Retrieve transactions, newest first, optionally restricted to one calendar month
// @Tags transactions
// @Produce json
// @Param skip query int false "Rows to skip" default(0)
// @Param limit query int false "Maximum rows to return" default(100)
// @Param month query string false "Calendar month in YYYY-MM format"
// @Success 200 {array} Transaction "List of transactions"
// @Failure 400 {object} map[string]interface{} "Invalid month"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/transactions [get]
func getTransactions(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}

	query := `
		SELECT id, payment_method_id, date, created_at
		FROM transactions
		ORDER BY date DESC, id DESC
		OFFSET $1 LIMIT $2
	`
	args := []any{skip, limit}

	if month := c.Query("month"); month != "" {
		start, end, err := parseMonth(month)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		query = `
			SELECT id, payment_method_id, date, created_at
			FROM transactions
			WHERE date >= $3 AND date < $4
			ORDER BY date DESC, id DESC
			OFFSET $1 LIMIT $2
		`
		args = append(args, start, end)
	}

	rows, err := dbPool.Query(c.Request.Context(), query, args...)
	if err != nil {
		log.Error().Err(err).Msg("Error fetching transactions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching transactions"})
		return
	}
	defer rows.Close()

	transactions, err := scanTransactions(rows)
	if err != nil {
		log.Error().Err(err).Msg("Error scanning transactions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching transactions"})
		return
	}

	c.JSON(http.StatusOK, transactions)
}

// @Summary Get transaction
// @Description Retrieve one transaction with its resolved items, prices and targets
// @Tags transactions
// @Produce json
// @Param id path int true "Transaction ID"
// @Success 200 {object} TransactionDetail "Transaction detail"
// @Failure 404 {object} map[string]interface{} "Transaction not found"
// @Router /api/transactions/{id} [get]
func getTransaction(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction ID"})
		return
	}

	ctx := c.Request.Context()
	detail := TransactionDetail{Items: []TransactionItem{}}
	var date time.Time
	err = dbPool.QueryRow(ctx, `
		SELECT t.id, t.date, pm.name, f.name, t.created_at
		FROM transactions t
		JOIN payment_methods pm ON pm.id = t.payment_method_id
		JOIN families f ON f.id = pm.family_id
		WHERE t.id = $1
	`, id).Scan(&detail.ID, &date, &detail.PaymentMethod, &detail.Family, &detail.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Int64("transaction_id", id).Msg("Error fetching transaction")
		statusCode, message := handleDatabaseError(err)
		c.JSON(statusCode, gin.H{"error": message})
		return
	}
	detail.Date = date.Format(dateLayout)

	rows, err := dbPool.Query(ctx, `
		SELECT i.id, i.name, cat.name, u.name,
		       COALESCE((SELECT tt.name
		                 FROM transaction_targets tt
		                 JOIN transaction_target_items tti ON tti.transaction_target_id = tt.id
		                 WHERE tti.item_id = i.id
		                 ORDER BY tt.id LIMIT 1), ''),
		       COALESCE((SELECT p.value FROM prices p
		                 WHERE p.item_id = i.id AND p.date = t.date
		                 ORDER BY p.id DESC LIMIT 1), 0),
		       ti.quantity
		FROM transaction_items ti
		JOIN transactions t ON t.id = ti.transaction_id
		JOIN items i ON i.id = ti.item_id
		JOIN categories cat ON cat.id = i.category_id
		JOIN units u ON u.id = i.unit_id
		WHERE ti.transaction_id = $1
		ORDER BY i.id
	`, id)
	if err != nil {
		log.Error().Err(err).Int64("transaction_id", id).Msg("Error fetching transaction items")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching transaction"})
		return
	}
	defer rows.Close()

	for rows.Next() {
		var item TransactionItem
		if err := rows.Scan(&item.ItemID, &item.Name, &item.Category, &item.Unit,
			&item.TransactionTarget, &item.Price, &item.Quantity); err != nil {
			log.Error().Err(err).Msg("Error scanning transaction item")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching transaction"})
			return
		}
		detail.Items = append(detail.Items, item)
	}
	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("Error iterating transaction items")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching transaction"})
		return
	}

	c.JSON(http.StatusOK, detail)
}

// @Summary Delete transactions by month
// @Description Delete every transaction dated within a calendar month. Reference entities are kept.
// @Tags transactions
// @Produce json
// @Param month path string true "Month in YYYY-MM format"
// @Success 200 {object} map[string]interface{} "Number of deleted transactions"
// @Failure 400 {object} map[string]interface{} "Invalid month"
// @Router /api/transactions/month/{month} [delete]
func deleteTransactionsByMonth(c *gin.Context) {
	start, end, err := parseMonth(c.Param("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tag, err := dbPool.Exec(c.Request.Context(), `
		DELETE FROM transactions WHERE date >= $1 AND date < $2
	`, start, end)
	if err != nil {
		log.Error().Err(err).Msg("Error deleting transactions by month")
		statusCode, message := handleDatabaseError(err)
		c.JSON(statusCode, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": tag.RowsAffected()})
}
