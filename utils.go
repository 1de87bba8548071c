package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Validation functions

// validateName validates that a name is not empty or just whitespace
func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	return nil
}

// validateCreateTransaction checks the request fields the JSON binding layer
// cannot express: non-blank names and non-negative amounts.
func validateCreateTransaction(req CreateTransactionRequest) error {
	if err := validateName(req.PaymentMethod.Name); err != nil {
		return fmt.Errorf("payment_method: %w", err)
	}
	for i, line := range req.Items {
		if err := validateName(line.Name); err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
		if err := validateName(line.TransactionTarget); err != nil {
			return fmt.Errorf("items[%d].transaction_target: %w", i, err)
		}
		if err := validateName(line.Category); err != nil {
			return fmt.Errorf("items[%d].category: %w", i, err)
		}
		if err := validateName(line.Unit); err != nil {
			return fmt.Errorf("items[%d].unit: %w", i, err)
		}
		if line.Price.IsNegative() {
			return fmt.Errorf("items[%d]: price cannot be negative", i)
		}
		if line.Quantity < 0 {
			return fmt.Errorf("items[%d]: quantity cannot be negative", i)
		}
	}
	return nil
}

// handleDatabaseError converts database errors to appropriate HTTP responses
func handleDatabaseError(err error) (statusCode int, message string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23505 = unique_violation
		if pgErr.Code == "23505" {
			return http.StatusConflict, "Resource already exists"
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return http.StatusNotFound, "Resource not found"
	}

	return http.StatusInternalServerError, "Internal server error"
}

// scanTransactions drains a (id, payment_method_id, date, created_at) row set.
func scanTransactions(rows pgx.Rows) ([]Transaction, error) {
	transactions := make([]Transaction, 0)
	for rows.Next() {
		var t Transaction
		var date time.Time
		if err := rows.Scan(&t.ID, &t.PaymentMethodID, &date, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Date = date.Format(dateLayout)
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
