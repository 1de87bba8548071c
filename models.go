package main

import (
	"time"

	"github.com/shopspring/decimal"
)

// Family groups the payment methods of one household member
type Family struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// PaymentMethod belongs to exactly one family
type PaymentMethod struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	TaxDeductionRate float64   `json:"tax_deduction_rate"`
	FamilyID         int64     `json:"family_id"`
	CreatedAt        time.Time `json:"created_at"`
}

// Category is a spending classification, unique by name
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Unit is a measurement unit with a conversion ratio to its base unit.
// Units are seeded by migration and never created through the API.
type Unit struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Ratio float64 `json:"ratio"`
}

// TransactionTarget is the vendor or beneficiary of a purchase
type TransactionTarget struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Item is a purchasable thing, identified by (name, category, unit)
type Item struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	CategoryID int64     `json:"category_id"`
	UnitID     int64     `json:"unit_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Price is an observed (value, date) pair for an item
type Price struct {
	ID     int64           `json:"id"`
	ItemID int64           `json:"item_id"`
	Value  decimal.Decimal `json:"value"`
	Date   string          `json:"date"`
}

// Transaction is one spending event
type Transaction struct {
	ID              int64     `json:"id"`
	PaymentMethodID int64     `json:"payment_method_id"`
	Date            string    `json:"date"`
	CreatedAt       time.Time `json:"created_at"`
}

// TransactionDetail is a transaction with its purchased items resolved
type TransactionDetail struct {
	ID            int64             `json:"id"`
	Date          string            `json:"date"`
	PaymentMethod string            `json:"payment_method"`
	Family        string            `json:"family"`
	Items         []TransactionItem `json:"items"`
	CreatedAt     time.Time         `json:"created_at"`
}

// TransactionItem is one purchased line of a transaction detail
type TransactionItem struct {
	ItemID            int64           `json:"item_id"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Unit              string          `json:"unit"`
	TransactionTarget string          `json:"transaction_target"`
	Price             decimal.Decimal `json:"price"`
	Quantity          float64         `json:"quantity"`
}

// CreateTransactionRequest is the inbound shape for POST /api/transactions
type CreateTransactionRequest struct {
	Family        string            `json:"family"`
	Date          string            `json:"date" binding:"required"`
	PaymentMethod PaymentMethodData `json:"payment_method" binding:"required"`
	Items         []LineItem        `json:"items" binding:"required"`
}

// PaymentMethodData names the payment method used for a transaction
type PaymentMethodData struct {
	Name string `json:"name" binding:"required"`
}

// LineItem is one entry in a create-transaction request
type LineItem struct {
	Name              string          `json:"name" binding:"required"`
	TransactionTarget string          `json:"transaction_target" binding:"required"`
	Category          string          `json:"category" binding:"required"`
	Unit              string          `json:"unit" binding:"required"`
	Price             decimal.Decimal `json:"price"`
	Quantity          float64         `json:"quantity"`
}
