package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Reference entity listings. These entities are created implicitly while
// ingesting transactions and are immutable afterwards, so reads are all the
// API offers for them.

// @Summary List families
// @Tags references
// @Produce json
// @Success 200 {array} Family "List of families"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/families [get]
func getFamilies(c *gin.Context) {
	rows, err := dbPool.Query(c.Request.Context(),
		"SELECT id, name, created_at FROM families ORDER BY name")
	if err != nil {
		log.Error().Err(err).Msg("Error fetching families")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching families"})
		return
	}
	defer rows.Close()

	families := make([]Family, 0)
	for rows.Next() {
		var f Family
		if err := rows.Scan(&f.ID, &f.Name, &f.CreatedAt); err != nil {
			log.Error().Err(err).Msg("Error scanning family")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching families"})
			return
		}
		families = append(families, f)
	}
	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("Error iterating families")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching families"})
		return
	}

	c.JSON(http.StatusOK, families)
}

// @Summary List payment methods
// @Tags references
// @Produce json
// @Success 200 {array} PaymentMethod "List of payment methods"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/payment-methods [get]
func getPaymentMethods(c *gin.Context) {
	rows, err := dbPool.Query(c.Request.Context(),
		"SELECT id, name, tax_deduction_rate, family_id, created_at FROM payment_methods ORDER BY family_id, name")
	if err != nil {
		log.Error().Err(err).Msg("Error fetching payment methods")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching payment methods"})
		return
	}
	defer rows.Close()

	methods := make([]PaymentMethod, 0)
	for rows.Next() {
		var pm PaymentMethod
		if err := rows.Scan(&pm.ID, &pm.Name, &pm.TaxDeductionRate, &pm.FamilyID, &pm.CreatedAt); err != nil {
			log.Error().Err(err).Msg("Error scanning payment method")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching payment methods"})
			return
		}
		methods = append(methods, pm)
	}
	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("Error iterating payment methods")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching payment methods"})
		return
	}

	c.JSON(http.StatusOK, methods)
}

// @Summary List categories
// @Tags references
// @Produce json
// @Success 200 {array} Category "List of categories"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/categories [get]
func getCategories(c *gin.Context) {
	rows, err := dbPool.Query(c.Request.Context(),
		"SELECT id, name, created_at FROM categories ORDER BY name")
	if err != nil {
		log.Error().Err(err).Msg("Error fetching categories")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching categories"})
		return
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		var cat Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.CreatedAt); err != nil {
			log.Error().Err(err).Msg("Error scanning category")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching categories"})
			return
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("Error iterating categories")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching categories"})
		return
	}

	c.JSON(http.StatusOK, categories)
}

// @Summary List units
// @Description Retrieve the seeded, closed set of measurement units
// @Tags references
// @Produce json
// @Success 200 {array} Unit "List of units"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/units [get]
func getUnits(c *gin.Context) {
	rows, err := dbPool.Query(c.Request.Context(),
		"SELECT id, name, ratio FROM units ORDER BY name")
	if err != nil {
		log.Error().Err(err).Msg("Error fetching units")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching units"})
		return
	}
	defer rows.Close()

	units := make([]Unit, 0)
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.Name, &u.Ratio); err != nil {
			log.Error().Err(err).Msg("Error scanning unit")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching units"})
			return
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("Error iterating units")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching units"})
		return
	}

	c.JSON(http.StatusOK, units)
}

// @Summary List transaction targets
// @Tags references
// @Produce json
// @Success 200 {array} TransactionTarget "List of transaction targets"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/transaction-targets [get]
func getTransactionTargets(c *gin.Context) {
	rows, err := dbPool.Query(c.Request.Context(),
		"SELECT id, name, created_at FROM transaction_targets ORDER BY name")
	if err != nil {
		log.Error().Err(err).Msg("Error fetching transaction targets")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching transaction targets"})
		return
	}
	defer rows.Close()

	targets := make([]TransactionTarget, 0)
	for rows.Next() {
		var tt TransactionTarget
		if err := rows.Scan(&tt.ID, &tt.Name, &tt.CreatedAt); err != nil {
			log.Error().Err(err).Msg("Error scanning transaction target")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching transaction targets"})
			return
		}
		targets = append(targets, tt)
	}
	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("Error iterating transaction targets")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching transaction targets"})
		return
	}

	c.JSON(http.StatusOK, targets)
}
