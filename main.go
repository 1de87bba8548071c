package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var dbPool *pgxpool.Pool

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	// Database connection with defaults
	dbHost := getEnvOrDefault("DB_HOST", "localhost")
	dbPort := getEnvOrDefault("DB_PORT", "5432")
	dbUser := getEnvOrDefault("DB_USER", "postgres")
	dbPassword := getEnvOrDefault("DB_PASSWORD", "password")
	dbName := getEnvOrDefault("DB_NAME", "homeledger")

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPassword, dbName)

	// Connect to database with retry logic
	maxRetries := 30
	retryInterval := time.Second * 2

	var err error
	for i := 0; i < maxRetries; i++ {
		dbPool, err = pgxpool.New(context.Background(), connStr)
		if err == nil {
			err = dbPool.Ping(context.Background())
		}
		if err != nil {
			log.Warn().Err(err).Int("attempt", i+1).Msg("Error connecting to database")
			if dbPool != nil {
				dbPool.Close()
			}
			time.Sleep(retryInterval)
			continue
		}

		log.Info().Msg("Successfully connected to database")
		break
	}

	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database after retries")
	}
	defer dbPool.Close()

	// Run database migrations
	migrationsPath := filepath.Join(".", "db", "migrations")

	if _, err := os.Stat(migrationsPath); os.IsNotExist(err) {
		log.Warn().Str("path", migrationsPath).Msg("Migrations directory not found, skipping migrations")
	} else {
		log.Info().Msg("Running database migrations...")

		// golang-migrate drives a database/sql connection
		migrateDB, err := sql.Open("postgres", connStr)
		if err != nil {
			log.Fatal().Err(err).Msg("Error opening migration connection")
		}

		if err := runMigrations(migrateDB, migrationsPath); err != nil {
			log.Fatal().Err(err).Msg("Error running migrations")
		}

		if version, dirty, err := getMigrationVersion(migrateDB, migrationsPath); err == nil {
			if dirty {
				log.Warn().Uint("version", version).Msg("Current migration version is dirty")
			} else {
				log.Info().Uint("version", version).Msg("Current migration version")
			}
		}
		migrateDB.Close()
		log.Info().Msg("Database migrations completed successfully")
	}

	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3001"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}))
	r.Use(requestID(), requestLogger())

	registerRoutes(r)

	port := getEnvOrDefault("PORT", "8080")

	log.Info().Str("port", port).Msg("Server starting")
	if err := r.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// registerRoutes wires the API surface. Shared with the test router.
func registerRoutes(r *gin.Engine) {
	r.POST("/api/transactions", createTransaction)
	r.GET("/api/transactions", getTransactions)
	r.GET("/api/transactions/:id", getTransaction)
	r.DELETE("/api/transactions/month/:month", deleteTransactionsByMonth)
	r.GET("/api/items", getItems)
	r.GET("/api/items/:id/prices", getItemPrices)
	r.GET("/api/families", getFamilies)
	r.GET("/api/payment-methods", getPaymentMethods)
	r.GET("/api/categories", getCategories)
	r.GET("/api/units", getUnits)
	r.GET("/api/transaction-targets", getTransactionTargets)
}
