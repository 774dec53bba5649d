// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"quotero/internal/core/id"
	"quotero/internal/infrastructure/storage/postgres"
	"quotero/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Connect to database
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	// Seed admin user
	if _, err := seedAdminUser(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	// Seed demo data if requested
	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoCustomers(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (id.ID, error) {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@quotero.local"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	// Check if admin already exists
	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = $1 AND deleted_at IS NULL`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
		return existingID, nil
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), fmt.Errorf("check admin exists: %w", err)
	}

	// Hash password
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return id.Nil(), fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()

	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name,
			is_active, is_admin, version
		)
		VALUES ($1, $2, $3, 'System', 'Admin', true, true, 1)
	`, userID, adminEmail, string(passwordHash))
	if err != nil {
		return id.Nil(), fmt.Errorf("insert admin user: %w", err)
	}

	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_code, granted_by)
		VALUES ($1, 'admin', NULL)
		ON CONFLICT (user_id, role_code) DO NOTHING
	`, userID)
	if err != nil {
		log.Warnw("failed to assign admin role", "error", err)
	}

	log.Infow("admin user created",
		"email", adminEmail,
		"user_id", userID,
	)

	return userID, nil
}

func seedDemoCustomers(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	log.Info("seeding demo customers...")

	type customerSeed struct {
		code  string
		name  string
		kind  string
		taxID string
	}

	customers := []customerSeed{
		{"CUS-2026-01-001", "Acme Industries", "company", "US-88-1234567"},
		{"CUS-2026-01-002", "Northwind Traders", "company", "US-88-7654321"},
		{"CUS-2026-01-003", "Jane Cooper", "individual", ""},
	}

	for _, c := range customers {
		var taxID *string
		if c.taxID != "" {
			taxID = &c.taxID
		}

		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_customers (id, code, name, kind, tax_id, version, deletion_mark)
			VALUES ($1, $2, $3, $4, $5, 1, false)
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, id.New(), c.code, c.name, c.kind, taxID)
		if err != nil {
			return fmt.Errorf("insert customer %s: %w", c.code, err)
		}
	}

	log.Infow("demo customers seeded", "count", len(customers))
	return nil
}
