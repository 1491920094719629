package repository

import (
	"context"
	"database/sql"
	"log"
	"testing"
	"time"

	"github.com/benx421/bankmt/internal/config"
	"github.com/benx421/bankmt/internal/db"
	"github.com/benx421/bankmt/internal/models"
	"github.com/google/uuid"
)

// setupTestDB connects with the runtime configuration and skips the test when
// no PostgreSQL instance is reachable.
func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	sqlDB, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close() //nolint:errcheck // skipping anyway
		t.Skipf("postgres not available: %v", err)
	}

	database := db.NewTestDB(sqlDB)
	if err := database.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return database
}

func cleanupTestDB(t *testing.T, database *db.DB) {
	t.Helper()
	if err := database.Close(); err != nil {
		log.Printf("failed to close test database: %v", err)
	}
}

func truncateTables(t *testing.T, database *db.DB) {
	t.Helper()

	_, err := database.ExecContext(context.Background(),
		"TRUNCATE TABLE transactions, idempotency_keys, accounts CASCADE")
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

func newRecord(username string, openingCents int64) *models.AccountRecord {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.AccountRecord{
		CredentialHash: "hash-" + username,
		Account: models.Account{
			ID:                  uuid.New(),
			Username:            username,
			AccountNumber:       "ACCT" + uuid.NewString()[:12],
			OpeningBalanceCents: openingCents,
			BalanceCents:        openingCents,
			Transactions:        []models.Transaction{},
			Version:             1,
			CreatedAt:           now,
			UpdatedAt:           now,
		},
	}
}

func newTransaction(accountID uuid.UUID, typ models.TransactionType, cents int64, at time.Time) models.Transaction {
	return models.Transaction{
		ID:          uuid.New(),
		AccountID:   accountID,
		Type:        typ,
		AmountCents: cents,
		Description: typ.DefaultDescription(),
		CreatedAt:   at.UTC().Truncate(time.Microsecond),
	}
}
