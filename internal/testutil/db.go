package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/thenoetrevino/dealboard/internal/database"
)

// SetupTestDB creates an in-memory SQLite database with the board schema applied.
// The database is closed when the test finishes.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.InitDB(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})

	return db
}
