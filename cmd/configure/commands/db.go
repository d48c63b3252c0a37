package commands

import (
	"fmt"
	"os"

	"github.com/benvon/ordia/internal/config"
	"github.com/benvon/ordia/internal/database"
)

// withDB loads the configuration, connects to the database and hands the
// pool to fn. The pool is closed when fn returns.
func withDB(fn func(db *database.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}()

	return fn(db)
}
