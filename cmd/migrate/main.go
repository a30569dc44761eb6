package main

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func main() {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		envOr("DB_USER", "staffhub"),
		envOr("DB_PASSWORD", "staffhub"),
		envOr("DB_HOST", "localhost"),
		envOr("DB_PORT", "5432"),
		envOr("DB_NAME", "staffhub"),
		envOr("DB_SSLMODE", "disable"),
	)

	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		log.Fatalln(err)
	}

	files, err := os.ReadDir("migrations")
	if err != nil {
		log.Fatalf("Failed to read migrations directory: %v", err)
	}

	var upMigrations []string
	for _, f := range files {
		if strings.HasSuffix(f.Name(), ".up.sql") {
			upMigrations = append(upMigrations, f.Name())
		}
	}
	sort.Strings(upMigrations)

	for _, filename := range upMigrations {
		content, err := os.ReadFile("migrations/" + filename)
		if err != nil {
			log.Fatalf("Failed to read migration file %s: %v", filename, err)
		}

		// Migrations use IF NOT EXISTS, so re-runs on an existing
		// database only warn.
		if _, err := db.Exec(string(content)); err != nil {
			log.Printf("Warning applying %s: %v", filename, err)
		} else {
			fmt.Printf("Applied %s\n", filename)
		}
	}

	fmt.Println("All migrations processed")
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
