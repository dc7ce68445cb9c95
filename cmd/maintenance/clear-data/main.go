package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/skycharter/booking-backend/internal/config"
	"github.com/skycharter/booking-backend/internal/database"
)

// Clears all booking data from a development database while keeping the
// resource catalogue intact. Never point this at production.
func main() {
	var dbURLFlag string
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.Parse()

	// Try loading .env from current working directory (optional)
	// This avoids having to pass secrets on the command line.
	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	// Build minimal database config without loading full app config
	dbCfg := config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     5,
		MaxIdleConnections: 2,
		// ConnMaxLifetime left as zero (driver default)
	}

	db, err := database.NewConnection(dbCfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("Connected to database. Clearing booking data...")

	if _, err := db.Exec(`TRUNCATE TABLE resource_holds, reservations RESTART IDENTITY CASCADE;`); err != nil {
		log.Fatalf("failed to truncate tables: %v", err)
	}

	// Seats are catalogue rows, so free them instead of truncating
	if _, err := db.Exec(`UPDATE flight_seats SET occupied = FALSE, reservation_id = NULL, updated_at = NOW();`); err != nil {
		log.Fatalf("failed to reset flight seats: %v", err)
	}

	fmt.Println("All booking data cleared (holds and reservations truncated, seats freed).")

	// Verify by printing row counts for each table
	tables := []string{
		"resource_holds",
		"reservations",
		"resources",
		"flight_seats",
	}

	fmt.Println("Post-clear row counts:")
	for _, t := range tables {
		var count int
		if err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", t)).Scan(&count); err != nil {
			fmt.Printf("  %s: error: %v\n", t, err)
			continue
		}
		fmt.Printf("  %s: %d\n", t, count)
	}
}
