package main

import (
	"flag"
	"os"

	"order-card-bot/internal/model"
	"order-card-bot/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	verbose := flag.Bool("v", false, "log every SQL statement")
	flag.Parse()

	info := color.New(color.FgCyan)
	ok := color.New(color.FgGreen, color.Bold)
	warn := color.New(color.FgYellow)
	fail := color.New(color.FgRed, color.Bold)

	if err := godotenv.Load(); err != nil {
		warn.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		fail.Println("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(dsn, *verbose)
	if err != nil {
		fail.Printf("Error: Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close(db)

	info.Println("Step 1: Setting up extensions...")
	// drafts.id defaults to gen_random_uuid()
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		warn.Printf("Warn: Failed to enable pgcrypto: %v. Continuing...\n", err)
	}

	models := []interface{}{
		&model.Draft{},
		&model.OperatorCredential{},
	}

	info.Printf("Step 2: Running AutoMigrate for %d tables...\n", len(models))
	if err := db.AutoMigrate(models...); err != nil {
		fail.Printf("Error: AutoMigrate failed: %v\n", err)
		os.Exit(1)
	}

	ok.Println("✅ Success: Database migration completed.")
}
