package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"ondot-chat/config"
	"ondot-chat/internal/repository"
	"ondot-chat/internal/services"
	"ondot-chat/pkg/database"

	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"
)

const usage = `
Ondot Chat - Database CLI Tool

Usage:
  migrate [flags] [command]

Commands:
  up          Apply pending migrations
  status      Show applied migrations and table sizes
  seed-dev    Create demo users with live sessions and print access tokens

Flags:
  -users int   Number of demo users for seed-dev (default 3)

Examples:
  go run ./cmd/migrate up
  DB_DRIVER=sqlite DB_PATH=dev.db go run ./cmd/migrate -users 2 seed-dev
`

func main() {
	userCount := flag.Int("users", 3, "Number of demo users for seed-dev")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.Open(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer db.Close()

	switch command := flag.Arg(0); command {
	case "up":
		log.Println("Running migrations...")
		if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed")

	case "status":
		showStatus(ctx, cfg, db)

	case "seed-dev":
		seedDev(ctx, cfg, db, *userCount)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func showStatus(ctx context.Context, cfg *config.Config, db *sql.DB) {
	log.Printf("Driver: %s", cfg.DBDriver)

	applied, err := database.AppliedMigrations(ctx, db)
	if err != nil {
		log.Fatalf("Failed to read migrations: %v", err)
	}

	table := newTable("Migration")
	for _, name := range applied {
		table.Append([]string{name})
	}
	table.Render()

	table = newTable("Table", "Rows")
	for _, name := range database.CoreTables {
		count, err := database.TableCount(ctx, db, name)
		if err != nil {
			table.Append([]string{name, "error: " + err.Error()})
			continue
		}
		table.Append([]string{name, strconv.FormatInt(count, 10)})
	}
	table.Render()
}

func seedDev(ctx context.Context, cfg *config.Config, db *sql.DB, users int) {
	if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	seeded, err := database.SeedDev(ctx, db, &database.SeedConfig{
		UserCount:  users,
		SessionTTL: 30 * 24 * time.Hour,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	auth := services.NewAuthService(repository.NewUserRepository(db), nil, cfg, zap.NewNop())
	table := newTable("Name", "User ID", "Access token")
	for _, u := range seeded {
		token, err := auth.IssueAccessToken(u.UserID, u.SessionID)
		if err != nil {
			log.Fatalf("Failed to issue token for %s: %v", u.UserID, err)
		}
		table.Append([]string{u.DisplayName, u.UserID.String(), token})
	}
	table.Render()
}

func newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	return table
}
