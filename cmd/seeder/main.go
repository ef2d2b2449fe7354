package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/clearhaven/homestock/internal/config"
	"github.com/clearhaven/homestock/internal/database"
	"github.com/clearhaven/homestock/internal/models"
)

// SeedItem is one row of the import CSV:
// category,name,amount,min_stock,expiry_date,shop,price
type SeedItem struct {
	Category string
	Fields   models.ItemFields
}

func main() {
	// Command line flags
	email := flag.String("email", "", "Email of the user to seed inventory for (created if missing)")
	password := flag.String("password", "", "Password when the user has to be created")
	file := flag.String("file", "", "CSV file with inventory rows (category,name,amount,min_stock,expiry_date,shop,price)")
	dryRun := flag.Bool("dry-run", false, "Preview changes without writing to database")
	flag.Parse()

	if *email == "" || *file == "" {
		log.Fatal("Usage: seeder -email user@example.com -file inventory.csv [-password secret] [-dry-run]")
	}

	// Load .env
	godotenv.Load()

	// Load config
	cfg := config.Load()

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer f.Close()

	items, err := parseInventoryCSV(f)
	if err != nil {
		log.Fatalf("Failed to parse CSV: %v", err)
	}

	log.Printf("Found %d inventory rows to import", len(items))

	if *dryRun {
		log.Println("DRY RUN - No changes will be made")
		for _, item := range items {
			log.Printf("  %s / %s (amount %d, min %d, shop %q)",
				item.Category, item.Fields.Name, item.Fields.Amount, item.Fields.MinStock, item.Fields.Shop)
		}
		return
	}

	ctx := context.Background()

	userID, err := ensureUser(ctx, db, *email, *password)
	if err != nil {
		log.Fatalf("Failed to resolve user: %v", err)
	}

	created, err := importItems(ctx, db, userID, items)
	if err != nil {
		log.Fatalf("Failed to import items: %v", err)
	}

	log.Printf("Import complete: %d items created for user %d", created, userID)
}

// parseInventoryCSV reads the seed rows, skipping a header if present
func parseInventoryCSV(reader io.Reader) ([]SeedItem, error) {
	csvReader := csv.NewReader(bufio.NewReader(reader))
	csvReader.FieldsPerRecord = -1

	var items []SeedItem
	line := 0
	for {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		line++

		if len(record) < 2 {
			return nil, fmt.Errorf("line %d: expected at least category and name", line)
		}

		// Skip header row
		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "category") {
			continue
		}

		item := SeedItem{
			Category: strings.TrimSpace(record[0]),
			Fields: models.ItemFields{
				Name:       strings.TrimSpace(record[1]),
				ExpiryDate: models.ExpiryNone,
			},
		}
		if item.Category == "" || item.Fields.Name == "" {
			return nil, fmt.Errorf("line %d: category and name must not be empty", line)
		}

		if len(record) > 2 && record[2] != "" {
			if item.Fields.Amount, err = strconv.Atoi(strings.TrimSpace(record[2])); err != nil {
				return nil, fmt.Errorf("line %d: bad amount: %w", line, err)
			}
		}
		if len(record) > 3 && record[3] != "" {
			if item.Fields.MinStock, err = strconv.Atoi(strings.TrimSpace(record[3])); err != nil {
				return nil, fmt.Errorf("line %d: bad min_stock: %w", line, err)
			}
		}
		if len(record) > 4 && strings.TrimSpace(record[4]) != "" {
			item.Fields.ExpiryDate = strings.TrimSpace(record[4])
		}
		if len(record) > 5 {
			item.Fields.Shop = strings.TrimSpace(record[5])
		}
		if len(record) > 6 && record[6] != "" {
			if item.Fields.Price, err = strconv.ParseFloat(strings.TrimSpace(record[6]), 64); err != nil {
				return nil, fmt.Errorf("line %d: bad price: %w", line, err)
			}
		}

		items = append(items, item)
	}

	return items, nil
}

// ensureUser finds the user by email or creates them
func ensureUser(ctx context.Context, db *database.DB, email, password string) (int, error) {
	user, err := db.GetUserByEmail(ctx, email)
	if err == nil {
		return user.ID, nil
	}
	if !errors.Is(err, database.ErrUserNotFound) {
		return 0, err
	}

	if password == "" {
		return 0, fmt.Errorf("user %s does not exist and no -password given", email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := db.CreateUser(ctx, email, string(hashed), nil)
	if err != nil {
		return 0, err
	}

	log.Printf("Created user %s (id %d)", email, created.ID)
	return created.ID, nil
}

// importItems creates categories on demand and inserts the seed rows
func importItems(ctx context.Context, db *database.DB, userID int, items []SeedItem) (int, error) {
	categoryIDs := make(map[string]int)

	existing, err := db.ListCategories(ctx, userID)
	if err != nil {
		return 0, err
	}
	for _, c := range existing {
		categoryIDs[c.Name] = c.ID
	}

	created := 0
	for _, item := range items {
		categoryID, ok := categoryIDs[item.Category]
		if !ok {
			category, err := db.CreateCategory(ctx, userID, item.Category)
			if err != nil {
				return created, fmt.Errorf("failed to create category %q: %w", item.Category, err)
			}
			categoryID = category.ID
			categoryIDs[item.Category] = categoryID
			log.Printf("Created category %q", item.Category)
		}

		if _, err := db.CreateItem(ctx, categoryID, &item.Fields); err != nil {
			return created, fmt.Errorf("failed to create item %q: %w", item.Fields.Name, err)
		}
		created++
	}

	return created, nil
}
