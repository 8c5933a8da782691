package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"dtbank/internal/config"
	"dtbank/internal/db"
	apperrors "dtbank/internal/errors"
	"dtbank/internal/repository"
	"dtbank/internal/service"
)

func main() {
	file := flag.String("file", "customers.json", "path to a JSON array of customers")
	url := flag.String("url", "", "fetch the customer list from this URL instead of -file")
	flag.Parse()

	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Printf("Connected to %s database", cfg.DBDriver)

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	var customers []service.CreateAccountInput
	if *url != "" {
		log.Printf("Fetching customers from: %s", *url)
		customers, err = fetchCustomers(*url)
	} else {
		log.Printf("Reading customers from: %s", *file)
		customers, err = readCustomers(*file)
	}
	if err != nil {
		log.Fatalf("Failed to load customers: %v", err)
	}
	log.Printf("Loaded %d customers", len(customers))

	accounts := service.NewAccountService(repository.NewAccountRepository(gormDB))
	created, skipped, err := seedAccounts(context.Background(), accounts, customers)
	if err != nil {
		log.Fatalf("Failed to seed accounts: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New accounts created: %d", created)
	log.Printf("  - Skipped (existing or invalid): %d", skipped)
}

func readCustomers(path string) ([]service.CreateAccountInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeCustomers(f)
}

func fetchCustomers(url string) ([]service.CreateAccountInput, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source returned status code: %d", resp.StatusCode)
	}
	return decodeCustomers(resp.Body)
}

func decodeCustomers(r io.Reader) ([]service.CreateAccountInput, error) {
	var customers []service.CreateAccountInput
	if err := json.NewDecoder(r).Decode(&customers); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return customers, nil
}

// seedAccounts creates each customer. Existing account numbers and invalid
// records are skipped; any other failure stops the run.
func seedAccounts(ctx context.Context, accounts service.AccountService, customers []service.CreateAccountInput) (created, skipped int, err error) {
	for _, in := range customers {
		_, err := accounts.CreateAccount(ctx, in)
		switch {
		case err == nil:
			created++
		case errors.Is(err, apperrors.ErrDuplicateAccount), errors.Is(err, apperrors.ErrInvalidInput):
			log.Printf("Skipping account %q: %v", in.AccountNumber, err)
			skipped++
		default:
			return created, skipped, fmt.Errorf("error creating account %q: %w", in.AccountNumber, err)
		}
	}
	return created, skipped, nil
}
