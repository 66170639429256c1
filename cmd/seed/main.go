// Command seed loads sample companies into the directory.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/oklog/ulid/v2"

	"github.com/scoutdesk/scoutdesk/internal/model"
	"github.com/scoutdesk/scoutdesk/internal/repository"
)

// seedCompany is one entry of the seed file.
type seedCompany struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Summary     string `json:"summary"`
	Keywords    string `json:"keywords"`
	Industry    string `json:"industry"`
	Stage       string `json:"stage"`
	Location    string `json:"location"`
}

// companyStore is the subset of the repository the seeder writes to.
type companyStore interface {
	CountCompanies(ctx context.Context) (int, error)
	CreateCompany(ctx context.Context, c *model.Company) error
}

// options are the command-line settings for one seeding run.
type options struct {
	databaseURL string
	file        string
	force       bool
}

func main() {
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	flag.StringVar(&opts.file, "file", "data/companies.json", "Path to the companies JSON file")
	flag.BoolVar(&opts.force, "force", false, "Insert even when companies already exist")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := run(context.Background(), opts, logger); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// run loads the seed file and inserts it. The file is read before the
// database is dialed.
func run(ctx context.Context, opts options, logger *slog.Logger) error {
	if opts.databaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	f, err := os.Open(opts.file)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	companies, err := loadCompanies(f, time.Now().UTC())
	f.Close()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, opts.databaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer repo.Close()

	inserted, err := seed(ctx, repo, companies, opts.force)
	if err != nil {
		return err
	}

	logger.Info("seeding complete", "inserted", inserted, "file", opts.file)
	return nil
}

// loadCompanies decodes the seed file. Every entry needs a name and url.
func loadCompanies(r io.Reader, now time.Time) ([]*model.Company, error) {
	var entries []seedCompany
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}

	companies := make([]*model.Company, 0, len(entries))
	for i, e := range entries {
		name, url := strings.TrimSpace(e.Name), strings.TrimSpace(e.URL)
		if name == "" || url == "" {
			return nil, fmt.Errorf("entry %d: name and url are required", i)
		}
		companies = append(companies, &model.Company{
			ID:          ulid.Make().String(),
			URL:         url,
			Name:        name,
			Summary:     e.Summary,
			Description: e.Description,
			Keywords:    e.Keywords,
			Industry:    e.Industry,
			Stage:       e.Stage,
			Location:    e.Location,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return companies, nil
}

var errAlreadySeeded = errors.New("companies already exist; rerun with -force to insert anyway")

// seed inserts companies unless the table already has rows.
func seed(ctx context.Context, store companyStore, companies []*model.Company, force bool) (int, error) {
	if !force {
		n, err := store.CountCompanies(ctx)
		if err != nil {
			return 0, err
		}
		if n > 0 {
			return 0, errAlreadySeeded
		}
	}

	for i, c := range companies {
		if err := store.CreateCompany(ctx, c); err != nil {
			return i, fmt.Errorf("insert %q: %w", c.Name, err)
		}
	}
	return len(companies), nil
}
