// Package importer loads transaction batches from JSON files, either local
// or on GCS, and feeds them through the ledger's bulk path so every imported
// week is resolved and re-accounted exactly once.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/weekly-budget/internal/domain"
	"github.com/dvloznov/weekly-budget/internal/ledger"
)

// record is one line of an import file.
type record struct {
	PlanID      string          `json:"planId"`
	CategoryID  string          `json:"categoryId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Date        string          `json:"date"`
	IsPaid      bool            `json:"isPaid"`
}

// Importer runs bulk imports.
type Importer struct {
	ledger *ledger.Service
	log    zerolog.Logger
}

// New creates a new importer.
func New(ledger *ledger.Service, log zerolog.Logger) *Importer {
	return &Importer{
		ledger: ledger,
		log:    log,
	}
}

// Run reads the batch at source and imports it for userID. source is either
// a local path or a gs:// URI.
func (i *Importer) Run(ctx context.Context, userID, source string) (int, error) {
	data, err := readSource(ctx, source)
	if err != nil {
		return 0, err
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, fmt.Errorf("parse import file: %w", err)
	}

	inputs := make([]ledger.CreateInput, 0, len(records))
	for n, rec := range records {
		date, err := time.Parse("2006-01-02", rec.Date)
		if err != nil {
			if date, err = time.Parse(time.RFC3339, rec.Date); err != nil {
				return 0, fmt.Errorf("record %d: unparseable date %q", n, rec.Date)
			}
		}
		inputs = append(inputs, ledger.CreateInput{
			PlanID:      rec.PlanID,
			CategoryID:  rec.CategoryID,
			Description: rec.Description,
			Amount:      rec.Amount,
			Type:        domain.TransactionType(rec.Type),
			Date:        date.UTC(),
			IsPaid:      rec.IsPaid,
		})
	}

	if err := i.ledger.CreateMany(ctx, userID, inputs); err != nil {
		return 0, err
	}

	i.log.Info().Str("source", source).Int("records", len(inputs)).Msg("Import completed")
	return len(inputs), nil
}

func readSource(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "gs://") {
		bucket, object, err := parseGCSURI(source)
		if err != nil {
			return nil, err
		}
		return downloadObject(ctx, bucket, object)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	return data, nil
}

// parseGCSURI splits "gs://bucket/path/to/file.json" into bucket and object.
func parseGCSURI(uri string) (bucket, object string, err error) {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	return parts[0], parts[1], nil
}

func downloadObject(ctx context.Context, bucketName, objectName string) ([]byte, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(bucketName).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open GCS object reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read GCS object: %w", err)
	}
	return data, nil
}
