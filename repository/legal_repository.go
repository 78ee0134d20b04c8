package repository

import (
	"context"
	"fmt"
	"strings"

	"hukumchat-backend/models"
	"hukumchat-backend/storage"
)

// legalColumns are the required columns of a legal dataset file
var legalColumns = []string{"doc", "year", "ref", "title", "text"}

// LegalRepository loads statute reference records from dataset storage
type LegalRepository struct {
	store storage.Storage
}

// NewLegalRepository creates a new legal repository
func NewLegalRepository(store storage.Storage) *LegalRepository {
	return &LegalRepository{store: store}
}

// Load reads the legal dataset and derives lookup keys for every record
func (r *LegalRepository) Load(ctx context.Context, name string) ([]models.LegalRecord, error) {
	f, err := r.store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, header, err := readRecords(f)
	if err != nil {
		return nil, fmt.Errorf("legal dataset %s: %w", name, err)
	}

	if missing := missingColumns(header, legalColumns); len(missing) > 0 {
		return nil, fmt.Errorf(
			"legal dataset %s missing columns: %s. Kolom terbaca: %s",
			name, strings.Join(missing, ", "), strings.Join(header, ", "),
		)
	}

	records := make([]models.LegalRecord, 0, len(rows))
	for _, row := range rows {
		rec := models.LegalRecord{
			Doc:   strings.TrimSpace(row["doc"]),
			Year:  strings.TrimSpace(row["year"]),
			Ref:   strings.TrimSpace(row["ref"]),
			Title: strings.TrimSpace(row["title"]),
			Text:  strings.TrimSpace(row["text"]),
		}
		rec.BuildKeys()
		records = append(records, rec)
	}

	return records, nil
}
