package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"hukumchat-backend/models"
	"hukumchat-backend/storage"
)

// faqColumns are the required columns of an FAQ dataset file
var faqColumns = []string{"question_pattern", "answer_steps", "escalation", "intent", "app"}

// FAQRepository loads FAQ reference records from dataset storage
type FAQRepository struct {
	store storage.Storage
}

// NewFAQRepository creates a new FAQ repository
func NewFAQRepository(store storage.Storage) *FAQRepository {
	return &FAQRepository{store: store}
}

// Load reads the primary FAQ dataset plus any optional extra datasets,
// concatenated in argument order. A missing extra file is skipped; a
// missing primary file or a malformed schema is a startup error.
func (r *FAQRepository) Load(ctx context.Context, name string, extra ...string) ([]models.FAQRecord, error) {
	records, err := r.loadFile(ctx, name)
	if err != nil {
		return nil, err
	}

	for _, extraName := range extra {
		more, err := r.loadFile(ctx, extraName)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				log.Printf("optional FAQ dataset %s not present, skipping", extraName)
				continue
			}
			return nil, err
		}
		records = append(records, more...)
	}

	return records, nil
}

func (r *FAQRepository) loadFile(ctx context.Context, name string) ([]models.FAQRecord, error) {
	f, err := r.store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, header, err := readRecords(f)
	if err != nil {
		return nil, fmt.Errorf("faq dataset %s: %w", name, err)
	}

	if missing := missingColumns(header, faqColumns); len(missing) > 0 {
		return nil, fmt.Errorf(
			"faq dataset %s missing columns: %s. Kolom terbaca: %s",
			name, strings.Join(missing, ", "), strings.Join(header, ", "),
		)
	}

	records := make([]models.FAQRecord, 0, len(rows))
	for _, row := range rows {
		rec := models.FAQRecord{
			QuestionPattern: strings.TrimSpace(row["question_pattern"]),
			AnswerSteps:     strings.TrimSpace(row["answer_steps"]),
			Escalation:      strings.TrimSpace(row["escalation"]),
			Intent:          strings.TrimSpace(row["intent"]),
			App:             strings.TrimSpace(row["app"]),
		}
		rec.CompileAnswer()
		records = append(records, rec)
	}

	return records, nil
}
