package repository

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"hukumchat-backend/models"
)

var chatLogHeader = []string{"timestamp", "mode", "intent", "ref", "question", "score", "reply"}

// ChatLogRepository appends chat interactions to a CSV file. The file is
// created lazily with a header row on the first write; rows are never
// mutated or deleted. Writes are serialized by a mutex so concurrent
// requests cannot interleave rows.
type ChatLogRepository struct {
	mu   sync.Mutex
	path string
}

// NewChatLogRepository creates a chat log writing to the given path
func NewChatLogRepository(path string) *ChatLogRepository {
	return &ChatLogRepository{path: path}
}

// Append writes one interaction row, creating the file and header first
// if needed
func (r *ChatLogRepository) Append(entry models.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, statErr := os.Stat(r.path)
	isNew := os.IsNotExist(statErr)

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open chat log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(chatLogHeader); err != nil {
			return fmt.Errorf("failed to write chat log header: %w", err)
		}
	}

	score := ""
	if entry.Score != nil {
		score = fmt.Sprintf("%.3f", *entry.Score)
	}

	row := []string{
		entry.Timestamp.Format("2006-01-02T15:04:05"),
		string(entry.Mode),
		entry.Intent,
		entry.Ref,
		entry.Question,
		score,
		entry.Reply,
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write chat log row: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush chat log: %w", err)
	}
	return nil
}
