package repository

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hukumchat-backend/models"
)

func readLogRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestChatLogAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.csv")
	repo := NewChatLogRepository(path)

	score := 0.875
	ts := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	require.NoError(t, repo.Append(models.LogEntry{
		Timestamp: ts,
		Mode:      models.ModeFAQ,
		Intent:    "reset_password",
		Question:  "lupa password sso",
		Score:     &score,
		Reply:     "Baik, berikut panduannya",
	}))
	require.NoError(t, repo.Append(models.LogEntry{
		Timestamp: ts,
		Mode:      models.ModeSystem,
		Question:  "",
		Reply:     "Silakan tulis pertanyaan terlebih dahulu.",
	}))

	rows := readLogRows(t, path)
	require.Len(t, rows, 3, "header plus two entries")

	assert.Equal(t, []string{"timestamp", "mode", "intent", "ref", "question", "score", "reply"}, rows[0])

	assert.Equal(t, "2025-03-14T09:30:00", rows[1][0])
	assert.Equal(t, "FAQ", rows[1][1])
	assert.Equal(t, "reset_password", rows[1][2])
	assert.Equal(t, "0.875", rows[1][5], "score keeps three decimals")

	assert.Equal(t, "SYSTEM", rows[2][1])
	assert.Equal(t, "", rows[2][5], "absent score stays blank")
}

func TestChatLogHeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.csv")
	repo := NewChatLogRepository(path)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Append(models.LogEntry{
			Timestamp: time.Now(),
			Mode:      models.ModeFAQ,
			Question:  "q",
			Reply:     "r",
		}))
	}

	rows := readLogRows(t, path)
	require.Len(t, rows, 4)
	for _, row := range rows[1:] {
		assert.NotEqual(t, "timestamp", row[0])
	}
}

func TestChatLogQuotedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.csv")
	repo := NewChatLogRepository(path)

	reply := "Baik, berikut panduannya:\n\n1) Buka aplikasi\n2) Klik reset"
	require.NoError(t, repo.Append(models.LogEntry{
		Timestamp: time.Now(),
		Mode:      models.ModeFAQ,
		Question:  `pesan dengan "kutipan", koma`,
		Reply:     reply,
	}))

	rows := readLogRows(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, `pesan dengan "kutipan", koma`, rows[1][4])
	assert.Equal(t, reply, rows[1][6])
}

func TestChatLogConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.csv")
	repo := NewChatLogRepository(path)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.Append(models.LogEntry{
				Timestamp: time.Now(),
				Mode:      models.ModeFAQ,
				Question:  "q",
				Reply:     "r",
			})
		}()
	}
	wg.Wait()

	rows := readLogRows(t, path)
	assert.Len(t, rows, 21, "no interleaved or lost rows")
}
