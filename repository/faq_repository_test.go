package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hukumchat-backend/storage"
)

// memStorage serves fixture datasets from a map
type memStorage struct {
	files map[string][]byte
}

func (s *memStorage) Open(_ context.Context, name string) (io.ReadCloser, error) {
	data, ok := s.files[name]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", name, storage.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

const faqCSV = `question_pattern,answer_steps,escalation,intent,app
lupa password akun,Klik reset password,Hubungi admin,reset_password,sso
cara aktivasi akun,Isi formulir aktivasi,Hubungi biro kepegawaian,aktivasi_akun,simpeg
`

func TestFAQRepositoryLoad(t *testing.T) {
	store := &memStorage{files: map[string][]byte{"faq.csv": []byte(faqCSV)}}
	repo := NewFAQRepository(store)

	records, err := repo.Load(context.Background(), "faq.csv")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "lupa password akun", records[0].QuestionPattern)
	assert.Equal(t, "reset_password", records[0].Intent)
	assert.Equal(t, "sso", records[0].App)
	assert.Equal(t, "Klik reset password\n\nEskalasikan bila perlu: Hubungi admin", records[0].CompiledAnswer)
}

func TestFAQRepositoryLoadWithExtra(t *testing.T) {
	extraCSV := "question_pattern,answer_steps,escalation,intent,app\n" +
		"cara cek status paten,Buka menu pelacakan,Hubungi DJKI,cek_paten,djki\n"
	store := &memStorage{files: map[string][]byte{
		"faq.csv":   []byte(faqCSV),
		"extra.csv": []byte(extraCSV),
	}}
	repo := NewFAQRepository(store)

	records, err := repo.Load(context.Background(), "faq.csv", "extra.csv")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "cek_paten", records[2].Intent)
}

func TestFAQRepositoryMissingExtraIsSkipped(t *testing.T) {
	store := &memStorage{files: map[string][]byte{"faq.csv": []byte(faqCSV)}}
	repo := NewFAQRepository(store)

	records, err := repo.Load(context.Background(), "faq.csv", "tidak-ada.csv")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestFAQRepositoryMissingPrimaryFails(t *testing.T) {
	repo := NewFAQRepository(&memStorage{files: map[string][]byte{}})

	_, err := repo.Load(context.Background(), "faq.csv")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFAQRepositoryMissingColumns(t *testing.T) {
	bad := "question_pattern,answer_steps,escalation\nx,y,z\n"
	store := &memStorage{files: map[string][]byte{"faq.csv": []byte(bad)}}
	repo := NewFAQRepository(store)

	_, err := repo.Load(context.Background(), "faq.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns")
	assert.Contains(t, err.Error(), "intent")
	assert.Contains(t, err.Error(), "app")
	assert.Contains(t, err.Error(), "Kolom terbaca")
}

func TestFAQRepositoryBOMAndWindows1252(t *testing.T) {
	t.Run("utf-8 with BOM", func(t *testing.T) {
		data := append([]byte{0xEF, 0xBB, 0xBF}, []byte(faqCSV)...)
		store := &memStorage{files: map[string][]byte{"faq.csv": data}}

		records, err := NewFAQRepository(store).Load(context.Background(), "faq.csv")
		require.NoError(t, err)
		assert.Equal(t, "lupa password akun", records[0].QuestionPattern)
	})

	t.Run("windows-1252 fallback", func(t *testing.T) {
		// 0xE9 is é in cp1252 and invalid as a standalone UTF-8 byte
		data := []byte("question_pattern,answer_steps,escalation,intent,app\n" +
			"r\xE9sum\xE9 gagal diunggah,Unggah ulang berkas,Hubungi admin,unggah_berkas,sso\n")
		store := &memStorage{files: map[string][]byte{"faq.csv": data}}

		records, err := NewFAQRepository(store).Load(context.Background(), "faq.csv")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "résumé gagal diunggah", records[0].QuestionPattern)
	})
}
