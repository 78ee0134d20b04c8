package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"hukumchat-backend/models"
)

// Canned Indonesian reply strings. Legal replies carry verbatim statute
// text; FAQ replies may be tidied by the rewrite pass first.
const (
	replyEmptyInput = "Silakan tulis pertanyaan terlebih dahulu."

	replyPasswordClarify = "Reset password untuk aplikasi apa? Contoh: ketik **lupa password sso**."

	replyLegalLowScore = "Saya belum menemukan pasal KUHP yang dimaksud. " +
		"Pastikan nomor pasal disebutkan dengan jelas."

	replyLegalNotInDataset = "Saya belum menemukan pasal itu di dataset KUHP yang saya punya."

	replyFAQUnsure = "Saya belum yakin dengan maksud pertanyaan Anda.\n" +
		"Bisa dijelaskan lebih spesifik (aplikasi dan kendalanya)?"

	replyFAQIntro = "Baik, berikut panduannya:\n\n"
	replyFAQOutro = "\n\nSemoga membantu. Ada lagi yang bisa saya bantu?"
)

const (
	// DefaultFAQMinScore is the inclusive FAQ confidence threshold
	DefaultFAQMinScore = 0.20
	// DefaultLegalMinScore is the inclusive legal-similarity threshold
	DefaultLegalMinScore = 0.25
)

var (
	ErrNoFAQData   = errors.New("faq dataset has no records")
	ErrNoLegalData = errors.New("legal dataset has no records")
)

// ChatLogger appends one row per terminal chat interaction
type ChatLogger interface {
	Append(entry models.LogEntry) error
}

// ChatService routes an incoming message to the FAQ or legal retrieval
// path and renders the final reply. Stateless across requests; the fitted
// indexes are built once here and only read afterwards.
type ChatService struct {
	faqRecords   []models.FAQRecord
	legalRecords []models.LegalRecord
	faqIndex     *TextIndex
	legalIndex   *TextIndex
	legalByRef   map[string]int

	rewriter *RewriteService
	chatLog  ChatLogger

	faqMinScore   float64
	legalMinScore float64

	passwordIntercept bool
}

// ChatServiceOption is a functional option for ChatService
type ChatServiceOption func(*ChatService)

// ChatWithFAQData sets the FAQ reference records
func ChatWithFAQData(records []models.FAQRecord) ChatServiceOption {
	return func(s *ChatService) {
		s.faqRecords = records
	}
}

// ChatWithLegalData sets the legal reference records
func ChatWithLegalData(records []models.LegalRecord) ChatServiceOption {
	return func(s *ChatService) {
		s.legalRecords = records
	}
}

// ChatWithRewriter sets the guarded rewrite service
func ChatWithRewriter(r *RewriteService) ChatServiceOption {
	return func(s *ChatService) {
		s.rewriter = r
	}
}

// ChatWithLogger sets the interaction log sink
func ChatWithLogger(l ChatLogger) ChatServiceOption {
	return func(s *ChatService) {
		s.chatLog = l
	}
}

// ChatWithPasswordIntercept enables the narrow clarification shortcut for
// password questions that do not name the SSO application
func ChatWithPasswordIntercept(enabled bool) ChatServiceOption {
	return func(s *ChatService) {
		s.passwordIntercept = enabled
	}
}

// ChatWithThresholds overrides the confidence thresholds (both inclusive)
func ChatWithThresholds(faqMin, legalMin float64) ChatServiceOption {
	return func(s *ChatService) {
		s.faqMinScore = faqMin
		s.legalMinScore = legalMin
	}
}

// NewChatService builds the similarity indexes over both datasets. Either
// dataset being empty is a startup error.
func NewChatService(opts ...ChatServiceOption) (*ChatService, error) {
	s := &ChatService{
		faqMinScore:   DefaultFAQMinScore,
		legalMinScore: DefaultLegalMinScore,
	}
	for _, opt := range opts {
		opt(s)
	}

	if len(s.faqRecords) == 0 {
		return nil, ErrNoFAQData
	}
	if len(s.legalRecords) == 0 {
		return nil, ErrNoLegalData
	}
	if s.rewriter == nil {
		s.rewriter = NewRewriteService()
	}

	faqRefs := make([]string, len(s.faqRecords))
	for i, r := range s.faqRecords {
		faqRefs[i] = r.QuestionPattern
	}
	legalRefs := make([]string, len(s.legalRecords))
	s.legalByRef = make(map[string]int, len(s.legalRecords))
	for i, r := range s.legalRecords {
		legalRefs[i] = r.SearchKey
		if _, exists := s.legalByRef[r.RefKey]; !exists {
			s.legalByRef[r.RefKey] = i
		}
	}

	var err error
	if s.faqIndex, err = NewTextIndex(faqRefs); err != nil {
		return nil, err
	}
	if s.legalIndex, err = NewTextIndex(legalRefs); err != nil {
		return nil, err
	}
	return s, nil
}

// Chat handles one message end to end. It never returns an error: every
// failure along the way degrades to a polite clarification reply.
func (s *ChatService) Chat(ctx context.Context, message string) *models.ChatResult {
	msg := strings.TrimSpace(message)
	if msg == "" {
		result := &models.ChatResult{Reply: replyEmptyInput, Mode: models.ModeSystem}
		s.logEntry(models.ModeSystem, "", "", msg, nil, result.Reply)
		return result
	}

	m := Normalize(msg)

	// LEGAL iff the message names both the article marker and the code
	// body; everything else is FAQ traffic.
	if strings.Contains(m, "pasal") && strings.Contains(m, "kuhp") {
		return s.chatLegal(msg, m)
	}
	return s.chatFAQ(ctx, msg)
}

// chatLegal resolves a statute question: exact article lookup first, then
// similarity over ref+title. Statute text is returned verbatim and never
// passes through the rewrite pipeline.
func (s *ChatService) chatLegal(msg, normalized string) *models.ChatResult {
	key, hasToken := ExtractArticleKey(normalized)
	if hasToken {
		if idx, found := s.legalByRef[key]; found {
			rec := s.legalRecords[idx]
			reply := rec.FormatReference()
			s.logEntry(models.ModeLegalRef, "", rec.Ref, msg, nil, reply)
			return &models.ChatResult{
				Reply:   reply,
				Mode:    models.ModeLegalRef,
				Matched: rec.Ref,
			}
		}
		// an explicit article number we do not have; similarity would
		// surface a different article, so report the miss instead
		score := s.legalIndex.Query(normalized).Score
		s.logEntry(models.ModeLegal, "", "", msg, &score, replyLegalNotInDataset)
		return &models.ChatResult{Reply: replyLegalNotInDataset, Mode: models.ModeLegal, Score: &score}
	}

	match := s.legalIndex.Query(normalized)
	score := match.Score
	if score < s.legalMinScore {
		s.logEntry(models.ModeLegal, "", "", msg, &score, replyLegalLowScore)
		return &models.ChatResult{Reply: replyLegalLowScore, Mode: models.ModeLegal, Score: &score}
	}

	rec := s.legalRecords[match.Index]
	reply := rec.Ref + "\n\n" + rec.Text
	s.logEntry(models.ModeLegal, "", rec.Ref, msg, &score, reply)
	return &models.ChatResult{
		Reply:   reply,
		Mode:    models.ModeLegal,
		Matched: rec.Ref,
		Score:   &score,
	}
}

// chatFAQ runs the typo-tolerant FAQ pipeline: narrow password intercept,
// typo correction, similarity search, threshold check, guarded rewrite.
func (s *ChatService) chatFAQ(ctx context.Context, msg string) *models.ChatResult {
	m := Normalize(msg)

	if s.passwordIntercept && strings.Contains(m, "password") && !strings.Contains(m, "sso") {
		result := &models.ChatResult{Reply: replyPasswordClarify, Mode: models.ModeSystem}
		s.logEntry(models.ModeSystem, "", "", msg, nil, result.Reply)
		return result
	}

	corrected := s.rewriter.FixTypos(ctx, msg)
	match := s.faqIndex.Query(corrected)
	rec := s.faqRecords[match.Index]
	score := match.Score

	if score < s.faqMinScore {
		reply := replyFAQUnsure + "\nTopik terdekat: " + rec.Intent + "."
		s.logEntry(models.ModeFAQ, rec.Intent, rec.App, msg, &score, reply)
		return &models.ChatResult{
			Reply:  reply,
			Mode:   models.ModeFAQ,
			Intent: rec.Intent,
			Score:  &score,
		}
	}

	answer := s.rewriter.RewriteStrict(ctx, rec.CompiledAnswer)
	reply := replyFAQIntro + answer + replyFAQOutro
	s.logEntry(models.ModeFAQ, rec.Intent, rec.App, msg, &score, reply)
	return &models.ChatResult{
		Reply:   reply,
		Mode:    models.ModeFAQ,
		Intent:  rec.Intent,
		Matched: rec.QuestionPattern,
		Score:   &score,
	}
}

// logEntry appends one interaction row; log failures never reach the user
func (s *ChatService) logEntry(mode models.ChatMode, intent, ref, question string, score *float64, reply string) {
	if s.chatLog == nil {
		return
	}
	entry := models.LogEntry{
		Timestamp: time.Now(),
		Mode:      mode,
		Intent:    intent,
		Ref:       ref,
		Question:  question,
		Score:     score,
		Reply:     reply,
	}
	if err := s.chatLog.Append(entry); err != nil {
		log.Printf("failed to append chat log: %v", err)
	}
}
