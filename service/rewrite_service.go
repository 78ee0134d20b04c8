package service

import (
	"context"
	"log"
	"regexp"
	"strings"
	"time"
)

const (
	typoFixTimeout = 12 * time.Second
	rewriteTimeout = 60 * time.Second

	// inputs above this length are returned untouched without an
	// external call
	typoFixMaxInput = 500

	// a rewrite must stay nearly identical to its source
	rewriteSimilarityFloor = 0.92
	rewriteLengthCeiling   = 1.05
)

const typoSystemPrompt = "Anda hanya memperbaiki salah ketik (typo) pada kalimat bahasa Indonesia. " +
	"Jangan ubah makna, jangan tambah atau kurangi kata. " +
	"Jawab HANYA dengan satu kalimat yang sudah diperbaiki, tanpa penjelasan lain."

const rewriteSystemPrompt = "Anda editor bahasa resmi.\n" +
	"DILARANG menambah atau mengurangi isi.\n" +
	"DILARANG membuat langkah baru.\n" +
	"WAJIB Bahasa Indonesia.\n" +
	"Jika ragu, kembalikan teks apa adanya."

const rewriteUserPrompt = "Rapikan bahasa teks berikut TANPA mengubah makna.\n" +
	"Jangan menambah kalimat baru.\n\n"

var (
	// numbered procedure lines: "1) ..." or "2. ..." at a line start
	stepMarkerRe = regexp.MustCompile(`(?:^|\n)[ \t]*(?:\d+\)|\d+\.)[ \t]+`)

	// tutorial-style English markers that signal an off-language response
	foreignToneRe = regexp.MustCompile(`\b(sure|here's|click|open|step)\b`)

	wrapQuoteRe = regexp.MustCompile(`^["']|["']$`)
)

// RewriteService wraps the external language-model capability with strict
// acceptance guards. Both passes degrade to the unmodified input on any
// external failure, timeout, or guard rejection; neither ever returns an
// error to its caller.
type RewriteService struct {
	completer      Completer
	typoTimeout    time.Duration
	rewriteTimeout time.Duration
}

// RewriteServiceOption is a functional option for RewriteService
type RewriteServiceOption func(*RewriteService)

// RewriteWithCompleter sets the external completion capability
func RewriteWithCompleter(c Completer) RewriteServiceOption {
	return func(s *RewriteService) {
		s.completer = c
	}
}

// RewriteWithTimeouts overrides the per-pass call timeouts
func RewriteWithTimeouts(typo, rewrite time.Duration) RewriteServiceOption {
	return func(s *RewriteService) {
		s.typoTimeout = typo
		s.rewriteTimeout = rewrite
	}
}

// NewRewriteService creates a rewrite service with default timeouts
func NewRewriteService(opts ...RewriteServiceOption) *RewriteService {
	s := &RewriteService{
		typoTimeout:    typoFixTimeout,
		rewriteTimeout: rewriteTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FixTypos asks the model to repair typos in a short sentence before FAQ
// matching ("shaer" -> "share"). Empty or overlong input skips the call.
// A missing, failing, or implausible completion returns the input as-is.
func (s *RewriteService) FixTypos(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	if text == "" || len([]rune(text)) > typoFixMaxInput {
		return text
	}
	if s.completer == nil {
		return text
	}

	cctx, cancel := context.WithTimeout(ctx, s.typoTimeout)
	defer cancel()

	out, err := s.completer.Complete(cctx, typoSystemPrompt, text, CompleteOptions{
		Temperature: 0.0,
		MaxTokens:   100,
	})
	if err != nil {
		log.Printf("typo fix skipped: %v", err)
		return text
	}

	// the model sometimes wraps its answer in quotes
	out = strings.TrimSpace(wrapQuoteRe.ReplaceAllString(strings.TrimSpace(out), ""))
	if len([]rune(out)) < 2 {
		return text
	}
	// an answer twice the input length is an explanation, not a fix
	if len([]rune(out)) > len([]rune(text))*2 {
		return text
	}
	return out
}

// rewriteGuard rejects a candidate rewrite; a non-empty return is the
// rejection reason
type rewriteGuard func(original, candidate string) string

// rewriteGuards run in order; the first rejection wins
var rewriteGuards = []rewriteGuard{
	func(_, candidate string) string {
		if foreignToneRe.MatchString(strings.ToLower(candidate)) {
			return "foreign tutorial tone"
		}
		return ""
	},
	func(original, candidate string) string {
		if sequenceRatio(Normalize(original), Normalize(candidate)) < rewriteSimilarityFloor {
			return "similarity below floor"
		}
		return ""
	},
	func(original, candidate string) string {
		if len([]rune(candidate)) > int(float64(len([]rune(original)))*rewriteLengthCeiling) {
			return "length grew beyond ceiling"
		}
		return ""
	},
}

// RewriteStrict lightly re-phrases an already-retrieved FAQ answer. Text
// containing a numbered procedure is returned verbatim without any call.
// The completion is accepted only when every guard passes; otherwise the
// original text is returned unchanged.
func (s *RewriteService) RewriteStrict(ctx context.Context, text string) string {
	if stepMarkerRe.MatchString(text) {
		return text
	}
	if s.completer == nil {
		return text
	}

	cctx, cancel := context.WithTimeout(ctx, s.rewriteTimeout)
	defer cancel()

	out, err := s.completer.Complete(cctx, rewriteSystemPrompt, rewriteUserPrompt+text, CompleteOptions{
		Temperature: 0.0,
		TopP:        0.8,
	})
	if err != nil {
		log.Printf("strict rewrite skipped: %v", err)
		return text
	}
	out = strings.TrimSpace(out)

	for _, guard := range rewriteGuards {
		if reason := guard(text, out); reason != "" {
			log.Printf("strict rewrite rejected: %s", reason)
			return text
		}
	}
	return out
}

// sequenceRatio computes the longest-matching-blocks similarity of two
// strings in [0,1]: twice the total matched length over the combined
// length, the same measure difflib's SequenceMatcher reports.
func sequenceRatio(a, b string) float64 {
	m := newSequenceMatcher(a, b)
	if len(m.a)+len(m.b) == 0 {
		return 1
	}
	matched := m.matchingSize(0, len(m.a), 0, len(m.b))
	return 2 * float64(matched) / float64(len(m.a)+len(m.b))
}

type sequenceMatcher struct {
	a, b []rune
	b2j  map[rune][]int
}

func newSequenceMatcher(a, b string) *sequenceMatcher {
	m := &sequenceMatcher{
		a:   []rune(a),
		b:   []rune(b),
		b2j: make(map[rune][]int),
	}
	for j, r := range m.b {
		m.b2j[r] = append(m.b2j[r], j)
	}
	return m
}

// matchingSize sums the sizes of all matching blocks inside the window by
// recursing around the longest common block.
func (m *sequenceMatcher) matchingSize(alo, ahi, blo, bhi int) int {
	i, j, k := m.longestMatch(alo, ahi, blo, bhi)
	if k == 0 {
		return 0
	}
	return k + m.matchingSize(alo, i, blo, j) + m.matchingSize(i+k, ahi, j+k, bhi)
}

// longestMatch finds the longest block with a[i:i+k] == b[j:j+k] inside
// the given window, preferring the earliest occurrence.
func (m *sequenceMatcher) longestMatch(alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}
	return besti, bestj, bestsize
}
