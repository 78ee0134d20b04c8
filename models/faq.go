package models

// FAQRecord represents one curated question/answer pair from the FAQ dataset
type FAQRecord struct {
	QuestionPattern string `json:"question_pattern"`
	AnswerSteps     string `json:"answer_steps"`
	Escalation      string `json:"escalation"`
	Intent          string `json:"intent"`
	App             string `json:"app"`

	// CompiledAnswer is AnswerSteps joined with the escalation guidance,
	// computed once at load time
	CompiledAnswer string `json:"-"`
}

// CompileAnswer builds the canonical answer text for a record
func (r *FAQRecord) CompileAnswer() {
	r.CompiledAnswer = r.AnswerSteps + "\n\nEskalasikan bila perlu: " + r.Escalation
}

// MatchResult is the outcome of a single similarity query
type MatchResult struct {
	Index   int     `json:"index"`
	Score   float64 `json:"score"`
	Matched string  `json:"matched,omitempty"`
}
