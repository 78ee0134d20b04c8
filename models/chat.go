package models

import "time"

// ChatMode classifies a terminal chat interaction for logging
type ChatMode string

const (
	ModeFAQ      ChatMode = "FAQ"
	ModeLegal    ChatMode = "LEGAL"     // legal similarity match
	ModeLegalRef ChatMode = "LEGAL_REF" // exact article lookup
	ModeSystem   ChatMode = "SYSTEM"    // empty input, intercepts
)

// ChatResult is the logical outcome of one routed message
type ChatResult struct {
	Reply   string   `json:"reply"`
	Mode    ChatMode `json:"mode"`
	Intent  string   `json:"intent,omitempty"`
	Matched string   `json:"matched,omitempty"`
	Score   *float64 `json:"score,omitempty"`
}

// LogEntry is one row of the append-only interaction log
type LogEntry struct {
	Timestamp time.Time
	Mode      ChatMode
	Intent    string
	Ref       string
	Question  string
	Score     *float64
	Reply     string
}
