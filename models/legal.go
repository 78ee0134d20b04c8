package models

import "strings"

// LegalRecord represents one statute article from the legal dataset
type LegalRecord struct {
	Doc   string `json:"doc"`
	Year  string `json:"year"`
	Ref   string `json:"ref"` // e.g. "Pasal 362"
	Title string `json:"title"`
	Text  string `json:"text"` // verbatim statute text

	// RefKey is the lower-cased, whitespace-stripped form of Ref used for
	// exact lookup, e.g. "pasal362"
	RefKey string `json:"-"`

	// SearchKey combines Ref and Title for similarity fallback
	SearchKey string `json:"-"`
}

// BuildKeys derives RefKey and SearchKey from the loaded columns
func (r *LegalRecord) BuildKeys() {
	r.RefKey = strings.ReplaceAll(strings.ToLower(r.Ref), " ", "")
	r.SearchKey = strings.TrimSpace(r.Ref + " " + r.Title)
}

// FormatReference renders the full citation for an exact article hit
func (r *LegalRecord) FormatReference() string {
	return r.Doc + " " + r.Year + " — " + r.Ref + " (" + r.Title + ")\n" +
		r.Text + "\n\n" +
		"Catatan: Ini referensi teks, bukan pendapat hukum."
}
