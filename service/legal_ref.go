package service

import "regexp"

// articleRe matches a statute-article token in normalized text:
// "pasal" followed by digits, with or without a space between.
var articleRe = regexp.MustCompile(`pasal\s*(\d+)`)

// ExtractArticleKey scans normalized text for an explicit article token and
// returns its canonical lookup key, e.g. "tolong cek pasal 362 kuhp" ->
// "pasal362". The boolean reports whether any token was present at all,
// which is distinct from the key existing in the dataset.
func ExtractArticleKey(normalized string) (string, bool) {
	m := articleRe.FindStringSubmatch(normalized)
	if m == nil {
		return "", false
	}
	return "pasal" + m[1], true
}
