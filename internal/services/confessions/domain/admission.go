package domain

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	apperrors "github.com/louisbranch/confide.space/internal/platform/errors"
)

// Admission is deliberately conservative and purely syntactic: it trades
// false positives for the anonymity guarantee. Each rule is a pure predicate
// over the trimmed string; the first match rejects the whole submission.

// tldSuffixes are domain endings checked as a trailing segment of a token.
var tldSuffixes = []string{
	".com", ".net", ".org", ".io", ".co", ".app", ".dev", ".me", ".xyz", ".info",
}

// minPhoneDigits is the digit count that flags a phone number once all
// non-digit characters are stripped.
const minPhoneDigits = 8

type blockRule struct {
	name  string
	match func(string) bool
}

var blockRules = []blockRule{
	{"at_symbol", containsAtSymbol},
	{"link", containsLink},
	{"tld_suffix", containsTLDSuffix},
	{"phone_digits", containsPhoneDigits},
	{"dial_prefix", containsDialPrefix},
	{"full_name", containsFullName},
}

// Sanitize validates raw submitted text and returns the trimmed, accepted
// string, or a typed rejection error (EMPTY_TEXT, TEXT_TOO_LONG,
// CONTENT_BLOCKED).
func Sanitize(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", apperrors.New(apperrors.CodeEmptyText, "confession text is empty")
	}
	if utf8.RuneCountInString(text) > MaxTextChars {
		return "", apperrors.WithMetadata(
			apperrors.CodeTextTooLong,
			"confession text exceeds "+strconv.Itoa(MaxTextChars)+" characters",
			map[string]string{"MaxChars": strconv.Itoa(MaxTextChars)},
		)
	}
	for _, rule := range blockRules {
		if rule.match(text) {
			return "", apperrors.WithMetadata(
				apperrors.CodeContentBlocked,
				"confession text matched identity rule "+rule.name,
				map[string]string{"Rule": rule.name},
			)
		}
	}
	return text, nil
}

func containsAtSymbol(text string) bool {
	return strings.Contains(text, "@")
}

func containsLink(text string) bool {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "http://") || strings.Contains(lower, "https://") {
		return true
	}
	for _, token := range strings.Fields(lower) {
		if strings.HasPrefix(token, "www.") {
			return true
		}
	}
	return false
}

func containsTLDSuffix(text string) bool {
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.TrimRight(token, ".,;:!?)\"'")
		for _, suffix := range tldSuffixes {
			if len(token) > len(suffix) && strings.HasSuffix(token, suffix) {
				return true
			}
		}
	}
	return false
}

func containsPhoneDigits(text string) bool {
	digits := 0
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits++
			if digits >= minPhoneDigits {
				return true
			}
		}
	}
	return false
}

func containsDialPrefix(text string) bool {
	for _, token := range strings.Fields(text) {
		if len(token) >= 2 && token[0] == '+' && token[1] >= '0' && token[1] <= '9' {
			return true
		}
	}
	return false
}

// containsFullName flags two adjacent capitalized words, each starting
// uppercase-then-lowercase, e.g. "John Smith". Sentence-initial single
// capitals do not trip it on their own.
func containsFullName(text string) bool {
	tokens := strings.Fields(text)
	for i := 0; i+1 < len(tokens); i++ {
		if isCapitalizedWord(tokens[i]) && isCapitalizedWord(tokens[i+1]) {
			return true
		}
	}
	return false
}

func isCapitalizedWord(token string) bool {
	runes := []rune(strings.TrimRight(token, ".,;:!?)\"'"))
	if len(runes) < 2 {
		return false
	}
	return unicode.IsUpper(runes[0]) && unicode.IsLower(runes[1])
}
