package transcribe

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// domainKeywords are terms expected on a marriage license form; any hit is a
// strong signal the recognizer decoded real content.
var domainKeywords = []string{"marriage", "license", "application", "affidavit"}

func hasDomainKeyword(lower string) bool {
	for _, kw := range domainKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	return strings.ContainsFunc(s, unicode.IsDigit)
}

func hasUpper(s string) bool {
	return strings.ContainsFunc(s, unicode.IsUpper)
}

// Estimate scores how trustworthy a block of recognized text looks, in [0,1].
// The recognizer gives no token-level confidences, so this is a surface
// heuristic: length, domain keywords, character classes, lexical diversity.
func Estimate(text string) float32 {
	if strings.TrimSpace(text) == "" {
		return 0.0
	}

	score := float32(0.5) // base

	// length thresholds count characters, not bytes
	n := utf8.RuneCountInString(text)

	// longer, more structured text
	if n > 10 {
		score += 0.1
	}
	if n > 50 {
		score += 0.1
	}

	if hasDomainKeyword(strings.ToLower(text)) {
		score += 0.2
	}
	if hasDigit(text) {
		score += 0.1
	}
	if hasUpper(text) {
		score += 0.1
	}

	// very short output is usually a misfire
	if n < 5 {
		score -= 0.2
	}

	// repetitive output (many tokens, few distinct) flags garbled decoding
	tokens := strings.Fields(text)
	if len(tokens) > 5 {
		distinct := make(map[string]struct{}, len(tokens))
		for _, t := range tokens {
			distinct[t] = struct{}{}
		}
		if len(distinct) < 3 {
			score -= 0.1
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	if score < 0.0 {
		score = 0.0
	}
	return score
}
