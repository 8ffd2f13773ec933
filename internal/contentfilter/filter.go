// internal/contentfilter/filter.go

// Package contentfilter provides stateless heuristic text classifiers used as
// an advisory signal during report triage. No route blocks a submission on
// these results.
package contentfilter

import (
	"regexp"
	"strings"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Result is the outcome of a single classifier.
type Result struct {
	IsClean bool     `json:"is_clean"`
	Matches []string `json:"matches,omitempty"`
}

// Analysis combines all classifiers and derives an overall risk level.
type Analysis struct {
	RiskLevel    RiskLevel `json:"risk_level"`
	BlockedWords Result    `json:"blocked_words"`
	Spam         Result    `json:"spam"`
	Scam         Result    `json:"scam"`
}

var blockedWords = []string{
	"nazi",
	"terrorist",
	"child porn",
	"cp trade",
	"bestiality",
	"snuff",
}

var spamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(buy|cheap|discount)\s+(followers|likes|views)\b`),
	regexp.MustCompile(`(?i)\bclick\s+(here|this\s+link)\b`),
	regexp.MustCompile(`(?i)\bfree\s+(money|gift\s*card|crypto)\b`),
	regexp.MustCompile(`(?i)(https?://\S+\s*){3,}`),
	regexp.MustCompile(`(?i)\bdm\s+me\s+for\s+promo\b`),
}

var scamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(wire|western\s+union|moneygram)\s+transfer\b`),
	regexp.MustCompile(`(?i)\bsend\s+(me\s+)?(btc|bitcoin|eth|crypto)\b`),
	regexp.MustCompile(`(?i)\bverify\s+your\s+(account|identity)\s+at\b`),
	regexp.MustCompile(`(?i)\bguaranteed\s+(profit|returns?)\b`),
	regexp.MustCompile(`(?i)\bpay\s+outside\s+(the\s+)?platform\b`),
	regexp.MustCompile(`(?i)\bseed\s+phrase\b`),
}

// CheckBlockedWords scans for exact blocked-word occurrences.
func CheckBlockedWords(text string) Result {
	lower := strings.ToLower(text)

	var matches []string
	for _, word := range blockedWords {
		if strings.Contains(lower, word) {
			matches = append(matches, word)
		}
	}

	return Result{IsClean: len(matches) == 0, Matches: matches}
}

// CheckSpam scans for spam-like promotional patterns.
func CheckSpam(text string) Result {
	return checkPatterns(text, spamPatterns)
}

// CheckScam scans for payment-fraud patterns.
func CheckScam(text string) Result {
	return checkPatterns(text, scamPatterns)
}

func checkPatterns(text string, patterns []*regexp.Regexp) Result {
	var matches []string
	for _, pattern := range patterns {
		if m := pattern.FindString(text); m != "" {
			matches = append(matches, m)
		}
	}

	return Result{IsClean: len(matches) == 0, Matches: matches}
}

// Analyze runs all classifiers. Risk is low when everything is clean, high
// when two or more categories fire, medium otherwise.
func Analyze(text string) Analysis {
	analysis := Analysis{
		BlockedWords: CheckBlockedWords(text),
		Spam:         CheckSpam(text),
		Scam:         CheckScam(text),
	}

	issues := 0
	for _, result := range []Result{analysis.BlockedWords, analysis.Spam, analysis.Scam} {
		if !result.IsClean {
			issues++
		}
	}

	switch {
	case issues == 0:
		analysis.RiskLevel = RiskLow
	case issues >= 2:
		analysis.RiskLevel = RiskHigh
	default:
		analysis.RiskLevel = RiskMedium
	}

	return analysis
}
