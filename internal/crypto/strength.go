package crypto

import (
	"strings"
	"unicode/utf8"
)

// Level is the discrete strength bucket derived from a score.
type Level string

const (
	LevelWeak       Level = "weak"
	LevelMedium     Level = "medium"
	LevelStrong     Level = "strong"
	LevelVeryStrong Level = "very_strong"
)

// Policy selects one of the two scoring strategies.
type Policy int

const (
	// PolicyGeneration scores a freshly generated password against the
	// categories that were requested for it.
	PolicyGeneration Policy = iota
	// PolicyStandalone scores an arbitrary password on its own.
	PolicyStandalone
)

func (p Policy) String() string {
	if p == PolicyStandalone {
		return "standalone"
	}
	return "generation"
}

const (
	FeedbackTooShort         = "password is too short"
	FeedbackConsiderLonger   = "consider a longer password"
	FeedbackRepeatedChars    = "avoid repeating characters"
	FeedbackRepetitiveSeq    = "avoid repetitive sequences"
	FeedbackMeetsRequirement = "password meets the security criteria"
)

// generationSpecials is the set Policy A accepts as "special characters".
const generationSpecials = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// StrengthReport is the scored assessment of a password. Score is not clamped.
type StrengthReport struct {
	Score    int      `json:"score"`
	Level    Level    `json:"level"`
	Feedback []string `json:"feedback"`
}

// Score evaluates password with the given policy. cfg is ignored by
// PolicyStandalone.
func Score(policy Policy, password string, cfg GenerationConfig) StrengthReport {
	if policy == PolicyStandalone {
		return ScoreStandalone(password)
	}
	return ScoreGenerated(password, cfg)
}

// ScoreGenerated implements the generation-context policy.
func ScoreGenerated(password string, cfg GenerationConfig) StrengthReport {
	var score int
	var feedback []string

	switch n := utf8.RuneCountInString(password); {
	case n >= 12:
		score += 25
	case n >= 8:
		score += 15
	default:
		feedback = append(feedback, FeedbackTooShort)
	}

	if cfg.IncludeUppercase && strings.ContainsAny(password, uppercaseChars) {
		score += 20
	}
	if cfg.IncludeLowercase && strings.ContainsAny(password, lowercaseChars) {
		score += 20
	}
	if cfg.IncludeNumbers && strings.ContainsAny(password, numberChars) {
		score += 20
	}
	if cfg.IncludeSpecialChars && strings.ContainsAny(password, generationSpecials) {
		score += 15
	}

	return newReport(score, feedback)
}

// ScoreStandalone implements the policy used by the validator, which only
// sees the password itself.
func ScoreStandalone(password string) StrengthReport {
	var score int
	var feedback []string

	n := utf8.RuneCountInString(password)
	switch {
	case n >= 12:
		score += 25
	case n >= 8:
		score += 15
		feedback = append(feedback, FeedbackConsiderLonger)
	default:
		feedback = append(feedback, FeedbackTooShort)
	}

	if strings.ContainsAny(password, lowercaseChars) {
		score += 10
	}
	if strings.ContainsAny(password, uppercaseChars) {
		score += 10
	}
	if strings.ContainsAny(password, numberChars) {
		score += 10
	}
	if hasNonAlphanumeric(password) {
		score += 15
	}

	if float64(distinctRunes(password)) >= float64(n)*0.7 {
		score += 10
	} else {
		feedback = append(feedback, FeedbackRepeatedChars)
	}

	if !hasRun(password, 3) {
		score += 10
	} else {
		feedback = append(feedback, FeedbackRepetitiveSeq)
	}

	return newReport(score, feedback)
}

// LevelFor maps a raw score to its level.
func LevelFor(score int) Level {
	switch {
	case score >= 80:
		return LevelVeryStrong
	case score >= 60:
		return LevelStrong
	case score >= 40:
		return LevelMedium
	default:
		return LevelWeak
	}
}

func newReport(score int, feedback []string) StrengthReport {
	if len(feedback) == 0 {
		feedback = []string{FeedbackMeetsRequirement}
	}
	return StrengthReport{
		Score:    score,
		Level:    LevelFor(score),
		Feedback: feedback,
	}
}

func isASCIIAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func hasNonAlphanumeric(s string) bool {
	for _, r := range s {
		if !isASCIIAlphanumeric(r) {
			return true
		}
	}
	return false
}

func distinctRunes(s string) int {
	seen := make(map[rune]struct{}, len(s))
	for _, r := range s {
		seen[r] = struct{}{}
	}
	return len(seen)
}

// hasRun reports whether s contains n or more identical consecutive runes.
func hasRun(s string, n int) bool {
	var prev rune
	count := 0
	for i, r := range []rune(s) {
		if i > 0 && r == prev {
			count++
		} else {
			count = 1
		}
		if count >= n {
			return true
		}
		prev = r
	}
	return false
}
