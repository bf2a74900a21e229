package crypto

import (
	"fmt"
	"strings"
	"unicode/utf8"

	zxcvbn "github.com/ccojocar/zxcvbn-go"
)

// Criteria are the minimum requirements checked by Validate.
type Criteria struct {
	MinLength           int
	RequireUppercase    bool
	RequireLowercase    bool
	RequireNumbers      bool
	RequireSpecialChars bool
}

// DefaultCriteria returns a minimum length of 8 with every class required.
func DefaultCriteria() Criteria {
	return Criteria{
		MinLength:           8,
		RequireUppercase:    true,
		RequireLowercase:    true,
		RequireNumbers:      true,
		RequireSpecialChars: true,
	}
}

// ValidationResult is the outcome of checking a password against Criteria.
type ValidationResult struct {
	IsValid  bool           `json:"isValid"`
	Issues   []string       `json:"issues"`
	Strength StrengthReport `json:"strength"`
}

// Validate checks password against c and scores it with the standalone policy.
func Validate(password string, c Criteria) ValidationResult {
	issues := []string{}

	if utf8.RuneCountInString(password) < c.MinLength {
		issues = append(issues, fmt.Sprintf("password must be at least %d characters long", c.MinLength))
	}
	if c.RequireUppercase && !strings.ContainsAny(password, uppercaseChars) {
		issues = append(issues, "password must contain at least one uppercase letter")
	}
	if c.RequireLowercase && !strings.ContainsAny(password, lowercaseChars) {
		issues = append(issues, "password must contain at least one lowercase letter")
	}
	if c.RequireNumbers && !strings.ContainsAny(password, numberChars) {
		issues = append(issues, "password must contain at least one number")
	}
	if c.RequireSpecialChars && !hasNonAlphanumeric(password) {
		issues = append(issues, "password must contain at least one special character")
	}

	return ValidationResult{
		IsValid:  len(issues) == 0,
		Issues:   issues,
		Strength: ScoreStandalone(password),
	}
}

// Estimate is an entropy based guess-resistance estimate.
type Estimate struct {
	Score     int     `json:"score"`
	Entropy   float64 `json:"entropy"`
	CrackTime string  `json:"crackTime"`
}

// EstimateStrength runs zxcvbn over password. hints are user specific words
// (email, store name) that should not count as entropy.
func EstimateStrength(password string, hints ...string) Estimate {
	m := zxcvbn.PasswordStrength(password, hints)
	return Estimate{
		Score:     m.Score,
		Entropy:   m.Entropy,
		CrackTime: m.CrackTimeDisplay,
	}
}
