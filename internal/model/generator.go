package model

import (
	"fmt"
	"time"

	"github.com/vaultpass/ecomkit-go/internal/crypto"
)

// MaxPasswordBatch is the largest number of passwords one batch may request.
const MaxPasswordBatch = 100

// PasswordOptions is the wire form of a generation config.
// Pointer fields allow distinguishing between missing (nil -> default) and explicit values.
type PasswordOptions struct {
	Length              *int    `json:"length"`
	IncludeUppercase    *bool   `json:"includeUppercase"`
	IncludeLowercase    *bool   `json:"includeLowercase"`
	IncludeNumbers      *bool   `json:"includeNumbers"`
	IncludeSpecialChars *bool   `json:"includeSpecialChars"`
	ExcludeSimilar      *bool   `json:"excludeSimilar"`
	CustomCharacters    *string `json:"customCharacters"`
}

// Resolve fills unset fields from defaults.
func (o PasswordOptions) Resolve(defaults crypto.GenerationConfig) crypto.GenerationConfig {
	cfg := defaults
	if o.Length != nil {
		cfg.Length = *o.Length
	}
	if o.IncludeUppercase != nil {
		cfg.IncludeUppercase = *o.IncludeUppercase
	}
	if o.IncludeLowercase != nil {
		cfg.IncludeLowercase = *o.IncludeLowercase
	}
	if o.IncludeNumbers != nil {
		cfg.IncludeNumbers = *o.IncludeNumbers
	}
	if o.IncludeSpecialChars != nil {
		cfg.IncludeSpecialChars = *o.IncludeSpecialChars
	}
	if o.ExcludeSimilar != nil {
		cfg.ExcludeSimilar = *o.ExcludeSimilar
	}
	if o.CustomCharacters != nil {
		cfg.CustomCharacters = *o.CustomCharacters
	}
	return cfg
}

// ValidateConfig checks a resolved config against the API bounds.
func ValidateConfig(prefix string, cfg crypto.GenerationConfig) error {
	var errs ValidationErrors
	if cfg.Length < crypto.MinLength || cfg.Length > crypto.MaxLength {
		errs.Add(prefix+"length", fmt.Sprintf("length must be between %d and %d", crypto.MinLength, crypto.MaxLength))
	}
	if !cfg.IncludeUppercase && !cfg.IncludeLowercase && !cfg.IncludeNumbers &&
		!cfg.IncludeSpecialChars && cfg.CustomCharacters == "" {
		errs.Add(prefix+"options", "at least one character type must be included")
	}
	return errs.Err()
}

// PasswordConfig is the resolved config echoed back to clients.
type PasswordConfig struct {
	Length              int    `json:"length"`
	IncludeUppercase    bool   `json:"includeUppercase"`
	IncludeLowercase    bool   `json:"includeLowercase"`
	IncludeNumbers      bool   `json:"includeNumbers"`
	IncludeSpecialChars bool   `json:"includeSpecialChars"`
	ExcludeSimilar      bool   `json:"excludeSimilar"`
	CustomCharacters    string `json:"customCharacters,omitempty"`
}

// NewPasswordConfig converts a generation config for output.
func NewPasswordConfig(cfg crypto.GenerationConfig) PasswordConfig {
	return PasswordConfig{
		Length:              cfg.Length,
		IncludeUppercase:    cfg.IncludeUppercase,
		IncludeLowercase:    cfg.IncludeLowercase,
		IncludeNumbers:      cfg.IncludeNumbers,
		IncludeSpecialChars: cfg.IncludeSpecialChars,
		ExcludeSimilar:      cfg.ExcludeSimilar,
		CustomCharacters:    cfg.CustomCharacters,
	}
}

// GenerateResponse is returned by POST /api/v1/password/generate.
type GenerateResponse struct {
	ID          string                `json:"id"`
	Password    string                `json:"password"`
	Strength    crypto.StrengthReport `json:"strength"`
	Options     PasswordConfig        `json:"options"`
	GeneratedAt time.Time             `json:"generatedAt"`
}

// EcommerceRequest asks for a password built from a preset.
type EcommerceRequest struct {
	Type         string  `json:"type"`
	UserRole     *string `json:"userRole"`
	CustomLength *int    `json:"customLength"`
	IncludeHash  bool    `json:"includeHash"`
}

// Validate checks the optional custom length.
func (r EcommerceRequest) Validate() error {
	var errs ValidationErrors
	if r.CustomLength != nil && (*r.CustomLength < crypto.MinLength || *r.CustomLength > crypto.MaxLength) {
		errs.Add("customLength", fmt.Sprintf("customLength must be between %d and %d", crypto.MinLength, crypto.MaxLength))
	}
	return errs.Err()
}

// EcommerceResponse is returned by POST /api/v1/password/ecommerce.
type EcommerceResponse struct {
	ID              string                `json:"id"`
	Password        string                `json:"password"`
	Hash            string                `json:"hash,omitempty"`
	Type            string                `json:"type"`
	UserRole        *string               `json:"userRole"`
	Strength        crypto.StrengthReport `json:"strength"`
	Config          PasswordConfig        `json:"config"`
	Recommendations []string              `json:"recommendations"`
	GeneratedAt     time.Time             `json:"generatedAt"`
}

// BatchRequest asks for several passwords sharing one config.
type BatchRequest struct {
	Count   *int            `json:"count"`
	Options PasswordOptions `json:"options"`
	Type    string          `json:"type"`

	// RequestedBy is the bearer token subject, set by the handler.
	RequestedBy string `json:"-"`
}

// BatchItem is one password of a batch. Index is 1-based.
type BatchItem struct {
	ID          string                `json:"id"`
	Index       int                   `json:"index"`
	Password    string                `json:"password"`
	Strength    crypto.StrengthReport `json:"strength"`
	GeneratedAt time.Time             `json:"generatedAt"`
}

// BatchResponse is returned by POST /api/v1/password/batch.
type BatchResponse struct {
	BatchID     string         `json:"batchId"`
	Type        string         `json:"type"`
	Count       int            `json:"count"`
	Passwords   []BatchItem    `json:"passwords"`
	Options     PasswordConfig `json:"options"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// ValidateRequest checks an existing password. Nil criteria fields take the
// defaults of crypto.DefaultCriteria.
type ValidateRequest struct {
	Password string        `json:"password"`
	Criteria CriteriaInput `json:"criteria"`
	Hints    []string      `json:"hints"`
}

// CriteriaInput is the wire form of crypto.Criteria.
type CriteriaInput struct {
	MinLength           *int  `json:"minLength"`
	RequireUppercase    *bool `json:"requireUppercase"`
	RequireLowercase    *bool `json:"requireLowercase"`
	RequireNumbers      *bool `json:"requireNumbers"`
	RequireSpecialChars *bool `json:"requireSpecialChars"`
}

// Resolve fills unset criteria from crypto.DefaultCriteria.
func (c CriteriaInput) Resolve() crypto.Criteria {
	out := crypto.DefaultCriteria()
	if c.MinLength != nil {
		out.MinLength = *c.MinLength
	}
	if c.RequireUppercase != nil {
		out.RequireUppercase = *c.RequireUppercase
	}
	if c.RequireLowercase != nil {
		out.RequireLowercase = *c.RequireLowercase
	}
	if c.RequireNumbers != nil {
		out.RequireNumbers = *c.RequireNumbers
	}
	if c.RequireSpecialChars != nil {
		out.RequireSpecialChars = *c.RequireSpecialChars
	}
	return out
}

// Validate checks the request fields.
func (r ValidateRequest) Validate() error {
	var errs ValidationErrors
	if r.Password == "" {
		errs.Add("password", "password is required")
	}
	if len(r.Password) > 1024 {
		errs.Add("password", "password must be at most 1024 bytes")
	}
	if r.Criteria.MinLength != nil && (*r.Criteria.MinLength < 0 || *r.Criteria.MinLength > crypto.MaxLength) {
		errs.Add("criteria.minLength", fmt.Sprintf("minLength must be between 0 and %d", crypto.MaxLength))
	}
	return errs.Err()
}

// ValidateResponse is returned by POST /api/v1/password/validate.
type ValidateResponse struct {
	crypto.ValidationResult
	Estimate crypto.Estimate `json:"estimate"`
}

// VerifyRequest checks a credential against a stored argon2id hash.
type VerifyRequest struct {
	Password string `json:"password"`
	Hash     string `json:"hash"`
}

// Validate checks the request fields.
func (r VerifyRequest) Validate() error {
	var errs ValidationErrors
	if r.Password == "" {
		errs.Add("password", "password is required")
	}
	if r.Hash == "" {
		errs.Add("hash", "hash is required")
	}
	return errs.Err()
}

// VerifyResponse is returned by POST /api/v1/password/verify.
type VerifyResponse struct {
	Match bool `json:"match"`
}
