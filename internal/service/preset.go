package service

import "github.com/vaultpass/ecomkit-go/internal/crypto"

// Credential types served by the e-commerce endpoint.
const (
	TypeCustomer  = "customer"
	TypeAdmin     = "admin"
	TypeAPIKey    = "api_key"
	TypeTemporary = "temporary"
)

// Preset is the generation config and guidance attached to a credential type.
type Preset struct {
	Config          crypto.GenerationConfig
	Recommendations []string
}

var presets = map[string]Preset{
	TypeCustomer: {
		Config: crypto.GenerationConfig{
			Length:              12,
			IncludeUppercase:    true,
			IncludeLowercase:    true,
			IncludeNumbers:      true,
			IncludeSpecialChars: true,
		},
		Recommendations: []string{
			"Keep the password in a safe place",
			"Do not share it with third parties",
			"Change it periodically",
		},
	},
	TypeAdmin: {
		Config: crypto.GenerationConfig{
			Length:              16,
			IncludeUppercase:    true,
			IncludeLowercase:    true,
			IncludeNumbers:      true,
			IncludeSpecialChars: true,
			ExcludeSimilar:      true,
		},
		Recommendations: []string{
			"Use two-factor authentication",
			"Change it monthly",
			"Monitor suspicious access",
			"Do not reuse it in other systems",
		},
	},
	TypeAPIKey: {
		// API keys travel through headers and config files, so no specials.
		Config: crypto.GenerationConfig{
			Length:           32,
			IncludeUppercase: true,
			IncludeLowercase: true,
			IncludeNumbers:   true,
			ExcludeSimilar:   true,
		},
		Recommendations: []string{
			"Store it in an environment variable",
			"Rotate it regularly",
			"Monitor API usage",
			"Enforce rate limiting",
		},
	},
	TypeTemporary: {
		Config: crypto.GenerationConfig{
			Length:           8,
			IncludeUppercase: true,
			IncludeLowercase: true,
			IncludeNumbers:   true,
			ExcludeSimilar:   true,
		},
		Recommendations: []string{
			"Valid for the initial access only",
			"The user must change it on first login",
			"Expires automatically after use",
		},
	},
}

// PresetFor returns the preset of a credential type. Unknown and empty types
// get the customer preset.
func PresetFor(credentialType string) Preset {
	if p, ok := presets[credentialType]; ok {
		return p
	}
	return presets[TypeCustomer]
}

// Recommendations returns a copy of the guidance for a credential type.
func Recommendations(credentialType string) []string {
	return append([]string(nil), PresetFor(credentialType).Recommendations...)
}
