package crypto

import (
	"errors"
	"strings"
)

const (
	uppercaseChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowercaseChars = "abcdefghijklmnopqrstuvwxyz"
	numberChars    = "0123456789"
	specialChars   = "!@#$%^&*()_+-=[]{}|;:,.<>?"

	// similarChars is only ever used as a filter, never as a source.
	similarChars = "il1Lo0O"

	MinLength = 4
	MaxLength = 128
)

// ErrEmptyAlphabet is the only domain error of the generator.
var ErrEmptyAlphabet = errors.New("no character source selected")

// Category identifies one of the fixed base alphabets.
type Category int

const (
	Uppercase Category = iota
	Lowercase
	Digit
	Special
)

// categoryOrder is the order used both for concatenating alphabets and for
// drawing guaranteed characters.
var categoryOrder = []Category{Uppercase, Lowercase, Digit, Special}

func (c Category) String() string {
	switch c {
	case Uppercase:
		return "uppercase"
	case Lowercase:
		return "lowercase"
	case Digit:
		return "digit"
	case Special:
		return "special"
	}
	return "unknown"
}

// Chars returns the base alphabet of the category.
func (c Category) Chars() string {
	switch c {
	case Uppercase:
		return uppercaseChars
	case Lowercase:
		return lowercaseChars
	case Digit:
		return numberChars
	case Special:
		return specialChars
	}
	return ""
}

// GenerationConfig configures a single password generation. Callers are
// expected to have range-checked Length already.
type GenerationConfig struct {
	Length              int
	IncludeUppercase    bool
	IncludeLowercase    bool
	IncludeNumbers      bool
	IncludeSpecialChars bool
	ExcludeSimilar      bool
	CustomCharacters    string
}

// Includes reports whether the category flag is set.
func (c GenerationConfig) Includes(cat Category) bool {
	switch cat {
	case Uppercase:
		return c.IncludeUppercase
	case Lowercase:
		return c.IncludeLowercase
	case Digit:
		return c.IncludeNumbers
	case Special:
		return c.IncludeSpecialChars
	}
	return false
}

// Alphabet is the result of BuildAlphabet: the full pool plus the per-category
// pools used for guaranteed inclusion. Categories is empty when custom
// characters are in use.
type Alphabet struct {
	Chars      []rune
	Categories [][]rune
}

func (a Alphabet) String() string {
	return string(a.Chars)
}

// BuildAlphabet derives the generation alphabet from cfg.
func BuildAlphabet(cfg GenerationConfig) (Alphabet, error) {
	if cfg.CustomCharacters != "" {
		return Alphabet{Chars: []rune(cfg.CustomCharacters)}, nil
	}

	var alphabet Alphabet
	for _, cat := range categoryOrder {
		if !cfg.Includes(cat) {
			continue
		}
		chars := cat.Chars()
		if cfg.ExcludeSimilar {
			chars = withoutSimilar(chars)
		}
		set := []rune(chars)
		alphabet.Chars = append(alphabet.Chars, set...)
		alphabet.Categories = append(alphabet.Categories, set)
	}

	if len(alphabet.Chars) == 0 {
		return Alphabet{}, ErrEmptyAlphabet
	}
	return alphabet, nil
}

func withoutSimilar(chars string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(similarChars, r) {
			return -1
		}
		return r
	}, chars)
}
