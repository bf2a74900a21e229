package crypto

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Generate builds the alphabet for cfg and synthesizes a password from it.
func Generate(cfg GenerationConfig) (string, error) {
	alphabet, err := BuildAlphabet(cfg)
	if err != nil {
		return "", err
	}
	return Synthesize(cfg, alphabet)
}

// Synthesize creates a cryptographically secure random password from alphabet.
//
// One character is drawn from every category alphabet first, the remaining
// positions are filled from the full pool and the result is shuffled. When
// cfg.Length is smaller than the number of categories the password keeps one
// character per category and is therefore longer than requested.
func Synthesize(cfg GenerationConfig, alphabet Alphabet) (string, error) {
	if len(alphabet.Chars) == 0 {
		return "", ErrEmptyAlphabet
	}

	size := max(cfg.Length, len(alphabet.Categories))
	result := make([]rune, 0, size)

	// Guarantee at least one character from each selected category.
	for _, set := range alphabet.Categories {
		ch, err := randChar(set)
		if err != nil {
			return "", err
		}
		result = append(result, ch)
	}

	// Fill the remaining positions from the full pool.
	for len(result) < cfg.Length {
		ch, err := randChar(alphabet.Chars)
		if err != nil {
			return "", err
		}
		result = append(result, ch)
	}

	if err := secureShuffle(result); err != nil {
		return "", err
	}

	return string(result), nil
}

// randIndex returns a uniform index in [0, n) using crypto/rand.
func randIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("reading random source: %w", err)
	}
	return int(v.Int64()), nil
}

// randChar picks a random character from charset using crypto/rand.
func randChar(charset []rune) (rune, error) {
	i, err := randIndex(len(charset))
	if err != nil {
		return 0, err
	}
	return charset[i], nil
}

// secureShuffle performs a Fisher-Yates shuffle using crypto/rand.
func secureShuffle(data []rune) error {
	for i := len(data) - 1; i > 0; i-- {
		j, err := randIndex(i + 1)
		if err != nil {
			return err
		}
		data[i], data[j] = data[j], data[i]
	}
	return nil
}
