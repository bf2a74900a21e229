package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultpass/ecomkit-go/internal/config"
	"github.com/vaultpass/ecomkit-go/internal/crypto"
)

func testConfig() config.Config {
	return config.Config{
		BatchWorkers: 2,
		JWTSecret:    "0123456789abcdef0123456789abcdef",
		Password: config.PasswordDefaults{
			Length:            12,
			UppercaseLetters:  true,
			LowercaseLetters:  true,
			Numbers:           true,
			SpecialCharacters: true,
		},
	}
}

func run(t *testing.T, cfg config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(cfg)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGenerateCmd(t *testing.T) {
	out, err := run(t, testConfig(), "generate", "--length", "20", "--special=false", "--count", "3")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		fields := strings.Split(line, "\t")
		require.Len(t, fields, 3)
		assert.Len(t, fields[0], 20)
		assert.False(t, strings.ContainsAny(fields[0], "!@#$%^&*()_+-=[]{}|;:,.<>?"))
	}
}

func TestGenerateCmd_Type(t *testing.T) {
	out, err := run(t, testConfig(), "generate", "--type", "api_key")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\t")[0], 32)
}

func TestGenerateCmd_InvalidLength(t *testing.T) {
	_, err := run(t, testConfig(), "generate", "--length", "2")
	assert.Error(t, err)
}

func TestValidateCmd(t *testing.T) {
	out, err := run(t, testConfig(), "validate", "Abcdef1!xyz")
	require.NoError(t, err)
	assert.Contains(t, out, "valid: true")

	out, err = run(t, testConfig(), "validate", "aaaaaaaa")
	assert.Error(t, err)
	assert.Contains(t, out, "valid: false")
	assert.Contains(t, out, "strength: 25 (weak)")
}

func TestQRCodeCmd(t *testing.T) {
	out, err := run(t, testConfig(), "qrcode", "hello")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "data:image/png;base64,"))

	dir := t.TempDir()
	svgPath := filepath.Join(dir, "code.svg")
	_, err = run(t, testConfig(), "qrcode", "hello", "--out", svgPath, "--dark", "#123456")
	require.NoError(t, err)
	svg, err := os.ReadFile(svgPath)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "#123456")

	pngPath := filepath.Join(dir, "code.png")
	_, err = run(t, testConfig(), "qrcode", "hello", "--out", pngPath)
	require.NoError(t, err)
	png, err := os.ReadFile(pngPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = run(t, testConfig(), "qrcode", "hello", "--out", filepath.Join(dir, "code.gif"))
	assert.Error(t, err)
}

func TestTokenCmd(t *testing.T) {
	cfg := testConfig()
	out, err := run(t, cfg, "token", "store-1")
	require.NoError(t, err)

	claims, err := crypto.ValidateToken(strings.TrimSpace(out), cfg.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "store-1", claims.Subject)
	assert.True(t, claims.HasScope("batch"))

	cfg.JWTSecret = ""
	_, err = run(t, cfg, "token", "store-1")
	assert.Error(t, err)
}
