package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultpass/ecomkit-go/internal/crypto"
	"github.com/vaultpass/ecomkit-go/internal/middleware"
	"github.com/vaultpass/ecomkit-go/internal/model"
	"github.com/vaultpass/ecomkit-go/internal/qrcode"
	"github.com/vaultpass/ecomkit-go/internal/service"
)

const testBodyLimit = 1 << 20

type envelope struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Data    json.RawMessage    `json:"data"`
	Error   string             `json:"error"`
	Details []model.FieldError `json:"details"`
}

func newPasswordHandler() *PasswordHandler {
	return NewPasswordHandler(service.NewGeneratorService(service.PresetFor(service.TypeCustomer).Config, 4, nil), testBodyLimit, false)
}

func newQRCodeHandler() *QRCodeHandler {
	return NewQRCodeHandler(service.NewQRCodeService(nil), testBodyLimit, false)
}

func serve(t *testing.T, h http.HandlerFunc, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestHandleGenerate(t *testing.T) {
	h := newPasswordHandler()

	rec, env := serve(t, h.HandleGenerate, `{"length":20,"includeSpecialChars":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.True(t, env.Success)

	var data model.GenerateResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Len(t, data.Password, 20)
	assert.False(t, data.Options.IncludeSpecialChars)
	assert.True(t, data.Options.IncludeUppercase)
}

func TestHandleGenerate_EmptyBody(t *testing.T) {
	rec, env := serve(t, newPasswordHandler().HandleGenerate, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var data model.GenerateResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Len(t, data.Password, 12)
}

func TestHandleGenerate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed json", `{"length":`, http.StatusBadRequest, model.CodeInvalidJSON},
		{"wrong type", `{"length":"long"}`, http.StatusBadRequest, model.CodeInvalidJSON},
		{"length too short", `{"length":3}`, http.StatusBadRequest, model.CodeValidation},
		{"no character types", `{"includeUppercase":false,"includeLowercase":false,"includeNumbers":false,"includeSpecialChars":false}`, http.StatusBadRequest, model.CodeValidation},
	}

	h := newPasswordHandler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := serve(t, h.HandleGenerate, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Error)
		})
	}
}

func TestHandleGenerate_ValidationDetails(t *testing.T) {
	_, env := serve(t, newPasswordHandler().HandleGenerate, `{"length":500}`)
	require.Len(t, env.Details, 1)
	assert.Equal(t, "length", env.Details[0].Field)
}

func TestHandleGenerate_BodyTooLarge(t *testing.T) {
	h := NewPasswordHandler(service.NewGeneratorService(service.PresetFor(service.TypeCustomer).Config, 1, nil), 16, false)
	rec, env := serve(t, h.HandleGenerate, `{"customCharacters":"`+strings.Repeat("a", 64)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, model.CodeBodyTooLarge, env.Error)
}

func TestHandleEcommerce(t *testing.T) {
	rec, env := serve(t, newPasswordHandler().HandleEcommerce, `{"type":"api_key"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var data model.EcommerceResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "api_key", data.Type)
	assert.Len(t, data.Password, 32)
	assert.NotEmpty(t, data.Recommendations)
	assert.Empty(t, data.Hash)
}

func TestHandleBatch(t *testing.T) {
	h := newPasswordHandler()

	rec, env := serve(t, h.HandleBatch, `{"count":3,"options":{"length":10}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var data model.BatchResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 3, data.Count)
	require.Len(t, data.Passwords, 3)
	assert.Equal(t, 1, data.Passwords[0].Index)
	assert.NotEmpty(t, data.BatchID)

	rec, env = serve(t, h.HandleBatch, `{"count":101}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.CodeBatchSizeExceeded, env.Error)
}

func TestHandleValidate(t *testing.T) {
	rec, env := serve(t, newPasswordHandler().HandleValidate, `{"password":"aaaaaaaa","criteria":{"minLength":6}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var data model.ValidateResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.False(t, data.IsValid)
	assert.Len(t, data.Issues, 3)
	assert.Equal(t, crypto.LevelWeak, data.Strength.Level)
	assert.Equal(t, 25, data.Strength.Score)
	assert.GreaterOrEqual(t, data.Estimate.Score, 0)

	rec, env = serve(t, newPasswordHandler().HandleValidate, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.CodeValidation, env.Error)
}

func TestHandleVerify(t *testing.T) {
	hash, err := crypto.HashCredential("s3cret!", crypto.HashParams{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	require.NoError(t, err)

	body, err := json.Marshal(model.VerifyRequest{Password: "s3cret!", Hash: hash})
	require.NoError(t, err)
	rec, env := serve(t, newPasswordHandler().HandleVerify, string(body))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"match":true}`, string(env.Data))
}

func TestHandleQRCodeGenerate(t *testing.T) {
	rec, env := serve(t, newQRCodeHandler().HandleGenerate, `{"text":"hello","options":{"width":200,"color":{"dark":"#112233"}}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var data model.QRCodeResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "hello", data.Text)
	assert.Equal(t, 200, data.Options.Width)
	assert.Equal(t, "#112233", data.Options.Dark)
	assert.Equal(t, "#FFFFFF", data.Options.Light)
	assert.True(t, strings.HasPrefix(data.QRCode.DataURL, "data:image/png;base64,"))
	assert.Contains(t, data.QRCode.SVG, `stroke="#112233"`)
}

func TestHandleQRCodeProduct_MissingFields(t *testing.T) {
	rec, env := serve(t, newQRCodeHandler().HandleProduct, `{"productName":"Mug"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.CodeMissingFields, env.Error)
	assert.Contains(t, env.Message, "productId")
}

func TestHandleQRCodeBatch(t *testing.T) {
	h := newQRCodeHandler()

	rec, env := serve(t, h.HandleBatch, `{"items":[{"text":"a"},{"other":1}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var data model.QRBatchResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 1, data.SuccessCount)
	assert.Equal(t, 1, data.ErrorCount)

	for _, body := range []string{`{}`, `{"items":[]}`, `{"items":"nope"}`} {
		rec, env = serve(t, h.HandleBatch, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, model.CodeInvalidItems, env.Error, body)
	}
}

func TestHandleHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	NewHealthHandler("test", false).HandleHealth(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var data HealthResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "ok", data.Status)
	assert.Equal(t, Version, data.Version)
	assert.Len(t, data.Endpoints, len(Endpoints))
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), model.CodeNotFound)

	rec = httptest.NewRecorder()
	MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), model.CodeMethodNotAllowed)
}

func TestFail_InternalErrorHidesDetails(t *testing.T) {
	boom := errors.New("disk on fire")
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	rec := httptest.NewRecorder()
	responder{}.fail(rec, req, boom)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")

	rec = httptest.NewRecorder()
	responder{debug: true}.fail(rec, req, boom)
	assert.Contains(t, rec.Body.String(), "disk on fire")
}

func TestFail_EmptyAlphabet(t *testing.T) {
	rec := httptest.NewRecorder()
	responder{}.fail(rec, httptest.NewRequest(http.MethodPost, "/", nil), crypto.ErrEmptyAlphabet)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), model.CodeEmptyAlphabet)
}

func TestFail_ContentTooLong(t *testing.T) {
	err := fmt.Errorf("%w: data too long", qrcode.ErrContentTooLong)

	rec := httptest.NewRecorder()
	responder{}.fail(rec, httptest.NewRequest(http.MethodPost, "/", nil), err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), model.CodeValidation)
}

type auditRecorder struct {
	mu        sync.Mutex
	artifacts []model.Artifact
}

func (r *auditRecorder) Record(_ context.Context, artifacts ...model.Artifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.artifacts = append(r.artifacts, artifacts...)
	return nil
}

func TestHandleBatch_RecordsTokenSubject(t *testing.T) {
	const secret = "0123456789abcdef0123456789abcdef"
	token, err := crypto.IssueToken("store-7", []string{"batch"}, secret, time.Hour)
	require.NoError(t, err)

	audit := &auditRecorder{}
	ph := NewPasswordHandler(service.NewGeneratorService(service.PresetFor(service.TypeCustomer).Config, 4, audit), testBodyLimit, false)
	qh := NewQRCodeHandler(service.NewQRCodeService(audit), testBodyLimit, false)

	tests := []struct {
		name string
		h    http.HandlerFunc
		body string
	}{
		{"password batch", ph.HandleBatch, `{"count":2}`},
		{"qrcode batch", qh.HandleBatch, `{"items":[{"text":"a"}]}`},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		middleware.JWTAuth(secret, "batch")(tt.h).ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, tt.name)
	}

	require.Len(t, audit.artifacts, 3)
	for _, a := range audit.artifacts {
		assert.Equal(t, "store-7", a.RequestedBy)
	}
}

func TestHandleBatch_WithoutTokenLeavesRequesterEmpty(t *testing.T) {
	audit := &auditRecorder{}
	h := NewQRCodeHandler(service.NewQRCodeService(audit), testBodyLimit, false)

	rec, _ := serve(t, h.HandleBatch, `{"items":[{"text":"a"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, audit.artifacts, 1)
	assert.Empty(t, audit.artifacts[0].RequestedBy)
}
