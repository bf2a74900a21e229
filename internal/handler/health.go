package handler

import (
	"net/http"
	"time"
)

// Version is reported by the health endpoint.
const Version = "2.0.0"

// Endpoint describes one route in the health catalogue.
type Endpoint struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

// Endpoints lists the public API.
var Endpoints = []Endpoint{
	{http.MethodGet, "/api/v1/health", "service status and endpoint catalogue"},
	{http.MethodPost, "/api/v1/password/generate", "generate a password from explicit options"},
	{http.MethodPost, "/api/v1/password/ecommerce", "generate a password for a customer, admin, api_key or temporary credential"},
	{http.MethodPost, "/api/v1/password/batch", "generate up to 100 passwords sharing one config"},
	{http.MethodPost, "/api/v1/password/validate", "check a password against criteria"},
	{http.MethodPost, "/api/v1/password/verify", "check a password against an argon2id hash"},
	{http.MethodPost, "/api/v1/qrcode/generate", "encode text as PNG and SVG"},
	{http.MethodPost, "/api/v1/qrcode/product", "encode a product page URL"},
	{http.MethodPost, "/api/v1/qrcode/batch", "encode up to 50 items"},
}

// HealthResponse is returned by GET /api/v1/health.
type HealthResponse struct {
	Status    string     `json:"status"`
	Version   string     `json:"version"`
	Env       string     `json:"env"`
	Audit     bool       `json:"audit"`
	Uptime    string     `json:"uptime"`
	Timestamp time.Time  `json:"timestamp"`
	Endpoints []Endpoint `json:"endpoints"`
}

// HealthHandler reports service status.
type HealthHandler struct {
	responder
	env     string
	audit   bool
	started time.Time
}

// NewHealthHandler creates a new HealthHandler. audit reports whether the
// artifact audit trail is connected.
func NewHealthHandler(env string, audit bool) *HealthHandler {
	return &HealthHandler{env: env, audit: audit, started: time.Now()}
}

// HandleHealth handles GET /api/v1/health requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.ok(w, "service is healthy", HealthResponse{
		Status:    "ok",
		Version:   Version,
		Env:       h.env,
		Audit:     h.audit,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
		Endpoints: Endpoints,
	})
}
