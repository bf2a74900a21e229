package handler

import (
	"net/http"

	"github.com/vaultpass/ecomkit-go/internal/model"
	"github.com/vaultpass/ecomkit-go/internal/service"
)

// PasswordHandler handles HTTP requests for password generation and checks.
type PasswordHandler struct {
	responder
	service *service.GeneratorService
}

// NewPasswordHandler creates a new PasswordHandler. Request bodies larger than
// bodyLimit are rejected; debug exposes internal error text.
func NewPasswordHandler(svc *service.GeneratorService, bodyLimit int64, debug bool) *PasswordHandler {
	return &PasswordHandler{responder: responder{bodyLimit: bodyLimit, debug: debug}, service: svc}
}

// HandleGenerate handles POST /api/v1/password/generate requests.
func (h *PasswordHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req model.PasswordOptions
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	resp, err := h.service.Generate(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, "password generated successfully", resp)
}

// HandleEcommerce handles POST /api/v1/password/ecommerce requests.
func (h *PasswordHandler) HandleEcommerce(w http.ResponseWriter, r *http.Request) {
	var req model.EcommerceRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	resp, err := h.service.GenerateEcommerce(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, "e-commerce password generated successfully", resp)
}

// HandleBatch handles POST /api/v1/password/batch requests.
func (h *PasswordHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	var req model.BatchRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	req.RequestedBy = tokenSubject(r)

	resp, err := h.service.GenerateBatch(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, "passwords generated successfully", resp)
}

// HandleValidate handles POST /api/v1/password/validate requests.
func (h *PasswordHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req model.ValidateRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	resp, err := h.service.Validate(req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, "password validated", resp)
}

// HandleVerify handles POST /api/v1/password/verify requests.
func (h *PasswordHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req model.VerifyRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	resp, err := h.service.Verify(req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, "password verified", resp)
}
