package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vaultpass/ecomkit-go/internal/model"
	"github.com/vaultpass/ecomkit-go/internal/service"
)

// QRCodeHandler handles HTTP requests for QR code generation.
type QRCodeHandler struct {
	responder
	service *service.QRCodeService
}

// NewQRCodeHandler creates a new QRCodeHandler.
func NewQRCodeHandler(svc *service.QRCodeService, bodyLimit int64, debug bool) *QRCodeHandler {
	return &QRCodeHandler{responder: responder{bodyLimit: bodyLimit, debug: debug}, service: svc}
}

// HandleGenerate handles POST /api/v1/qrcode/generate requests.
func (h *QRCodeHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req model.QRCodeRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	resp, err := h.service.Generate(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, "QR code generated successfully", resp)
}

// HandleProduct handles POST /api/v1/qrcode/product requests.
func (h *QRCodeHandler) HandleProduct(w http.ResponseWriter, r *http.Request) {
	var req model.ProductQRRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	resp, err := h.service.Product(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, "product QR code generated successfully", resp)
}

// HandleBatch handles POST /api/v1/qrcode/batch requests.
func (h *QRCodeHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	var req model.QRBatchRequest
	if err := h.decode(w, r, &req); err != nil {
		// "items" present but not an array of objects.
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "items" {
			err = service.ErrInvalidItems
		}
		h.fail(w, r, err)
		return
	}
	req.RequestedBy = tokenSubject(r)

	resp, err := h.service.Batch(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, "QR code batch processed", resp)
}
