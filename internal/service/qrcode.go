package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/vaultpass/ecomkit-go/internal/model"
	"github.com/vaultpass/ecomkit-go/internal/qrcode"
)

var (
	ErrInvalidItems  = errors.New("items must be a non-empty array")
	ErrMissingFields = errors.New("missing required fields")
)

// QRCodeService handles QR code generation business logic.
type QRCodeService struct {
	recorder Recorder
	now      func() time.Time
}

// NewQRCodeService creates a new QRCodeService.
func NewQRCodeService(recorder Recorder) *QRCodeService {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &QRCodeService{
		recorder: recorder,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Generate encodes free text.
func (s *QRCodeService) Generate(ctx context.Context, req model.QRCodeRequest) (model.QRCodeResponse, error) {
	if err := req.Validate(); err != nil {
		return model.QRCodeResponse{}, err
	}

	opts := req.Options.Resolve(qrcode.DefaultOptions())
	code, err := qrcode.Generate(req.Text, opts)
	if err != nil {
		return model.QRCodeResponse{}, err
	}

	resp := model.QRCodeResponse{
		ID:          uuid.NewString(),
		Text:        req.Text,
		QRCode:      code,
		Options:     opts,
		GeneratedAt: s.now(),
	}
	recordArtifacts(ctx, s.recorder, qrArtifact(resp.ID, "text", "", resp.GeneratedAt))
	return resp, nil
}

// Product encodes the public URL of a product page. Product codes default to
// the highest error correction level so printed labels survive wear.
func (s *QRCodeService) Product(ctx context.Context, req model.ProductQRRequest) (model.ProductQRResponse, error) {
	if missing := req.MissingFields(); len(missing) > 0 {
		return model.ProductQRResponse{}, fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}
	if err := req.Validate(); err != nil {
		return model.ProductQRResponse{}, err
	}

	defaults := qrcode.DefaultOptions()
	defaults.ErrorCorrectionLevel = "H"
	opts := req.Options.Resolve(defaults)

	productURL := ProductURL(req.StoreURL, req.ProductID)
	code, err := qrcode.Generate(productURL, opts)
	if err != nil {
		return model.ProductQRResponse{}, err
	}

	now := s.now()
	resp := model.ProductQRResponse{
		ID: uuid.NewString(),
		Product: model.Product{
			ID:          req.ProductID,
			Name:        req.ProductName,
			Price:       req.Price,
			Category:    req.Category,
			Description: req.Description,
			ImageURL:    req.ImageURL,
			URL:         productURL,
			GeneratedAt: now,
		},
		QRCode:      code,
		Options:     opts,
		GeneratedAt: now,
	}
	recordArtifacts(ctx, s.recorder, qrArtifact(resp.ID, "product", "", now))
	return resp, nil
}

// ProductURL joins a store URL and a product id into the product page URL.
func ProductURL(storeURL, productID string) string {
	return strings.TrimRight(storeURL, "/") + "/product/" + url.PathEscape(productID)
}

// Batch encodes every item independently. Items without content or that fail
// to encode are reported in Errors and do not abort the batch. Batch codes
// carry the PNG only.
func (s *QRCodeService) Batch(ctx context.Context, req model.QRBatchRequest) (model.QRBatchResponse, error) {
	if len(req.Items) == 0 {
		return model.QRBatchResponse{}, ErrInvalidItems
	}
	if len(req.Items) > model.MaxQRBatch {
		return model.QRBatchResponse{}, fmt.Errorf("%w: at most %d items per batch", ErrBatchSizeExceeded, model.MaxQRBatch)
	}
	var verrs model.ValidationErrors
	req.Options.ValidateInto(&verrs)
	if err := verrs.Err(); err != nil {
		return model.QRBatchResponse{}, err
	}

	opts := req.Options.Resolve(qrcode.DefaultOptions())
	resp := model.QRBatchResponse{
		BatchID:    uuid.NewString(),
		TotalItems: len(req.Items),
		Results:    []model.QRBatchResult{},
		Options:    opts,
	}

	var artifacts []model.Artifact
	for i, item := range req.Items {
		result, err := s.encodeItem(item, opts)
		if err != nil {
			resp.Errors = append(resp.Errors, model.QRBatchError{Index: i, Item: item, Error: err.Error()})
			continue
		}
		result.Index = i
		resp.Results = append(resp.Results, result)
		a := qrArtifact(result.ID, "batch", resp.BatchID, result.GeneratedAt)
		a.RequestedBy = req.RequestedBy
		artifacts = append(artifacts, a)
	}

	resp.SuccessCount = len(resp.Results)
	resp.ErrorCount = len(resp.Errors)
	resp.GeneratedAt = s.now()

	if len(artifacts) > 0 {
		recordArtifacts(ctx, s.recorder, artifacts...)
	}
	return resp, nil
}

func (s *QRCodeService) encodeItem(item model.QRBatchItem, opts qrcode.Options) (model.QRBatchResult, error) {
	content := item.Content()
	if content == "" {
		return model.QRBatchResult{}, errors.New("item has no text, url or data")
	}
	if utf8.RuneCountInString(content) > model.MaxQRTextLength {
		return model.QRBatchResult{}, fmt.Errorf("content must be at most %d characters", model.MaxQRTextLength)
	}

	sym, err := qrcode.Encode(content, opts)
	if err != nil {
		return model.QRBatchResult{}, err
	}
	dataURL, err := sym.DataURL()
	if err != nil {
		return model.QRBatchResult{}, err
	}

	return model.QRBatchResult{
		ID:           uuid.NewString(),
		OriginalData: item,
		Text:         content,
		QRCode:       qrcode.Code{DataURL: dataURL},
		GeneratedAt:  s.now(),
	}, nil
}

func qrArtifact(id, variant, batchID string, at time.Time) model.Artifact {
	return model.Artifact{
		ID:        id,
		Kind:      model.KindQRCode,
		Variant:   variant,
		BatchID:   batchID,
		CreatedAt: at,
	}
}
