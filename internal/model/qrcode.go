package model

import (
	"fmt"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/vaultpass/ecomkit-go/internal/qrcode"
)

const (
	MaxQRTextLength = 2000
	MaxQRBatch      = 50
)

// QRColor is the colour pair of a QR code.
type QRColor struct {
	Dark  string `json:"dark,omitempty"`
	Light string `json:"light,omitempty"`
}

// QROptions is the wire form of qrcode.Options. Nil fields take defaults.
type QROptions struct {
	Width                *int     `json:"width,omitempty"`
	Margin               *int     `json:"margin,omitempty"`
	Color                *QRColor `json:"color,omitempty"`
	ErrorCorrectionLevel string   `json:"errorCorrectionLevel,omitempty"`
}

// Resolve merges o over defaults.
func (o QROptions) Resolve(defaults qrcode.Options) qrcode.Options {
	out := defaults
	if o.Width != nil {
		out.Width = *o.Width
	}
	if o.Margin != nil {
		out.Margin = *o.Margin
	}
	if o.Color != nil {
		if o.Color.Dark != "" {
			out.Dark = o.Color.Dark
		}
		if o.Color.Light != "" {
			out.Light = o.Color.Light
		}
	}
	if o.ErrorCorrectionLevel != "" {
		out.ErrorCorrectionLevel = o.ErrorCorrectionLevel
	}
	return out
}

// ValidateInto records option problems under the "options." prefix.
func (o QROptions) ValidateInto(errs *ValidationErrors) {
	if o.Width != nil && (*o.Width < 100 || *o.Width > 1000) {
		errs.Add("options.width", "width must be between 100 and 1000")
	}
	if o.Margin != nil && (*o.Margin < 0 || *o.Margin > 10) {
		errs.Add("options.margin", "margin must be between 0 and 10")
	}
	if o.Color != nil {
		if o.Color.Dark != "" {
			if _, err := qrcode.ParseColor(o.Color.Dark); err != nil {
				errs.Add("options.color.dark", err.Error())
			}
		}
		if o.Color.Light != "" {
			if _, err := qrcode.ParseColor(o.Color.Light); err != nil {
				errs.Add("options.color.light", err.Error())
			}
		}
	}
	if o.ErrorCorrectionLevel != "" && !qrcode.ValidLevel(o.ErrorCorrectionLevel) {
		errs.Add("options.errorCorrectionLevel", qrcode.ErrInvalidLevel.Error())
	}
}

// QRCodeRequest is the body of POST /api/v1/qrcode/generate.
type QRCodeRequest struct {
	Text    string    `json:"text"`
	Options QROptions `json:"options"`
}

// Validate checks the request fields.
func (r QRCodeRequest) Validate() error {
	var errs ValidationErrors
	switch {
	case r.Text == "":
		errs.Add("text", "text is required")
	case utf8.RuneCountInString(r.Text) > MaxQRTextLength:
		errs.Add("text", fmt.Sprintf("text must be at most %d characters", MaxQRTextLength))
	}
	r.Options.ValidateInto(&errs)
	return errs.Err()
}

// QRCodeResponse is returned by POST /api/v1/qrcode/generate.
type QRCodeResponse struct {
	ID          string         `json:"id"`
	Text        string         `json:"text"`
	QRCode      qrcode.Code    `json:"qrCode"`
	Options     qrcode.Options `json:"options"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// ProductQRRequest is the body of POST /api/v1/qrcode/product.
type ProductQRRequest struct {
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	Price       *float64  `json:"price"`
	Category    *string   `json:"category"`
	StoreURL    string    `json:"storeUrl"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	Options     QROptions `json:"options"`
}

// MissingFields lists the required fields left empty.
func (r ProductQRRequest) MissingFields() []string {
	var missing []string
	if r.ProductID == "" {
		missing = append(missing, "productId")
	}
	if r.ProductName == "" {
		missing = append(missing, "productName")
	}
	if r.StoreURL == "" {
		missing = append(missing, "storeUrl")
	}
	return missing
}

// Validate checks the non-required fields.
func (r ProductQRRequest) Validate() error {
	var errs ValidationErrors
	if r.StoreURL != "" {
		if u, err := url.Parse(r.StoreURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs.Add("storeUrl", "storeUrl must be an absolute URL")
		}
	}
	r.Options.ValidateInto(&errs)
	return errs.Err()
}

// Product is the product metadata echoed with its QR code.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       *float64  `json:"price"`
	Category    *string   `json:"category"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	URL         string    `json:"url"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// ProductQRResponse is returned by POST /api/v1/qrcode/product.
type ProductQRResponse struct {
	ID          string         `json:"id"`
	Product     Product        `json:"product"`
	QRCode      qrcode.Code    `json:"qrCode"`
	Options     qrcode.Options `json:"options"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// QRBatchItem is one free-form batch entry. The first non-empty of text,
// url and data is encoded.
type QRBatchItem map[string]any

// Content returns the value to encode, or "" when the item has none.
func (i QRBatchItem) Content() string {
	for _, key := range []string{"text", "url", "data"} {
		if s, ok := i[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// QRBatchRequest is the body of POST /api/v1/qrcode/batch.
type QRBatchRequest struct {
	Items   []QRBatchItem `json:"items"`
	Options QROptions     `json:"options"`

	// RequestedBy is the bearer token subject, set by the handler.
	RequestedBy string `json:"-"`
}

// QRBatchResult is a successfully encoded batch item.
type QRBatchResult struct {
	ID           string      `json:"id"`
	Index        int         `json:"index"`
	OriginalData QRBatchItem `json:"originalData"`
	Text         string      `json:"text"`
	QRCode       qrcode.Code `json:"qrCode"`
	GeneratedAt  time.Time   `json:"generatedAt"`
}

// QRBatchError is a batch item that could not be encoded.
type QRBatchError struct {
	Index int         `json:"index"`
	Item  QRBatchItem `json:"item"`
	Error string      `json:"error"`
}

// QRBatchResponse is returned by POST /api/v1/qrcode/batch.
type QRBatchResponse struct {
	BatchID      string          `json:"batchId"`
	TotalItems   int             `json:"totalItems"`
	SuccessCount int             `json:"successCount"`
	ErrorCount   int             `json:"errorCount"`
	Results      []QRBatchResult `json:"results"`
	Errors       []QRBatchError  `json:"errors,omitempty"`
	Options      qrcode.Options  `json:"options"`
	GeneratedAt  time.Time       `json:"generatedAt"`
}
