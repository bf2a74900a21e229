package model

import "time"

// Artifact kinds recorded in the audit trail.
const (
	KindPassword = "password"
	KindQRCode   = "qrcode"
)

// Artifact is the audit record of a generated password or QR code. It never
// carries the generated value itself.
type Artifact struct {
	ID            string
	Kind          string
	Variant       string
	BatchID       string
	StrengthLevel string
	RequestedBy   string
	CreatedAt     time.Time
}
