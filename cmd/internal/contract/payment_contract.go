package contract

import "github.com/shopspring/decimal"

const MaxReceiptFileSizeBytes = 10 * 1024 * 1024

var ValidReceiptFileTypes = []string{"pdf", "png", "jpg", "jpeg", "webp"}

type PaymentRequest struct {
	CommitmentID  string          `json:"commitment_id" validate:"omitempty,max=40"`
	CompanyID     string          `json:"company_id" validate:"omitempty,max=40"`
	Concept       string          `json:"concept" validate:"omitempty,max=200"`
	Amount        decimal.Decimal `json:"amount"`
	PaidAt        string          `json:"paid_at" validate:"required,isodate"`
	PaymentMethod string          `json:"payment_method" validate:"required,paymentmethod"`
	Reference     string          `json:"reference" validate:"max=120"`
}

type PaymentResponse struct {
	ID            string          `json:"id"`
	CommitmentID  *string         `json:"commitment_id,omitempty"`
	CompanyID     string          `json:"company_id,omitempty"`
	Concept       string          `json:"concept"`
	Amount        decimal.Decimal `json:"amount"`
	PaidAt        string          `json:"paid_at"`
	PaymentMethod string          `json:"payment_method"`
	Reference     string          `json:"reference,omitempty"`
	HasReceipt    bool            `json:"has_receipt"`
	ReceiptSize   int             `json:"receipt_size,omitempty"`
	CreatedBy     string          `json:"created_by,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

type ReceiptURLResponse struct {
	URL       string `json:"url"`
	ExpiresAt string `json:"expires_at"`
}
