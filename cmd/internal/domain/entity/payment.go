package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment records money actually transferred, optionally against a commitment.
type Payment struct {
	ID            string          `gorm:"primaryKey"`
	CommitmentID  *string         `gorm:"index"`
	CompanyID     string          `gorm:"index"`
	Concept       string          `gorm:"not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	PaidAt        time.Time       `gorm:"not null"`
	PaymentMethod PaymentMethod   `gorm:"not null"`
	Reference     string

	// ReceiptKey is the object key of the uploaded receipt, empty when none.
	ReceiptKey  string
	ReceiptSize int

	CreatedBy string
	CreatedAt int64 `gorm:"not null"`
}

func (p *Payment) HasReceipt() bool {
	return p.ReceiptKey != ""
}
