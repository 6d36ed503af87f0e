package firebase

import (
	"time"

	"drgroup/cmd/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// Documents keep the field names and number types the dashboard already
// stores, so both backends read the same collections.

type commitmentDoc struct {
	Concept            string    `firestore:"concept"`
	CompanyID          string    `firestore:"companyId"`
	CompanyName        string    `firestore:"companyName"`
	Beneficiary        string    `firestore:"beneficiary"`
	Amount             float64   `firestore:"amount"`
	DueDate            time.Time `firestore:"dueDate"`
	Periodicity        string    `firestore:"periodicity"`
	Status             string    `firestore:"status"`
	PaymentMethod      string    `firestore:"paymentMethod"`
	Observations       string    `firestore:"observations"`
	IsRecurring        bool      `firestore:"isRecurring"`
	RecurringGroup     string    `firestore:"recurringGroup,omitempty"`
	ParentCommitmentID *string   `firestore:"parentCommitmentId"`
	InstanceNumber     int       `firestore:"instanceNumber,omitempty"`
	TotalInstances     int       `firestore:"totalInstances,omitempty"`
	Month              int       `firestore:"month"`
	Year               int       `firestore:"year"`
	CreatedBy          string    `firestore:"createdBy,omitempty"`
	UpdatedBy          string    `firestore:"updatedBy,omitempty"`
	CreatedAt          int64     `firestore:"createdAt"`
	UpdatedAt          int64     `firestore:"updatedAt"`
}

func toCommitmentDoc(c *entity.Commitment) *commitmentDoc {
	return &commitmentDoc{
		Concept:            c.Concept,
		CompanyID:          c.CompanyID,
		CompanyName:        c.CompanyName,
		Beneficiary:        c.Beneficiary,
		Amount:             c.Amount.InexactFloat64(),
		DueDate:            c.DueDate.UTC(),
		Periodicity:        string(c.Periodicity),
		Status:             string(c.Status),
		PaymentMethod:      string(c.PaymentMethod),
		Observations:       c.Observations,
		IsRecurring:        c.IsRecurring,
		RecurringGroup:     c.RecurringGroup.String(),
		ParentCommitmentID: c.ParentCommitmentID,
		InstanceNumber:     c.InstanceNumber,
		TotalInstances:     c.TotalInstances,
		Month:              c.Month,
		Year:               c.Year,
		CreatedBy:          c.CreatedBy,
		UpdatedBy:          c.UpdatedBy,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

func (d *commitmentDoc) toEntity(id string) *entity.Commitment {
	return &entity.Commitment{
		ID:                 id,
		Concept:            d.Concept,
		CompanyID:          d.CompanyID,
		CompanyName:        d.CompanyName,
		Beneficiary:        d.Beneficiary,
		Amount:             decimal.NewFromFloat(d.Amount).Round(2),
		DueDate:            d.DueDate.UTC(),
		Periodicity:        entity.Periodicity(d.Periodicity),
		Status:             entity.Status(d.Status),
		PaymentMethod:      entity.PaymentMethod(d.PaymentMethod),
		Observations:       d.Observations,
		IsRecurring:        d.IsRecurring,
		RecurringGroup:     entity.SeriesID(d.RecurringGroup),
		ParentCommitmentID: d.ParentCommitmentID,
		InstanceNumber:     d.InstanceNumber,
		TotalInstances:     d.TotalInstances,
		Month:              d.Month,
		Year:               d.Year,
		CreatedBy:          d.CreatedBy,
		UpdatedBy:          d.UpdatedBy,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

type companyDoc struct {
	Name      string `firestore:"name"`
	NIT       string `firestore:"nit"`
	Active    bool   `firestore:"active"`
	CreatedAt int64  `firestore:"createdAt"`
	UpdatedAt int64  `firestore:"updatedAt"`
}

func toCompanyDoc(c *entity.Company) *companyDoc {
	return &companyDoc{
		Name:      c.Name,
		NIT:       c.NIT,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (d *companyDoc) toEntity(id string) *entity.Company {
	return &entity.Company{
		ID:        id,
		Name:      d.Name,
		NIT:       d.NIT,
		Active:    d.Active,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type paymentDoc struct {
	CommitmentID  *string   `firestore:"commitmentId"`
	CompanyID     string    `firestore:"companyId"`
	Concept       string    `firestore:"concept"`
	Amount        float64   `firestore:"amount"`
	PaidAt        time.Time `firestore:"paidAt"`
	PaymentMethod string    `firestore:"paymentMethod"`
	Reference     string    `firestore:"reference,omitempty"`
	ReceiptKey    string    `firestore:"receiptKey,omitempty"`
	ReceiptSize   int       `firestore:"receiptSize,omitempty"`
	CreatedBy     string    `firestore:"createdBy,omitempty"`
	CreatedAt     int64     `firestore:"createdAt"`
}

func toPaymentDoc(p *entity.Payment) *paymentDoc {
	return &paymentDoc{
		CommitmentID:  p.CommitmentID,
		CompanyID:     p.CompanyID,
		Concept:       p.Concept,
		Amount:        p.Amount.InexactFloat64(),
		PaidAt:        p.PaidAt.UTC(),
		PaymentMethod: string(p.PaymentMethod),
		Reference:     p.Reference,
		ReceiptKey:    p.ReceiptKey,
		ReceiptSize:   p.ReceiptSize,
		CreatedBy:     p.CreatedBy,
		CreatedAt:     p.CreatedAt,
	}
}

func (d *paymentDoc) toEntity(id string) *entity.Payment {
	return &entity.Payment{
		ID:            id,
		CommitmentID:  d.CommitmentID,
		CompanyID:     d.CompanyID,
		Concept:       d.Concept,
		Amount:        decimal.NewFromFloat(d.Amount).Round(2),
		PaidAt:        d.PaidAt.UTC(),
		PaymentMethod: entity.PaymentMethod(d.PaymentMethod),
		Reference:     d.Reference,
		ReceiptKey:    d.ReceiptKey,
		ReceiptSize:   d.ReceiptSize,
		CreatedBy:     d.CreatedBy,
		CreatedAt:     d.CreatedAt,
	}
}
