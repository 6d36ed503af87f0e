package contract

import "github.com/shopspring/decimal"

const MaxRecurringCount = 120

type CommitmentRequest struct {
	Concept        string          `json:"concept" validate:"required,notblank,max=200"`
	CompanyID      string          `json:"company_id" validate:"required,max=40"`
	CompanyName    string          `json:"company_name" validate:"max=200"`
	Beneficiary    string          `json:"beneficiary" validate:"required,notblank,max=200"`
	Amount         decimal.Decimal `json:"amount"`
	DueDate        string          `json:"due_date" validate:"required,isodate"`
	Periodicity    string          `json:"periodicity" validate:"required,periodicity"`
	PaymentMethod  string          `json:"payment_method" validate:"omitempty,paymentmethod"`
	Observations   string          `json:"observations" validate:"max=2000"`
	RecurringCount int             `json:"recurring_count" validate:"omitempty,gte=1,lte=120"`
}

type UpdateCommitmentRequest struct {
	Concept        *string          `json:"concept" validate:"omitempty,notblank,max=200"`
	CompanyID      *string          `json:"company_id" validate:"omitempty,max=40"`
	Beneficiary    *string          `json:"beneficiary" validate:"omitempty,notblank,max=200"`
	Amount         *decimal.Decimal `json:"amount"`
	DueDate        *string          `json:"due_date" validate:"omitempty,isodate"`
	Periodicity    *string          `json:"periodicity" validate:"omitempty,periodicity"`
	Status         *string          `json:"status" validate:"omitempty,oneof=pending paid"`
	PaymentMethod  *string          `json:"payment_method" validate:"omitempty,paymentmethod"`
	Observations   *string          `json:"observations" validate:"omitempty,max=2000"`
	RecurringCount *int             `json:"recurring_count" validate:"omitempty,gte=1,lte=120"`
}

type CommitmentQuery struct {
	Status    string `query:"status" validate:"omitempty,oneof=pending paid overdue"`
	CompanyID string `query:"company_id"`
	Group     string `query:"group"`
	Year      int    `query:"year" validate:"omitempty,gte=2000,lte=2100"`
	Month     int    `query:"month" validate:"omitempty,gte=1,lte=12"`
}

type CommitmentResponse struct {
	ID                     string          `json:"id"`
	Concept                string          `json:"concept"`
	CompanyID              string          `json:"company_id"`
	CompanyName            string          `json:"company_name"`
	Beneficiary            string          `json:"beneficiary"`
	Amount                 decimal.Decimal `json:"amount"`
	DueDate                string          `json:"due_date"`
	Periodicity            string          `json:"periodicity"`
	PeriodicityDescription string          `json:"periodicity_description"`
	Status                 string          `json:"status"`
	PaymentMethod          string          `json:"payment_method"`
	Observations           string          `json:"observations,omitempty"`
	IsRecurring            bool            `json:"is_recurring"`
	RecurringGroup         string          `json:"recurring_group,omitempty"`
	ParentCommitmentID     *string         `json:"parent_commitment_id,omitempty"`
	InstanceNumber         int             `json:"instance_number,omitempty"`
	TotalInstances         int             `json:"total_instances,omitempty"`
	Month                  int             `json:"month"`
	Year                   int             `json:"year"`
	CreatedBy              string          `json:"created_by,omitempty"`
	UpdatedBy              string          `json:"updated_by,omitempty"`
	CreatedAt              string          `json:"created_at,omitempty"`
	UpdatedAt              string          `json:"updated_at,omitempty"`
}

// CommitmentBatchResponse is returned by every write that may store more
// than one record. GroupID is empty for one-off commitments.
type CommitmentBatchResponse struct {
	GroupID     string                `json:"group_id,omitempty"`
	Count       int                   `json:"count"`
	Deleted     int64                 `json:"deleted,omitempty"`
	Commitments []*CommitmentResponse `json:"commitments"`
}

type AuditIssueResponse struct {
	Rule         string `json:"rule"`
	CommitmentID string `json:"commitment_id,omitempty"`
	GroupID      string `json:"group_id,omitempty"`
	Detail       string `json:"detail"`
}

type AuditResponse struct {
	Checked int                   `json:"checked"`
	Healthy bool                  `json:"healthy"`
	Counts  map[string]int        `json:"counts"`
	Issues  []*AuditIssueResponse `json:"issues"`
}
