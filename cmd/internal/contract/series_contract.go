package contract

import "github.com/shopspring/decimal"

type SeriesPreviewRequest struct {
	CommitmentRequest
	SkipFirst bool   `json:"skip_first"`
	Horizon   string `json:"horizon" validate:"omitempty,isodate"`
}

type SeriesPreviewResponse struct {
	Count       int                   `json:"count"`
	Commitments []*CommitmentResponse `json:"commitments"`
}

type PeriodicityResponse struct {
	Value       string `json:"value"`
	Description string `json:"description"`
	Months      int    `json:"months"`
}

type NextDatesResponse struct {
	Periodicity string   `json:"periodicity"`
	Description string   `json:"description"`
	Dates       []string `json:"dates"`
}

type GroupSummaryResponse struct {
	GroupID       string          `json:"group_id"`
	Concept       string          `json:"concept"`
	Periodicity   string          `json:"periodicity"`
	CompanyID     string          `json:"company_id"`
	CompanyName   string          `json:"company_name"`
	Beneficiary   string          `json:"beneficiary"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	LastDueDate   string          `json:"last_due_date"`
	Count         int             `json:"count"`
}

type ExtensionCheckResponse struct {
	TotalGroups    int                     `json:"total_groups"`
	NeedsExtension int                     `json:"needs_extension"`
	LookaheadMonth int                     `json:"lookahead_months"`
	Groups         []*GroupSummaryResponse `json:"groups"`
}

type ExtendSeriesRequest struct {
	GroupIDs             []string        `json:"group_ids" validate:"required,min=1,max=200,nodupes,dive,required"`
	TargetYear           int             `json:"target_year" validate:"omitempty,gte=2000,lte=2100"`
	AdjustmentPercentage decimal.Decimal `json:"adjustment_percentage" validate:"gte=-50,lte=100"`
	ExtensionCount       int             `json:"extension_count" validate:"omitempty,gte=1,lte=120"`
}

type ExtensionResult struct {
	GroupID string   `json:"group_id"`
	Concept string   `json:"concept,omitempty"`
	Count   int      `json:"count"`
	Success bool     `json:"success"`
	Partial bool     `json:"partial,omitempty"`
	IDs     []string `json:"ids,omitempty"`
	Error   string   `json:"error,omitempty"`
}

type ExtendSeriesResponse struct {
	TargetYear int                `json:"target_year"`
	Succeeded  int                `json:"succeeded"`
	Failed     int                `json:"failed"`
	Results    []*ExtensionResult `json:"results"`
}
