package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Periodicity is the recurrence interval of a commitment.
type Periodicity string

const (
	PeriodicityUnique      Periodicity = "unique"
	PeriodicityMonthly     Periodicity = "monthly"
	PeriodicityBimonthly   Periodicity = "bimonthly"
	PeriodicityQuarterly   Periodicity = "quarterly"
	PeriodicityFourMonthly Periodicity = "fourmonthly"
	PeriodicityBiannual    Periodicity = "biannual"
	PeriodicityAnnual      Periodicity = "annual"
)

var periodicityMonths = map[Periodicity]int{
	PeriodicityMonthly:     1,
	PeriodicityBimonthly:   2,
	PeriodicityQuarterly:   3,
	PeriodicityFourMonthly: 4,
	PeriodicityBiannual:    6,
	PeriodicityAnnual:      12,
}

var periodicityDescriptions = map[Periodicity]string{
	PeriodicityUnique:      "Pago único",
	PeriodicityMonthly:     "Mensual",
	PeriodicityBimonthly:   "Bimestral (cada 2 meses)",
	PeriodicityQuarterly:   "Trimestral (cada 3 meses)",
	PeriodicityFourMonthly: "Cuatrimestral (cada 4 meses)",
	PeriodicityBiannual:    "Semestral (cada 6 meses)",
	PeriodicityAnnual:      "Anual (cada 12 meses)",
}

// Periodicities lists every known periodicity in display order.
var Periodicities = []Periodicity{
	PeriodicityUnique,
	PeriodicityMonthly,
	PeriodicityBimonthly,
	PeriodicityQuarterly,
	PeriodicityFourMonthly,
	PeriodicityBiannual,
	PeriodicityAnnual,
}

// MonthStep returns how many months separate two instances. Unique and
// unknown periodicities report false.
func (p Periodicity) MonthStep() (int, bool) {
	step, ok := periodicityMonths[p]
	return step, ok
}

func (p Periodicity) Valid() bool {
	if p == PeriodicityUnique {
		return true
	}
	_, ok := periodicityMonths[p]
	return ok
}

// Description is the human readable label shown in the dashboard.
func (p Periodicity) Description() string {
	if desc, ok := periodicityDescriptions[p]; ok {
		return desc
	}
	return "Periodicidad desconocida"
}

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodPSE      PaymentMethod = "pse"
	PaymentMethodCheck    PaymentMethod = "check"
	PaymentMethodDebit    PaymentMethod = "debit"
	PaymentMethodCredit   PaymentMethod = "credit"
)

// PaymentMethods lists the accepted payment methods.
var PaymentMethods = []PaymentMethod{
	PaymentMethodTransfer,
	PaymentMethodCash,
	PaymentMethodPSE,
	PaymentMethodCheck,
	PaymentMethodDebit,
	PaymentMethodCredit,
}

func (m PaymentMethod) Valid() bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

// SeriesID identifies a recurring group. It is only ever produced by the
// persistence layer, never parsed from unrelated strings.
type SeriesID string

func (s SeriesID) String() string {
	return string(s)
}

func (s SeriesID) IsZero() bool {
	return s == ""
}

// Commitment is a single financial obligation due on one date.
type Commitment struct {
	ID            string          `gorm:"primaryKey"`
	Concept       string          `gorm:"not null"`
	CompanyID     string          `gorm:"not null;index"`
	CompanyName   string          `gorm:"not null"`
	Beneficiary   string          `gorm:"not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	DueDate       time.Time       `gorm:"not null;index"`
	Periodicity   Periodicity     `gorm:"not null"`
	Status        Status          `gorm:"not null;default:pending"`
	PaymentMethod PaymentMethod   `gorm:"not null"`
	Observations  string

	// Recurring series linkage. Empty for unique commitments.
	IsRecurring        bool     `gorm:"not null;default:false;index"`
	RecurringGroup     SeriesID `gorm:"index"`
	ParentCommitmentID *string
	InstanceNumber     int
	TotalInstances     int
	Month              int
	Year               int `gorm:"index"`

	CreatedBy string
	UpdatedBy string
	CreatedAt int64 `gorm:"not null"`
	UpdatedAt int64 `gorm:"not null;autoUpdateTime:false"`
}

// HasCompanyName reports whether the commitment can be linked to a company
// in downstream reports. Records failing this check are orphans.
func (c *Commitment) HasCompanyName() bool {
	return strings.TrimSpace(c.CompanyName) != ""
}

// IsSeriesOrigin reports whether the commitment is the first persisted
// instance of its recurring group.
func (c *Commitment) IsSeriesOrigin() bool {
	return c.IsRecurring && !c.RecurringGroup.IsZero() && c.ParentCommitmentID == nil
}

// SetDueDate updates the due date together with its derived month and year.
func (c *Commitment) SetDueDate(due time.Time) {
	c.DueDate = due
	c.Month = int(due.Month())
	c.Year = due.Year()
}

// ClearSeries strips every recurring attribute, turning the commitment
// back into a one-off obligation.
func (c *Commitment) ClearSeries() {
	c.IsRecurring = false
	c.RecurringGroup = ""
	c.ParentCommitmentID = nil
	c.InstanceNumber = 0
	c.TotalInstances = 0
}

// EffectiveStatus reports pending commitments past their due date as overdue.
func (c *Commitment) EffectiveStatus(today time.Time) Status {
	if c.Status == StatusPending && c.DueDate.Before(today) {
		return StatusOverdue
	}
	return c.Status
}

// Clone returns a deep copy, so generated instances never share the
// template's parent pointer.
func (c *Commitment) Clone() *Commitment {
	cp := *c
	if c.ParentCommitmentID != nil {
		parent := *c.ParentCommitmentID
		cp.ParentCommitmentID = &parent
	}
	return &cp
}
