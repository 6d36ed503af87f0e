package recurring

import (
	"fmt"
	"strings"
	"time"

	"drgroup/cmd/internal/domain/entity"

	"github.com/google/uuid"
)

const (
	DefaultInstanceCount   = 12
	DefaultLookaheadMonths = 3
	DefaultPreviewCount    = 6
)

// Engine generates, persists and extends recurring commitment series.
// Generation and detection are pure; only Persist touches the store.
type Engine struct {
	store     Store
	now       func() time.Time
	newSeries func() entity.SeriesID
}

type Option func(*Engine)

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithSeriesIDs overrides the recurring group id generator.
func WithSeriesIDs(gen func() entity.SeriesID) Option {
	return func(e *Engine) {
		e.newSeries = gen
	}
}

func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		now:   time.Now,
	}
	e.newSeries = e.defaultSeriesID

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewSeriesID returns a fresh recurring group id.
func (e *Engine) NewSeriesID() entity.SeriesID {
	return e.newSeries()
}

// Today is the engine's current calendar date.
func (e *Engine) Today() time.Time {
	return DateOf(e.now())
}

// Generate computes the dated instances of a series starting at the
// template's due date. A zero horizon means December 31 of the current year.
// The returned records carry no id, group or parent yet.
func (e *Engine) Generate(tpl *entity.Commitment, instanceCount int, skipFirst bool, horizon time.Time) ([]*entity.Commitment, error) {
	if err := validateTemplate(tpl); err != nil {
		return nil, err
	}

	if tpl.Periodicity == entity.PeriodicityUnique {
		return []*entity.Commitment{tpl}, nil
	}

	if instanceCount <= 0 {
		instanceCount = DefaultInstanceCount
	}
	if horizon.IsZero() {
		horizon = EndOfYear(e.now().Year())
	}

	step, _ := tpl.Periodicity.MonthStep()
	base := DateOf(tpl.DueDate)
	limit := DateOf(horizon)

	start := 0
	if skipFirst {
		start = 1
	}

	out := make([]*entity.Commitment, 0, instanceCount)
	for i := start; len(out) < instanceCount; i++ {
		due := AddMonths(base, i*step)
		if due.After(limit) {
			break
		}

		inst := tpl.Clone()
		inst.ID = ""
		inst.SetDueDate(due)
		inst.Concept = instanceConcept(tpl.Concept, i, due)
		inst.InstanceNumber = i + 1
		inst.TotalInstances = instanceCount
		inst.IsRecurring = true
		inst.RecurringGroup = ""
		inst.ParentCommitmentID = nil
		if inst.Status == "" {
			inst.Status = entity.StatusPending
		}
		out = append(out, inst)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: horizon %s is before the first due date %s",
			ErrEmptyGeneration, limit.Format(time.DateOnly), AddMonths(base, start*step).Format(time.DateOnly))
	}

	for _, inst := range out {
		if !inst.HasCompanyName() {
			return nil, fmt.Errorf("%w: generated instance %d has no company name", ErrOrphanRisk, inst.InstanceNumber)
		}
	}
	return out, nil
}

// NextDueDates previews the first count due dates of a periodicity. Unlike
// Generate it applies no horizon. Unique and unknown periodicities yield
// only the start date.
func NextDueDates(start time.Time, periodicity entity.Periodicity, count int) []time.Time {
	step, ok := periodicity.MonthStep()
	if !ok {
		return []time.Time{start}
	}
	if count <= 0 {
		count = DefaultPreviewCount
	}

	base := DateOf(start)
	dates := make([]time.Time, count)
	for i := range dates {
		dates[i] = AddMonths(base, i*step)
	}
	return dates
}

func validateTemplate(tpl *entity.Commitment) error {
	if tpl == nil {
		return fmt.Errorf("%w: template is required", ErrInvalidInput)
	}
	if strings.TrimSpace(tpl.Concept) == "" {
		return fmt.Errorf("%w: concept is required", ErrInvalidInput)
	}
	if !tpl.HasCompanyName() {
		return fmt.Errorf("%w: companyName is required to avoid orphaned commitments", ErrInvalidInput)
	}
	if !tpl.Periodicity.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPeriodicity, tpl.Periodicity)
	}
	if tpl.DueDate.IsZero() {
		return fmt.Errorf("%w: dueDate is required", ErrInvalidDate)
	}
	return nil
}

// instanceConcept labels every instance after the first with its month, so
// "Arriendo" becomes "Arriendo - febrero 2025". The concept is kept whole.
func instanceConcept(concept string, index int, due time.Time) string {
	if index == 0 {
		return concept
	}
	return concept + " - " + MonthLabel(due)
}

func (e *Engine) defaultSeriesID() entity.SeriesID {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return entity.SeriesID(fmt.Sprintf("recurring_%d_%s", e.now().UnixMilli(), token))
}
