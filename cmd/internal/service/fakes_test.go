package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"drgroup/cmd/internal/domain/entity"
	"drgroup/cmd/internal/domain/events"
	"drgroup/cmd/internal/domain/recurring"
	"drgroup/cmd/internal/utils"
	"drgroup/cmd/internal/utils/validators"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store unavailable")

var testActor = &utils.Actor{Sub: "user-1", Email: "tesoreria@drgroup.co"}

// fixedToday is the engine clock used by every service test.
var fixedToday = time.Date(2025, time.January, 10, 9, 30, 0, 0, time.UTC)

func newValidator() *validator.Validate {
	v := validator.New()
	validators.Register(v)
	return v
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := utils.ParseDate(s)
	require.NoError(t, err)
	return d
}

type fakeCommitmentRepo struct {
	mu      sync.Mutex
	records map[string]*entity.Commitment
	next    int

	// failCreateAt makes the n-th Create call (0 based) fail; -1 disables it.
	failCreateAt int
	creates      int
}

func newFakeCommitmentRepo() *fakeCommitmentRepo {
	return &fakeCommitmentRepo{records: make(map[string]*entity.Commitment), failCreateAt: -1}
}

func (r *fakeCommitmentRepo) Create(_ context.Context, c *entity.Commitment) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.creates
	r.creates++
	if idx == r.failCreateAt {
		return "", errStoreDown
	}

	r.next++
	c.ID = fmt.Sprintf("c-%d", r.next)
	r.records[c.ID] = c.Clone()
	return c.ID, nil
}

// seed stores c as is, keeping its id when set.
func (r *fakeCommitmentRepo) seed(c *entity.Commitment) *entity.Commitment {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == "" {
		r.next++
		c.ID = fmt.Sprintf("c-%d", r.next)
	}
	r.records[c.ID] = c.Clone()
	return c
}

func (r *fakeCommitmentRepo) FindAll(_ context.Context, filter *entity.CommitmentFilter) ([]*entity.Commitment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entity.Commitment, 0, len(r.records))
	for _, c := range r.records {
		if filter != nil {
			if filter.CompanyID != "" && c.CompanyID != filter.CompanyID {
				continue
			}
			if !filter.Group.IsZero() && c.RecurringGroup != filter.Group {
				continue
			}
			if filter.Year > 0 && c.Year != filter.Year {
				continue
			}
			if filter.Month > 0 && c.Month != filter.Month {
				continue
			}
			if filter.RecurringOnly && (!c.IsRecurring || c.RecurringGroup.IsZero()) {
				continue
			}
		}
		out = append(out, c.Clone())
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].InstanceNumber < out[j].InstanceNumber
	})
	return out, nil
}

func (r *fakeCommitmentRepo) FindByID(_ context.Context, id string) (*entity.Commitment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	return c.Clone(), nil
}

func (r *fakeCommitmentRepo) FindByGroup(ctx context.Context, group entity.SeriesID) ([]*entity.Commitment, error) {
	return r.FindAll(ctx, &entity.CommitmentFilter{Group: group})
}

func (r *fakeCommitmentRepo) FindRecurring(ctx context.Context) ([]*entity.Commitment, error) {
	return r.FindAll(ctx, &entity.CommitmentFilter{RecurringOnly: true})
}

func (r *fakeCommitmentRepo) Save(_ context.Context, c *entity.Commitment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[c.ID] = c.Clone()
	return nil
}

func (r *fakeCommitmentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
	return nil
}

func (r *fakeCommitmentRepo) DeleteByIDs(_ context.Context, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, id := range ids {
		if _, ok := r.records[id]; ok {
			delete(r.records, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeCommitmentRepo) get(id string) *entity.Commitment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[id]
}

func (r *fakeCommitmentRepo) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

type fakeCompanyRepo struct {
	mu        sync.Mutex
	companies map[string]*entity.Company
	next      int
}

func newFakeCompanyRepo(companies ...*entity.Company) *fakeCompanyRepo {
	r := &fakeCompanyRepo{companies: make(map[string]*entity.Company)}
	for _, c := range companies {
		r.companies[c.ID] = c
	}
	return r
}

func (r *fakeCompanyRepo) Create(_ context.Context, company *entity.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	company.ID = fmt.Sprintf("co-new-%d", r.next)
	cp := *company
	r.companies[company.ID] = &cp
	return nil
}

func (r *fakeCompanyRepo) FindAll(context.Context) ([]*entity.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entity.Company, 0, len(r.companies))
	for _, c := range r.companies {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeCompanyRepo) FindByID(_ context.Context, id string) (*entity.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.companies[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCompanyRepo) FindByNIT(_ context.Context, nit string) (*entity.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.companies {
		if c.NIT == nit {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCompanyRepo) Save(_ context.Context, company *entity.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *company
	r.companies[company.ID] = &cp
	return nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments []*entity.Payment
	next     int
	failAll  bool
}

func (r *fakePaymentRepo) Create(_ context.Context, p *entity.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failAll {
		return errStoreDown
	}
	r.next++
	p.ID = fmt.Sprintf("p-%d", r.next)
	cp := *p
	r.payments = append(r.payments, &cp)
	return nil
}

func (r *fakePaymentRepo) FindAll(_ context.Context, commitmentID string) ([]*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entity.Payment, 0)
	for _, p := range r.payments {
		if commitmentID != "" && (p.CommitmentID == nil || *p.CommitmentID != commitmentID) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakePaymentRepo) FindByID(_ context.Context, id string) (*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.payments {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePaymentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.payments {
		if p.ID == id {
			r.payments = append(r.payments[:i], r.payments[i+1:]...)
			return nil
		}
	}
	return nil
}

// recorder collects broadcast events. Services dispatch asynchronously, so
// tests read it through require.Eventually.
type recorder struct {
	mu     sync.Mutex
	events []events.SocketEvent
}

func (r *recorder) Broadcast(_ context.Context, evt events.SocketEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *recorder) snapshot() []events.SocketEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.SocketEvent(nil), r.events...)
}

func newTestEngine(store recurring.Store) *recurring.Engine {
	n := 0
	var mu sync.Mutex
	return recurring.NewEngine(store,
		recurring.WithClock(func() time.Time { return fixedToday }),
		recurring.WithSeriesIDs(func() entity.SeriesID {
			mu.Lock()
			defer mu.Unlock()
			n++
			return entity.SeriesID(fmt.Sprintf("recurring_test_%d", n))
		}),
	)
}

// seedSeries stores a monthly group with count members starting at start.
// The first member is the origin.
func seedSeries(t *testing.T, repo *fakeCommitmentRepo, group entity.SeriesID, concept, start string, count int) []*entity.Commitment {
	t.Helper()

	first := date(t, start)
	out := make([]*entity.Commitment, count)
	var originID *string
	for i := range out {
		c := &entity.Commitment{
			Concept:        concept,
			CompanyID:      "co-1",
			CompanyName:    "DR Group",
			Beneficiary:    "Inmobiliaria Andes",
			Amount:         decimal.NewFromInt(1_000_000),
			Periodicity:    entity.PeriodicityMonthly,
			Status:         entity.StatusPending,
			PaymentMethod:  entity.PaymentMethodTransfer,
			IsRecurring:    true,
			RecurringGroup: group,
			InstanceNumber: i + 1,
			TotalInstances: count,
		}
		c.SetDueDate(recurring.AddMonths(first, i))
		if originID != nil {
			id := *originID
			c.ParentCommitmentID = &id
		}
		repo.seed(c)
		if i == 0 {
			id := c.ID
			originID = &id
		}
		out[i] = c
	}
	return out
}

func drGroup() *entity.Company {
	return &entity.Company{ID: "co-1", Name: "DR Group", NIT: "900123456-8", Active: true}
}
