package service

import (
	"context"
	"errors"
	"time"

	"drgroup/cmd/internal/contract"
	"drgroup/cmd/internal/domain/entity"
	"drgroup/cmd/internal/domain/events"
	"drgroup/cmd/internal/domain/policy"
	"drgroup/cmd/internal/domain/recurring"
	"drgroup/cmd/internal/utils"
	"drgroup/cmd/internal/utils/apierror"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type CommitmentRepository interface {
	Create(ctx context.Context, commitment *entity.Commitment) (string, error)
	FindAll(ctx context.Context, filter *entity.CommitmentFilter) ([]*entity.Commitment, error)
	FindByID(ctx context.Context, id string) (*entity.Commitment, error)
	FindByGroup(ctx context.Context, group entity.SeriesID) ([]*entity.Commitment, error)
	FindRecurring(ctx context.Context) ([]*entity.Commitment, error)
	Save(ctx context.Context, commitment *entity.Commitment) error
	Delete(ctx context.Context, id string) error
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

type DefaultCommitmentService struct {
	CommitmentRepo CommitmentRepository
	CompanyRepo    CompanyRepository
	PaymentRepo    PaymentRepository
	Engine         *recurring.Engine
	Policy         *policy.IntegrityPolicy
	Events         EventBroadcaster
	Validate       *validator.Validate
}

func NewCommitmentService(
	commitmentRepo CommitmentRepository,
	companyRepo CompanyRepository,
	paymentRepo PaymentRepository,
	engine *recurring.Engine,
	events EventBroadcaster,
	validate *validator.Validate,
) *DefaultCommitmentService {
	return &DefaultCommitmentService{
		CommitmentRepo: commitmentRepo,
		CompanyRepo:    companyRepo,
		PaymentRepo:    paymentRepo,
		Engine:         engine,
		Policy:         policy.NewIntegrityPolicy(),
		Events:         events,
		Validate:       validate,
	}
}

// CreateCommitment stores a one-off commitment, or generates and stores a
// whole series when the periodicity is recurring.
func (s *DefaultCommitmentService) CreateCommitment(ctx context.Context, actor *utils.Actor, req *contract.CommitmentRequest) (*contract.CommitmentBatchResponse, apierror.ErrorResponse) {
	tpl, apierr := buildTemplate(ctx, s.CompanyRepo, s.Validate, actor, req)
	if apierr != nil {
		return nil, apierr
	}

	if apierr = s.Policy.CanPersist(tpl); apierr != nil {
		return nil, apierr
	}

	today := s.Engine.Today()
	if tpl.Periodicity == entity.PeriodicityUnique {
		if _, err := s.CommitmentRepo.Create(ctx, tpl); err != nil {
			log.Errorf("failed to create commitment: %v", err)
			return nil, apierror.InternalServerError
		}

		resp := &contract.CommitmentBatchResponse{
			Count:       1,
			Commitments: []*contract.CommitmentResponse{toCommitmentResponse(tpl, today)},
		}
		go s.dispatch(&events.SeriesCreated{CommitmentBatchResponse: resp})
		return resp, nil
	}

	seq, err := s.Engine.Generate(tpl, req.RecurringCount, false, time.Time{})
	if err != nil {
		return nil, mapSeriesError(nil, err)
	}

	res, err := s.Engine.Persist(ctx, seq)
	if err != nil {
		if res != nil && res.Count() > 0 {
			go s.dispatch(&events.SeriesCreated{CommitmentBatchResponse: batchResponse(res, today)})
		}
		return nil, mapSeriesError(res, err)
	}

	log.Infof("series %s created with %d commitments", res.GroupID, res.Count())
	resp := batchResponse(res, today)
	go s.dispatch(&events.SeriesCreated{CommitmentBatchResponse: resp})
	return resp, nil
}

func (s *DefaultCommitmentService) GetAllCommitments(ctx context.Context, query *contract.CommitmentQuery) ([]*contract.CommitmentResponse, apierror.ErrorResponse) {
	utils.Sanitize(query)
	if valerr := s.Validate.Struct(query); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	commitments, err := s.CommitmentRepo.FindAll(ctx, &entity.CommitmentFilter{
		CompanyID: query.CompanyID,
		Group:     entity.SeriesID(query.Group),
		Year:      query.Year,
		Month:     query.Month,
	})
	if err != nil {
		log.Errorf("failed to fetch commitments: %v", err)
		return nil, apierror.InternalServerError
	}

	// Overdue is derived on read, so status filtering happens here.
	today := s.Engine.Today()
	resp := make([]*contract.CommitmentResponse, 0, len(commitments))
	for _, c := range commitments {
		if query.Status != "" && string(c.EffectiveStatus(today)) != query.Status {
			continue
		}
		resp = append(resp, toCommitmentResponse(c, today))
	}
	return resp, nil
}

func (s *DefaultCommitmentService) GetCommitmentByID(ctx context.Context, id string) (*contract.CommitmentResponse, apierror.ErrorResponse) {
	commitment, apierr := s.findCommitment(ctx, id)
	if apierr != nil {
		return nil, apierr
	}
	return toCommitmentResponse(commitment, s.Engine.Today()), nil
}

// UpdateCommitment patches a commitment. A periodicity change reshapes its
// recurring group, always matching siblings by group id only.
func (s *DefaultCommitmentService) UpdateCommitment(ctx context.Context, actor *utils.Actor, id string, req *contract.UpdateCommitmentRequest) (*contract.CommitmentBatchResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if valerr := s.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}
	if req.Amount != nil && !req.Amount.IsPositive() {
		return nil, apierror.InvalidAmountError
	}

	commitment, apierr := s.findCommitment(ctx, id)
	if apierr != nil {
		return nil, apierr
	}

	oldPeriodicity := commitment.Periodicity
	if apierr = s.applyPatch(ctx, commitment, req); apierr != nil {
		return nil, apierr
	}
	commitment.UpdatedBy = actor.Label()

	if apierr = s.Policy.CanPersist(commitment); apierr != nil {
		return nil, apierr
	}

	newPeriodicity := oldPeriodicity
	if req.Periodicity != nil {
		newPeriodicity = entity.Periodicity(*req.Periodicity)
	}

	count := 0
	if req.RecurringCount != nil {
		count = *req.RecurringCount
	}

	var resp *contract.CommitmentBatchResponse
	switch {
	case newPeriodicity == oldPeriodicity:
		resp, apierr = s.saveOne(ctx, commitment)
	case oldPeriodicity == entity.PeriodicityUnique:
		resp, apierr = s.startSeries(ctx, commitment, newPeriodicity, count)
	case newPeriodicity == entity.PeriodicityUnique:
		resp, apierr = s.endSeries(ctx, commitment)
	default:
		resp, apierr = s.reshapeSeries(ctx, commitment, newPeriodicity, count)
	}
	if apierr != nil {
		return nil, apierr
	}

	for _, updated := range resp.Commitments {
		go s.dispatch(&events.CommitmentUpdated{CommitmentResponse: updated})
	}
	return resp, nil
}

// DeleteCommitment removes a commitment. With cascade, every member of its
// recurring group goes too.
func (s *DefaultCommitmentService) DeleteCommitment(ctx context.Context, id string, cascade bool) (*contract.CommitmentBatchResponse, apierror.ErrorResponse) {
	commitment, apierr := s.findCommitment(ctx, id)
	if apierr != nil {
		return nil, apierr
	}

	ids := []string{commitment.ID}
	if cascade && !commitment.RecurringGroup.IsZero() {
		members, err := s.CommitmentRepo.FindByGroup(ctx, commitment.RecurringGroup)
		if err != nil {
			log.Errorf("failed to fetch group %s: %v", commitment.RecurringGroup, err)
			return nil, apierror.InternalServerError
		}
		ids = memberIDs(members, commitment.ID)
		ids = append(ids, commitment.ID)
	}

	deleted, err := s.CommitmentRepo.DeleteByIDs(ctx, ids)
	if err != nil {
		log.Errorf("failed to delete commitments (%d of %d removed): %v", deleted, len(ids), err)
		return nil, apierror.InternalServerError
	}

	go s.dispatch(&events.CommitmentsDeleted{IDs: ids, GroupID: commitment.RecurringGroup.String()})
	return &contract.CommitmentBatchResponse{
		GroupID:     commitment.RecurringGroup.String(),
		Deleted:     deleted,
		Commitments: []*contract.CommitmentResponse{},
	}, nil
}

// AuditCommitments reports structural problems without changing anything.
func (s *DefaultCommitmentService) AuditCommitments(ctx context.Context) (*contract.AuditResponse, apierror.ErrorResponse) {
	commitments, err := s.CommitmentRepo.FindAll(ctx, nil)
	if err != nil {
		log.Errorf("failed to fetch commitments for audit: %v", err)
		return nil, apierror.InternalServerError
	}

	companies, err := s.CompanyRepo.FindAll(ctx)
	if err != nil {
		log.Errorf("failed to fetch companies for audit: %v", err)
		return nil, apierror.InternalServerError
	}

	payments, err := s.PaymentRepo.FindAll(ctx, "")
	if err != nil {
		log.Errorf("failed to fetch payments for audit: %v", err)
		return nil, apierror.InternalServerError
	}

	paid := make(map[string]bool, len(payments))
	for _, p := range payments {
		if p.CommitmentID != nil {
			paid[*p.CommitmentID] = true
		}
	}

	report := s.Policy.Audit(&policy.AuditInput{
		Commitments:       commitments,
		Companies:         companies,
		PaidCommitmentIDs: paid,
	})

	resp := &contract.AuditResponse{
		Checked: report.Checked,
		Healthy: report.Healthy(),
		Counts:  make(map[string]int),
		Issues:  make([]*contract.AuditIssueResponse, len(report.Issues)),
	}
	for rule, n := range report.Counts() {
		resp.Counts[string(rule)] = n
	}
	for i, issue := range report.Issues {
		resp.Issues[i] = &contract.AuditIssueResponse{
			Rule:         string(issue.Rule),
			CommitmentID: issue.CommitmentID,
			GroupID:      issue.GroupID.String(),
			Detail:       issue.Detail,
		}
	}

	if !report.Healthy() {
		log.Warnf("commitment audit found %d issues across %d records", len(report.Issues), report.Checked)
	}
	return resp, nil
}

// buildTemplate validates a create request and turns it into the template
// of a commitment or series.
func buildTemplate(ctx context.Context, companies CompanyRepository, validate *validator.Validate, actor *utils.Actor, req *contract.CommitmentRequest) (*entity.Commitment, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if valerr := validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}
	if !req.Amount.IsPositive() {
		return nil, apierror.InvalidAmountError
	}

	due, err := utils.ParseDate(req.DueDate)
	if err != nil {
		return nil, apierror.InvalidDateError
	}

	companyName, apierr := resolveCompanyName(ctx, companies, req.CompanyID, req.CompanyName)
	if apierr != nil {
		return nil, apierr
	}

	method := entity.PaymentMethod(req.PaymentMethod)
	if method == "" {
		method = entity.PaymentMethodTransfer
	}

	tpl := &entity.Commitment{
		Concept:       req.Concept,
		CompanyID:     req.CompanyID,
		CompanyName:   companyName,
		Beneficiary:   req.Beneficiary,
		Amount:        req.Amount,
		Periodicity:   entity.Periodicity(req.Periodicity),
		Status:        entity.StatusPending,
		PaymentMethod: method,
		Observations:  req.Observations,
	}
	if actor != nil {
		tpl.CreatedBy = actor.Label()
		tpl.UpdatedBy = actor.Label()
	}
	tpl.SetDueDate(recurring.DateOf(due))
	return tpl, nil
}

// resolveCompanyName prefers the company record and falls back to the name
// sent by the client. An empty result is left for the orphan checks.
func resolveCompanyName(ctx context.Context, companies CompanyRepository, companyID, fallback string) (string, apierror.ErrorResponse) {
	if companyID == "" {
		return fallback, nil
	}

	company, err := companies.FindByID(ctx, companyID)
	if err != nil {
		log.Errorf("failed to fetch company %s: %v", companyID, err)
		return "", apierror.InternalServerError
	}

	if company == nil || company.Name == "" {
		return fallback, nil
	}
	return company.Name, nil
}

func (s *DefaultCommitmentService) applyPatch(ctx context.Context, c *entity.Commitment, req *contract.UpdateCommitmentRequest) apierror.ErrorResponse {
	if req.Concept != nil {
		c.Concept = *req.Concept
	}
	if req.Beneficiary != nil {
		c.Beneficiary = *req.Beneficiary
	}
	if req.Amount != nil {
		c.Amount = *req.Amount
	}
	if req.Status != nil {
		c.Status = entity.Status(*req.Status)
	}
	if req.PaymentMethod != nil {
		c.PaymentMethod = entity.PaymentMethod(*req.PaymentMethod)
	}
	if req.Observations != nil {
		c.Observations = *req.Observations
	}

	if req.DueDate != nil {
		due, err := utils.ParseDate(*req.DueDate)
		if err != nil {
			return apierror.InvalidDateError
		}
		c.SetDueDate(recurring.DateOf(due))
	}

	if req.CompanyID != nil && *req.CompanyID != c.CompanyID {
		name, apierr := resolveCompanyName(ctx, s.CompanyRepo, *req.CompanyID, "")
		if apierr != nil {
			return apierr
		}
		c.CompanyID = *req.CompanyID
		c.CompanyName = name
	}
	return nil
}

func (s *DefaultCommitmentService) saveOne(ctx context.Context, c *entity.Commitment) (*contract.CommitmentBatchResponse, apierror.ErrorResponse) {
	if err := s.CommitmentRepo.Save(ctx, c); err != nil {
		log.Errorf("failed to update commitment: %v", err)
		return nil, apierror.InternalServerError
	}
	return &contract.CommitmentBatchResponse{
		GroupID:     c.RecurringGroup.String(),
		Count:       1,
		Commitments: []*contract.CommitmentResponse{toCommitmentResponse(c, s.Engine.Today())},
	}, nil
}

// startSeries turns a one-off commitment into the origin of a new group and
// generates the instances that follow it.
func (s *DefaultCommitmentService) startSeries(ctx context.Context, c *entity.Commitment, periodicity entity.Periodicity, count int) (*contract.CommitmentBatchResponse, apierror.ErrorResponse) {
	if count <= 0 {
		count = recurring.DefaultInstanceCount
	}

	c.Periodicity = periodicity
	seq, err := s.remainingInstances(c, count, s.editHorizon(c.DueDate))
	if err != nil && !errors.Is(err, recurring.ErrEmptyGeneration) {
		return nil, mapSeriesError(nil, err)
	}

	c.IsRecurring = true
	c.RecurringGroup = s.Engine.NewSeriesID()
	c.ParentCommitmentID = nil
	c.InstanceNumber = 1
	c.TotalInstances = count

	if err := s.CommitmentRepo.Save(ctx, c); err != nil {
		log.Errorf("failed to promote commitment %s to series origin: %v", c.ID, err)
		return nil, apierror.InternalServerError
	}
	return s.persistFollowing(ctx, c, c, seq)
}

// endSeries turns a recurring commitment back into a one-off. Every other
// member of its group is deleted.
func (s *DefaultCommitmentService) endSeries(ctx context.Context, c *entity.Commitment) (*contract.CommitmentBatchResponse, apierror.ErrorResponse) {
	group := c.RecurringGroup

	var deleted int64
	if !group.IsZero() {
		members, err := s.CommitmentRepo.FindByGroup(ctx, group)
		if err != nil {
			log.Errorf("failed to fetch group %s: %v", group, err)
			return nil, apierror.InternalServerError
		}

		siblings := memberIDs(members, c.ID)
		deleted, err = s.CommitmentRepo.DeleteByIDs(ctx, siblings)
		if err != nil {
			log.Errorf("failed to delete siblings of %s (%d of %d removed): %v", c.ID, deleted, len(siblings), err)
			return nil, apierror.InternalServerError
		}
		if len(siblings) > 0 {
			go s.dispatch(&events.CommitmentsDeleted{IDs: siblings, GroupID: group.String()})
		}
	}

	c.Periodicity = entity.PeriodicityUnique
	c.ClearSeries()

	resp, apierr := s.saveOne(ctx, c)
	if apierr != nil {
		return nil, apierr
	}
	resp.Deleted = deleted
	return resp, nil
}

// reshapeSeries switches a group to another recurring periodicity: members
// due after the edited record are replaced by freshly generated ones.
func (s *DefaultCommitmentService) reshapeSeries(ctx context.Context, c *entity.Commitment, periodicity entity.Periodicity, count int) (*contract.CommitmentBatchResponse, apierror.ErrorResponse) {
	if c.RecurringGroup.IsZero() {
		return nil, apierror.NotRecurringError
	}
	if count <= 0 {
		count = recurring.DefaultInstanceCount
	}

	members, err := s.CommitmentRepo.FindByGroup(ctx, c.RecurringGroup)
	if err != nil {
		log.Errorf("failed to fetch group %s: %v", c.RecurringGroup, err)
		return nil, apierror.InternalServerError
	}

	horizon := s.editHorizon(c.DueDate)
	for _, m := range members {
		if m.DueDate.After(horizon) {
			horizon = recurring.EndOfYear(m.DueDate.Year())
		}
	}

	c.Periodicity = periodicity
	seq, err := s.remainingInstances(c, count, horizon)
	if err != nil {
		// Later members are only replaced when something replaces them
		if errors.Is(err, recurring.ErrEmptyGeneration) && !hasLaterMember(members, c) {
			seq = nil
		} else {
			return nil, mapSeriesError(nil, err)
		}
	}

	origin := c
	later := make([]string, 0)
	for _, m := range members {
		if m.ID == c.ID {
			continue
		}
		if m.IsSeriesOrigin() {
			origin = m
		}
		if m.DueDate.After(c.DueDate) {
			later = append(later, m.ID)
		}
	}
	// The edited record was the origin if nothing else claims it
	if origin.ID != c.ID && containsID(later, origin.ID) {
		origin = c
		c.ParentCommitmentID = nil
	}

	deleted, err := s.CommitmentRepo.DeleteByIDs(ctx, later)
	if err != nil {
		log.Errorf("failed to delete later members of %s (%d of %d removed): %v", c.RecurringGroup, deleted, len(later), err)
		return nil, apierror.InternalServerError
	}
	if len(later) > 0 {
		go s.dispatch(&events.CommitmentsDeleted{IDs: later, GroupID: c.RecurringGroup.String()})
	}

	c.TotalInstances = count
	if err = s.CommitmentRepo.Save(ctx, c); err != nil {
		log.Errorf("failed to update commitment: %v", err)
		return nil, apierror.InternalServerError
	}

	resp, apierr := s.persistFollowing(ctx, origin, c, seq)
	if apierr != nil {
		return nil, apierr
	}
	resp.Deleted = deleted
	return resp, nil
}

// remainingInstances generates what follows c under its current periodicity,
// up to horizon. Generated concepts restart from the series name, so an
// instance label is never stacked on another.
func (s *DefaultCommitmentService) remainingInstances(c *entity.Commitment, count int, horizon time.Time) ([]*entity.Commitment, error) {
	if count <= 1 {
		return nil, nil
	}

	tpl := c.Clone()
	tpl.Status = entity.StatusPending
	tpl.Concept = recurring.StripMonthLabel(c.Concept)

	seq, err := s.Engine.Generate(tpl, count-1, true, horizon)
	if err != nil {
		return nil, err
	}

	for _, inst := range seq {
		inst.TotalInstances = count
	}
	return seq, nil
}

// editHorizon bounds regeneration on edits: December 31 of the edited
// record's year, never earlier than the current year.
func (s *DefaultCommitmentService) editHorizon(due time.Time) time.Time {
	year := s.Engine.Today().Year()
	if due.Year() > year {
		year = due.Year()
	}
	return recurring.EndOfYear(year)
}

func hasLaterMember(members []*entity.Commitment, c *entity.Commitment) bool {
	for _, m := range members {
		if m.ID != c.ID && m.DueDate.After(c.DueDate) {
			return true
		}
	}
	return false
}

func (s *DefaultCommitmentService) persistFollowing(ctx context.Context, origin, edited *entity.Commitment, seq []*entity.Commitment) (*contract.CommitmentBatchResponse, apierror.ErrorResponse) {
	today := s.Engine.Today()
	resp := &contract.CommitmentBatchResponse{
		GroupID:     edited.RecurringGroup.String(),
		Count:       1,
		Commitments: []*contract.CommitmentResponse{toCommitmentResponse(edited, today)},
	}
	if len(seq) == 0 {
		return resp, nil
	}

	res, err := s.Engine.PersistFollowing(ctx, origin, seq)
	if err != nil {
		return nil, mapSeriesError(res, err)
	}

	resp.Count += res.Count()
	resp.Commitments = append(resp.Commitments, toCommitmentResponses(res.Records, today)...)
	return resp, nil
}

func (s *DefaultCommitmentService) findCommitment(ctx context.Context, id string) (*entity.Commitment, apierror.ErrorResponse) {
	commitment, err := s.CommitmentRepo.FindByID(ctx, id)
	if err != nil {
		log.Errorf("failed to fetch commitment: %v", err)
		return nil, apierror.InternalServerError
	}

	if commitment == nil {
		return nil, apierror.NotFoundError
	}
	return commitment, nil
}

func (s *DefaultCommitmentService) dispatch(evt events.SocketEvent) {
	if s.Events == nil {
		return
	}
	s.Events.Broadcast(context.Background(), evt)
}

func batchResponse(res *recurring.PersistResult, today time.Time) *contract.CommitmentBatchResponse {
	return &contract.CommitmentBatchResponse{
		GroupID:     res.GroupID.String(),
		Count:       res.Count(),
		Commitments: toCommitmentResponses(res.Records, today),
	}
}

// memberIDs lists the ids of members other than except.
func memberIDs(members []*entity.Commitment, except string) []string {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		if m.ID != except {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
