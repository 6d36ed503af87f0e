package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"drgroup/cmd/internal/contract"
	"drgroup/cmd/internal/domain/entity"
	"drgroup/cmd/internal/domain/events"
	"drgroup/cmd/internal/domain/recurring"
	"drgroup/cmd/internal/utils"
	"drgroup/cmd/internal/utils/apierror"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type DefaultSeriesService struct {
	CommitmentRepo CommitmentRepository
	CompanyRepo    CompanyRepository
	Engine         *recurring.Engine
	Events         EventBroadcaster
	Validate       *validator.Validate
}

func NewSeriesService(
	commitmentRepo CommitmentRepository,
	companyRepo CompanyRepository,
	engine *recurring.Engine,
	events EventBroadcaster,
	validate *validator.Validate,
) *DefaultSeriesService {
	return &DefaultSeriesService{
		CommitmentRepo: commitmentRepo,
		CompanyRepo:    companyRepo,
		Engine:         engine,
		Events:         events,
		Validate:       validate,
	}
}

// PreviewSeries runs the generator without storing anything.
func (s *DefaultSeriesService) PreviewSeries(ctx context.Context, req *contract.SeriesPreviewRequest) (*contract.SeriesPreviewResponse, apierror.ErrorResponse) {
	tpl, apierr := buildTemplate(ctx, s.CompanyRepo, s.Validate, nil, &req.CommitmentRequest)
	if apierr != nil {
		return nil, apierr
	}

	utils.Sanitize(req)
	if valerr := s.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	var horizon time.Time
	if req.Horizon != "" {
		parsed, err := utils.ParseDate(req.Horizon)
		if err != nil {
			return nil, apierror.InvalidDateError
		}
		horizon = parsed
	}

	seq, err := s.Engine.Generate(tpl, req.RecurringCount, req.SkipFirst, horizon)
	if err != nil {
		return nil, mapSeriesError(nil, err)
	}

	return &contract.SeriesPreviewResponse{
		Count:       len(seq),
		Commitments: toCommitmentResponses(seq, s.Engine.Today()),
	}, nil
}

func (s *DefaultSeriesService) GetPeriodicities() []*contract.PeriodicityResponse {
	resp := make([]*contract.PeriodicityResponse, len(entity.Periodicities))
	for i, p := range entity.Periodicities {
		months, _ := p.MonthStep()
		resp[i] = &contract.PeriodicityResponse{
			Value:       string(p),
			Description: p.Description(),
			Months:      months,
		}
	}
	return resp
}

// GetNextDates previews upcoming due dates. An empty start means today.
func (s *DefaultSeriesService) GetNextDates(periodicity, start string, count int) (*contract.NextDatesResponse, apierror.ErrorResponse) {
	p := entity.Periodicity(periodicity)
	if !p.Valid() {
		return nil, apierror.InvalidPeriodicityError
	}
	if count < 0 || count > contract.MaxRecurringCount {
		return nil, apierror.NewSimple(400, "Parameter 'count' must be between 1 and %d", contract.MaxRecurringCount)
	}

	from := s.Engine.Today()
	if start != "" {
		parsed, err := utils.ParseDate(start)
		if err != nil {
			return nil, apierror.InvalidDateError
		}
		from = parsed
	}

	dates := recurring.NextDueDates(from, p, count)
	resp := &contract.NextDatesResponse{
		Periodicity: string(p),
		Description: p.Description(),
		Dates:       make([]string, len(dates)),
	}
	for i, d := range dates {
		resp.Dates[i] = utils.FormatDate(d)
	}
	return resp, nil
}

// CheckExtensions reports the recurring groups running out within the
// lookahead window. Zero means the default window; negative flags every group.
func (s *DefaultSeriesService) CheckExtensions(ctx context.Context, lookaheadMonths int) (*contract.ExtensionCheckResponse, apierror.ErrorResponse) {
	report, apierr := s.detect(ctx, lookaheadMonths)
	if apierr != nil {
		return nil, apierr
	}

	resp := &contract.ExtensionCheckResponse{
		TotalGroups:    report.Total,
		NeedsExtension: report.NeedsExtension,
		LookaheadMonth: lookaheadMonths,
		Groups:         make([]*contract.GroupSummaryResponse, len(report.Groups)),
	}
	for i, g := range report.Groups {
		resp.Groups[i] = toGroupSummaryResponse(g)
	}
	return resp, nil
}

// ExtendSeries appends the next batch to every selected group. Groups are
// handled independently: one failing never stops the others.
func (s *DefaultSeriesService) ExtendSeries(ctx context.Context, actor *utils.Actor, req *contract.ExtendSeriesRequest) (*contract.ExtendSeriesResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if len(req.GroupIDs) == 0 {
		return nil, apierror.NoGroupsSelectedError
	}
	if valerr := s.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	targetYear := req.TargetYear
	if targetYear == 0 {
		targetYear = s.Engine.Today().Year() + 1
	}

	report, apierr := s.detect(ctx, recurring.ForceExtension)
	if apierr != nil {
		return nil, apierr
	}

	byID := make(map[entity.SeriesID]*recurring.GroupSummary, len(report.Groups))
	for _, g := range report.Groups {
		byID[g.GroupID] = g
	}

	resp := &contract.ExtendSeriesResponse{
		TargetYear: targetYear,
		Results:    make([]*contract.ExtensionResult, 0, len(req.GroupIDs)),
	}
	for _, id := range req.GroupIDs {
		result := s.extendGroup(ctx, actor, byID[entity.SeriesID(id)], id, req, targetYear)
		if result.Success {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
		resp.Results = append(resp.Results, result)
	}

	log.Infof("series extension to %d: %d succeeded, %d failed", targetYear, resp.Succeeded, resp.Failed)
	if resp.Succeeded > 0 || hasPartial(resp.Results) {
		go s.dispatch(&events.SeriesExtended{ExtendSeriesResponse: resp})
	}
	return resp, nil
}

func (s *DefaultSeriesService) extendGroup(
	ctx context.Context,
	actor *utils.Actor,
	g *recurring.GroupSummary,
	id string,
	req *contract.ExtendSeriesRequest,
	targetYear int,
) *contract.ExtensionResult {
	result := &contract.ExtensionResult{GroupID: id}
	if g == nil {
		result.Error = "recurring group not found"
		return result
	}
	result.Concept = g.Concept

	origin := seriesOrigin(g)
	if origin == nil {
		result.Error = "recurring group has no origin record"
		return result
	}

	g.Amount = recurring.AdjustAmount(g.Amount, req.AdjustmentPercentage)
	if !g.Amount.IsPositive() {
		result.Error = "adjusted amount must be greater than zero"
		return result
	}
	seq, err := s.Engine.GenerateExtension(g, req.ExtensionCount, targetYear)
	if err != nil {
		result.Error = describeSeriesError(err)
		return result
	}

	if actor != nil {
		for _, inst := range seq {
			inst.CreatedBy = actor.Label()
			inst.UpdatedBy = actor.Label()
		}
	}

	res, err := s.Engine.PersistFollowing(ctx, origin, seq)
	if res != nil {
		result.Count = res.Count()
		result.IDs = res.IDs
	}
	if err != nil {
		var perr *recurring.PersistError
		result.Partial = errors.As(err, &perr) && perr.Written > 0
		result.Error = describeSeriesError(err)
		log.Errorf("failed to extend series %s: %v", id, err)
		return result
	}

	result.Success = true
	return result
}

func (s *DefaultSeriesService) detect(ctx context.Context, lookaheadMonths int) (*recurring.ExtensionReport, apierror.ErrorResponse) {
	commitments, err := s.CommitmentRepo.FindRecurring(ctx)
	if err != nil {
		log.Errorf("failed to fetch recurring commitments: %v", err)
		return nil, apierror.InternalServerError
	}
	return s.Engine.CheckForExtension(commitments, lookaheadMonths), nil
}

func (s *DefaultSeriesService) dispatch(evt events.SocketEvent) {
	if s.Events == nil {
		return
	}
	s.Events.Broadcast(context.Background(), evt)
}

// seriesOrigin finds the member every other instance points at.
func seriesOrigin(g *recurring.GroupSummary) *entity.Commitment {
	for _, m := range g.Members {
		if m.IsSeriesOrigin() {
			return m
		}
	}
	return nil
}

func describeSeriesError(err error) string {
	var perr *recurring.PersistError
	switch {
	case errors.As(err, &perr):
		return fmt.Sprintf("only %d of %d records were saved", perr.Written, perr.Intended)
	case errors.Is(err, recurring.ErrEmptyGeneration):
		return "no instance falls within the target year"
	case errors.Is(err, recurring.ErrOrphanRisk):
		return "group has no company name"
	default:
		return err.Error()
	}
}

func hasPartial(results []*contract.ExtensionResult) bool {
	for _, r := range results {
		if r.Partial {
			return true
		}
	}
	return false
}
