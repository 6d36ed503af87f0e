package service

import (
	"context"

	"drgroup/cmd/internal/contract"
	"drgroup/cmd/internal/domain/entity"
	"drgroup/cmd/internal/utils"
	"drgroup/cmd/internal/utils/apierror"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	FindAll(ctx context.Context) ([]*entity.Company, error)
	FindByID(ctx context.Context, id string) (*entity.Company, error)
	FindByNIT(ctx context.Context, nit string) (*entity.Company, error)
	Save(ctx context.Context, company *entity.Company) error
}

type DefaultCompanyService struct {
	CompanyRepo    CompanyRepository
	CommitmentRepo CommitmentRepository
	Validate       *validator.Validate
}

func NewCompanyService(
	companyRepo CompanyRepository,
	commitmentRepo CommitmentRepository,
	validate *validator.Validate,
) *DefaultCompanyService {
	return &DefaultCompanyService{
		CompanyRepo:    companyRepo,
		CommitmentRepo: commitmentRepo,
		Validate:       validate,
	}
}

func (s *DefaultCompanyService) CreateCompany(ctx context.Context, req *contract.CompanyRequest) (*contract.CompanyResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if valerr := s.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	nit := utils.NormalizeNIT(req.NIT)
	existing, err := s.CompanyRepo.FindByNIT(ctx, nit)
	if err != nil {
		log.Errorf("failed to look up company by NIT: %v", err)
		return nil, apierror.InternalServerError
	}

	if existing != nil {
		return nil, apierror.DuplicateNITError
	}

	company := &entity.Company{
		Name:   req.Name,
		NIT:    nit,
		Active: true,
	}
	if err = s.CompanyRepo.Create(ctx, company); err != nil {
		log.Errorf("failed to create company: %v", err)
		return nil, apierror.InternalServerError
	}
	return toCompanyResponse(company), nil
}

func (s *DefaultCompanyService) GetAllCompanies(ctx context.Context) ([]*contract.CompanyResponse, apierror.ErrorResponse) {
	companies, err := s.CompanyRepo.FindAll(ctx)
	if err != nil {
		log.Errorf("failed to fetch companies: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*contract.CompanyResponse, len(companies))
	for i, company := range companies {
		resp[i] = toCompanyResponse(company)
	}
	return resp, nil
}

func (s *DefaultCompanyService) GetCompanyByID(ctx context.Context, id string) (*contract.CompanyResponse, apierror.ErrorResponse) {
	company, err := s.CompanyRepo.FindByID(ctx, id)
	if err != nil {
		log.Errorf("failed to fetch company: %v", err)
		return nil, apierror.InternalServerError
	}

	if company == nil {
		return nil, apierror.CompanyNotFoundError
	}
	return toCompanyResponse(company), nil
}

// UpdateCompany patches a company. A rename is copied into every commitment
// of the company, since they keep a denormalized name.
func (s *DefaultCompanyService) UpdateCompany(ctx context.Context, id string, req *contract.UpdateCompanyRequest) (*contract.CompanyResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if valerr := s.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	company, err := s.CompanyRepo.FindByID(ctx, id)
	if err != nil {
		log.Errorf("failed to fetch company: %v", err)
		return nil, apierror.InternalServerError
	}

	if company == nil {
		return nil, apierror.CompanyNotFoundError
	}

	renamed := req.Name != nil && *req.Name != company.Name
	if req.Name != nil {
		company.Name = *req.Name
	}
	if req.Active != nil {
		company.Active = *req.Active
	}

	if err = s.CompanyRepo.Save(ctx, company); err != nil {
		log.Errorf("failed to update company: %v", err)
		return nil, apierror.InternalServerError
	}

	if renamed {
		s.propagateName(ctx, company)
	}
	return toCompanyResponse(company), nil
}

func (s *DefaultCompanyService) propagateName(ctx context.Context, company *entity.Company) {
	commitments, err := s.CommitmentRepo.FindAll(ctx, &entity.CommitmentFilter{CompanyID: company.ID})
	if err != nil {
		log.Errorf("failed to fetch commitments of company %s: %v", company.ID, err)
		return
	}

	updated := 0
	for _, c := range commitments {
		if c.CompanyName == company.Name {
			continue
		}
		c.CompanyName = company.Name
		if err = s.CommitmentRepo.Save(ctx, c); err != nil {
			log.Errorf("failed to rename company on commitment %s: %v", c.ID, err)
			continue
		}
		updated++
	}
	log.Infof("company %s renamed, %d commitments updated", company.ID, updated)
}
