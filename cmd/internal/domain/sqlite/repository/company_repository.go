package repository

import (
	"context"
	"errors"

	"drgroup/cmd/internal/domain/entity"
	"drgroup/cmd/internal/utils"
	"drgroup/cmd/internal/utils/uid"

	"gorm.io/gorm"
)

type DefaultCompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *DefaultCompanyRepository {
	return &DefaultCompanyRepository{db: db}
}

func (r *DefaultCompanyRepository) Create(ctx context.Context, company *entity.Company) error {
	now := utils.NowUTC()
	company.ID = uid.GenerateString()
	company.CreatedAt = now
	company.UpdatedAt = now
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *DefaultCompanyRepository) FindAll(ctx context.Context) ([]*entity.Company, error) {
	var companies []*entity.Company
	err := r.db.WithContext(ctx).Order("name ASC").Find(&companies).Error
	if err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *DefaultCompanyRepository) FindByID(ctx context.Context, id string) (*entity.Company, error) {
	var company entity.Company
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&company).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *DefaultCompanyRepository) FindByNIT(ctx context.Context, nit string) (*entity.Company, error) {
	var company entity.Company
	err := r.db.WithContext(ctx).Where("nit = ?", nit).First(&company).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *DefaultCompanyRepository) Save(ctx context.Context, company *entity.Company) error {
	company.UpdatedAt = utils.NowUTC()
	return r.db.WithContext(ctx).Save(company).Error
}
