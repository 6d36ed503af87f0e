package repository

import (
	"context"
	"errors"

	"drgroup/cmd/internal/domain/entity"
	"drgroup/cmd/internal/utils"
	"drgroup/cmd/internal/utils/uid"

	"gorm.io/gorm"
)

type DefaultPaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *DefaultPaymentRepository {
	return &DefaultPaymentRepository{db: db}
}

func (r *DefaultPaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	payment.ID = uid.GenerateString()
	payment.CreatedAt = utils.NowUTC()
	return r.db.WithContext(ctx).Create(payment).Error
}

// FindAll lists payments, newest first. An empty commitmentID lists them all.
func (r *DefaultPaymentRepository) FindAll(ctx context.Context, commitmentID string) ([]*entity.Payment, error) {
	query := r.db.WithContext(ctx).Model(&entity.Payment{})
	if commitmentID != "" {
		query = query.Where("commitment_id = ?", commitmentID)
	}

	var payments []*entity.Payment
	if err := query.Order("paid_at DESC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *DefaultPaymentRepository) FindByID(ctx context.Context, id string) (*entity.Payment, error) {
	var payment entity.Payment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *DefaultPaymentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&entity.Payment{}).Error
}
