package repository

import (
	"context"
	"errors"

	"drgroup/cmd/internal/domain/entity"
	"drgroup/cmd/internal/utils"
	"drgroup/cmd/internal/utils/uid"

	"gorm.io/gorm"
)

type DefaultCommitmentRepository struct {
	db *gorm.DB
}

func NewCommitmentRepository(db *gorm.DB) *DefaultCommitmentRepository {
	return &DefaultCommitmentRepository{db: db}
}

// Create inserts the commitment under a fresh snowflake id and returns it.
func (r *DefaultCommitmentRepository) Create(ctx context.Context, commitment *entity.Commitment) (string, error) {
	now := utils.NowUTC()
	commitment.ID = uid.GenerateString()
	if commitment.CreatedAt == 0 {
		commitment.CreatedAt = now
	}
	commitment.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(commitment).Error; err != nil {
		commitment.ID = ""
		return "", err
	}
	return commitment.ID, nil
}

func (r *DefaultCommitmentRepository) FindAll(ctx context.Context, filter *entity.CommitmentFilter) ([]*entity.Commitment, error) {
	query := r.db.WithContext(ctx).Model(&entity.Commitment{})
	if filter != nil {
		if filter.CompanyID != "" {
			query = query.Where("company_id = ?", filter.CompanyID)
		}
		if !filter.Group.IsZero() {
			query = query.Where("recurring_group = ?", filter.Group)
		}
		if filter.Year > 0 {
			query = query.Where("year = ?", filter.Year)
		}
		if filter.Month > 0 {
			query = query.Where("month = ?", filter.Month)
		}
		if filter.RecurringOnly {
			query = query.Where("is_recurring = ? AND recurring_group <> ''", true)
		}
	}

	var commitments []*entity.Commitment
	err := query.Order("due_date ASC").Order("instance_number ASC").Find(&commitments).Error
	if err != nil {
		return nil, err
	}
	return commitments, nil
}

func (r *DefaultCommitmentRepository) FindByID(ctx context.Context, id string) (*entity.Commitment, error) {
	var commitment entity.Commitment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&commitment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &commitment, nil
}

func (r *DefaultCommitmentRepository) FindByGroup(ctx context.Context, group entity.SeriesID) ([]*entity.Commitment, error) {
	return r.FindAll(ctx, &entity.CommitmentFilter{Group: group})
}

func (r *DefaultCommitmentRepository) FindRecurring(ctx context.Context) ([]*entity.Commitment, error) {
	return r.FindAll(ctx, &entity.CommitmentFilter{RecurringOnly: true})
}

func (r *DefaultCommitmentRepository) Save(ctx context.Context, commitment *entity.Commitment) error {
	commitment.UpdatedAt = utils.NowUTC()
	return r.db.WithContext(ctx).Save(commitment).Error
}

func (r *DefaultCommitmentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&entity.Commitment{}).Error
}

// DeleteByIDs removes every listed commitment and reports how many rows went.
func (r *DefaultCommitmentRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&entity.Commitment{})
	return result.RowsAffected, result.Error
}
