package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/govpilot/backend/internal/model"
)

// governanceRepository 治理申请仓储实现
type governanceRepository struct {
	db *gorm.DB
}

// NewGovernanceRepository 创建治理申请仓储
func NewGovernanceRepository(db *gorm.DB) GovernanceRepository {
	return &governanceRepository{db: db}
}

func (r *governanceRepository) Create(ctx context.Context, gc *model.GovernanceCase) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.GovernanceCase{}).
		Where("governance_id = ?", gc.GovernanceID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrAlreadyExists
	}
	return r.db.WithContext(ctx).Create(gc).Error
}

func (r *governanceRepository) GetByGovernanceID(ctx context.Context, governanceID string) (*model.GovernanceCase, error) {
	var gc model.GovernanceCase
	err := r.db.WithContext(ctx).Where("governance_id = ?", governanceID).First(&gc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &gc, nil
}

func (r *governanceRepository) List(ctx context.Context) ([]model.GovernanceCase, error) {
	var cases []model.GovernanceCase
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&cases).Error
	return cases, err
}

// Search 只按 governance_id 子串过滤
func (r *governanceRepository) Search(ctx context.Context, term string) ([]model.GovernanceCase, error) {
	var cases []model.GovernanceCase
	err := r.db.WithContext(ctx).
		Where("governance_id LIKE ?", "%"+term+"%").
		Order("created_at DESC").
		Find(&cases).Error
	return cases, err
}

func (r *governanceRepository) Save(ctx context.Context, gc *model.GovernanceCase) error {
	return r.db.WithContext(ctx).Save(gc).Error
}
