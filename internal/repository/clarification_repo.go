package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/govpilot/backend/internal/model"
)

// clarificationRepository 澄清集合仓储实现
type clarificationRepository struct {
	db *gorm.DB
}

// NewClarificationRepository 创建澄清集合仓储
func NewClarificationRepository(db *gorm.DB) ClarificationRepository {
	return &clarificationRepository{db: db}
}

// Create 建档一次性完成，同一 governance_id + kind 重复创建返回 ErrAlreadyExists
func (r *clarificationRepository) Create(ctx context.Context, cs *model.ClarificationSet) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.ClarificationSet{}).
		Where("governance_id = ? AND kind = ?", cs.GovernanceID, cs.Kind).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrAlreadyExists
	}
	return r.db.WithContext(ctx).Create(cs).Error
}

func (r *clarificationRepository) GetByGovernanceIDAndKind(ctx context.Context, governanceID, kind string) (*model.ClarificationSet, error) {
	var cs model.ClarificationSet
	err := r.db.WithContext(ctx).
		Where("governance_id = ? AND kind = ?", governanceID, kind).
		First(&cs).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cs, nil
}

func (r *clarificationRepository) Save(ctx context.Context, cs *model.ClarificationSet) error {
	return r.db.WithContext(ctx).Save(cs).Error
}
