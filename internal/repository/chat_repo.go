package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/govpilot/backend/internal/model"
)

// chatTurnRepository 会话轮次仓储实现
type chatTurnRepository struct {
	db *gorm.DB
}

// NewChatTurnRepository 创建会话轮次仓储
func NewChatTurnRepository(db *gorm.DB) ChatTurnRepository {
	return &chatTurnRepository{db: db}
}

func (r *chatTurnRepository) Create(ctx context.Context, turn *model.ChatTurn) error {
	return r.db.WithContext(ctx).Create(turn).Error
}

// ListByGovernanceID 按创建顺序返回某治理单的全部轮次
func (r *chatTurnRepository) ListByGovernanceID(ctx context.Context, governanceID string) ([]model.ChatTurn, error) {
	var turns []model.ChatTurn
	err := r.db.WithContext(ctx).
		Where("governance_id = ?", governanceID).
		Order("created_at ASC, id ASC").
		Find(&turns).Error
	if err != nil {
		return nil, err
	}
	return turns, nil
}

func (r *chatTurnRepository) ListBySessionID(ctx context.Context, sessionID string) ([]model.ChatTurn, error) {
	var turns []model.ChatTurn
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&turns).Error
	if err != nil {
		return nil, err
	}
	return turns, nil
}
