package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/govpilot/backend/internal/model"
)

// riskAnalysisRepository 风险评估仓储实现
type riskAnalysisRepository struct {
	db *gorm.DB
}

// NewRiskAnalysisRepository 创建风险评估仓储
func NewRiskAnalysisRepository(db *gorm.DB) RiskAnalysisRepository {
	return &riskAnalysisRepository{db: db}
}

func (r *riskAnalysisRepository) Create(ctx context.Context, ra *model.RiskAnalysis) error {
	return r.db.WithContext(ctx).Create(ra).Error
}

func (r *riskAnalysisRepository) GetByRiskAnalysisID(ctx context.Context, riskAnalysisID string) (*model.RiskAnalysis, error) {
	var ra model.RiskAnalysis
	err := r.db.WithContext(ctx).Where("risk_analysis_id = ?", riskAnalysisID).First(&ra).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ra, nil
}

func (r *riskAnalysisRepository) GetLatestByGovernanceID(ctx context.Context, governanceID string) (*model.RiskAnalysis, error) {
	var ra model.RiskAnalysis
	err := r.db.WithContext(ctx).
		Where("governance_id = ?", governanceID).
		Order("created_at DESC, id DESC").
		First(&ra).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ra, nil
}

func (r *riskAnalysisRepository) ListByGovernanceID(ctx context.Context, governanceID string) ([]model.RiskAnalysis, error) {
	var analyses []model.RiskAnalysis
	err := r.db.WithContext(ctx).
		Where("governance_id = ?", governanceID).
		Order("created_at ASC").
		Find(&analyses).Error
	return analyses, err
}

func (r *riskAnalysisRepository) Save(ctx context.Context, ra *model.RiskAnalysis) error {
	return r.db.WithContext(ctx).Save(ra).Error
}
