package repository

import (
	"context"
	"errors"

	"github.com/govpilot/backend/internal/model"
)

// ErrNotFound 记录不存在错误
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists 记录已存在错误（按唯一键重复创建）
var ErrAlreadyExists = errors.New("record already exists")

// 文档存储协作方只需要三种能力：新建、按字段等值查找、按键更新。
// 下面的接口都构建在这三种能力之上，对底层引擎不做假设。

type GovernanceRepository interface {
	Create(ctx context.Context, gc *model.GovernanceCase) error
	GetByGovernanceID(ctx context.Context, governanceID string) (*model.GovernanceCase, error)
	List(ctx context.Context) ([]model.GovernanceCase, error)
	Search(ctx context.Context, term string) ([]model.GovernanceCase, error)
	Save(ctx context.Context, gc *model.GovernanceCase) error
}

type RiskAnalysisRepository interface {
	Create(ctx context.Context, ra *model.RiskAnalysis) error
	GetByRiskAnalysisID(ctx context.Context, riskAnalysisID string) (*model.RiskAnalysis, error)
	// GetLatestByGovernanceID 同一 governance_id 重新评估会产生多条记录，取最新一条
	GetLatestByGovernanceID(ctx context.Context, governanceID string) (*model.RiskAnalysis, error)
	ListByGovernanceID(ctx context.Context, governanceID string) ([]model.RiskAnalysis, error)
	Save(ctx context.Context, ra *model.RiskAnalysis) error
}

type ClarificationRepository interface {
	Create(ctx context.Context, cs *model.ClarificationSet) error
	GetByGovernanceIDAndKind(ctx context.Context, governanceID, kind string) (*model.ClarificationSet, error)
	Save(ctx context.Context, cs *model.ClarificationSet) error
}

type ChatTurnRepository interface {
	Create(ctx context.Context, turn *model.ChatTurn) error
	ListByGovernanceID(ctx context.Context, governanceID string) ([]model.ChatTurn, error)
	ListBySessionID(ctx context.Context, sessionID string) ([]model.ChatTurn, error)
}

type UploadedDocumentRepository interface {
	Create(ctx context.Context, doc *model.UploadedDocument) error
	ListBySessionID(ctx context.Context, sessionID string) ([]model.UploadedDocument, error)
	ExistsBySessionIDAndName(ctx context.Context, sessionID, fileName string) (bool, error)
}
