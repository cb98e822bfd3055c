package service

import (
	"context"
	"errors"

	"k8s.io/klog/v2"

	"github.com/govpilot/backend/internal/model"
	"github.com/govpilot/backend/internal/repository"
	"github.com/govpilot/backend/internal/service/clarify"
	"github.com/govpilot/backend/internal/service/statemachine"
)

// ClarificationService 澄清问卷服务接口
type ClarificationService interface {
	// Seed 按风险等级生成一套澄清问卷，同一治理单同一类别只建一次
	Seed(ctx context.Context, governanceID string, kind clarify.BucketKind, level statemachine.RiskLevel, overrides map[string]clarify.Override) (*model.ClarificationSet, error)

	// Get 获取问卷；committee 类别缺档时返回空数据集而非错误
	Get(ctx context.Context, governanceID string, kind clarify.BucketKind) (map[string][]clarify.Item, error)

	// UpdateAnswer 更新某一桶内某一问题的回答
	UpdateAnswer(ctx context.Context, req *UpdateAnswerRequest) (map[string][]clarify.Item, error)
}

// UpdateAnswerRequest 更新回答请求，治理单号和类别由路由填充
type UpdateAnswerRequest struct {
	GovernanceID string `json:"governance_id"`
	Kind         string `json:"kind"`
	Bucket       string `json:"bucket" binding:"required"`
	UniqueCode   string `json:"unique_code" binding:"required"`
	Answer       string `json:"user_answer"`
	Status       string `json:"status"`
}

// clarificationService 澄清问卷服务实现
type clarificationService struct {
	repo repository.ClarificationRepository
}

// NewClarificationService 创建澄清问卷服务
func NewClarificationService(repo repository.ClarificationRepository) ClarificationService {
	return &clarificationService{repo: repo}
}

// Seed 生成问卷并落库，已存在时返回 repository.ErrAlreadyExists
func (s *clarificationService) Seed(ctx context.Context, governanceID string, kind clarify.BucketKind, level statemachine.RiskLevel, overrides map[string]clarify.Override) (*model.ClarificationSet, error) {
	klog.V(6).Infof("Seed clarifications: governance_id=%s, kind=%s, level=%s", governanceID, kind, level)

	buckets := clarify.Seed(kind, level, overrides)
	cs := &model.ClarificationSet{
		GovernanceID: governanceID,
		Kind:         string(kind),
		RiskLevel:    string(level),
	}
	cs.SetBucketItems(buckets)
	if err := s.repo.Create(ctx, cs); err != nil {
		return nil, err
	}
	return cs, nil
}

func (s *clarificationService) Get(ctx context.Context, governanceID string, kind clarify.BucketKind) (map[string][]clarify.Item, error) {
	cs, err := s.repo.GetByGovernanceIDAndKind(ctx, governanceID, string(kind))
	if err != nil {
		// 委员会问卷在级联触发前不存在，前端轮询拿空集即可
		if errors.Is(err, repository.ErrNotFound) && kind == clarify.KindCommittee {
			return map[string][]clarify.Item{}, nil
		}
		return nil, err
	}
	return cs.BucketItems(), nil
}

// UpdateAnswer 写回回答并保存整套问卷
func (s *clarificationService) UpdateAnswer(ctx context.Context, req *UpdateAnswerRequest) (map[string][]clarify.Item, error) {
	cs, err := s.repo.GetByGovernanceIDAndKind(ctx, req.GovernanceID, req.Kind)
	if err != nil {
		return nil, err
	}
	buckets := cs.BucketItems()

	status := clarify.Status(req.Status)
	if _, err := clarify.Update(buckets, req.Bucket, req.UniqueCode, req.Answer, status); err != nil {
		return nil, err
	}
	cs.SetBucketItems(buckets)
	if err := s.repo.Save(ctx, cs); err != nil {
		return nil, err
	}
	klog.V(6).Infof("UpdateAnswer: governance_id=%s, kind=%s, bucket=%s, code=%s", req.GovernanceID, req.Kind, req.Bucket, req.UniqueCode)
	return buckets, nil
}
