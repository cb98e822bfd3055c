package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/govpilot/backend/internal/eventbus"
	"github.com/govpilot/backend/internal/model"
	"github.com/govpilot/backend/internal/repository"
	"github.com/govpilot/backend/internal/service/clarify"
	"github.com/govpilot/backend/internal/service/statemachine"
	"github.com/govpilot/backend/internal/tagcodec"
)

// RiskService 风险评估服务接口
type RiskService interface {
	// CreateAnalysis 为已建档的治理单生成一条风险评估记录
	CreateAnalysis(ctx context.Context, req *CreateAnalysisRequest) (*model.RiskAnalysis, error)

	// GetLatest 获取某治理单的最新风险评估
	GetLatest(ctx context.Context, governanceID string) (*model.RiskAnalysis, error)

	// List 列出某治理单的全部风险评估
	List(ctx context.Context, governanceID string) ([]model.RiskAnalysis, error)

	// UpdateCommitteeStatuses 批量变更委员会槽位状态，成功后重估级联
	UpdateCommitteeStatuses(ctx context.Context, req *UpdateCommitteeRequest) (*model.RiskAnalysis, error)
}

// CreateAnalysisRequest 风险评估建档请求
type CreateAnalysisRequest struct {
	GovernanceID string `json:"governance_id" binding:"required"`
	UserName     string `json:"user_name"`
	RiskLevel    string `json:"risk_level" binding:"required"`
	Reason       string `json:"reason"`
}

// CommitteeUpdate 单个槽位的目标状态
type CommitteeUpdate struct {
	Slot   int    `json:"committee" binding:"required"`
	Status string `json:"status" binding:"required"`
}

// UpdateCommitteeRequest 批量状态变更请求，治理单号由路由填充
type UpdateCommitteeRequest struct {
	GovernanceID string            `json:"governance_id"`
	Updates      []CommitteeUpdate `json:"updates" binding:"required"`
}

// AgentNotifier 级联触发时通知外部代理
type AgentNotifier interface {
	CreateSession(ctx context.Context, userID, sessionID string) error
	SendMessage(ctx context.Context, userID, sessionID, text string) ([]byte, error)
}

// UpdatePublisher 级联触发后向订阅方广播治理详情更新
type UpdatePublisher interface {
	Publish(topic eventbus.Topic, data any)
}

// riskService 风险评估服务实现
// 同一治理单的状态读改写用 per-id 互斥串行化，不同治理单互不阻塞
type riskService struct {
	repo          repository.RiskAnalysisRepository
	governance    repository.GovernanceRepository
	clarification ClarificationService
	agent         AgentNotifier
	publisher     UpdatePublisher

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRiskService 创建风险评估服务
func NewRiskService(
	repo repository.RiskAnalysisRepository,
	governance repository.GovernanceRepository,
	clarification ClarificationService,
	agent AgentNotifier,
	publisher UpdatePublisher,
) RiskService {
	return &riskService{
		repo:          repo,
		governance:    governance,
		clarification: clarification,
		agent:         agent,
		publisher:     publisher,
		locks:         make(map[string]*sync.Mutex),
	}
}

// NewRiskAnalysisID 生成评估单号，RISK- 前缀加 8 位十六进制
func NewRiskAnalysisID() string {
	return "RISK-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func (s *riskService) lockFor(governanceID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[governanceID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[governanceID] = l
	}
	return l
}

// CreateAnalysis 建档，治理单不存在时返回 repository.ErrNotFound
func (s *riskService) CreateAnalysis(ctx context.Context, req *CreateAnalysisRequest) (*model.RiskAnalysis, error) {
	if _, err := s.governance.GetByGovernanceID(ctx, req.GovernanceID); err != nil {
		return nil, err
	}

	ra := &model.RiskAnalysis{
		RiskAnalysisID: NewRiskAnalysisID(),
		GovernanceID:   req.GovernanceID,
		UserName:       req.UserName,
		RiskLevel:      string(statemachine.ParseRiskLevel(req.RiskLevel)),
		Reason:         req.Reason,
	}
	ra.ApplyInitialStatuses()
	klog.V(6).Infof("CreateAnalysis: risk_analysis_id=%s, governance_id=%s, level=%s", ra.RiskAnalysisID, ra.GovernanceID, ra.RiskLevel)

	if err := s.repo.Create(ctx, ra); err != nil {
		return nil, err
	}
	return ra, nil
}

func (s *riskService) GetLatest(ctx context.Context, governanceID string) (*model.RiskAnalysis, error) {
	return s.repo.GetLatestByGovernanceID(ctx, governanceID)
}

func (s *riskService) List(ctx context.Context, governanceID string) ([]model.RiskAnalysis, error) {
	return s.repo.ListByGovernanceID(ctx, governanceID)
}

// UpdateCommitteeStatuses 批量变更槽位状态
// 任意一条变更非法则整体失败，已校验的变更不落库
func (s *riskService) UpdateCommitteeStatuses(ctx context.Context, req *UpdateCommitteeRequest) (*model.RiskAnalysis, error) {
	lock := s.lockFor(req.GovernanceID)
	lock.Lock()
	defer lock.Unlock()

	ra, err := s.repo.GetLatestByGovernanceID(ctx, req.GovernanceID)
	if err != nil {
		return nil, err
	}

	// 先全部校验再写入
	next := make(map[statemachine.CommitteeSlot]statemachine.CommitteeStatus, len(req.Updates))
	for _, u := range req.Updates {
		slot := statemachine.CommitteeSlot(u.Slot)
		status, err := statemachine.Transition(slot, ra.Status(slot), statemachine.CommitteeStatus(u.Status))
		if err != nil {
			return nil, err
		}
		next[slot] = status
	}
	for slot, status := range next {
		ra.SetStatus(slot, status)
	}
	if err := s.repo.Save(ctx, ra); err != nil {
		return nil, err
	}

	if err := s.maybeCascade(ctx, ra); err != nil {
		klog.Errorf("cascade failed: governance_id=%s, err=%v", ra.GovernanceID, err)
	}
	return ra, nil
}

// maybeCascade 全部必审委员会批准后触发一次性级联：
// 生成成本与环境澄清问卷、向代理发送触发消息、广播治理详情更新
func (s *riskService) maybeCascade(ctx context.Context, ra *model.RiskAnalysis) error {
	level := statemachine.ParseRiskLevel(ra.RiskLevel)
	if ra.CascadeFired || !statemachine.AllRequiredApproved(level, ra.Statuses()) {
		return nil
	}

	klog.V(6).Infof("cascade fired: governance_id=%s, level=%s", ra.GovernanceID, level)
	ra.CascadeFired = true
	if err := s.repo.Save(ctx, ra); err != nil {
		return fmt.Errorf("failed to persist cascade flag: %w", err)
	}

	for _, kind := range []clarify.BucketKind{clarify.KindCost, clarify.KindEnvironment} {
		if _, err := s.clarification.Seed(ctx, ra.GovernanceID, kind, level, nil); err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				continue
			}
			return fmt.Errorf("failed to seed %s clarifications: %w", kind, err)
		}
	}

	if s.agent != nil {
		sessionID := "cascade-" + ra.GovernanceID
		if err := s.agent.CreateSession(ctx, ra.GovernanceID, sessionID); err != nil {
			return fmt.Errorf("failed to create agent session: %w", err)
		}
		trigger := tagcodec.BuildAgentTrigger(ra.GovernanceID)
		if _, err := s.agent.SendMessage(ctx, ra.GovernanceID, sessionID, trigger); err != nil {
			return fmt.Errorf("failed to notify agent: %w", err)
		}
	}

	if s.publisher != nil {
		s.publisher.Publish(eventbus.TopicGovernanceUpdate, map[string]any{
			"governance_id":    ra.GovernanceID,
			"risk_analysis_id": ra.RiskAnalysisID,
			"risk_level":       ra.RiskLevel,
			"committees":       committeeView(ra),
		})
	}
	return nil
}

// committeeView 槽位状态的响应投影
func committeeView(ra *model.RiskAnalysis) map[string]string {
	return map[string]string{
		"committee_1": ra.Committee1,
		"committee_2": ra.Committee2,
		"committee_3": ra.Committee3,
	}
}
