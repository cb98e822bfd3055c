package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/govpilot/backend/internal/service"
	"github.com/govpilot/backend/internal/service/clarify"
	"github.com/govpilot/backend/internal/service/statemachine"
)

// ClarificationHandler 澄清问卷处理器
type ClarificationHandler struct {
	service service.ClarificationService
}

// NewClarificationHandler 创建澄清问卷处理器
func NewClarificationHandler(service service.ClarificationService) *ClarificationHandler {
	return &ClarificationHandler{service: service}
}

// RegisterRoutes 注册路由，kind 取 committee/cost/environment
func (h *ClarificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/governance/:governance_id/clarifications/:kind", h.Seed)
	router.GET("/governance/:governance_id/clarifications/:kind", h.Get)
	router.PUT("/governance/:governance_id/clarifications/:kind", h.Update)
}

// SeedRequest 问卷生成请求
type SeedRequest struct {
	RiskLevel string                      `json:"risk_level"`
	Overrides map[string]clarify.Override `json:"overrides"`
}

func parseKind(c *gin.Context) (clarify.BucketKind, bool) {
	kind := clarify.BucketKind(c.Param("kind"))
	switch kind {
	case clarify.KindCommittee, clarify.KindCost, clarify.KindEnvironment:
		return kind, true
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown clarification kind: " + c.Param("kind")})
		return "", false
	}
}

// Seed 生成问卷
func (h *ClarificationHandler) Seed(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}
	var req SeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		klog.V(6).Infof("Seed clarifications: invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	governanceID := c.Param("governance_id")
	level := statemachine.ParseRiskLevel(req.RiskLevel)
	cs, err := h.service.Seed(c.Request.Context(), governanceID, kind, level, req.Overrides)
	if err != nil {
		klog.Errorf("Seed clarifications failed: governance_id=%s, kind=%s, err=%v", governanceID, kind, err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"governance_id": cs.GovernanceID,
		"kind":          cs.Kind,
		"risk_level":    cs.RiskLevel,
		"dataset":       cs.BucketItems(),
	})
}

// Get 获取问卷，committee 类别缺档时返回空数据集
func (h *ClarificationHandler) Get(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}
	buckets, err := h.service.Get(c.Request.Context(), c.Param("governance_id"), kind)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dataset": buckets})
}

// Update 更新某一问题的回答
func (h *ClarificationHandler) Update(c *gin.Context) {
	if _, ok := parseKind(c); !ok {
		return
	}
	var req service.UpdateAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		klog.V(6).Infof("Update clarification: invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.GovernanceID = c.Param("governance_id")
	req.Kind = c.Param("kind")

	buckets, err := h.service.UpdateAnswer(c.Request.Context(), &req)
	if err != nil {
		klog.Errorf("Update clarification failed: governance_id=%s, err=%v", req.GovernanceID, err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dataset": buckets})
}
