package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/govpilot/backend/internal/model"
	"github.com/govpilot/backend/internal/service"
	"github.com/govpilot/backend/internal/service/statemachine"
)

// RiskHandler 风险评估处理器
type RiskHandler struct {
	service service.RiskService
}

// NewRiskHandler 创建风险评估处理器
func NewRiskHandler(service service.RiskService) *RiskHandler {
	return &RiskHandler{service: service}
}

// RegisterRoutes 注册路由
func (h *RiskHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/risk-analyses", h.Create)
	router.GET("/governance/:governance_id/risk", h.GetLatest)
	router.GET("/governance/:governance_id/risk-analyses", h.List)
	router.PATCH("/governance/:governance_id/committees", h.UpdateCommittees)
}

// Create 为治理单生成风险评估
func (h *RiskHandler) Create(c *gin.Context) {
	var req service.CreateAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		klog.V(6).Infof("Create risk analysis: invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ra, err := h.service.CreateAnalysis(c.Request.Context(), &req)
	if err != nil {
		klog.Errorf("Create risk analysis failed: %v", err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, riskView(ra))
}

// GetLatest 获取最新风险评估
func (h *RiskHandler) GetLatest(c *gin.Context) {
	ra, err := h.service.GetLatest(c.Request.Context(), c.Param("governance_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, riskView(ra))
}

// List 获取全部风险评估
func (h *RiskHandler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), c.Param("governance_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	views := make([]gin.H, 0, len(list))
	for i := range list {
		views = append(views, riskView(&list[i]))
	}
	c.JSON(http.StatusOK, gin.H{"items": views, "total": len(views)})
}

// UpdateCommittees 批量变更委员会状态
func (h *RiskHandler) UpdateCommittees(c *gin.Context) {
	var req service.UpdateCommitteeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		klog.V(6).Infof("UpdateCommittees: invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.GovernanceID = c.Param("governance_id")

	ra, err := h.service.UpdateCommitteeStatuses(c.Request.Context(), &req)
	if err != nil {
		klog.Errorf("UpdateCommittees failed: governance_id=%s, err=%v", req.GovernanceID, err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, riskView(ra))
}

// riskView 风险评估响应投影，带展示用的必审委员会数量
func riskView(ra *model.RiskAnalysis) gin.H {
	level := statemachine.ParseRiskLevel(ra.RiskLevel)
	return gin.H{
		"risk_analysis_id":    ra.RiskAnalysisID,
		"governance_id":       ra.GovernanceID,
		"user_name":           ra.UserName,
		"risk_level":          ra.RiskLevel,
		"reason":              ra.Reason,
		"committee_1":         ra.Committee1,
		"committee_2":         ra.Committee2,
		"committee_3":         ra.Committee3,
		"required_committees": statemachine.RequiredCommitteeCount(level),
		"created_at":          ra.CreatedAt,
		"updated_at":          ra.UpdatedAt,
	}
}
