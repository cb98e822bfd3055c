package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/govpilot/backend/internal/service"
)

// ChatHandler 对话处理器
type ChatHandler struct {
	service service.ChatService
}

// NewChatHandler 创建对话处理器
func NewChatHandler(service service.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// RegisterRoutes 注册路由
func (h *ChatHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/chat/sessions", h.CreateSession)
	router.POST("/chat/messages", h.SendMessage)
	router.GET("/governance/:governance_id/chat-history", h.History)
	router.GET("/chat/sessions/:session_id/history", h.SessionHistory)
}

// CreateSessionRequest 新建会话请求
type CreateSessionRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// CreateSession 新建会话
func (h *ChatHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		klog.V(6).Infof("CreateSession: invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sessionID, err := h.service.CreateSession(c.Request.Context(), req.UserID)
	if err != nil {
		klog.Errorf("CreateSession failed: %v", err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session_id": sessionID})
}

// SendMessage 发送一轮消息
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req service.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		klog.V(6).Infof("SendMessage: invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.service.SendMessage(c.Request.Context(), &req)
	if err != nil {
		klog.Errorf("SendMessage failed: session=%s, err=%v", req.SessionID, err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// History 按治理单号获取会话历史
func (h *ChatHandler) History(c *gin.Context) {
	turns, err := h.service.History(c.Request.Context(), c.Param("governance_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": turns, "total": len(turns)})
}

// SessionHistory 按会话号获取会话历史
func (h *ChatHandler) SessionHistory(c *gin.Context) {
	turns, err := h.service.SessionHistory(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": turns, "total": len(turns)})
}
