package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/govpilot/backend/internal/service"
)

// GovernanceHandler 治理申请单处理器
type GovernanceHandler struct {
	service service.GovernanceService
}

// NewGovernanceHandler 创建治理申请单处理器
func NewGovernanceHandler(service service.GovernanceService) *GovernanceHandler {
	return &GovernanceHandler{service: service}
}

// RegisterRoutes 注册路由
func (h *GovernanceHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/governance", h.Create)
	router.GET("/governance", h.List)
	router.GET("/governance/search", h.Search)
	router.GET("/governance/:governance_id", h.Get)
	router.POST("/documents/upload", h.Upload)
}

// Create 建立治理申请单
func (h *GovernanceHandler) Create(c *gin.Context) {
	var req service.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		klog.V(6).Infof("Create governance: invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gc, err := h.service.CreateCase(c.Request.Context(), &req)
	if err != nil {
		klog.Errorf("Create governance failed: %v", err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"governance_id":      gc.GovernanceID,
		"user_name":          gc.UserName,
		"use_case":           gc.UseCase,
		"relevant_documents": gc.Documents(),
		"created_at":         gc.CreatedAt,
	})
}

// Get 按治理单号获取
func (h *GovernanceHandler) Get(c *gin.Context) {
	gc, err := h.service.GetCase(c.Request.Context(), c.Param("governance_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"governance_id":        gc.GovernanceID,
		"user_chat_session_id": gc.UserChatSessionID,
		"user_name":            gc.UserName,
		"use_case":             gc.UseCase,
		"relevant_documents":   gc.Documents(),
		"created_at":           gc.CreatedAt,
	})
}

// List 列出全部申请单
func (h *GovernanceHandler) List(c *gin.Context) {
	cases, err := h.service.ListCases(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": cases, "total": len(cases)})
}

// Search 按治理单号检索
func (h *GovernanceHandler) Search(c *gin.Context) {
	keyword := c.Query("q")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
		return
	}
	cases, err := h.service.SearchCases(c.Request.Context(), keyword)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": cases, "total": len(cases)})
}

// Upload 多文件上传，按 session_id 归档，同名跳过
func (h *GovernanceHandler) Upload(c *gin.Context) {
	sessionID := c.PostForm("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing session_id"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files uploaded"})
		return
	}

	results := make([]*service.UploadResult, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeError(c, err)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(c, err)
			return
		}
		result, err := h.service.UploadDocument(c.Request.Context(), sessionID, fh.Filename, data)
		if err != nil {
			klog.Errorf("Upload failed: file=%s, err=%v", fh.Filename, err)
			writeError(c, err)
			return
		}
		results = append(results, result)
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
