package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/govpilot/backend/internal/model"
	"github.com/govpilot/backend/internal/pkg/docextract"
	"github.com/govpilot/backend/internal/repository"
)

// GovernanceService 治理申请单服务接口
type GovernanceService interface {
	// CreateCase 建立治理申请单并合并会话内已上传的文档
	CreateCase(ctx context.Context, req *CreateCaseRequest) (*model.GovernanceCase, error)

	// GetCase 根据治理单号获取申请单
	GetCase(ctx context.Context, governanceID string) (*model.GovernanceCase, error)

	// ListCases 列出全部申请单
	ListCases(ctx context.Context) ([]model.GovernanceCase, error)

	// SearchCases 按治理单号前缀检索
	SearchCases(ctx context.Context, keyword string) ([]model.GovernanceCase, error)

	// UploadDocument 保存一份上传文档并提取文本，同名文件跳过
	UploadDocument(ctx context.Context, sessionID, fileName string, data []byte) (*UploadResult, error)
}

// CreateCaseRequest 建档请求
type CreateCaseRequest struct {
	UserChatSessionID string                   `json:"user_chat_session_id" binding:"required"`
	UserName          string                   `json:"user_name"`
	UseCase           string                   `json:"use_case"`
	RelevantDocuments []model.RelevantDocument `json:"relevant_documents"`
}

// UploadResult 上传处理结果
type UploadResult struct {
	FileName   string `json:"file_name"`
	StoredPath string `json:"stored_path"`
	Content    string `json:"content"`
	Skipped    bool   `json:"skipped"`
	ExtractErr string `json:"extract_error,omitempty"`
}

// governanceService 治理申请单服务实现
type governanceService struct {
	repo    repository.GovernanceRepository
	docRepo repository.UploadedDocumentRepository
	dataDir string
}

// NewGovernanceService 创建治理申请单服务
func NewGovernanceService(repo repository.GovernanceRepository, docRepo repository.UploadedDocumentRepository, dataDir string) GovernanceService {
	return &governanceService{repo: repo, docRepo: docRepo, dataDir: dataDir}
}

// NewGovernanceID 生成治理单号，GOV- 前缀加 8 位十六进制
func NewGovernanceID() string {
	return "GOV-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// CreateCase 建立治理申请单
// 请求体里的文档和会话内已上传的文档合并存档，上传文档按文件名去重
func (s *governanceService) CreateCase(ctx context.Context, req *CreateCaseRequest) (*model.GovernanceCase, error) {
	governanceID := NewGovernanceID()
	klog.V(6).Infof("CreateCase: governance_id=%s, session=%s", governanceID, req.UserChatSessionID)

	docs := append([]model.RelevantDocument{}, req.RelevantDocuments...)
	seen := make(map[string]bool, len(docs))
	for _, d := range docs {
		seen[d.DocumentName] = true
	}

	uploaded, err := s.docRepo.ListBySessionID(ctx, req.UserChatSessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploaded documents: %w", err)
	}
	for _, up := range uploaded {
		if seen[up.FileName] {
			continue
		}
		seen[up.FileName] = true
		docs = append(docs, model.RelevantDocument{
			DocumentName: up.FileName,
			DocumentURL:  up.StoredPath,
			UploadedAt:   up.CreatedAt.Format(time.RFC3339),
		})
	}

	gc := &model.GovernanceCase{
		GovernanceID:      governanceID,
		UserChatSessionID: req.UserChatSessionID,
		UserName:          req.UserName,
		UseCase:           req.UseCase,
	}
	gc.SetDocuments(docs)
	if err := s.repo.Create(ctx, gc); err != nil {
		return nil, err
	}
	return gc, nil
}

func (s *governanceService) GetCase(ctx context.Context, governanceID string) (*model.GovernanceCase, error) {
	return s.repo.GetByGovernanceID(ctx, governanceID)
}

func (s *governanceService) ListCases(ctx context.Context) ([]model.GovernanceCase, error) {
	return s.repo.List(ctx)
}

func (s *governanceService) SearchCases(ctx context.Context, keyword string) ([]model.GovernanceCase, error) {
	return s.repo.Search(ctx, keyword)
}

// UploadDocument 保存上传文件
// 同一会话内同名文件直接跳过，落盘文件名加时间戳前缀避免冲突
func (s *governanceService) UploadDocument(ctx context.Context, sessionID, fileName string, data []byte) (*UploadResult, error) {
	fileName = filepath.Base(fileName)
	exists, err := s.docRepo.ExistsBySessionIDAndName(ctx, sessionID, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to check duplicate: %w", err)
	}
	if exists {
		klog.V(6).Infof("UploadDocument: duplicate skipped, session=%s, file=%s", sessionID, fileName)
		return &UploadResult{FileName: fileName, Skipped: true}, nil
	}

	sessionDir := filepath.Join(s.dataDir, sessionID)
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session dir: %w", err)
	}
	storedPath := filepath.Join(sessionDir, fmt.Sprintf("%d_%s", time.Now().UnixNano(), fileName))
	if err := os.WriteFile(storedPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	doc := &model.UploadedDocument{
		SessionID:  sessionID,
		FileName:   fileName,
		StoredPath: storedPath,
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	result := &UploadResult{FileName: fileName, StoredPath: storedPath}
	content, extractErr := docextract.ExtractBytes(fileName, data)
	if extractErr != nil {
		klog.Warningf("UploadDocument: extract failed for %s: %v", fileName, extractErr)
		result.ExtractErr = extractErr.Error()
	} else {
		result.Content = content
	}
	return result, nil
}
