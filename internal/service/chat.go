package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/govpilot/backend/internal/model"
	"github.com/govpilot/backend/internal/pkg/docextract"
	"github.com/govpilot/backend/internal/repository"
	"github.com/govpilot/backend/internal/tagcodec"
	"github.com/govpilot/backend/internal/utils"
)

// ChatService 对话服务接口
type ChatService interface {
	// CreateSession 新建会话并在代理侧同步建立
	CreateSession(ctx context.Context, userID string) (string, error)

	// SendMessage 编码并投递一轮用户消息，返回解码后的代理回复
	SendMessage(ctx context.Context, req *SendMessageRequest) (*SendMessageResult, error)

	// History 按治理单号获取会话轮次
	History(ctx context.Context, governanceID string) ([]model.ChatTurn, error)

	// SessionHistory 按会话号获取会话轮次
	SessionHistory(ctx context.Context, sessionID string) ([]model.ChatTurn, error)
}

// SendMessageRequest 发送消息请求
type SendMessageRequest struct {
	SessionID    string `json:"session_id" binding:"required"`
	GovernanceID string `json:"governance_id"`
	UserID       string `json:"user_id"`
	UserQuery    string `json:"user_query"`
}

// SendMessageResult 一轮对话的结果
type SendMessageResult struct {
	SessionID string `json:"session_id"`
	Encoded   string `json:"encoded"`
	Reply     string `json:"reply"`
}

// chatService 对话服务实现
type chatService struct {
	turns repository.ChatTurnRepository
	docs  repository.UploadedDocumentRepository
	agent AgentNotifier
}

// NewChatService 创建对话服务
func NewChatService(turns repository.ChatTurnRepository, docs repository.UploadedDocumentRepository, agent AgentNotifier) ChatService {
	return &chatService{turns: turns, docs: docs, agent: agent}
}

func (s *chatService) CreateSession(ctx context.Context, userID string) (string, error) {
	sessionID := "sess-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	if s.agent != nil {
		if err := s.agent.CreateSession(ctx, userID, sessionID); err != nil {
			return "", fmt.Errorf("failed to create agent session: %w", err)
		}
	}
	klog.V(6).Infof("CreateSession: session=%s, user=%s", sessionID, userID)
	return sessionID, nil
}

// SendMessage 把用户输入和会话内文档编码为标签格式发给代理，
// 回复按约定的优先级链解码，两个方向的轮次都落库
func (s *chatService) SendMessage(ctx context.Context, req *SendMessageRequest) (*SendMessageResult, error) {
	docs, err := s.sessionDocuments(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	encoded := tagcodec.Encode(req.UserQuery, docs)

	userTurn := &model.ChatTurn{
		GovernanceID: req.GovernanceID,
		SessionID:    req.SessionID,
		Role:         model.TurnRoleUser,
		RawText:      encoded,
		DecodedJSON:  utils.ToJSON(tagcodec.Decode(encoded)),
	}
	if err := s.turns.Create(ctx, userTurn); err != nil {
		return nil, err
	}

	raw, err := s.agent.SendMessage(ctx, req.UserID, req.SessionID, encoded)
	if err != nil {
		return nil, fmt.Errorf("agent request failed: %w", err)
	}
	reply := tagcodec.DecodeAgentReply(raw)

	agentTurn := &model.ChatTurn{
		GovernanceID: req.GovernanceID,
		SessionID:    req.SessionID,
		Role:         model.TurnRoleAgent,
		RawText:      string(raw),
		DecodedJSON:  utils.ToJSON(map[string]string{"text": reply}),
	}
	if err := s.turns.Create(ctx, agentTurn); err != nil {
		return nil, err
	}

	return &SendMessageResult{SessionID: req.SessionID, Encoded: encoded, Reply: reply}, nil
}

func (s *chatService) History(ctx context.Context, governanceID string) ([]model.ChatTurn, error) {
	return s.turns.ListByGovernanceID(ctx, governanceID)
}

func (s *chatService) SessionHistory(ctx context.Context, sessionID string) ([]model.ChatTurn, error) {
	return s.turns.ListBySessionID(ctx, sessionID)
}

// sessionDocuments 读取会话内上传文档的文本内容，提取失败的文档带错误信息编码
func (s *chatService) sessionDocuments(ctx context.Context, sessionID string) ([]tagcodec.DocumentContent, error) {
	uploaded, err := s.docs.ListBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list session documents: %w", err)
	}
	docs := make([]tagcodec.DocumentContent, 0, len(uploaded))
	for _, up := range uploaded {
		content, extractErr := docextract.ExtractText(up.StoredPath)
		doc := tagcodec.DocumentContent{Name: up.FileName, Content: content}
		if extractErr != nil {
			klog.Warningf("sessionDocuments: extract failed for %s: %v", up.FileName, extractErr)
			doc.ExtractErr = extractErr
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
