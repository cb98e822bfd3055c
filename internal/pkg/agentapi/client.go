package agentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"k8s.io/klog/v2"
)

// Client 治理代理服务客户端
// 代理以 HTTP 暴露会话创建和消息投递两个接口，回复体结构不固定，
// 这里只负责搬运原始字节，解码交给调用方
type Client struct {
	BaseURL string
	AppName string
	Client  *http.Client
}

// MessagePart 消息分片
type MessagePart struct {
	Text string `json:"text"`
}

// NewMessage 发送给代理的新消息
type NewMessage struct {
	Role  string        `json:"role"`
	Parts []MessagePart `json:"parts"`
}

type runRequest struct {
	AppName    string     `json:"app_name"`
	UserID     string     `json:"user_id"`
	SessionID  string     `json:"session_id"`
	NewMessage NewMessage `json:"new_message"`
}

// NewClient 创建代理客户端
func NewClient(baseURL, appName string) *Client {
	return &Client{
		BaseURL: baseURL,
		AppName: appName,
		Client: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// CreateSession 在代理侧建立会话，会话已存在时代理返回 4xx，视为幂等成功
func (c *Client) CreateSession(ctx context.Context, userID, sessionID string) error {
	url := fmt.Sprintf("%s/apps/%s/users/%s/sessions/%s", c.BaseURL, c.AppName, userID, sessionID)
	klog.V(6).Infof("创建代理会话: url=%s", url)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBufferString("{}"))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return fmt.Errorf("agent session create failed: status=%d", resp.StatusCode)
	}
	return nil
}

// SendMessage 投递一条用户消息并返回代理的原始回复字节
func (c *Client) SendMessage(ctx context.Context, userID, sessionID, text string) ([]byte, error) {
	url := c.BaseURL + "/run"
	klog.V(6).Infof("发送代理消息: url=%s, session=%s, len=%d", url, sessionID, len(text))

	jsonData, err := json.Marshal(runRequest{
		AppName:   c.AppName,
		UserID:    userID,
		SessionID: sessionID,
		NewMessage: NewMessage{
			Role:  "user",
			Parts: []MessagePart{{Text: text}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("agent run failed: status=%d, body=%s", resp.StatusCode, string(body))
	}
	return body, nil
}
