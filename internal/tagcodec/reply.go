package tagcodec

import (
	"bytes"
	"encoding/json"
	"strings"
)

// 外部 Agent 回复的形状不固定：可能是纯字符串、事件数组、或若干对象变体。
// 这里按固定优先级逐个尝试已知形状，全部失败时退化为原始 JSON 字符串，解码永不失败。

// replyPart content.parts 里的一段
type replyPart struct {
	Text string `json:"text"`
}

// replyContent 事件内容：角色 + 分段文本
type replyContent struct {
	Role  string      `json:"role"`
	Parts []replyPart `json:"parts"`
}

// replyEvent 事件数组中的一项
type replyEvent struct {
	Content *replyContent `json:"content"`
}

// replyObject 已知的对象形状变体，按字段优先级取值
type replyObject struct {
	Text     string        `json:"text"`
	Content  *replyContent `json:"content"`
	Message  string        `json:"message"`
	Response string        `json:"response"`
}

// DecodeAgentReply 从外部 Agent 的回复载荷中提取最终文本。
// 优先级：纯字符串 → 事件数组（从尾部找 role=model 的第一个 text）
// → text 字段 → content.parts → message → response → 整体 JSON 字符串化。
func DecodeAgentReply(payload []byte) string {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return ""
	}

	var asString string
	if err := json.Unmarshal(trimmed, &asString); err == nil {
		return asString
	}

	var asEvents []replyEvent
	if err := json.Unmarshal(trimmed, &asEvents); err == nil {
		for i := len(asEvents) - 1; i >= 0; i-- {
			content := asEvents[i].Content
			if content == nil || content.Role != "model" {
				continue
			}
			if text := firstPartText(content.Parts); text != "" {
				return text
			}
		}
	}

	var asObject replyObject
	if err := json.Unmarshal(trimmed, &asObject); err == nil {
		if asObject.Text != "" {
			return asObject.Text
		}
		if asObject.Content != nil {
			if text := firstPartText(asObject.Content.Parts); text != "" {
				return text
			}
		}
		if asObject.Message != "" {
			return asObject.Message
		}
		if asObject.Response != "" {
			return asObject.Response
		}
	}

	// 兜底：压缩后的原始 JSON，保证不丢信息
	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err == nil {
		return compact.String()
	}
	return strings.TrimSpace(string(payload))
}

func firstPartText(parts []replyPart) string {
	for _, part := range parts {
		if part.Text != "" {
			return part.Text
		}
	}
	return ""
}
