package tagcodec

// 对聊天历史载荷做解码遍历：给每个轮次就地补上解析出的结构化字段。
// 载荷来自推送通道，是任意 JSON，这里只认识 chat_history.events 这一层结构，
// 认不出的部分原样保留。

// NormalizeChatHistory 遍历载荷中的会话轮次，把标记块解码结果写回每个 event.content。
// 返回处理后的载荷（就地修改传入的 map）。嵌套的 data.chat_history 结构会被解包后处理。
func NormalizeChatHistory(payload any) any {
	root, ok := payload.(map[string]any)
	if !ok {
		return payload
	}

	target := root
	if inner, ok := root["data"].(map[string]any); ok {
		if _, hasHistory := inner["chat_history"]; hasHistory {
			target = inner
		}
	}

	history, ok := target["chat_history"].(map[string]any)
	if !ok {
		return payload
	}
	events, ok := history["events"].([]any)
	if !ok {
		return payload
	}

	for _, raw := range events {
		event, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		content, ok := event["content"].(map[string]any)
		if !ok {
			continue
		}
		text := firstEventText(content)
		if text == "" {
			continue
		}

		turn := Decode(text)
		if turn.UserQuery != "" {
			content["userQuery"] = turn.UserQuery
		} else {
			content["userQuery"] = nil
		}
		if len(turn.Documents) > 0 {
			docs := make([]any, 0, len(turn.Documents))
			for _, d := range turn.Documents {
				docs = append(docs, map[string]any{
					"name":    d.Name,
					"content": d.Content,
				})
			}
			content["userUploadedDocuments"] = docs
		} else {
			content["userUploadedDocuments"] = nil
		}
	}

	return payload
}

// HasChatHistory 判断载荷里是否嵌了 chat_history 子结构
func HasChatHistory(payload any) bool {
	root, ok := payload.(map[string]any)
	if !ok {
		return false
	}
	if _, ok := root["chat_history"]; ok {
		return true
	}
	if inner, ok := root["data"].(map[string]any); ok {
		_, ok := inner["chat_history"]
		return ok
	}
	return false
}

func firstEventText(content map[string]any) string {
	parts, ok := content["parts"].([]any)
	if !ok || len(parts) == 0 {
		return ""
	}
	first, ok := parts[0].(map[string]any)
	if !ok {
		return ""
	}
	text, _ := first["text"].(string)
	return text
}
