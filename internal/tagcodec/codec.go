package tagcodec

import (
	"fmt"
	"regexp"
	"strings"
)

// 标记块编解码器：在自由文本与结构化会话字段之间做可逆转换。
// 上游生产者是大模型，不受契约约束，所以解码永远不报错，只做尽力提取。

const (
	// NoUserQuery 用户未输入问题时写入的哨兵值
	NoUserQuery = "NO USER QUERY"
	// NoDocumentContent 没有上传文档时写入的哨兵值
	NoDocumentContent = "NO DOCUMENT CONTENT"
)

// DocumentContent 一份待编码的文档：名称 + 提取出的文本。
// ExtractErr 非空表示上游文本提取失败，编码时降级为占位符而不是报错。
type DocumentContent struct {
	Name       string
	Content    string
	ExtractErr error
}

// DecodedDocument 解码出的一份文档
type DecodedDocument struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// DecodedUserTurn 解码后的用户轮次。UserQuery 为空串表示没有问题（哨兵或缺失）。
type DecodedUserTurn struct {
	UserQuery string            `json:"user_query"`
	Documents []DecodedDocument `json:"documents"`
}

var (
	userQueryRe   = regexp.MustCompile(`(?is)<user_query>\s*(.*?)\s*</user_query>`)
	docSectionRe  = regexp.MustCompile(`(?is)<user_uploaded_document_contents>\s*(.*?)\s*</user_uploaded_document_contents>`)
	docStartRe    = regexp.MustCompile(`===\s*([^=]+?)\s*Document Content Start\s*===`)
	docEndPattern = `===\s*%s\s*Document Content End\s*===`
)

// Encode 把用户输入和文档内容编码成发给外部 Agent 的单段文本。
// 空问题、空文档列表分别写入哨兵值，文档名不做转义。
func Encode(userQuery string, docs []DocumentContent) string {
	var b strings.Builder

	b.WriteString("<from_user>\n")
	b.WriteString("<user_query>\n")
	if q := strings.TrimSpace(userQuery); q != "" {
		b.WriteString("  " + q + "\n")
	} else {
		b.WriteString("  " + NoUserQuery + "\n")
	}
	b.WriteString("</user_query>\n\n")

	b.WriteString("<user_uploaded_document_contents>\n")
	if len(docs) > 0 {
		for _, doc := range docs {
			b.WriteString(fmt.Sprintf("\n=== %s Document Content Start ===\n", doc.Name))
			if doc.ExtractErr != nil {
				b.WriteString(fmt.Sprintf("[Error extracting content: %v]\n", doc.ExtractErr))
			} else {
				b.WriteString(doc.Content)
				if !strings.HasSuffix(doc.Content, "\n") {
					b.WriteString("\n")
				}
			}
			b.WriteString(fmt.Sprintf("=== %s Document Content End ===\n", doc.Name))
		}
	} else {
		b.WriteString("  " + NoDocumentContent + "\n")
	}
	b.WriteString("</user_uploaded_document_contents>\n")
	b.WriteString("</from_user>")

	return b.String()
}

// Decode 从单段文本中还原用户轮次。
// 找不到区块、内容为哨兵值时返回零值字段；残缺的标记对降级处理，不报错。
func Decode(raw string) DecodedUserTurn {
	turn := DecodedUserTurn{}

	if m := userQueryRe.FindStringSubmatch(raw); m != nil {
		query := strings.TrimSpace(m[1])
		if query != NoUserQuery {
			turn.UserQuery = query
		}
	}

	m := docSectionRe.FindStringSubmatch(raw)
	if m == nil {
		return turn
	}
	section := strings.TrimSpace(m[1])
	if section == "" || section == NoDocumentContent {
		return turn
	}

	turn.Documents = parseDocuments(section)
	return turn
}

// parseDocuments 按 start/end 标记对切分文档，end 标记内嵌的名称必须与 start 完全一致。
// 一对都没解析出来但内容非空时，整段退化为一份无名文档，保数据不丢。
func parseDocuments(section string) []DecodedDocument {
	var docs []DecodedDocument

	pos := 0
	for pos < len(section) {
		loc := docStartRe.FindStringSubmatchIndex(section[pos:])
		if loc == nil {
			break
		}
		name := strings.TrimSpace(section[pos+loc[2] : pos+loc[3]])
		contentStart := pos + loc[1]

		endRe, err := regexp.Compile(fmt.Sprintf(docEndPattern, regexp.QuoteMeta(name)))
		if err != nil {
			break
		}
		endLoc := endRe.FindStringIndex(section[contentStart:])
		if endLoc == nil {
			// 缺少配对的 end 标记，跳过这个 start 继续往后找
			pos = contentStart
			continue
		}

		docs = append(docs, DecodedDocument{
			Name:    name,
			Content: strings.TrimSpace(section[contentStart : contentStart+endLoc[0]]),
		})
		pos = contentStart + endLoc[1]
	}

	if len(docs) == 0 {
		return []DecodedDocument{{Content: section}}
	}
	return docs
}

// BuildAgentTrigger 构造审批级联完成后发给外部 Agent 的系统触发消息
func BuildAgentTrigger(governanceID string) string {
	return fmt.Sprintf(`<from_system>
<governance_request_id>%s</governance_request_id>
execute tools and then execute environment agent and cost agent
</from_system>`, governanceID)
}
