package model

import (
	"encoding/json"
	"time"

	"github.com/govpilot/backend/internal/service/clarify"
	"github.com/govpilot/backend/internal/service/statemachine"
)

// RelevantDocument 治理申请关联的一份文档
type RelevantDocument struct {
	DocumentName string `json:"documentName"`
	DocumentURL  string `json:"documentUrl"`
	Description  string `json:"description,omitempty"`
	UploadedAt   string `json:"uploadedAt,omitempty"`
}

// GovernanceCase 治理申请基本信息，governance_id 对外可见且唯一。
// 记录只增不删，重新评估时在同一 governance_id 下生成新的风险记录。
type GovernanceCase struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	GovernanceID      string    `json:"governance_id" gorm:"size:64;uniqueIndex;not null"`
	UserChatSessionID string    `json:"user_chat_session_id" gorm:"size:64;index"`
	UserName          string    `json:"user_name" gorm:"size:255"`
	UseCase           string    `json:"use_case" gorm:"type:text"`
	RelevantDocuments string    `json:"-" gorm:"type:text"` // RelevantDocument 数组的 JSON
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Documents 反序列化关联文档列表
func (g *GovernanceCase) Documents() []RelevantDocument {
	var docs []RelevantDocument
	if g.RelevantDocuments != "" {
		_ = json.Unmarshal([]byte(g.RelevantDocuments), &docs)
	}
	return docs
}

// SetDocuments 序列化关联文档列表
func (g *GovernanceCase) SetDocuments(docs []RelevantDocument) {
	data, err := json.Marshal(docs)
	if err != nil {
		return
	}
	g.RelevantDocuments = string(data)
}

// RiskAnalysis 风险评估记录。三个委员会槽位的初始状态由风险等级唯一决定，
// 之后只能通过状态机变更。CascadeFired 保证全员批准级联只触发一次。
type RiskAnalysis struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	RiskAnalysisID string    `json:"risk_analysis_id" gorm:"size:64;uniqueIndex;not null"`
	GovernanceID   string    `json:"governance_id" gorm:"size:64;index;not null"`
	UserName       string    `json:"user_name" gorm:"size:255"`
	RiskLevel      string    `json:"risk_level" gorm:"size:16;not null"` // low, medium, high
	Reason         string    `json:"reason" gorm:"type:text"`
	Committee1     string    `json:"committee_1" gorm:"size:32"`
	Committee2     string    `json:"committee_2" gorm:"size:32"`
	Committee3     string    `json:"committee_3" gorm:"size:32"`
	CascadeFired   bool      `json:"-" gorm:"default:false"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Statuses 槽位状态快照
func (r *RiskAnalysis) Statuses() map[statemachine.CommitteeSlot]statemachine.CommitteeStatus {
	return map[statemachine.CommitteeSlot]statemachine.CommitteeStatus{
		statemachine.CommitteeSlot1: statemachine.CommitteeStatus(r.Committee1),
		statemachine.CommitteeSlot2: statemachine.CommitteeStatus(r.Committee2),
		statemachine.CommitteeSlot3: statemachine.CommitteeStatus(r.Committee3),
	}
}

// Status 读取单个槽位状态
func (r *RiskAnalysis) Status(slot statemachine.CommitteeSlot) statemachine.CommitteeStatus {
	switch slot {
	case statemachine.CommitteeSlot2:
		return statemachine.CommitteeStatus(r.Committee2)
	case statemachine.CommitteeSlot3:
		return statemachine.CommitteeStatus(r.Committee3)
	default:
		return statemachine.CommitteeStatus(r.Committee1)
	}
}

// SetStatus 写入单个槽位状态
func (r *RiskAnalysis) SetStatus(slot statemachine.CommitteeSlot, status statemachine.CommitteeStatus) {
	switch slot {
	case statemachine.CommitteeSlot2:
		r.Committee2 = string(status)
	case statemachine.CommitteeSlot3:
		r.Committee3 = string(status)
	default:
		r.Committee1 = string(status)
	}
}

// ApplyInitialStatuses 按风险等级写入三个槽位的初始状态
func (r *RiskAnalysis) ApplyInitialStatuses() {
	for slot, status := range statemachine.InitialStatuses(statemachine.ParseRiskLevel(r.RiskLevel)) {
		r.SetStatus(slot, status)
	}
}

// ClarificationSet 一个治理申请在某个桶种类下的澄清集合，建档后同种类不可重复创建
type ClarificationSet struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	GovernanceID string    `json:"governance_id" gorm:"size:64;uniqueIndex:idx_clar_gov_kind;not null"`
	Kind         string    `json:"kind" gorm:"size:32;uniqueIndex:idx_clar_gov_kind;not null"` // committee, cost, environment
	RiskLevel    string    `json:"risk_level" gorm:"size:16"`
	UserName     string    `json:"user_name" gorm:"size:255"`
	Buckets      string    `json:"-" gorm:"type:text"` // map[bucket][]clarify.Item 的 JSON
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BucketItems 反序列化澄清桶
func (c *ClarificationSet) BucketItems() map[string][]clarify.Item {
	buckets := make(map[string][]clarify.Item)
	if c.Buckets != "" {
		_ = json.Unmarshal([]byte(c.Buckets), &buckets)
	}
	return buckets
}

// SetBucketItems 序列化澄清桶
func (c *ClarificationSet) SetBucketItems(buckets map[string][]clarify.Item) {
	data, err := json.Marshal(buckets)
	if err != nil {
		return
	}
	c.Buckets = string(data)
}

// 会话轮次角色
const (
	TurnRoleUser  = "user"
	TurnRoleAgent = "agent"
)

// ChatTurn 一个会话轮次。RawText 解码成功后 DecodedJSON 存放结构化结果，之后不再变更。
type ChatTurn struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	GovernanceID string    `json:"governance_id" gorm:"size:64;index"`
	SessionID    string    `json:"session_id" gorm:"size:64;index;not null"`
	Role         string    `json:"role" gorm:"size:16;not null"` // user, agent
	RawText      string    `json:"raw_text" gorm:"type:text"`
	DecodedJSON  string    `json:"decoded,omitempty" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
}

// UploadedDocument 上传到会话目录的一份文件
type UploadedDocument struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SessionID  string    `json:"session_id" gorm:"size:64;index;not null"`
	FileName   string    `json:"file_name" gorm:"size:255;not null"`
	StoredPath string    `json:"stored_path" gorm:"size:500;not null"`
	CreatedAt  time.Time `json:"created_at"`
}
