package clarify

import "github.com/govpilot/backend/internal/service/statemachine"

// 澄清问题目录：静态、按桶组织，运行期只读。
// committee 桶按槽位分组，cost/environment 是扁平列表。

// BucketKind 澄清桶的种类
type BucketKind string

const (
	KindCommittee   BucketKind = "committee"
	KindCost        BucketKind = "cost"
	KindEnvironment BucketKind = "environment"
)

// Status 澄清项状态
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// NotProvided 未作答哨兵值
const NotProvided = "NOT PROVIDE"

// CatalogEntry 目录中的一条：稳定编码 + 固定问题文本
type CatalogEntry struct {
	UniqueCode string
	Question   string
}

// CommitteeBucketName 槽位对应的桶名（committee_1/2/3）
func CommitteeBucketName(slot statemachine.CommitteeSlot) string {
	switch slot {
	case statemachine.CommitteeSlot2:
		return "committee_2"
	case statemachine.CommitteeSlot3:
		return "committee_3"
	default:
		return "committee_1"
	}
}

var committeeCatalogs = map[string][]CatalogEntry{
	"committee_1": {
		{"core_business_impact", "Will this use case impact core business operations if it fails?"},
		{"internal_users_only", "Is this application used by internal users only?"},
		{"tech_approved_org", "Is the technology already approved and commonly used in the organization?"},
	},
	"committee_2": {
		{"sensitive_data", "Does the application handle sensitive business or customer data?"},
		{"system_integration", "Does the application integrate with multiple internal or external systems?"},
		{"block_other_teams", "Will failure of this application block other teams or systems?"},
	},
	"committee_3": {
		{"regulatory_compliance", "Could this use case cause regulatory, legal, or compliance issues if misused or failed?"},
		{"reputation_impact", "Could failure or misuse of this application negatively impact the organization's reputation?"},
		{"multi_business_scale", "Does this application affect multiple business units or customers at scale?"},
	},
}

var costCatalog = []CatalogEntry{
	{"resource_count", "Resource Count (SE, QA, PM)"},
	{"cost_per_resource", "Cost per Resource"},
	{"project_duration", "Project Duration"},
}

var environmentCatalog = []CatalogEntry{
	{"prefer_environment", "Prefer Environment (AWS/ GCP/ Azure)"},
	{"technologies", "Frontend / Backend / DB"},
	{"architecture_type", "Architecture Type (Monolith, Microservices, Serverless)"},
}

// mockAnswers 按编码固定的演示答案
var mockAnswers = map[string]string{
	"core_business_impact":  "Yes, this impacts core business operations",
	"internal_users_only":   "This is for internal users only",
	"tech_approved_org":     "Technology is approved and commonly used",
	"sensitive_data":        "Application handles business data",
	"system_integration":    "Integrates with internal systems",
	"block_other_teams":     "Failure would not block other teams",
	"regulatory_compliance": "Compliant with regulatory requirements",
	"reputation_impact":     "No negative reputation impact expected",
	"multi_business_scale":  "Affects multiple business units",
}

// mockAnswerIndices 风险等级决定每个委员会桶里哪些条目预填演示答案，
// 其余条目保持 NOT PROVIDE。cost/environment 桶不预填。
func mockAnswerIndices(level statemachine.RiskLevel) map[string][]int {
	switch level {
	case statemachine.RiskLevelHigh:
		return map[string][]int{
			"committee_1": {0, 1, 2},
			"committee_2": {0, 1, 2},
			"committee_3": {0},
		}
	case statemachine.RiskLevelMedium:
		return map[string][]int{
			"committee_1": {0, 1, 2},
			"committee_2": {0},
		}
	default:
		return map[string][]int{
			"committee_1": {0},
		}
	}
}
