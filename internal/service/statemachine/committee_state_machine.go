package statemachine

import (
	"fmt"

	"k8s.io/klog/v2"
)

// RiskLevel 风险等级
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// CommitteeStatus 委员会审批槽位的所有可能状态
type CommitteeStatus string

const (
	CommitteeStatusPending   CommitteeStatus = "Pending"    // 等待审批（初始态）
	CommitteeStatusApproved  CommitteeStatus = "Approved"   // 已批准（吸收态，不可再变更）
	CommitteeStatusRejected  CommitteeStatus = "Rejected"   // 已拒绝（可重审）
	CommitteeStatusNotNeeded CommitteeStatus = "Not Needed" // 该风险等级不需要此委员会（吸收态）
)

// CommitteeSlot 固定的三个审批槽位
type CommitteeSlot int

const (
	CommitteeSlot1 CommitteeSlot = 1
	CommitteeSlot2 CommitteeSlot = 2
	CommitteeSlot3 CommitteeSlot = 3
)

// AllSlots 全部槽位，按序号排列
var AllSlots = []CommitteeSlot{CommitteeSlot1, CommitteeSlot2, CommitteeSlot3}

// InvalidTransitionError 非法的委员会状态迁移
type InvalidTransitionError struct {
	Slot CommitteeSlot
	From CommitteeStatus
	To   CommitteeStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid committee_%d status transition: %s -> %s", e.Slot, e.From, e.To)
}

// RequiredSlots 风险等级决定的必审槽位集合：low={1}，medium={1,2}，high={1,2,3}
func RequiredSlots(level RiskLevel) []CommitteeSlot {
	switch level {
	case RiskLevelHigh:
		return []CommitteeSlot{CommitteeSlot1, CommitteeSlot2, CommitteeSlot3}
	case RiskLevelMedium:
		return []CommitteeSlot{CommitteeSlot1, CommitteeSlot2}
	default:
		return []CommitteeSlot{CommitteeSlot1}
	}
}

// RequiredCommitteeCount 展示用的委员会数量，仅是 RequiredSlots 的投影
func RequiredCommitteeCount(level RiskLevel) int {
	return len(RequiredSlots(level))
}

// InitialStatuses 按风险等级生成三个槽位的初始状态：
// 必审槽位为 Pending，其余为 Not Needed。
func InitialStatuses(level RiskLevel) map[CommitteeSlot]CommitteeStatus {
	statuses := map[CommitteeSlot]CommitteeStatus{
		CommitteeSlot1: CommitteeStatusNotNeeded,
		CommitteeSlot2: CommitteeStatusNotNeeded,
		CommitteeSlot3: CommitteeStatusNotNeeded,
	}
	for _, slot := range RequiredSlots(level) {
		statuses[slot] = CommitteeStatusPending
	}
	return statuses
}

// ValidateTransition 校验一次槽位状态迁移。
// Not Needed 与 Approved 是吸收态，目标状态只允许 Approved/Rejected；
// Pending 或 Rejected 出发到这两个状态都合法（重复 Rejected 视为成功的空操作）。
func ValidateTransition(slot CommitteeSlot, current, requested CommitteeStatus) error {
	if current == CommitteeStatusNotNeeded || current == CommitteeStatusApproved {
		return &InvalidTransitionError{Slot: slot, From: current, To: requested}
	}
	if requested != CommitteeStatusApproved && requested != CommitteeStatusRejected {
		return &InvalidTransitionError{Slot: slot, From: current, To: requested}
	}
	return nil
}

// Transition 执行一次槽位状态迁移（带日志），返回新状态
func Transition(slot CommitteeSlot, current, requested CommitteeStatus) (CommitteeStatus, error) {
	if err := ValidateTransition(slot, current, requested); err != nil {
		klog.V(6).Infof("委员会状态迁移被拒绝: committee_%d, %s -> %s", slot, current, requested)
		return current, err
	}
	klog.V(6).Infof("委员会状态迁移成功: committee_%d, %s -> %s", slot, current, requested)
	return requested, nil
}

// AllRequiredApproved 判断必审槽位是否全部 Approved
func AllRequiredApproved(level RiskLevel, statuses map[CommitteeSlot]CommitteeStatus) bool {
	required := RequiredSlots(level)
	if len(required) == 0 {
		return false
	}
	for _, slot := range required {
		if statuses[slot] != CommitteeStatusApproved {
			return false
		}
	}
	return true
}

// IsAbsorbing 判断状态是否为吸收态（不可再迁移）
func IsAbsorbing(status CommitteeStatus) bool {
	return status == CommitteeStatusApproved || status == CommitteeStatusNotNeeded
}

// ParseRiskLevel 解析风险等级字符串，未知值按 low 处理
func ParseRiskLevel(s string) RiskLevel {
	switch RiskLevel(s) {
	case RiskLevelMedium:
		return RiskLevelMedium
	case RiskLevelHigh:
		return RiskLevelHigh
	default:
		return RiskLevelLow
	}
}
