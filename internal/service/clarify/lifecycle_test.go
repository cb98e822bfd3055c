package clarify

import (
	"errors"
	"testing"

	"github.com/govpilot/backend/internal/service/statemachine"
	"github.com/stretchr/testify/assert"
)

func TestSeedMediumCommittee(t *testing.T) {
	buckets := Seed(KindCommittee, statemachine.RiskLevelMedium, nil)

	// medium 只生成 committee_1 和 committee_2，committee_3 完全不出现
	assert.Len(t, buckets, 2)
	assert.Contains(t, buckets, "committee_1")
	assert.Contains(t, buckets, "committee_2")
	assert.NotContains(t, buckets, "committee_3")

	// committee_1 三条全部预填演示答案且 completed
	for _, item := range buckets["committee_1"] {
		assert.NotEqual(t, NotProvided, item.Answer, item.UniqueCode)
		assert.Equal(t, StatusCompleted, item.Status, item.UniqueCode)
	}

	// committee_2 只有第 0 条预填，其余保持哨兵值 + pending
	c2 := buckets["committee_2"]
	assert.Len(t, c2, 3)
	assert.Equal(t, "sensitive_data", c2[0].UniqueCode)
	assert.Equal(t, StatusCompleted, c2[0].Status)
	for _, item := range c2[1:] {
		assert.Equal(t, NotProvided, item.Answer, item.UniqueCode)
		assert.Equal(t, StatusPending, item.Status, item.UniqueCode)
	}
}

func TestSeedLowAndHighCommittee(t *testing.T) {
	low := Seed(KindCommittee, statemachine.RiskLevelLow, nil)
	assert.Len(t, low, 1)
	assert.Equal(t, StatusCompleted, low["committee_1"][0].Status)
	assert.Equal(t, StatusPending, low["committee_1"][1].Status)

	high := Seed(KindCommittee, statemachine.RiskLevelHigh, nil)
	assert.Len(t, high, 3)
	assert.Equal(t, "regulatory_compliance", high["committee_3"][0].UniqueCode)
	assert.Equal(t, StatusCompleted, high["committee_3"][0].Status)
	assert.Equal(t, StatusPending, high["committee_3"][1].Status)
}

func TestSeedOverrideWins(t *testing.T) {
	overrides := map[string]Override{
		"internal_users_only": {Answer: "  对外客户也会使用  "},
		"tech_approved_org":   {Answer: "自研框架", Status: StatusPending},
	}
	buckets := Seed(KindCommittee, statemachine.RiskLevelLow, overrides)
	c1 := buckets["committee_1"]

	assert.Equal(t, "对外客户也会使用", c1[1].Answer)
	assert.Equal(t, StatusCompleted, c1[1].Status)
	// 显式 override 的状态优先于答案推导
	assert.Equal(t, "自研框架", c1[2].Answer)
	assert.Equal(t, StatusPending, c1[2].Status)
}

func TestSeedFlatBuckets(t *testing.T) {
	cost := Seed(KindCost, statemachine.RiskLevelHigh, nil)
	assert.Len(t, cost, 1)
	items := cost["cost"]
	assert.Len(t, items, 3)
	for _, item := range items {
		assert.Equal(t, NotProvided, item.Answer)
		assert.Equal(t, StatusPending, item.Status)
	}

	env := Seed(KindEnvironment, statemachine.RiskLevelLow, nil)
	assert.Len(t, env["environment"], 3)
	assert.Equal(t, "prefer_environment", env["environment"][0].UniqueCode)
}

func TestUpdate(t *testing.T) {
	buckets := Seed(KindCommittee, statemachine.RiskLevelMedium, nil)

	item, err := Update(buckets, "committee_2", "system_integration", " 与 ERP、CRM 两个系统集成 ", "")
	assert.NoError(t, err)
	assert.Equal(t, "与 ERP、CRM 两个系统集成", item.Answer)
	assert.Equal(t, StatusCompleted, item.Status)
	// 写回了桶里
	assert.Equal(t, StatusCompleted, buckets["committee_2"][1].Status)
}

func TestUpdateEmptyAnswerNormalizedToSentinel(t *testing.T) {
	buckets := Seed(KindCost, statemachine.RiskLevelLow, nil)
	item, err := Update(buckets, "cost", "resource_count", "   \t ", StatusPending)
	assert.NoError(t, err)
	assert.Equal(t, NotProvided, item.Answer)
	assert.Equal(t, StatusPending, item.Status)
}

func TestUpdateNotFound(t *testing.T) {
	buckets := Seed(KindCommittee, statemachine.RiskLevelLow, nil)

	_, err := Update(buckets, "committee_2", "sensitive_data", "x", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing bucket, got %v", err)
	}

	_, err = Update(buckets, "committee_1", "no_such_code", "x", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing code, got %v", err)
	}
}

func TestPendingAndAllCompleted(t *testing.T) {
	buckets := Seed(KindCommittee, statemachine.RiskLevelMedium, nil)

	assert.Empty(t, Pending(buckets["committee_1"]))
	assert.True(t, AllCompleted(buckets["committee_1"]))

	assert.Len(t, Pending(buckets["committee_2"]), 2)
	assert.False(t, AllCompleted(buckets["committee_2"]))

	_, _ = Update(buckets, "committee_2", "system_integration", "答了", "")
	_, _ = Update(buckets, "committee_2", "block_other_teams", "也答了", "")
	assert.True(t, AllCompleted(buckets["committee_2"]))

	// 空桶永远不算完成
	assert.False(t, AllCompleted(nil))
}
