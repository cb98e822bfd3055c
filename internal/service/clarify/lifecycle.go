package clarify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/govpilot/backend/internal/service/statemachine"
)

// ErrNotFound 桶或编码不存在
var ErrNotFound = errors.New("clarification not found")

// Item 一条澄清项
type Item struct {
	UniqueCode string `json:"unique_code"`
	Question   string `json:"clarification"`
	Answer     string `json:"user_answer"`
	Status     Status `json:"status"`
}

// Override 建档时调用方预置的答案/状态，Status 为空表示按答案推导
type Override struct {
	Answer string `json:"user_answer"`
	Status Status `json:"status"`
}

// Seed 按桶种类和风险等级生成初始澄清集合。
// committee 种类只生成必审槽位对应的桶，其余桶完全不出现；
// cost/environment 生成单个同名扁平桶。
// 每条的答案优先级：非空 override > 演示答案（命中 mock 下标）> NOT PROVIDE；
// 状态在没有显式 override 时由答案推导（非哨兵即 completed）。
func Seed(kind BucketKind, level statemachine.RiskLevel, overrides map[string]Override) map[string][]Item {
	buckets := make(map[string][]Item)

	switch kind {
	case KindCost:
		buckets[string(KindCost)] = buildBucket(costCatalog, nil, overrides)
	case KindEnvironment:
		buckets[string(KindEnvironment)] = buildBucket(environmentCatalog, nil, overrides)
	default:
		indices := mockAnswerIndices(level)
		for _, slot := range statemachine.RequiredSlots(level) {
			name := CommitteeBucketName(slot)
			buckets[name] = buildBucket(committeeCatalogs[name], indices[name], overrides)
		}
	}

	return buckets
}

func buildBucket(catalog []CatalogEntry, mockIndices []int, overrides map[string]Override) []Item {
	mocked := make(map[int]bool, len(mockIndices))
	for _, i := range mockIndices {
		mocked[i] = true
	}

	items := make([]Item, 0, len(catalog))
	for i, entry := range catalog {
		override, hasOverride := overrides[entry.UniqueCode]

		answer := NotProvided
		if hasOverride && strings.TrimSpace(override.Answer) != "" {
			answer = strings.TrimSpace(override.Answer)
		} else if mocked[i] {
			answer = mockAnswers[entry.UniqueCode]
		}

		status := StatusPending
		if answer != NotProvided {
			status = StatusCompleted
		}
		if hasOverride && override.Status != "" {
			status = override.Status
		}

		items = append(items, Item{
			UniqueCode: entry.UniqueCode,
			Question:   entry.Question,
			Answer:     answer,
			Status:     status,
		})
	}
	return items
}

// Update 更新某个桶里一条澄清的答案与状态。
// 答案先 trim，空串归一为 NOT PROVIDE；状态缺省为 completed。
func Update(buckets map[string][]Item, bucket, uniqueCode, answer string, status Status) (Item, error) {
	items, ok := buckets[bucket]
	if !ok {
		return Item{}, fmt.Errorf("bucket %s: %w", bucket, ErrNotFound)
	}

	for i := range items {
		if items[i].UniqueCode != uniqueCode {
			continue
		}
		trimmed := strings.TrimSpace(answer)
		if trimmed == "" {
			trimmed = NotProvided
		}
		if status == "" {
			status = StatusCompleted
		}
		items[i].Answer = trimmed
		items[i].Status = status
		return items[i], nil
	}

	return Item{}, fmt.Errorf("code %s in bucket %s: %w", uniqueCode, bucket, ErrNotFound)
}

// Pending 返回桶里状态仍为 pending 的条目
func Pending(items []Item) []Item {
	var pending []Item
	for _, item := range items {
		if item.Status == StatusPending {
			pending = append(pending, item)
		}
	}
	return pending
}

// AllCompleted 非空桶中每条都 completed 才为真
func AllCompleted(items []Item) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if item.Status != StatusCompleted {
			return false
		}
	}
	return true
}
