package statemachine

import (
	"testing"
)

func TestRequiredSlots(t *testing.T) {
	cases := []struct {
		level RiskLevel
		want  []CommitteeSlot
	}{
		{RiskLevelLow, []CommitteeSlot{1}},
		{RiskLevelMedium, []CommitteeSlot{1, 2}},
		{RiskLevelHigh, []CommitteeSlot{1, 2, 3}},
	}
	for _, tc := range cases {
		got := RequiredSlots(tc.level)
		if len(got) != len(tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.level, tc.want, got)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s: expected %v, got %v", tc.level, tc.want, got)
			}
		}
		if RequiredCommitteeCount(tc.level) != len(tc.want) {
			t.Fatalf("%s: count projection mismatch", tc.level)
		}
	}
}

func TestInitialStatuses(t *testing.T) {
	statuses := InitialStatuses(RiskLevelMedium)
	if statuses[CommitteeSlot1] != CommitteeStatusPending {
		t.Fatalf("committee_1 should start Pending, got %s", statuses[CommitteeSlot1])
	}
	if statuses[CommitteeSlot2] != CommitteeStatusPending {
		t.Fatalf("committee_2 should start Pending, got %s", statuses[CommitteeSlot2])
	}
	if statuses[CommitteeSlot3] != CommitteeStatusNotNeeded {
		t.Fatalf("committee_3 should start Not Needed, got %s", statuses[CommitteeSlot3])
	}
}

func TestTransitionFromAbsorbingStatesFails(t *testing.T) {
	requested := []CommitteeStatus{
		CommitteeStatusPending, CommitteeStatusApproved,
		CommitteeStatusRejected, CommitteeStatusNotNeeded,
	}
	for _, from := range []CommitteeStatus{CommitteeStatusNotNeeded, CommitteeStatusApproved} {
		for _, to := range requested {
			if err := ValidateTransition(CommitteeSlot1, from, to); err == nil {
				t.Fatalf("expected error for %s -> %s", from, to)
			}
		}
	}
}

func TestTransitionTargetsRestricted(t *testing.T) {
	for _, to := range []CommitteeStatus{CommitteeStatusPending, CommitteeStatusNotNeeded} {
		if err := ValidateTransition(CommitteeSlot2, CommitteeStatusPending, to); err == nil {
			t.Fatalf("expected error for Pending -> %s", to)
		}
	}
}

func TestTransitionAllowedPaths(t *testing.T) {
	cases := []struct{ from, to CommitteeStatus }{
		{CommitteeStatusPending, CommitteeStatusApproved},
		{CommitteeStatusPending, CommitteeStatusRejected},
		{CommitteeStatusRejected, CommitteeStatusApproved},
		{CommitteeStatusRejected, CommitteeStatusRejected}, // 重复拒绝是空操作
	}
	for _, tc := range cases {
		got, err := Transition(CommitteeSlot1, tc.from, tc.to)
		if err != nil {
			t.Fatalf("%s -> %s should succeed: %v", tc.from, tc.to, err)
		}
		if got != tc.to {
			t.Fatalf("%s -> %s: got %s", tc.from, tc.to, got)
		}
	}
}

func TestAllRequiredApproved(t *testing.T) {
	statuses := InitialStatuses(RiskLevelMedium)
	if AllRequiredApproved(RiskLevelMedium, statuses) {
		t.Fatal("nothing approved yet")
	}
	statuses[CommitteeSlot1] = CommitteeStatusApproved
	if AllRequiredApproved(RiskLevelMedium, statuses) {
		t.Fatal("committee_2 still pending")
	}
	statuses[CommitteeSlot2] = CommitteeStatusApproved
	if !AllRequiredApproved(RiskLevelMedium, statuses) {
		t.Fatal("all required slots approved")
	}
	// committee_3 保持 Not Needed 不影响判定
	if statuses[CommitteeSlot3] != CommitteeStatusNotNeeded {
		t.Fatal("committee_3 should stay Not Needed")
	}
}
