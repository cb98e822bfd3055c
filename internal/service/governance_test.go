package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/govpilot/backend/internal/model"
	"github.com/govpilot/backend/internal/repository"
	"github.com/govpilot/backend/internal/service/clarify"
	"github.com/govpilot/backend/internal/service/statemachine"
)

func TestGovernanceServiceCreateCaseMergesUploads(t *testing.T) {
	db := setupServiceDB(t)
	govRepo := repository.NewGovernanceRepository(db)
	docRepo := repository.NewUploadedDocumentRepository(db)
	svc := NewGovernanceService(govRepo, docRepo, t.TempDir())
	ctx := context.Background()

	// 先在会话里上传一份文件
	if _, err := svc.UploadDocument(ctx, "sess-1", "policy.txt", []byte("policy text")); err != nil {
		t.Fatalf("UploadDocument failed: %v", err)
	}

	gc, err := svc.CreateCase(ctx, &CreateCaseRequest{
		UserChatSessionID: "sess-1",
		UserName:          "alice",
		UseCase:           "resume screening",
		RelevantDocuments: []model.RelevantDocument{{DocumentName: "charter.md", DocumentURL: "https://example.com/charter.md"}},
	})
	if err != nil {
		t.Fatalf("CreateCase failed: %v", err)
	}
	if !strings.HasPrefix(gc.GovernanceID, "GOV-") || len(gc.GovernanceID) != len("GOV-")+8 {
		t.Errorf("unexpected governance id: %s", gc.GovernanceID)
	}

	docs := gc.Documents()
	if len(docs) != 2 {
		t.Fatalf("expected merged documents, got %d", len(docs))
	}
	names := map[string]bool{}
	for _, d := range docs {
		names[d.DocumentName] = true
	}
	if !names["charter.md"] || !names["policy.txt"] {
		t.Errorf("unexpected document names: %+v", names)
	}
}

func TestGovernanceServiceUploadDuplicateSkipped(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewGovernanceService(repository.NewGovernanceRepository(db), repository.NewUploadedDocumentRepository(db), t.TempDir())
	ctx := context.Background()

	first, err := svc.UploadDocument(ctx, "sess-1", "spec.txt", []byte("v1"))
	if err != nil {
		t.Fatalf("first upload failed: %v", err)
	}
	if first.Skipped {
		t.Fatalf("first upload should not be skipped")
	}
	if first.Content != "v1" {
		t.Errorf("expected extracted content, got %q", first.Content)
	}

	second, err := svc.UploadDocument(ctx, "sess-1", "spec.txt", []byte("v2"))
	if err != nil {
		t.Fatalf("second upload failed: %v", err)
	}
	if !second.Skipped {
		t.Errorf("duplicate name should be skipped")
	}

	// 不同会话不受影响
	other, err := svc.UploadDocument(ctx, "sess-2", "spec.txt", []byte("v3"))
	if err != nil {
		t.Fatalf("other session upload failed: %v", err)
	}
	if other.Skipped {
		t.Errorf("other session should not be skipped")
	}
}

func TestGovernanceServiceUploadUnsupportedType(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewGovernanceService(repository.NewGovernanceRepository(db), repository.NewUploadedDocumentRepository(db), t.TempDir())

	result, err := svc.UploadDocument(context.Background(), "sess-1", "scan.pdf", []byte{0x25, 0x50})
	if err != nil {
		t.Fatalf("UploadDocument failed: %v", err)
	}
	if result.ExtractErr == "" {
		t.Errorf("expected extraction error for pdf")
	}
	if result.StoredPath == "" {
		t.Errorf("file should still be stored")
	}
}

func TestClarificationServiceSeedOnceAndUpdate(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewClarificationService(repository.NewClarificationRepository(db))
	ctx := context.Background()

	if _, err := svc.Seed(ctx, "GOV-x", clarify.KindCommittee, statemachine.RiskLevelMedium, nil); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if _, err := svc.Seed(ctx, "GOV-x", clarify.KindCommittee, statemachine.RiskLevelMedium, nil); !errors.Is(err, repository.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	buckets, err := svc.Get(ctx, "GOV-x", clarify.KindCommittee)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	c1 := clarify.CommitteeBucketName(statemachine.CommitteeSlot1)
	if len(buckets[c1]) == 0 {
		t.Fatalf("expected committee 1 bucket, got %+v", buckets)
	}

	code := buckets[c1][0].UniqueCode
	updated, err := svc.UpdateAnswer(ctx, &UpdateAnswerRequest{
		GovernanceID: "GOV-x",
		Kind:         string(clarify.KindCommittee),
		Bucket:       c1,
		UniqueCode:   code,
		Answer:       "  two reviewers  ",
	})
	if err != nil {
		t.Fatalf("UpdateAnswer failed: %v", err)
	}
	if updated[c1][0].Answer != "two reviewers" {
		t.Errorf("answer should be trimmed, got %q", updated[c1][0].Answer)
	}
	if updated[c1][0].Status != clarify.StatusCompleted {
		t.Errorf("status should default to completed, got %s", updated[c1][0].Status)
	}
}

func TestClarificationServiceCommitteeGetEmptyBeforeSeed(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewClarificationService(repository.NewClarificationRepository(db))
	ctx := context.Background()

	buckets, err := svc.Get(ctx, "GOV-unseeded", clarify.KindCommittee)
	if err != nil {
		t.Fatalf("committee Get should tolerate missing set: %v", err)
	}
	if len(buckets) != 0 {
		t.Errorf("expected empty dataset, got %+v", buckets)
	}

	// 成本问卷缺档则是真实的未找到
	if _, err := svc.Get(ctx, "GOV-unseeded", clarify.KindCost); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound for cost, got %v", err)
	}
}
