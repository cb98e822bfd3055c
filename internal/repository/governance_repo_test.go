package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/govpilot/backend/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(
		&model.GovernanceCase{},
		&model.RiskAnalysis{},
		&model.ClarificationSet{},
		&model.ChatTurn{},
		&model.UploadedDocument{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestGovernanceRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGovernanceRepository(db)
	ctx := context.Background()

	gc := &model.GovernanceCase{
		GovernanceID:      "GOV-1a2b3c4d",
		UserChatSessionID: "sess-1",
		UserName:          "alice",
		UseCase:           "ai screening tool",
	}
	gc.SetDocuments([]model.RelevantDocument{{DocumentName: "policy.md", DocumentURL: "/data/policy.md"}})
	if err := repo.Create(ctx, gc); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByGovernanceID(ctx, "GOV-1a2b3c4d")
	if err != nil {
		t.Fatalf("GetByGovernanceID failed: %v", err)
	}
	if got.UserName != "alice" {
		t.Errorf("expected alice, got %s", got.UserName)
	}
	docs := got.Documents()
	if len(docs) != 1 || docs[0].DocumentName != "policy.md" {
		t.Errorf("unexpected documents: %+v", docs)
	}

	// 重复建档应返回 ErrAlreadyExists
	dup := &model.GovernanceCase{GovernanceID: "GOV-1a2b3c4d", UserName: "bob"}
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGovernanceRepository_GetNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGovernanceRepository(db)

	_, err := repo.GetByGovernanceID(context.Background(), "GOV-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGovernanceRepository_Search(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGovernanceRepository(db)
	ctx := context.Background()

	for _, id := range []string{"GOV-aabbccdd", "GOV-aa112233", "GOV-ffee0011"} {
		if err := repo.Create(ctx, &model.GovernanceCase{GovernanceID: id}); err != nil {
			t.Fatalf("Create %s failed: %v", id, err)
		}
	}

	matches, err := repo.Search(ctx, "GOV-aa")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("expected 2 matches, got %d", len(matches))
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 cases, got %d", len(all))
	}
}

func TestRiskAnalysisRepository_Latest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRiskAnalysisRepository(db)
	ctx := context.Background()

	first := &model.RiskAnalysis{RiskAnalysisID: "RISK-00000001", GovernanceID: "GOV-x", RiskLevel: "low"}
	second := &model.RiskAnalysis{RiskAnalysisID: "RISK-00000002", GovernanceID: "GOV-x", RiskLevel: "high"}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create first failed: %v", err)
	}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("Create second failed: %v", err)
	}

	latest, err := repo.GetLatestByGovernanceID(ctx, "GOV-x")
	if err != nil {
		t.Fatalf("GetLatestByGovernanceID failed: %v", err)
	}
	if latest.RiskAnalysisID != "RISK-00000002" {
		t.Errorf("expected latest RISK-00000002, got %s", latest.RiskAnalysisID)
	}

	list, err := repo.ListByGovernanceID(ctx, "GOV-x")
	if err != nil {
		t.Fatalf("ListByGovernanceID failed: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 analyses, got %d", len(list))
	}
}

func TestClarificationRepository_CreateOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClarificationRepository(db)
	ctx := context.Background()

	cs := &model.ClarificationSet{GovernanceID: "GOV-x", Kind: "cost"}
	if err := repo.Create(ctx, cs); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	// 同一 governance_id + kind 再建应拒绝
	if err := repo.Create(ctx, &model.ClarificationSet{GovernanceID: "GOV-x", Kind: "cost"}); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
	// 不同 kind 可以并存
	if err := repo.Create(ctx, &model.ClarificationSet{GovernanceID: "GOV-x", Kind: "environment"}); err != nil {
		t.Errorf("different kind should be allowed, got %v", err)
	}

	got, err := repo.GetByGovernanceIDAndKind(ctx, "GOV-x", "cost")
	if err != nil {
		t.Fatalf("GetByGovernanceIDAndKind failed: %v", err)
	}
	if got.Kind != "cost" {
		t.Errorf("expected kind cost, got %s", got.Kind)
	}

	if _, err := repo.GetByGovernanceIDAndKind(ctx, "GOV-x", "committee"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestChatTurnRepository_Order(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChatTurnRepository(db)
	ctx := context.Background()

	turns := []model.ChatTurn{
		{GovernanceID: "GOV-x", SessionID: "s1", Role: model.TurnRoleUser, RawText: "hello"},
		{GovernanceID: "GOV-x", SessionID: "s1", Role: model.TurnRoleAgent, RawText: "hi"},
		{GovernanceID: "GOV-y", SessionID: "s2", Role: model.TurnRoleUser, RawText: "other"},
	}
	for i := range turns {
		if err := repo.Create(ctx, &turns[i]); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	got, err := repo.ListByGovernanceID(ctx, "GOV-x")
	if err != nil {
		t.Fatalf("ListByGovernanceID failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(got))
	}
	if got[0].Role != model.TurnRoleUser || got[1].Role != model.TurnRoleAgent {
		t.Errorf("turns out of order: %s, %s", got[0].Role, got[1].Role)
	}

	bySession, err := repo.ListBySessionID(ctx, "s2")
	if err != nil {
		t.Fatalf("ListBySessionID failed: %v", err)
	}
	if len(bySession) != 1 || bySession[0].RawText != "other" {
		t.Errorf("unexpected session turns: %+v", bySession)
	}
}

func TestUploadedDocumentRepository_Exists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUploadedDocumentRepository(db)
	ctx := context.Background()

	doc := &model.UploadedDocument{SessionID: "s1", FileName: "spec.txt", StoredPath: "/data/123_spec.txt"}
	if err := repo.Create(ctx, doc); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	exists, err := repo.ExistsBySessionIDAndName(ctx, "s1", "spec.txt")
	if err != nil {
		t.Fatalf("ExistsBySessionIDAndName failed: %v", err)
	}
	if !exists {
		t.Errorf("expected document to exist")
	}

	exists, err = repo.ExistsBySessionIDAndName(ctx, "s2", "spec.txt")
	if err != nil {
		t.Fatalf("ExistsBySessionIDAndName failed: %v", err)
	}
	if exists {
		t.Errorf("different session should not see document")
	}

	docs, err := repo.ListBySessionID(ctx, "s1")
	if err != nil {
		t.Fatalf("ListBySessionID failed: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("expected 1 document, got %d", len(docs))
	}
}
