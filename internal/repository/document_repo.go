package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/govpilot/backend/internal/model"
)

// uploadedDocumentRepository 上传文档仓储实现
type uploadedDocumentRepository struct {
	db *gorm.DB
}

// NewUploadedDocumentRepository 创建上传文档仓储
func NewUploadedDocumentRepository(db *gorm.DB) UploadedDocumentRepository {
	return &uploadedDocumentRepository{db: db}
}

func (r *uploadedDocumentRepository) Create(ctx context.Context, doc *model.UploadedDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *uploadedDocumentRepository) ListBySessionID(ctx context.Context, sessionID string) ([]model.UploadedDocument, error) {
	var docs []model.UploadedDocument
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// ExistsBySessionIDAndName 判断同一会话内是否已存在同名文件，用于上传去重
func (r *uploadedDocumentRepository) ExistsBySessionIDAndName(ctx context.Context, sessionID, fileName string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.UploadedDocument{}).
		Where("session_id = ? AND file_name = ?", sessionID, fileName).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
