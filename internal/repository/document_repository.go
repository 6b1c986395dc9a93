package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"docchat-relay/internal/model"
)

// DocumentRepository reads the documents table directly over SQL. The table is
// owned by the ingestion workflow, so nothing here migrates or writes it.
type DocumentRepository struct {
	db    *gorm.DB
	table string
}

func NewDocumentRepository(db *gorm.DB, table string) *DocumentRepository {
	if table == "" {
		table = "documents"
	}
	return &DocumentRepository{db: db, table: table}
}

func (r *DocumentRepository) ListDocuments(ctx context.Context) ([]model.DocumentRecord, error) {
	var docs []model.DocumentRecord
	err := r.db.WithContext(ctx).
		Table(r.table).
		Select("id", "metadata").
		Order("id DESC").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db failed: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
