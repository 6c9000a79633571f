package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/onboarding-assistant/internal/model"
	"github.com/kart-io/onboarding-assistant/pkg/utils/errors"
)

type documents struct {
	db *gorm.DB
}

func newDocuments(db *gorm.DB) *documents {
	return &documents{db}
}

// Create creates a new document row.
func (d *documents) Create(ctx context.Context, doc *model.Document) error {
	err := d.db.WithContext(ctx).Create(doc).Error
	if err != nil && isDuplicate(err) {
		return errors.ErrDocumentExists.WithCause(err)
	}
	return dbErr(err, nil)
}

// Get retrieves a document by ID.
func (d *documents) Get(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, dbErr(err, errors.ErrDocumentNotFound)
	}
	return &doc, nil
}

// List lists documents, newest first.
func (d *documents) List(ctx context.Context, offset, limit int) (int64, []*model.Document, error) {
	var count int64
	var docs []*model.Document

	if err := d.db.WithContext(ctx).Model(&model.Document{}).Count(&count).Error; err != nil {
		return 0, nil, dbErr(err, nil)
	}
	if err := d.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).Find(&docs).Error; err != nil {
		return 0, nil, dbErr(err, nil)
	}

	return count, docs, nil
}

// UpdateStatus sets the processing state of a document.
func (d *documents) UpdateStatus(ctx context.Context, id string, upd DocumentUpdate) error {
	res := d.db.WithContext(ctx).Model(&model.Document{}).Where("id = ?", id).Updates(map[string]any{
		"status":          upd.Status,
		"chunk_count":     upd.ChunkCount,
		"chunks_upserted": upd.ChunksUpserted,
		"error":           upd.Error,
		"processed_at":    upd.ProcessedAt,
	})
	if res.Error != nil {
		return dbErr(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return errors.ErrDocumentNotFound
	}
	return nil
}

// Delete deletes a document row.
func (d *documents) Delete(ctx context.Context, id string) error {
	res := d.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Document{})
	if res.Error != nil {
		return dbErr(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return errors.ErrDocumentNotFound
	}
	return nil
}
