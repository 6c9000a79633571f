package model

import "time"

// Document lifecycle states.
const (
	DocumentStatusPending    = "pending"
	DocumentStatusProcessing = "processing"
	DocumentStatusComplete   = "complete"
	DocumentStatusFailed     = "failed"
)

// Document is a knowledge-base source file. Its chunks live in the vector
// index keyed by "<id>#<sequence_index>".
type Document struct {
	ID             string     `json:"document_id" gorm:"primaryKey;type:varchar(64)"`
	Filename       string     `json:"filename" gorm:"type:varchar(255);not null"`
	FileType       string     `json:"file_type" gorm:"type:varchar(32)"`
	Status         string     `json:"status" gorm:"type:varchar(16);index;default:'pending'"`
	ChunkCount     int        `json:"chunk_count" gorm:"default:0"`
	ChunksUpserted int        `json:"chunks_upserted" gorm:"default:0"`
	Error          string     `json:"error,omitempty" gorm:"type:text"`
	ProcessedAt    *time.Time `json:"processed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Document.
func (Document) TableName() string {
	return "documents"
}

// IngestTextRequest is the body of POST /v1/documents/text.
type IngestTextRequest struct {
	DocumentID string `json:"document_id" validate:"omitempty,max=64,trimmed"`
	Filename   string `json:"filename" validate:"required,max=255"`
	Text       string `json:"text" validate:"required"`
}
