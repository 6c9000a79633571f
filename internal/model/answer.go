package model

// Citation references a chunk that was placed in an answer's context.
type Citation struct {
	ChunkID          string  `json:"chunk_id"`
	SourceDocumentID string  `json:"source_document_id"`
	Snippet          string  `json:"snippet"`
	Score            float32 `json:"score"`
}

// Answer is the result of a knowledge-base question.
type Answer struct {
	Text        string     `json:"answer"`
	Citations   []Citation `json:"citations"`
	ContextUsed bool       `json:"context_used"`
	Cached      bool       `json:"cached,omitempty"`
}

// AskRequest is the body of POST /v1/ask.
type AskRequest struct {
	Question         string `json:"question" validate:"required,max=4000"`
	SourceDocumentID string `json:"source_document_id" validate:"omitempty,max=64"`
	EmployeeID       string `json:"employee_id" validate:"omitempty,max=64"`
}
