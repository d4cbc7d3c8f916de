package models

// DocumentResponse describes a processed upload.
type DocumentResponse struct {
	FileName  string `json:"file_name"`
	CharCount int    `json:"char_count"`
	Size      string `json:"size"`
	Preview   string `json:"preview"`
}

// GenerateRequest is the body of a generation request.
type GenerateRequest struct {
	MCQCount   int    `json:"mcq_count" binding:"required,min=1,max=30"`
	ShortCount int    `json:"short_count" binding:"required,min=1,max=20"`
	Difficulty string `json:"difficulty" binding:"required,oneof=Easy Medium Hard Mixed"`
	TopicFocus string `json:"topic_focus"`
}

// GenerateResponse carries a successful generation result.
type GenerateResponse struct {
	Questions       string  `json:"questions"`
	GenerationTime  float64 `json:"generation_time_seconds"`
	GenerationCount int     `json:"generation_count"`
	DownloadName    string  `json:"download_name"`
}

// ContextSummary is a saved context without its content.
type ContextSummary struct {
	Key       string `json:"key"`
	File      string `json:"file"`
	Timestamp string `json:"timestamp"`
	Size      string `json:"size"`
}

// SessionResponse summarizes the caller's session state.
type SessionResponse struct {
	CurrentFile     string           `json:"current_file"`
	CharCount       int              `json:"char_count"`
	GenerationCount int              `json:"generation_count"`
	SavedContexts   []ContextSummary `json:"saved_contexts"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error       string   `json:"error"`
	Code        string   `json:"code,omitempty"`
	WaitSeconds *int     `json:"wait_seconds,omitempty"`
	Remediation []string `json:"remediation,omitempty"`
}

// Error codes surfaced to clients.
const (
	CodeUnsupportedFileType = "unsupported_file_type"
	CodeExtractionFailed    = "extraction_failed"
	CodeRateLimited         = "rate_limited"
	CodeLocked              = "locked"
	CodeQuotaExceeded       = "quota_exceeded"
	CodeModelUnavailable    = "model_unavailable"
	CodeGenerationFailed    = "generation_failed"
)
