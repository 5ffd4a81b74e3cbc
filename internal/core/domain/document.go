package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

// Document tracks an asynchronously ingested upload.
type Document struct {
	ID            string         `json:"id"`
	Filename      string         `json:"filename"`
	MimeType      string         `json:"mime_type"`
	StoragePath   string         `json:"storage_path"`
	Status        DocumentStatus `json:"status"`
	Pages         int            `json:"pages"`
	ChunksIndexed int            `json:"chunks_indexed"`
	Error         string         `json:"error,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Page is one unit of extracted text. Number starts at 1; Text may be empty.
type Page struct {
	Number int
	Text   string
}

type SourceFile struct {
	Name string
	Data []byte
}

type IngestStage string

const (
	StageFormat  IngestStage = "format"
	StageExtract IngestStage = "extract"
	StageIndex   IngestStage = "index"
)

type IngestError struct {
	File    string      `json:"file,omitempty"`
	Stage   IngestStage `json:"stage"`
	Message string      `json:"message"`
	Causes  []string    `json:"causes,omitempty"`
}

// IngestReport reconciles: FilesReceived == FilesProcessed + number of
// file-scoped errors, and ChunksIndexed <= ChunksProduced.
type IngestReport struct {
	FilesReceived  int           `json:"files_received"`
	FilesProcessed int           `json:"files_processed"`
	Pages          int           `json:"pages"`
	ChunksProduced int           `json:"chunks_produced"`
	ChunksIndexed  int           `json:"chunks_indexed"`
	Errors         []IngestError `json:"errors"`
}
