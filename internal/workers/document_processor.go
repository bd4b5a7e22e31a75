// internal/workers/document_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/bilalmachraa82/propdocs/internal/adapters/storage"
	"github.com/bilalmachraa82/propdocs/internal/core/ports"
)

const (
	TypeDocumentProcess  = "document:process"
	TypeGenerateReport   = "report:generate"
	TypeCleanupOldJobs   = "cleanup:old_jobs"
	TypeCleanupTempFiles = "cleanup:temp_files"
)

// DocumentJobPayload represents the payload for document processing jobs
type DocumentJobPayload struct {
	JobID    string `json:"job_id"`
	FilePath string `json:"file_path"`
	Filename string `json:"filename"`
	Persist  bool   `json:"persist"`
	Archive  bool   `json:"archive"`
}

// DocumentJobResult represents the outcome persisted to the jobs table
type DocumentJobResult struct {
	Success        bool     `json:"success"`
	Status         string   `json:"status,omitempty"`
	PropertyID     *int64   `json:"property_id,omitempty"`
	MatchScore     float64  `json:"match_score,omitempty"`
	DocumentType   string   `json:"document_type,omitempty"`
	ReservationID  string   `json:"reservation_id,omitempty"`
	ArchiveKey     string   `json:"archive_key,omitempty"`
	Message        string   `json:"message,omitempty"`
	ErrorCode      string   `json:"error_code,omitempty"`
	ProcessingTime string   `json:"processing_time"`
	Warnings       []string `json:"warnings,omitempty"`
}

// DocumentProcessor runs uploaded documents through the extraction
// pipeline from the task queue.
type DocumentProcessor struct {
	pipeline ports.DocumentPipeline
	db       ports.Database
	archive  storage.StorageClient
	logger   *slog.Logger
}

// NewDocumentProcessor creates a new document processor. archive may be
// nil when no document archive is configured.
func NewDocumentProcessor(pipeline ports.DocumentPipeline, db ports.Database, archive storage.StorageClient, logger *slog.Logger) *DocumentProcessor {
	return &DocumentProcessor{
		pipeline: pipeline,
		db:       db,
		archive:  archive,
		logger:   logger.With(slog.String("processor", "document")),
	}
}

// ProcessDocument processes one uploaded document
func (p *DocumentProcessor) ProcessDocument(ctx context.Context, t *asynq.Task) error {
	start := time.Now()

	var payload DocumentJobPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	p.logger.InfoContext(ctx, "processing document",
		slog.String("job_id", payload.JobID),
		slog.String("filename", payload.Filename))

	_ = p.updateJobStatus(ctx, payload.JobID, "processing", nil)

	result := p.pipeline.Process(ctx, ports.ProcessParams{
		FilePath: payload.FilePath,
		Filename: payload.Filename,
		Persist:  payload.Persist,
	})

	jobResult := DocumentJobResult{
		Success:        result.Success,
		PropertyID:     result.PropertyID,
		MatchScore:     result.MatchScore,
		Message:        result.Message,
		ErrorCode:      result.Error,
		ProcessingTime: time.Since(start).String(),
	}
	if result.Validation != nil {
		jobResult.Status = string(result.Validation.Status)
		for _, w := range result.Validation.WarningFields {
			jobResult.Warnings = append(jobResult.Warnings, w)
		}
	}
	if result.DocumentInfo != nil {
		jobResult.DocumentType = string(result.DocumentInfo.Type)
	}
	if result.Record != nil && payload.Persist {
		jobResult.ReservationID = result.Record.ID.String()
	}

	if payload.Archive && p.archive != nil {
		if key, err := p.archiveDocument(ctx, payload.FilePath); err != nil {
			p.logger.WarnContext(ctx, "failed to archive document",
				slog.String("job_id", payload.JobID),
				slog.String("error", err.Error()))
		} else {
			jobResult.ArchiveKey = key
		}
	}

	status := "completed"
	if !result.Success {
		status = "failed"
	}

	resultJSON, _ := json.Marshal(jobResult)
	_ = p.updateJobStatusWithResult(ctx, payload.JobID, status, resultJSON)

	// Uploaded files land in the temp dir; remove them once processed.
	if strings.HasPrefix(payload.FilePath, os.TempDir()) {
		_ = os.Remove(payload.FilePath)
	}

	p.logger.InfoContext(ctx, "document processing completed",
		slog.String("job_id", payload.JobID),
		slog.String("status", status),
		slog.String("elapsed", jobResult.ProcessingTime))

	// Extraction failures are terminal results, not retryable task
	// errors: the document will not change between attempts.
	return nil
}

func (p *DocumentProcessor) archiveDocument(ctx context.Context, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	key := storage.DocumentKey(time.Now(), filepath.Ext(filePath))
	if _, err := p.archive.Upload(ctx, key, f, "application/pdf"); err != nil {
		return "", err
	}
	return key, nil
}

func (p *DocumentProcessor) updateJobStatus(ctx context.Context, jobID string, status string, errorMsg *string) error {
	query := `
		UPDATE async_jobs
		SET status = $2, error = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	_, err := p.db.Exec(ctx, query, jobID, status, errorMsg)
	return err
}

func (p *DocumentProcessor) updateJobStatusWithResult(ctx context.Context, jobID string, status string, result json.RawMessage) error {
	query := `
		UPDATE async_jobs
		SET status = $2, result = $3, completed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	_, err := p.db.Exec(ctx, query, jobID, status, result)
	return err
}
