// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"

	"github.com/bilalmachraa82/propdocs/internal/core/ports"
)

// CleanupConfig tunes the periodic cleanup tasks
type CleanupConfig struct {
	TempDir       string
	TempFileAge   time.Duration
	JobRetention  time.Duration
	TextRetention time.Duration
}

// CleanupProcessor handles periodic housekeeping tasks
type CleanupProcessor struct {
	db     ports.Database
	cfg    CleanupConfig
	logger *slog.Logger
}

// NewCleanupProcessor creates a new cleanup processor
func NewCleanupProcessor(db ports.Database, cfg CleanupConfig, logger *slog.Logger) *CleanupProcessor {
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if cfg.TempFileAge == 0 {
		cfg.TempFileAge = 24 * time.Hour
	}
	if cfg.JobRetention == 0 {
		cfg.JobRetention = 90 * 24 * time.Hour
	}
	if cfg.TextRetention == 0 {
		cfg.TextRetention = 180 * 24 * time.Hour
	}
	return &CleanupProcessor{
		db:     db,
		cfg:    cfg,
		logger: logger.With(slog.String("processor", "cleanup")),
	}
}

// CleanupOldJobs removes finished job records past the retention window
// and strips stored raw text from old reservations.
func (p *CleanupProcessor) CleanupOldJobs(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "cleaning up old jobs")

	result, err := p.db.Exec(ctx, `
		DELETE FROM async_jobs
		WHERE completed_at IS NOT NULL
		  AND completed_at < NOW() - $1::interval`,
		fmt.Sprintf("%d hours", int(p.cfg.JobRetention.Hours())))
	if err != nil {
		return fmt.Errorf("failed to cleanup old jobs: %w", err)
	}

	jobsDeleted := result.RowsAffected()

	// Raw document text is kept for auditing only; drop it once the
	// retention window passes to keep the table small.
	result, err = p.db.Exec(ctx, `
		UPDATE reservations
		SET raw_text = ''
		WHERE raw_text <> ''
		  AND created_at < NOW() - $1::interval`,
		fmt.Sprintf("%d hours", int(p.cfg.TextRetention.Hours())))
	if err != nil {
		return fmt.Errorf("failed to strip old raw text: %w", err)
	}

	p.logger.InfoContext(ctx, "old data cleaned up",
		slog.Int64("jobs_deleted", jobsDeleted),
		slog.Int64("texts_stripped", result.RowsAffected()))

	return nil
}

// CleanupTempFiles removes stale uploads from the temp directory
func (p *CleanupProcessor) CleanupTempFiles(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "cleaning up temp files")

	var deletedCount int
	err := filepath.Walk(p.cfg.TempDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && time.Since(info.ModTime()) > p.cfg.TempFileAge {
			if err := os.Remove(path); err != nil {
				p.logger.WarnContext(ctx, "failed to delete temp file",
					slog.String("file", path),
					slog.String("error", err.Error()))
			} else {
				deletedCount++
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk temp directory: %w", err)
	}

	p.logger.InfoContext(ctx, "temp files cleaned up",
		slog.Int("files_deleted", deletedCount))

	return nil
}
