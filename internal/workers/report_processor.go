// internal/workers/report_processor.go
package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"

	"github.com/bilalmachraa82/propdocs/internal/adapters/storage"
	"github.com/bilalmachraa82/propdocs/internal/core/domain"
	"github.com/bilalmachraa82/propdocs/internal/core/ports"
)

// ReportJobPayload selects the month a report covers
type ReportJobPayload struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// ReportProcessor generates monthly reservation reports as xlsx
// workbooks and stores them in the document archive.
type ReportProcessor struct {
	repo    ports.ReservationRepository
	archive storage.StorageClient
	logger  *slog.Logger
}

// NewReportProcessor creates a new report processor
func NewReportProcessor(repo ports.ReservationRepository, archive storage.StorageClient, logger *slog.Logger) *ReportProcessor {
	return &ReportProcessor{
		repo:    repo,
		archive: archive,
		logger:  logger.With(slog.String("processor", "report")),
	}
}

// GenerateReport builds the monthly reservations workbook
func (p *ReportProcessor) GenerateReport(ctx context.Context, t *asynq.Task) error {
	var payload ReportJobPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	now := time.Now()
	if payload.Year == 0 {
		payload.Year = now.Year()
	}
	if payload.Month == 0 {
		payload.Month = int(now.Month())
	}

	p.logger.InfoContext(ctx, "generating monthly report",
		slog.Int("year", payload.Year),
		slog.Int("month", payload.Month))

	from := time.Date(payload.Year, time.Month(payload.Month), 1, 0, 0, 0, 0, time.UTC)
	until := from.AddDate(0, 1, 0).Add(-time.Nanosecond)

	records, err := p.collectMonth(ctx, from, until)
	if err != nil {
		return fmt.Errorf("failed to load reservations: %w", err)
	}

	workbook, err := p.buildWorkbook(records)
	if err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}

	var buf bytes.Buffer
	if err := workbook.Write(&buf); err != nil {
		return fmt.Errorf("failed to serialize workbook: %w", err)
	}

	key := fmt.Sprintf("reports/%04d/%02d/reservations.xlsx", payload.Year, payload.Month)
	if _, err := p.archive.Upload(ctx, key, &buf,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"); err != nil {
		return fmt.Errorf("failed to store report: %w", err)
	}

	p.logger.InfoContext(ctx, "monthly report stored",
		slog.String("key", key),
		slog.Int("reservations", len(records)))

	return nil
}

func (p *ReportProcessor) collectMonth(ctx context.Context, from, until time.Time) ([]*domain.ReservationRecord, error) {
	var all []*domain.ReservationRecord
	page := 1
	for {
		result, err := p.repo.List(ctx, ports.ReservationListParams{
			CheckInFrom:  &from,
			CheckInUntil: &until,
			SortBy:       "check_in",
			SortOrder:    "asc",
			Page:         page,
			PageSize:     200,
		})
		if err != nil {
			return nil, err
		}
		for _, r := range result.Records {
			all = append(all, r)
		}
		if page >= result.TotalPages || len(result.Records) == 0 {
			break
		}
		page++
	}
	return all, nil
}

var reportHeader = []string{
	"Property", "Guest", "Check-in", "Check-out", "Platform", "Status",
	"Total", "Platform Fee", "Cleaning", "Check-in Fee", "Commission",
	"Team Payment", "Net",
}

func (p *ReportProcessor) buildWorkbook(records []*domain.ReservationRecord) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Reservations")
	if err != nil {
		return nil, err
	}

	header := sheet.AddRow()
	for _, col := range reportHeader {
		header.AddCell().SetString(col)
	}

	totals := struct {
		total, net decimal.Decimal
	}{}

	for _, r := range records {
		row := sheet.AddRow()
		row.AddCell().SetString(r.PropertyName)
		row.AddCell().SetString(r.GuestName)
		row.AddCell().SetString(formatReportDate(r.CheckInDate))
		row.AddCell().SetString(formatReportDate(r.CheckOutDate))
		row.AddCell().SetString(string(r.Platform))
		row.AddCell().SetString(string(r.Status))
		row.AddCell().SetString(r.TotalAmount.StringFixed(2))
		row.AddCell().SetString(r.PlatformFee.StringFixed(2))
		row.AddCell().SetString(r.CleaningFee.StringFixed(2))
		row.AddCell().SetString(r.CheckInFee.StringFixed(2))
		row.AddCell().SetString(r.CommissionFee.StringFixed(2))
		row.AddCell().SetString(r.TeamPayment.StringFixed(2))
		row.AddCell().SetString(r.NetAmount.StringFixed(2))

		totals.total = totals.total.Add(r.TotalAmount)
		totals.net = totals.net.Add(r.NetAmount)
	}

	footer := sheet.AddRow()
	footer.AddCell().SetString("TOTAL")
	for i := 1; i < 6; i++ {
		footer.AddCell()
	}
	footer.AddCell().SetString(totals.total.StringFixed(2))
	for i := 7; i < 12; i++ {
		footer.AddCell()
	}
	footer.AddCell().SetString(totals.net.StringFixed(2))

	return file, nil
}

func formatReportDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
