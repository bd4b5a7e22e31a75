// internal/workers/report_processor_test.go
package workers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"
	"go.uber.org/mock/gomock"

	"github.com/bilalmachraa82/propdocs/internal/adapters/storage"
	"github.com/bilalmachraa82/propdocs/internal/core/domain"
	"github.com/bilalmachraa82/propdocs/internal/core/ports"
	"github.com/bilalmachraa82/propdocs/internal/workers"
	"github.com/bilalmachraa82/propdocs/test/helpers"
	"github.com/bilalmachraa82/propdocs/test/mocks"
)

func TestReportProcessor_GenerateReport(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockReservationRepository(ctrl)
	archive := storage.NewLocalStorage(t.TempDir(), helpers.TestLogger())

	records := []*domain.ReservationRecord{
		helpers.CreateTestReservation(func(r *domain.ReservationRecord) {
			r.GuestName = "Maria Santos"
			r.PropertyName = "Aroeira I"
			r.TotalAmount = decimal.NewFromInt(1000)
			r.NetAmount = decimal.NewFromInt(650)
			r.CheckInDate = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
			r.CheckOutDate = time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
		}),
		helpers.CreateTestReservation(func(r *domain.ReservationRecord) {
			r.GuestName = "John Walker"
			r.PropertyName = "Almada Noronha 2"
			r.TotalAmount = decimal.NewFromInt(500)
			r.NetAmount = decimal.NewFromInt(400)
			r.CheckInDate = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
			r.CheckOutDate = time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
		}),
	}

	mockRepo.EXPECT().
		List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params ports.ReservationListParams) (*ports.ReservationListResult, error) {
			assert.NotNil(t, params.CheckInFrom)
			assert.NotNil(t, params.CheckInUntil)
			assert.Equal(t, 6, int(params.CheckInFrom.Month()))
			return &ports.ReservationListResult{
				Records:    records,
				Page:       1,
				PageSize:   200,
				TotalCount: int64(len(records)),
				TotalPages: 1,
			}, nil
		})

	processor := workers.NewReportProcessor(mockRepo, archive, helpers.TestLogger())

	payload, err := json.Marshal(workers.ReportJobPayload{Year: 2024, Month: 6})
	require.NoError(t, err)

	err = processor.GenerateReport(context.Background(), asynq.NewTask(workers.TypeGenerateReport, payload))
	require.NoError(t, err)

	data, err := archive.Download(context.Background(), "reports/2024/06/reservations.xlsx")
	require.NoError(t, err)

	workbook, err := xlsx.OpenReaderAt(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, workbook.Sheets, 1)

	sheet := workbook.Sheets[0]
	// Header + 2 records + totals footer.
	assert.Equal(t, 4, sheet.MaxRow)

	row, err := sheet.Row(1)
	require.NoError(t, err)
	assert.Equal(t, "Aroeira I", row.GetCell(0).String())
	assert.Equal(t, "Maria Santos", row.GetCell(1).String())
	assert.Equal(t, "2024-06-01", row.GetCell(2).String())

	footer, err := sheet.Row(3)
	require.NoError(t, err)
	assert.Equal(t, "TOTAL", footer.GetCell(0).String())
	assert.Equal(t, "1500.00", footer.GetCell(6).String())
	assert.Equal(t, "1050.00", footer.GetCell(12).String())
}
