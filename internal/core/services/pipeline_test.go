// internal/core/services/pipeline_test.go
package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bilalmachraa82/propdocs/internal/core/domain"
	"github.com/bilalmachraa82/propdocs/internal/core/extract"
	"github.com/bilalmachraa82/propdocs/internal/core/match"
	"github.com/bilalmachraa82/propdocs/internal/core/ports"
	"github.com/bilalmachraa82/propdocs/test/helpers"
	"github.com/bilalmachraa82/propdocs/test/mocks"
)

const checkInDocText = `Booking.com Reservation Confirmation
Property: Aroeira 1
Guest: Maria Santos
Check-in: 2024-06-01
Check-out: 2024-06-05
Total: 480.00 EUR`

const extractionReply = `{"propertyName":"Aroeira 1","guestName":"Maria Santos",` +
	`"checkInDate":"2024-06-01","checkOutDate":"2024-06-05",` +
	`"totalAmount":"480.00","platform":"booking"}`

type pipelineMocks struct {
	text    *mocks.MockTextExtractor
	llm     *mocks.MockLLMClient
	catalog *mocks.MockPropertyCatalog
	repo    *mocks.MockReservationRepository
	cache   *mocks.MockCacheRepository
}

func newPipelineMocks(ctrl *gomock.Controller) *pipelineMocks {
	return &pipelineMocks{
		text:    mocks.NewMockTextExtractor(ctrl),
		llm:     mocks.NewMockLLMClient(ctrl),
		catalog: mocks.NewMockPropertyCatalog(ctrl),
		repo:    mocks.NewMockReservationRepository(ctrl),
		cache:   mocks.NewMockCacheRepository(ctrl),
	}
}

func (m *pipelineMocks) pipeline(t *testing.T, cache ports.CacheRepository) *DocumentPipeline {
	t.Helper()
	logger := helpers.TestLogger()
	manual := extract.NewManualExtractor(extract.DefaultManualConfig(), logger)
	extractor := extract.NewStructuredExtractor(m.llm, manual, extract.DefaultExtractorConfig(), logger)
	return NewDocumentPipeline(
		m.text,
		extractor,
		NewValidator(logger),
		NewAssembler(logger),
		match.New(match.DefaultConfig(), logger),
		m.catalog,
		m.repo,
		cache,
		PipelineConfig{CacheTTL: time.Hour},
		logger,
	)
}

func TestProcess_HappyPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	m := newPipelineMocks(ctrl)

	m.text.EXPECT().ExtractText(gomock.Any(), "/tmp/doc.pdf").Return(checkInDocText, nil)
	m.llm.EXPECT().Generate(gomock.Any(), gomock.Any()).
		Return(&ports.GenerateResponse{Text: extractionReply, FinishReason: ports.FinishStop}, nil)
	m.catalog.EXPECT().ListProperties(gomock.Any()).
		Return([]domain.Property{*aroeiraProperty()}, nil)

	result := m.pipeline(t, nil).Process(context.Background(), ports.ProcessParams{
		FilePath: "/tmp/doc.pdf",
		Filename: "doc.pdf",
	})

	assert.True(t, result.Success, result.Message)
	require.NotNil(t, result.PropertyID)
	assert.Equal(t, int64(1), *result.PropertyID)
	assert.GreaterOrEqual(t, result.MatchScore, 60.0)
	require.NotNil(t, result.DocumentInfo)
	assert.Equal(t, domain.DocTypeCheckIn, result.DocumentInfo.Type)
	require.NotNil(t, result.Record)
	assert.Equal(t, domain.StatusValid, result.Record.Status)
}

// Unreadable documents must be rejected before any model call.
func TestProcess_InsufficientText(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	m := newPipelineMocks(ctrl)

	m.text.EXPECT().ExtractText(gomock.Any(), gomock.Any()).
		Return("", domain.ErrInsufficientText)

	result := m.pipeline(t, nil).Process(context.Background(), ports.ProcessParams{
		FilePath: "/tmp/empty.pdf",
		Filename: "empty.pdf",
	})

	assert.False(t, result.Success)
	assert.Equal(t, domain.CodeInsufficientText, result.Error)
}

func TestProcess_NothingExtractedRoutesToManualEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	m := newPipelineMocks(ctrl)

	const garbage = "lorem ipsum dolor sit amet"
	m.text.EXPECT().ExtractText(gomock.Any(), gomock.Any()).Return(garbage, nil)
	m.llm.EXPECT().Generate(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("unavailable"))

	result := m.pipeline(t, nil).Process(context.Background(), ports.ProcessParams{
		FilePath: "/tmp/scan.pdf",
		Filename: "scan.pdf",
	})

	assert.False(t, result.Success)
	assert.Equal(t, domain.CodeExtractionFailed, result.Error)
	require.NotNil(t, result.Validation)
	assert.Equal(t, domain.StatusFailed, result.Validation.Status)
	// The raw text travels with the result so an operator can re-key it.
	require.NotNil(t, result.Data)
	assert.Equal(t, garbage, result.Data.RawText)
}

func TestProcess_CatalogUnavailableStillSucceeds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	m := newPipelineMocks(ctrl)

	m.text.EXPECT().ExtractText(gomock.Any(), gomock.Any()).Return(checkInDocText, nil)
	m.llm.EXPECT().Generate(gomock.Any(), gomock.Any()).
		Return(&ports.GenerateResponse{Text: extractionReply, FinishReason: ports.FinishStop}, nil)
	m.catalog.EXPECT().ListProperties(gomock.Any()).
		Return(nil, errors.New("connection refused"))

	result := m.pipeline(t, nil).Process(context.Background(), ports.ProcessParams{
		FilePath: "/tmp/doc.pdf",
		Filename: "doc.pdf",
	})

	assert.True(t, result.Success)
	assert.Nil(t, result.PropertyID)
	require.NotNil(t, result.Validation)
	assert.Equal(t, domain.StatusNeedsReview, result.Validation.Status)
}

func TestProcess_PersistSavesRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	m := newPipelineMocks(ctrl)

	m.text.EXPECT().ExtractText(gomock.Any(), gomock.Any()).Return(checkInDocText, nil)
	m.llm.EXPECT().Generate(gomock.Any(), gomock.Any()).
		Return(&ports.GenerateResponse{Text: extractionReply, FinishReason: ports.FinishStop}, nil)
	m.catalog.EXPECT().ListProperties(gomock.Any()).
		Return([]domain.Property{*aroeiraProperty()}, nil)

	var saved *domain.ReservationRecord
	m.repo.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, record *domain.ReservationRecord) error {
			saved = record
			return nil
		})

	result := m.pipeline(t, nil).Process(context.Background(), ports.ProcessParams{
		FilePath: "/tmp/doc.pdf",
		Filename: "doc.pdf",
		Persist:  true,
	})

	assert.True(t, result.Success, result.Message)
	require.NotNil(t, saved)
	assert.NotEqual(t, uuid.Nil, saved.ID)
	assert.Equal(t, "Maria Santos", saved.GuestName)
}

func TestProcess_SaveFailureIsReported(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	m := newPipelineMocks(ctrl)

	m.text.EXPECT().ExtractText(gomock.Any(), gomock.Any()).Return(checkInDocText, nil)
	m.llm.EXPECT().Generate(gomock.Any(), gomock.Any()).
		Return(&ports.GenerateResponse{Text: extractionReply, FinishReason: ports.FinishStop}, nil)
	m.catalog.EXPECT().ListProperties(gomock.Any()).
		Return([]domain.Property{*aroeiraProperty()}, nil)
	m.repo.EXPECT().Save(gomock.Any(), gomock.Any()).
		Return(errors.New("duplicate key"))

	result := m.pipeline(t, nil).Process(context.Background(), ports.ProcessParams{
		FilePath: "/tmp/doc.pdf",
		Filename: "doc.pdf",
		Persist:  true,
	})

	assert.False(t, result.Success)
	assert.Equal(t, domain.CodeInternalError, result.Error)
	// The extraction itself survived; the caller can retry the save.
	require.NotNil(t, result.Record)
}

func TestProcess_CacheMissStoresExtraction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	m := newPipelineMocks(ctrl)

	key := extractionCacheKey(checkInDocText)

	m.text.EXPECT().ExtractText(gomock.Any(), gomock.Any()).Return(checkInDocText, nil)
	m.cache.EXPECT().Get(gomock.Any(), key, gomock.Any()).
		Return(errors.New("cache miss"))
	m.llm.EXPECT().Generate(gomock.Any(), gomock.Any()).
		Return(&ports.GenerateResponse{Text: extractionReply, FinishReason: ports.FinishStop}, nil)
	m.cache.EXPECT().SetWithTTL(gomock.Any(), key, gomock.Any(), time.Hour).
		Return(nil)
	m.catalog.EXPECT().ListProperties(gomock.Any()).
		Return([]domain.Property{*aroeiraProperty()}, nil)

	result := m.pipeline(t, m.cache).Process(context.Background(), ports.ProcessParams{
		FilePath: "/tmp/doc.pdf",
		Filename: "doc.pdf",
	})

	assert.True(t, result.Success, result.Message)
}

func TestProcess_CacheHitSkipsModel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	m := newPipelineMocks(ctrl)

	m.text.EXPECT().ExtractText(gomock.Any(), gomock.Any()).Return(checkInDocText, nil)
	m.cache.EXPECT().Get(gomock.Any(), extractionCacheKey(checkInDocText), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, dest interface{}) error {
			cached := dest.(*domain.ExtractedReservation)
			*cached = domain.ExtractedReservation{
				PropertyName: "Aroeira 1",
				GuestName:    "Maria Santos",
				CheckInDate:  "2024-06-01",
				CheckOutDate: "2024-06-05",
				TotalAmount:  "480.00",
				Platform:     domain.PlatformBooking,
			}
			return nil
		})
	m.catalog.EXPECT().ListProperties(gomock.Any()).
		Return([]domain.Property{*aroeiraProperty()}, nil)

	result := m.pipeline(t, m.cache).Process(context.Background(), ports.ProcessParams{
		FilePath: "/tmp/doc.pdf",
		Filename: "doc.pdf",
	})

	assert.True(t, result.Success, result.Message)
	require.NotNil(t, result.PropertyID)
}

func TestProcess_PanicIsRecovered(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	m := newPipelineMocks(ctrl)

	m.text.EXPECT().ExtractText(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string) (string, error) {
			panic("malformed xref table")
		})

	result := m.pipeline(t, nil).Process(context.Background(), ports.ProcessParams{
		FilePath: "/tmp/broken.pdf",
		Filename: "broken.pdf",
	})

	assert.False(t, result.Success)
	assert.Equal(t, domain.CodeInternalError, result.Error)
	assert.Contains(t, result.Message, "broken.pdf")
}
