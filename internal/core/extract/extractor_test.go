// internal/core/extract/extractor_test.go
package extract_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bilalmachraa82/propdocs/internal/core/domain"
	"github.com/bilalmachraa82/propdocs/internal/core/extract"
	"github.com/bilalmachraa82/propdocs/internal/core/ports"
	"github.com/bilalmachraa82/propdocs/test/helpers"
	"github.com/bilalmachraa82/propdocs/test/mocks"
)

const sampleText = `Booking.com reservation
Maria Santos maria.santos@example.com
Aroeira I
01-06-2024
05-06-2024
Total: 480.00`

func newExtractor(t *testing.T, llm ports.LLMClient) *extract.StructuredExtractor {
	t.Helper()
	manual := extract.NewManualExtractor(extract.DefaultManualConfig(), helpers.TestLogger())
	return extract.NewStructuredExtractor(llm, manual, extract.DefaultExtractorConfig(), helpers.TestLogger())
}

func TestStructuredExtractor_HappyPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := mocks.NewMockLLMClient(ctrl)
	mockLLM.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		Return(&ports.GenerateResponse{
			Text: "```json\n" +
				`{"propertyName":"Aroeira I","guestName":"Maria Santos",` +
				`"checkInDate":"2024-06-01","checkOutDate":"2024-06-05",` +
				`"totalAmount":"480.00","platform":"booking"}` + "\n```",
			FinishReason: ports.FinishStop,
		}, nil)

	data, err := newExtractor(t, mockLLM).Extract(context.Background(), sampleText, domain.DocumentInfo{Type: domain.DocTypeCheckIn})
	require.NoError(t, err)
	require.NotNil(t, data)

	assert.Equal(t, "Maria Santos", data.GuestName)
	assert.Equal(t, "Aroeira I", data.PropertyName)
	assert.Equal(t, "2024-06-01", data.CheckInDate)
	assert.Equal(t, domain.PlatformBooking, data.Platform)
	assert.Equal(t, sampleText, data.RawText)
}

func TestStructuredExtractor_ShrinksInputOnMaxTokens(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := mocks.NewMockLLMClient(ctrl)

	var promptLens []int
	first := mockLLM.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ports.GenerateRequest) (*ports.GenerateResponse, error) {
			promptLens = append(promptLens, len(req.Prompt))
			return &ports.GenerateResponse{FinishReason: ports.FinishMaxTokens}, nil
		})
	mockLLM.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		After(first).
		DoAndReturn(func(_ context.Context, req ports.GenerateRequest) (*ports.GenerateResponse, error) {
			promptLens = append(promptLens, len(req.Prompt))
			return &ports.GenerateResponse{
				Text:         `{"guestName":"Maria Santos","checkInDate":"2024-06-01"}`,
				FinishReason: ports.FinishStop,
			}, nil
		})

	// Unique relevant lines long enough that the first attempt's input
	// budget is exceeded and the retry actually shrinks.
	longText := sampleText
	for i := 0; i < 80; i++ {
		longText += fmt.Sprintf("\nMaria Santos guest entry %03d phone +351 912 345 678 arriving 01-06-2024 %s",
			i, strings.Repeat("notes", 20))
	}

	data, err := newExtractor(t, mockLLM).Extract(context.Background(), longText, domain.DocumentInfo{})
	require.NoError(t, err)
	require.NotNil(t, data)

	require.Len(t, promptLens, 2)
	assert.Less(t, promptLens[1], promptLens[0], "retry must use a smaller input")
}

func TestStructuredExtractor_TruncatedReplyIsRepaired(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := mocks.NewMockLLMClient(ctrl)
	mockLLM.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		Return(&ports.GenerateResponse{
			Text:         `{"propertyName":"Aroeira I","guestName":"Maria Santos","checkInDate":"2024-06-01","totalAmou`,
			FinishReason: ports.FinishStop,
		}, nil)

	data, err := newExtractor(t, mockLLM).Extract(context.Background(), sampleText, domain.DocumentInfo{})
	require.NoError(t, err)
	require.NotNil(t, data)

	assert.Equal(t, "Maria Santos", data.GuestName)
	assert.Equal(t, "2024-06-01", data.CheckInDate)
}

func TestStructuredExtractor_FallsBackToManualOnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := mocks.NewMockLLMClient(ctrl)
	mockLLM.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("dial tcp: connection refused"))

	data, err := newExtractor(t, mockLLM).Extract(context.Background(), sampleText, domain.DocumentInfo{})
	require.NoError(t, err)
	require.NotNil(t, data)

	// Regex fallback recovers the fields on its own.
	assert.Equal(t, "Maria Santos", data.GuestName)
	assert.Equal(t, "Aroeira I", data.PropertyName)
	assert.Equal(t, "2024-06-01", data.CheckInDate)
	assert.Equal(t, domain.PlatformBooking, data.Platform)
}

func TestStructuredExtractor_ManualFillsModelGaps(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Model returns a guest name but misses dates and property; the
	// merge must complete them from the regex pass.
	mockLLM := mocks.NewMockLLMClient(ctrl)
	mockLLM.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		Return(&ports.GenerateResponse{
			Text:         `{"guestName":"Maria Santos"}`,
			FinishReason: ports.FinishStop,
		}, nil)

	data, err := newExtractor(t, mockLLM).Extract(context.Background(), sampleText, domain.DocumentInfo{})
	require.NoError(t, err)
	require.NotNil(t, data)

	assert.Equal(t, "Maria Santos", data.GuestName)
	assert.Equal(t, "Aroeira I", data.PropertyName)
	assert.Equal(t, "2024-06-01", data.CheckInDate)
	assert.Equal(t, "2024-06-05", data.CheckOutDate)
}

func TestStructuredExtractor_NothingRecovered(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := mocks.NewMockLLMClient(ctrl)
	mockLLM.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("unavailable"))

	data, err := newExtractor(t, mockLLM).Extract(context.Background(), "lorem ipsum dolor sit amet", domain.DocumentInfo{})
	assert.Nil(t, data)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestStructuredExtractor_SnakeCaseKeysAccepted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := mocks.NewMockLLMClient(ctrl)
	mockLLM.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		Return(&ports.GenerateResponse{
			Text: `{"guest_name":"Maria Santos","property_name":"Aroeira I",` +
				`"check_in_date":"01-06-2024","total_amount":480.5}`,
			FinishReason: ports.FinishStop,
		}, nil)

	data, err := newExtractor(t, mockLLM).Extract(context.Background(), sampleText, domain.DocumentInfo{})
	require.NoError(t, err)
	require.NotNil(t, data)

	assert.Equal(t, "Maria Santos", data.GuestName)
	assert.Equal(t, "2024-06-01", data.CheckInDate, "DD-MM-YYYY input must normalize to ISO")
	assert.Equal(t, "480.5", data.TotalAmount, "numeric amounts arrive as strings")
}
