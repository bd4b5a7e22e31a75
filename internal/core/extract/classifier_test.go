// internal/core/extract/classifier_test.go
package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bilalmachraa82/propdocs/internal/core/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		filename string
		want     domain.DocumentType
	}{
		{
			name:     "portuguese_arrivals_document",
			text:     "Mapa de entradas\nAroeira I - Maria Santos - 2024-06-01",
			filename: "entradas_junho.pdf",
			want:     domain.DocTypeCheckIn,
		},
		{
			name:     "english_checkin_keyword",
			text:     "Check-in details for your upcoming stay",
			filename: "reservation.pdf",
			want:     domain.DocTypeCheckIn,
		},
		{
			name:     "departures_document",
			text:     "Saídas previstas para o dia 5 de junho",
			filename: "saidas.pdf",
			want:     domain.DocTypeCheckOut,
		},
		{
			name:     "both_sections_is_mixed",
			text:     "Entradas:\n...\nSaídas:\n...",
			filename: "mapa.pdf",
			want:     domain.DocTypeMixed,
		},
		{
			name:     "control_file",
			text:     "Mapa de ocupação mensal por propriedade",
			filename: "ocupacao.pdf",
			want:     domain.DocTypeControl,
		},
		{
			name:     "filename_alone_classifies",
			text:     "Aroeira I, Maria Santos, 2 noites",
			filename: "checkin_aroeira.pdf",
			want:     domain.DocTypeCheckIn,
		},
		{
			name:     "unrecognized_layout",
			text:     "Fatura n. 2024/118 - total 480.00",
			filename: "fatura.pdf",
			want:     domain.DocTypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Classify(tt.text, tt.filename)
			assert.Equal(t, tt.want, info.Type)
			assert.NotEmpty(t, info.Description)
		})
	}
}
