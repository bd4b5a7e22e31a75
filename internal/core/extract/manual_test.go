// internal/core/extract/manual_test.go
package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bilalmachraa82/propdocs/internal/core/domain"
	"github.com/bilalmachraa82/propdocs/test/helpers"
)

func newManual(t *testing.T) *ManualExtractor {
	t.Helper()
	return NewManualExtractor(DefaultManualConfig(), helpers.TestLogger())
}

func TestManualExtractor_ControlDocument(t *testing.T) {
	// Tabular control document: the guest name repeats in consecutive
	// cells with the phone number in the next one.
	text := `Mapa de reservas
Aroeira I
João Silva
João Silva
+351 912 345 678
joao.silva@example.com
01-06-2024
05-06-2024
2 adultos
A203-HKDIF`

	data := newManual(t).Extract(text)

	assert.Equal(t, "João Silva", data.GuestName)
	assert.Equal(t, "Aroeira I", data.PropertyName)
	assert.Equal(t, "joao.silva@example.com", data.GuestEmail)
	assert.Equal(t, "+351912345678", data.GuestPhone)
	assert.Equal(t, "2024-06-01", data.CheckInDate)
	assert.Equal(t, "2024-06-05", data.CheckOutDate)
	assert.Equal(t, 2, data.Adults)
	assert.Equal(t, 2, data.NumGuests)
	assert.Equal(t, "A203-HKDIF", data.Reference)
	assert.Equal(t, domain.PlatformOther, data.Platform)
}

func TestManualExtractor_NameBeforeEmail(t *testing.T) {
	text := `Reserva confirmada
Maria Santos maria.santos@example.com
Almada Noronha 2
03-07-2024 a 08-07-2024`

	data := newManual(t).Extract(text)

	assert.Equal(t, "Maria Santos", data.GuestName)
	assert.Equal(t, "Almada Noronha 2", data.PropertyName)
	assert.Equal(t, "2024-07-03", data.CheckInDate)
	assert.Equal(t, "2024-07-08", data.CheckOutDate)
}

func TestManualExtractor_NameFromLabel(t *testing.T) {
	text := `Documento de reserva
Nome: Pedro Albuquerque Costa
Propriedade: Sete Rios`

	data := newManual(t).Extract(text)

	assert.Equal(t, "Pedro Albuquerque Costa", data.GuestName)
	assert.Equal(t, "Sete Rios", data.PropertyName)
}

func TestManualExtractor_DenylistRejectsHeaders(t *testing.T) {
	// Capitalized structural phrases must not be mistaken for names.
	text := `Check In Total
Reservation Document
Booking Confirmation Page`

	data := newManual(t).Extract(text)

	assert.Empty(t, data.GuestName)
}

func TestManualExtractor_InvalidDatesSkipped(t *testing.T) {
	// 45-13-2024 is no date; the remaining pair must still be ordered.
	text := `45-13-2024
10-06-2024
02-06-2024`

	checkIn, checkOut := extractDates(text)

	assert.Equal(t, "2024-06-02", checkIn)
	assert.Equal(t, "2024-06-10", checkOut)
}

func TestManualExtractor_SingleDateIsCheckInOnly(t *testing.T) {
	checkIn, checkOut := extractDates("chegada 02-06-2024")

	assert.Equal(t, "2024-06-02", checkIn)
	assert.Empty(t, checkOut)
}

func TestManualExtractor_PropertyNameAcrossLineBreaks(t *testing.T) {
	// Control PDFs wrap property names across table cells.
	text := "reserva em Almada\nNoronha 2 confirmada"

	data := newManual(t).Extract(text)

	assert.Equal(t, "Almada Noronha 2", data.PropertyName)
}

func TestManualExtractor_ShortPhoneDiscarded(t *testing.T) {
	assert.Empty(t, normalizePhone("+12 34 56"))
	assert.Equal(t, "+351912345678", normalizePhone("+351 912 345 678"))
}

func TestRelevantLines_FiltersNoise(t *testing.T) {
	m := newManual(t)

	text := `Página 1 de 3
Maria Santos
+351 912 345 678
====================
02-06-2024
x
Total: 480.00`

	lines := m.RelevantLines(text)

	assert.Contains(t, lines, "Maria Santos")
	assert.Contains(t, lines, "+351 912 345 678")
	assert.Contains(t, lines, "02-06-2024")
	assert.NotContains(t, lines, "====================")
	assert.NotContains(t, lines, "x")
}
