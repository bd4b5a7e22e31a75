// internal/core/ports/reservation_repository.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bilalmachraa82/propdocs/internal/core/domain"
)

// ReservationRepository defines the persistence port for finished
// reservation records. This interface is implemented by the database
// adapter; the pipeline hands ownership over at Save time.
type ReservationRepository interface {
	Save(ctx context.Context, record *domain.ReservationRecord) error
	SaveBatch(ctx context.Context, records []domain.ReservationRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ReservationRecord, error)
	List(ctx context.Context, params ReservationListParams) (*ReservationListResult, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReservationListParams holds filters for listing reservations
type ReservationListParams struct {
	PropertyID   *int64
	Status       string
	Platform     string
	CheckInFrom  *time.Time
	CheckInUntil *time.Time
	SortBy       string
	SortOrder    string
	Page         int
	PageSize     int
}

// ReservationListResult holds a page of reservations
type ReservationListResult struct {
	Records    []*domain.ReservationRecord `json:"records"`
	Page       int                         `json:"page"`
	PageSize   int                         `json:"page_size"`
	TotalCount int64                       `json:"total_count"`
	TotalPages int                         `json:"total_pages"`
}
