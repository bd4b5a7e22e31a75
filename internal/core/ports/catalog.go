// internal/core/ports/catalog.go
package ports

import (
	"context"

	"github.com/bilalmachraa82/propdocs/internal/core/domain"
)

// PropertyCatalog defines the read-only port to the property catalog.
// The pipeline fetches a fresh snapshot per invocation; properties can
// change between requests so no cross-request caching is assumed.
type PropertyCatalog interface {
	ListProperties(ctx context.Context) ([]domain.Property, error)
	FindByID(ctx context.Context, id int64) (*domain.Property, error)
}
