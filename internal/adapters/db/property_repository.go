// internal/adapters/db/property_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/bilalmachraa82/propdocs/internal/core/domain"
	"github.com/bilalmachraa82/propdocs/internal/core/ports"
)

// propertyRepository implements ports.PropertyCatalog
type propertyRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewPropertyRepository creates a new property catalog repository
func NewPropertyRepository(db *Database, logger *slog.Logger) ports.PropertyCatalog {
	return &propertyRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "property")),
	}
}

var propertyColumns = []string{
	"id", "name", "cleaning_cost", "check_in_fee", "commission", "team_payment", "active",
}

// ListProperties returns all active properties ordered by name
func (r *propertyRepository) ListProperties(ctx context.Context) ([]domain.Property, error) {
	query, args, err := squirrel.Select(propertyColumns...).
		From("properties").
		Where(squirrel.Eq{"active": true}).
		OrderBy("name ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	var properties []domain.Property
	for rows.Next() {
		var p domain.Property
		if err := rows.Scan(
			&p.ID, &p.Name, &p.CleaningCost, &p.CheckInFee,
			&p.Commission, &p.TeamPayment, &p.Active,
		); err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return properties, nil
}

// FindByID retrieves a property by ID. A missing property returns
// (nil, nil).
func (r *propertyRepository) FindByID(ctx context.Context, id int64) (*domain.Property, error) {
	query, args, err := squirrel.Select(propertyColumns...).
		From("properties").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var p domain.Property
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.Name, &p.CleaningCost, &p.CheckInFee,
		&p.Commission, &p.TeamPayment, &p.Active,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find property: %w", err)
	}

	return &p, nil
}
