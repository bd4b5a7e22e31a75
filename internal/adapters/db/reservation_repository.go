// internal/adapters/db/reservation_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bilalmachraa82/propdocs/internal/core/domain"
	"github.com/bilalmachraa82/propdocs/internal/core/ports"
)

// reservationRepository implements ports.ReservationRepository
type reservationRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(db *Database, logger *slog.Logger) ports.ReservationRepository {
	return &reservationRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "reservation")),
	}
}

var reservationColumns = []string{
	"id", "property_id", "property_name", "guest_name", "guest_email", "guest_phone",
	"check_in_date", "check_out_date", "num_guests", "adults", "children",
	"total_amount", "platform_fee", "cleaning_fee", "check_in_fee",
	"commission_fee", "team_payment", "net_amount",
	"platform", "reference", "status", "document_type",
	"source_filename", "raw_text", "created_at", "updated_at",
}

const reservationInsert = `
	INSERT INTO reservations (
		id, property_id, property_name, guest_name, guest_email, guest_phone,
		check_in_date, check_out_date, num_guests, adults, children,
		total_amount, platform_fee, cleaning_fee, check_in_fee,
		commission_fee, team_payment, net_amount,
		platform, reference, status, document_type,
		source_filename, raw_text, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
		$21, $22, $23, $24, $25, $26
	)`

func reservationArgs(r *domain.ReservationRecord) []interface{} {
	return []interface{}{
		r.ID, r.PropertyID, r.PropertyName, r.GuestName, r.GuestEmail, r.GuestPhone,
		nullableDate(r.CheckInDate), nullableDate(r.CheckOutDate),
		r.NumGuests, r.Adults, r.Children,
		r.TotalAmount, r.PlatformFee, r.CleaningFee, r.CheckInFee,
		r.CommissionFee, r.TeamPayment, r.NetAmount,
		r.Platform, r.Reference, r.Status, r.DocumentType,
		r.SourceFilename, r.RawText, r.CreatedAt, r.UpdatedAt,
	}
}

// Save creates a new reservation record
func (r *reservationRepository) Save(ctx context.Context, record *domain.ReservationRecord) error {
	if _, err := r.db.Exec(ctx, reservationInsert, reservationArgs(record)...); err != nil {
		return fmt.Errorf("failed to save reservation: %w", err)
	}

	r.logger.DebugContext(ctx, "reservation saved",
		slog.String("id", record.ID.String()),
		slog.String("guest", record.GuestName))

	return nil
}

// SaveBatch saves multiple reservations in a transaction
func (r *reservationRepository) SaveBatch(ctx context.Context, records []domain.ReservationRecord) error {
	if len(records) == 0 {
		return nil
	}

	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for i := range records {
			batch.Queue(reservationInsert, reservationArgs(&records[i])...)
		}

		br := tx.SendBatch(ctx, batch)
		defer br.Close()

		for i := range records {
			if _, err := br.Exec(); err != nil {
				return fmt.Errorf("failed to save reservation %d: %w", i, err)
			}
		}

		return nil
	})
}

// FindByID retrieves a reservation by ID. A missing record returns
// (nil, nil).
func (r *reservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ReservationRecord, error) {
	qb := squirrel.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	record, err := scanReservation(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}

	return record, nil
}

// List retrieves reservations with filtering, sorting and pagination
func (r *reservationRepository) List(ctx context.Context, params ports.ReservationListParams) (*ports.ReservationListResult, error) {
	qb := applyListFilters(
		squirrel.Select(reservationColumns...).
			From("reservations").
			PlaceholderFormat(squirrel.Dollar),
		params,
	)

	totalCount, err := r.count(ctx, params)
	if err != nil {
		return nil, err
	}

	qb = qb.OrderBy(listOrderBy(params))

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	qb = qb.Limit(uint64(pageSize)).Offset(uint64((page - 1) * pageSize))

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	var records []*domain.ReservationRecord
	for rows.Next() {
		record, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	totalPages := int((totalCount + int64(pageSize) - 1) / int64(pageSize))

	return &ports.ReservationListResult{
		Records:    records,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}, nil
}

// Count returns the total number of reservations
func (r *reservationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reservations`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return count, nil
}

// Delete performs a hard delete
func (r *reservationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reservation not found: %s", id)
	}

	r.logger.InfoContext(ctx, "reservation deleted",
		slog.String("id", id.String()))

	return nil
}

func (r *reservationRepository) count(ctx context.Context, params ports.ReservationListParams) (int64, error) {
	qb := applyListFilters(
		squirrel.Select("COUNT(*)").
			From("reservations").
			PlaceholderFormat(squirrel.Dollar),
		params,
	)

	query, args, err := qb.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return count, nil
}

// applyListFilters translates list params into WHERE clauses shared by
// the page query and its count.
func applyListFilters(qb squirrel.SelectBuilder, params ports.ReservationListParams) squirrel.SelectBuilder {
	if params.PropertyID != nil {
		qb = qb.Where(squirrel.Eq{"property_id": *params.PropertyID})
	}
	if params.Status != "" {
		qb = qb.Where(squirrel.Eq{"status": params.Status})
	}
	if params.Platform != "" {
		qb = qb.Where(squirrel.Eq{"platform": params.Platform})
	}
	if params.CheckInFrom != nil {
		qb = qb.Where(squirrel.GtOrEq{"check_in_date": *params.CheckInFrom})
	}
	if params.CheckInUntil != nil {
		qb = qb.Where(squirrel.LtOrEq{"check_in_date": *params.CheckInUntil})
	}
	return qb
}

func listOrderBy(params ports.ReservationListParams) string {
	direction := "ASC"
	if params.SortOrder == "desc" {
		direction = "DESC"
	}

	switch params.SortBy {
	case "check_in":
		return fmt.Sprintf("check_in_date %s", direction)
	case "guest":
		return fmt.Sprintf("guest_name %s", direction)
	case "total":
		return fmt.Sprintf("total_amount %s", direction)
	case "updated":
		return fmt.Sprintf("updated_at %s", direction)
	default:
		return "created_at DESC"
	}
}

// scanReservation scans one row in reservationColumns order
func scanReservation(row pgx.Row) (*domain.ReservationRecord, error) {
	record := &domain.ReservationRecord{}
	var checkIn, checkOut *time.Time

	err := row.Scan(
		&record.ID, &record.PropertyID, &record.PropertyName,
		&record.GuestName, &record.GuestEmail, &record.GuestPhone,
		&checkIn, &checkOut,
		&record.NumGuests, &record.Adults, &record.Children,
		&record.TotalAmount, &record.PlatformFee, &record.CleaningFee, &record.CheckInFee,
		&record.CommissionFee, &record.TeamPayment, &record.NetAmount,
		&record.Platform, &record.Reference, &record.Status, &record.DocumentType,
		&record.SourceFilename, &record.RawText, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if checkIn != nil {
		record.CheckInDate = *checkIn
	}
	if checkOut != nil {
		record.CheckOutDate = *checkOut
	}

	return record, nil
}

// nullableDate maps zero times to SQL NULL
func nullableDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
