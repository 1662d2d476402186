package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/table-reservations/internal/model"
)

type ReservationRepository interface {
	// WithTx binds the repository to a running transaction.
	WithTx(tx *gorm.DB) ReservationRepository
	// Create persists a new reservation.
	Create(ctx context.Context, r *model.Reservation) error
	// GetByID returns gorm.ErrRecordNotFound for an unknown id.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	// UpdateStatus sets the status and, for cancellations, the cancellation time.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ReservationStatus, cancelledAt *time.Time) error
	// ListActiveStartingBetween returns pending/confirmed reservations starting in [from, to).
	ListActiveStartingBetween(ctx context.Context, restaurantID uuid.UUID, from, to time.Time) ([]model.Reservation, error)
	// ListByRestaurantAndRange pages through reservations starting in [from, to), any status.
	ListByRestaurantAndRange(
		ctx context.Context,
		restaurantID uuid.UUID,
		from, to time.Time,
		limit, offset int,
	) ([]model.Reservation, int64, error)
}

type GormReservationRepository struct {
	db *gorm.DB
}

func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

func (r *GormReservationRepository) WithTx(tx *gorm.DB) ReservationRepository {
	return &GormReservationRepository{db: tx}
}

func (r *GormReservationRepository) Create(ctx context.Context, res *model.Reservation) error {
	return r.db.WithContext(ctx).Create(res).Error
}

func (r *GormReservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	var res model.Reservation
	if err := r.db.WithContext(ctx).First(&res, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *GormReservationRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status model.ReservationStatus,
	cancelledAt *time.Time,
) error {
	update := map[string]any{
		"status": status,
	}
	if cancelledAt != nil {
		update["cancelled_at"] = cancelledAt.UTC()
	}
	return r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("id = ?", id).
		Updates(update).
		Error
}

func (r *GormReservationRepository) ListActiveStartingBetween(
	ctx context.Context,
	restaurantID uuid.UUID,
	from, to time.Time,
) ([]model.Reservation, error) {
	var out []model.Reservation
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Where("status IN ?", model.ActiveReservationStatuses).
		Where("reservation_time >= ? AND reservation_time < ?", from.UTC(), to.UTC()).
		Order("reservation_time ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormReservationRepository) ListByRestaurantAndRange(
	ctx context.Context,
	restaurantID uuid.UUID,
	from, to time.Time,
	limit, offset int,
) ([]model.Reservation, int64, error) {
	var (
		reservations []model.Reservation
		total        int64
	)

	q := r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("restaurant_id = ?", restaurantID).
		Where("reservation_time >= ? AND reservation_time < ?", from.UTC(), to.UTC())

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	if err := q.Order("reservation_time ASC").Order("id ASC").Find(&reservations).Error; err != nil {
		return nil, 0, err
	}

	return reservations, total, nil
}
