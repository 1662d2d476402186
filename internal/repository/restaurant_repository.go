package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/table-reservations/internal/model"
)

// RestaurantRepository reads restaurant configuration. Every list is scoped to
// one restaurant.
type RestaurantRepository interface {
	WithTx(tx *gorm.DB) RestaurantRepository
	Create(ctx context.Context, r *model.Restaurant) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Restaurant, error)
	// ListTables returns tables in configured order (position, then name, then id).
	ListTables(ctx context.Context, restaurantID uuid.UUID) ([]model.Table, error)
	ListOperatingHours(ctx context.Context, restaurantID uuid.UUID) ([]model.OperatingHours, error)
	// ListTurnTimeRules keeps insertion order; the first matching rule wins.
	ListTurnTimeRules(ctx context.Context, restaurantID uuid.UUID) ([]model.TurnTimeRule, error)
	ListBlackoutPeriods(ctx context.Context, restaurantID uuid.UUID) ([]model.BlackoutPeriod, error)
	// GetCancellationPolicy returns nil, nil when the restaurant has no policy.
	GetCancellationPolicy(ctx context.Context, restaurantID uuid.UUID) (*model.CancellationPolicy, error)
}

type GormRestaurantRepository struct {
	db *gorm.DB
}

func NewGormRestaurantRepository(db *gorm.DB) *GormRestaurantRepository {
	return &GormRestaurantRepository{db: db}
}

func (r *GormRestaurantRepository) WithTx(tx *gorm.DB) RestaurantRepository {
	return &GormRestaurantRepository{db: tx}
}

// Create stores the restaurant together with any configuration attached to it.
func (r *GormRestaurantRepository) Create(ctx context.Context, rest *model.Restaurant) error {
	return r.db.WithContext(ctx).Create(rest).Error
}

func (r *GormRestaurantRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Restaurant, error) {
	var rest model.Restaurant
	if err := r.db.WithContext(ctx).First(&rest, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rest, nil
}

func (r *GormRestaurantRepository) ListTables(ctx context.Context, restaurantID uuid.UUID) ([]model.Table, error) {
	var tables []model.Table
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("position ASC").
		Order("name ASC").
		Order("id ASC").
		Find(&tables).Error
	if err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *GormRestaurantRepository) ListOperatingHours(ctx context.Context, restaurantID uuid.UUID) ([]model.OperatingHours, error) {
	var hours []model.OperatingHours
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("day_of_week ASC").
		Order("open_time ASC").
		Find(&hours).Error
	if err != nil {
		return nil, err
	}
	return hours, nil
}

func (r *GormRestaurantRepository) ListTurnTimeRules(ctx context.Context, restaurantID uuid.UUID) ([]model.TurnTimeRule, error) {
	var rules []model.TurnTimeRule
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("created_at ASC").
		Order("party_size_min ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *GormRestaurantRepository) ListBlackoutPeriods(ctx context.Context, restaurantID uuid.UUID) ([]model.BlackoutPeriod, error) {
	var periods []model.BlackoutPeriod
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("start_date ASC").
		Find(&periods).Error
	if err != nil {
		return nil, err
	}
	return periods, nil
}

func (r *GormRestaurantRepository) GetCancellationPolicy(ctx context.Context, restaurantID uuid.UUID) (*model.CancellationPolicy, error) {
	var p model.CancellationPolicy
	err := r.db.WithContext(ctx).First(&p, "restaurant_id = ?", restaurantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
