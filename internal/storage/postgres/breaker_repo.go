package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/omnipress/publishq/internal/breaker"
	"github.com/omnipress/publishq/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BreakerRepository persists circuit breaker state keyed by service name so
// an open breaker survives worker restarts.
type BreakerRepository struct {
	db *gorm.DB
}

func NewBreakerRepository(db *gorm.DB) *BreakerRepository {
	return &BreakerRepository{db: db}
}

var _ breaker.Store = (*BreakerRepository)(nil)

// Load returns nil when no state has been persisted for the service yet.
func (r *BreakerRepository) Load(ctx context.Context, service string) (*models.BreakerState, error) {
	var state models.BreakerState
	if err := r.db.WithContext(ctx).First(&state, "service_name = ?", service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load breaker state: %w", err)
	}
	return &state, nil
}

// List returns all persisted breaker states, sorted by service name.
func (r *BreakerRepository) List(ctx context.Context) ([]models.BreakerState, error) {
	var states []models.BreakerState
	if err := r.db.WithContext(ctx).Order("service_name ASC").Find(&states).Error; err != nil {
		return nil, fmt.Errorf("list breaker states: %w", err)
	}
	return states, nil
}

// Save upserts on the service name.
func (r *BreakerRepository) Save(ctx context.Context, state *models.BreakerState) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "service_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"state", "failure_count", "opened_at", "last_failure", "updated_at",
		}),
	}).Create(state).Error
	if err != nil {
		return fmt.Errorf("save breaker state: %w", err)
	}
	return nil
}
