package repository

import (
	"context"
	"errors"

	"github.com/civicline/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// AutoMigrate creates or updates the incidents table
func (r *GormRepository) AutoMigrate() error {
	if err := r.db.AutoMigrate(&models.Incident{}); err != nil {
		return storageError("migrate", err)
	}
	return nil
}

func (r *GormRepository) Create(ctx context.Context, incident *models.Incident) error {
	incident.ID = uuid.NewString()
	incident.Resolved = false

	if err := r.db.WithContext(ctx).Create(incident).Error; err != nil {
		return storageError("create", err)
	}
	return nil
}

func (r *GormRepository) List(ctx context.Context, filter models.IncidentFilter) ([]models.Incident, error) {
	incidents := make([]models.Incident, 0)
	query := r.db.WithContext(ctx).Model(&models.Incident{})
	if fields := filter.Fields(); len(fields) > 0 {
		query = query.Where(fields)
	}
	if err := query.Find(&incidents).Error; err != nil {
		return nil, storageError("list", err)
	}
	return incidents, nil
}

func (r *GormRepository) Count(ctx context.Context, filter models.IncidentFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Incident{})
	if fields := filter.Fields(); len(fields) > 0 {
		query = query.Where(fields)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, storageError("count", err)
	}
	return count, nil
}

func (r *GormRepository) UpdateResolved(ctx context.Context, id string, resolved bool) (*models.Incident, error) {
	// Ids are always UUIDs, anything else cannot exist.
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	result := r.db.WithContext(ctx).
		Model(&models.Incident{}).
		Where("id = ?", id).
		Update("resolved", resolved)
	if result.Error != nil {
		return nil, storageError("update resolved", result.Error)
	}

	var incident models.Incident
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&incident).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageError("update resolved", err)
	}
	return &incident, nil
}

func (r *GormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return storageError("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return storageError("ping", err)
	}
	return nil
}
