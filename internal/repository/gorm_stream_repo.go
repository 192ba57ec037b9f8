package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/firdaus0729/shoplive/internal/domain"
)

// GormStreamRepository implements StreamRepository using GORM.
type GormStreamRepository struct {
	db *gorm.DB
}

// NewGormStreamRepository creates a new GORM-backed stream repository.
func NewGormStreamRepository(db *gorm.DB) *GormStreamRepository {
	return &GormStreamRepository{db: db}
}

func (r *GormStreamRepository) Create(ctx context.Context, stream *domain.Stream) error {
	model := domain.StreamToModel(stream)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	stream.CreatedAt = model.CreatedAt
	return nil
}

func (r *GormStreamRepository) GetByID(ctx context.Context, id string) (*domain.Stream, error) {
	var model domain.StreamModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStreamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stream: %w", err)
	}
	return model.ToDomain(), nil
}

func (r *GormStreamRepository) List(ctx context.Context, req *domain.ListStreamsRequest) ([]*domain.Stream, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.StreamModel{})

	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.StoreID != "" {
		query = query.Where("store_id = ?", req.StoreID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count streams: %w", err)
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var models []domain.StreamModel
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list streams: %w", err)
	}

	streams := make([]*domain.Stream, 0, len(models))
	for i := range models {
		streams = append(streams, models[i].ToDomain())
	}
	return streams, total, nil
}

func (r *GormStreamRepository) MarkLive(ctx context.Context, id string, startTime time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&domain.StreamModel{}).
		Where("id = ? AND status = ?", id, domain.StreamStatusScheduled).
		Updates(map[string]interface{}{
			"status":     domain.StreamStatusLive,
			"start_time": startTime,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark stream live: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.transitionError(ctx, id)
	}
	return nil
}

func (r *GormStreamRepository) MarkEnded(ctx context.Context, id string, endedAt time.Time, viewerCount int) error {
	result := r.db.WithContext(ctx).
		Model(&domain.StreamModel{}).
		Where("id = ? AND status = ?", id, domain.StreamStatusLive).
		Updates(map[string]interface{}{
			"status":       domain.StreamStatusEnded,
			"ended_at":     endedAt,
			"viewer_count": viewerCount,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark stream ended: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.transitionError(ctx, id)
	}
	return nil
}

func (r *GormStreamRepository) UpdateViewerCount(ctx context.Context, id string, count int) error {
	err := r.db.WithContext(ctx).
		Model(&domain.StreamModel{}).
		Where("id = ?", id).
		Update("viewer_count", count).Error
	if err != nil {
		return fmt.Errorf("failed to update viewer count: %w", err)
	}
	return nil
}

// transitionError distinguishes a missing stream from one in the wrong state.
func (r *GormStreamRepository) transitionError(ctx context.Context, id string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.StreamModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check stream: %w", err)
	}
	if count == 0 {
		return ErrStreamNotFound
	}
	return ErrInvalidTransition
}
