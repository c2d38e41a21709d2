package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/coloringbook-api/internal/models"
)

// AreaRepository resolves area names within a drawing.
type AreaRepository interface {
	FindInDrawing(ctx context.Context, drawingID uint, name string) (models.Area, error)
}

type areaRepository struct {
	db *gorm.DB
}

// NewAreaRepository constructs an area repository.
func NewAreaRepository(db *gorm.DB) AreaRepository {
	return &areaRepository{db: db}
}

func (r *areaRepository) FindInDrawing(ctx context.Context, drawingID uint, name string) (models.Area, error) {
	return findExactlyOne[models.Area](r.db.WithContext(ctx).
		Where("drawing_id = ?", drawingID).
		Where("name = ?", name))
}
