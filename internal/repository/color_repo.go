package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/coloringbook-api/internal/models"
)

// ColorRepository resolves client color codes.
type ColorRepository interface {
	FindByCode(ctx context.Context, code string) (models.Color, error)
}

type colorRepository struct {
	db *gorm.DB
}

// NewColorRepository constructs a color repository.
func NewColorRepository(db *gorm.DB) ColorRepository {
	return &colorRepository{db: db}
}

func (r *colorRepository) FindByCode(ctx context.Context, code string) (models.Color, error) {
	return findExactlyOne[models.Color](r.db.WithContext(ctx).Where("code = ?", code))
}
