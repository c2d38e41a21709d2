package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/coloringbook-api/internal/models"
)

// LanguageRepository looks up and registers languages by name.
type LanguageRepository interface {
	FindByName(ctx context.Context, name string) (models.Language, error)
	FindOrCreate(ctx context.Context, name string) (models.Language, error)
}

type languageRepository struct {
	db *gorm.DB
}

// NewLanguageRepository constructs a language repository.
func NewLanguageRepository(db *gorm.DB) LanguageRepository {
	return &languageRepository{db: db}
}

func (r *languageRepository) FindByName(ctx context.Context, name string) (models.Language, error) {
	return findExactlyOne[models.Language](r.db.WithContext(ctx).Where("name = ?", name))
}

func (r *languageRepository) FindOrCreate(ctx context.Context, name string) (models.Language, error) {
	return findOrCreateLanguage(r.db.WithContext(ctx), name)
}

// findOrCreateLanguage relies on the unique name index, so concurrent
// submissions introducing the same language converge on one row.
func findOrCreateLanguage(tx *gorm.DB, name string) (models.Language, error) {
	name = strings.TrimSpace(name)
	candidate := models.Language{Name: name}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&candidate).Error; err != nil {
		return models.Language{}, err
	}

	var language models.Language
	if err := tx.Where("name = ?", name).First(&language).Error; err != nil {
		return models.Language{}, translateNotFound(err)
	}
	return language, nil
}
