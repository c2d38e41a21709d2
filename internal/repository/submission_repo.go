package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/coloringbook-api/internal/models"
)

// SubmissionRecord bundles everything one subject's submission persists.
type SubmissionRecord struct {
	Subject       *models.Subject
	Participation *models.SurveySubject
	Fills         []*models.Fill
	Actions       []*models.Action
}

// SubmissionRepository persists submissions as one unit of work.
type SubmissionRepository interface {
	Store(ctx context.Context, record SubmissionRecord) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// Store writes the subject, its languages, the participation and all
// recorded actions in a single transaction. Languages without an ID are
// resolved through the unique name index first. On success the IDs of the
// record's models are populated.
func (r *submissionRepository) Store(ctx context.Context, record SubmissionRecord) error {
	if record.Subject == nil || record.Participation == nil {
		return fmt.Errorf("submission record requires a subject and a participation")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subject := record.Subject
		for i := range subject.Languages {
			association := &subject.Languages[i]
			if association.Language.ID == 0 {
				language, err := findOrCreateLanguage(tx, association.Language.Name)
				if err != nil {
					return fmt.Errorf("resolve language %q: %w", association.Language.Name, err)
				}
				association.Language = language
			}
			association.LanguageID = association.Language.ID
		}

		if err := tx.Omit(clause.Associations).Create(subject).Error; err != nil {
			return fmt.Errorf("create subject: %w", err)
		}

		for i := range subject.Languages {
			subject.Languages[i].SubjectID = subject.ID
		}
		if len(subject.Languages) > 0 {
			if err := tx.Omit(clause.Associations).Create(&subject.Languages).Error; err != nil {
				return fmt.Errorf("create subject languages: %w", err)
			}
		}

		participation := record.Participation
		participation.SubjectID = subject.ID
		if err := tx.Omit(clause.Associations).Create(participation).Error; err != nil {
			return fmt.Errorf("create survey subject: %w", err)
		}

		if len(record.Fills) > 0 {
			for _, fill := range record.Fills {
				fill.SubjectID = subject.ID
			}
			if err := tx.Omit(clause.Associations).Create(&record.Fills).Error; err != nil {
				return fmt.Errorf("create fills: %w", err)
			}
		}

		if len(record.Actions) > 0 {
			for _, action := range record.Actions {
				action.SubjectID = subject.ID
			}
			if err := tx.Omit(clause.Associations).Create(&record.Actions).Error; err != nil {
				return fmt.Errorf("create actions: %w", err)
			}
		}

		return nil
	})
}
