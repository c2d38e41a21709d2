package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/coloringbook-api/internal/models"
)

// DrawingSpec names a drawing and its colorable areas.
type DrawingSpec struct {
	Name  string
	Areas []string
}

// ExpectationSpec refers to an area of the page's drawing and a color code.
type ExpectationSpec struct {
	Area       string
	ColorCode  string
	Here       bool
	Motivation string
}

// PageSpec describes a page by the names of its related records.
type PageSpec struct {
	Name         string
	Drawing      string
	Text         string
	Sound        string
	Language     string
	Expectations []ExpectationSpec
}

// SurveySpec describes a survey and its pages in presentation order.
type SurveySpec struct {
	Survey   models.Survey
	Language string
	Pages    []string
}

// Catalog is a complete set of survey material to load at once.
type Catalog struct {
	Languages []string
	Sounds    []string
	Colors    []models.Color
	Drawings  []DrawingSpec
	Pages     []PageSpec
	Surveys   []SurveySpec
}

// CatalogCounts reports how many records of each kind a seed touched.
type CatalogCounts struct {
	Languages    int `json:"languages"`
	Sounds       int `json:"sounds"`
	Colors       int `json:"colors"`
	Drawings     int `json:"drawings"`
	Areas        int `json:"areas"`
	Pages        int `json:"pages"`
	Expectations int `json:"expectations"`
	Surveys      int `json:"surveys"`
}

// CatalogRepository loads survey material idempotently.
type CatalogRepository interface {
	Seed(ctx context.Context, catalog Catalog) (CatalogCounts, error)
}

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository constructs a catalog repository.
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// catalogTx resolves names to IDs while a seed transaction runs.
type catalogTx struct {
	tx        *gorm.DB
	languages map[string]uint
	sounds    map[string]uint
	drawings  map[string]uint
	areas     map[uint]map[string]uint
	counts    CatalogCounts
}

// Seed upserts everything in catalog within one transaction. Existing
// records are matched by name and updated; the page list of a seeded
// survey is replaced.
func (r *catalogRepository) Seed(ctx context.Context, catalog Catalog) (CatalogCounts, error) {
	var counts CatalogCounts
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c := &catalogTx{
			tx:        tx,
			languages: map[string]uint{},
			sounds:    map[string]uint{},
			drawings:  map[string]uint{},
			areas:     map[uint]map[string]uint{},
		}

		steps := []func(Catalog) error{
			c.seedLanguages,
			c.seedSounds,
			c.seedColors,
			c.seedDrawings,
			c.seedPages,
			c.seedSurveys,
		}
		for _, step := range steps {
			if err := step(catalog); err != nil {
				return err
			}
		}

		counts = c.counts
		return nil
	})
	return counts, err
}

func (c *catalogTx) seedLanguages(catalog Catalog) error {
	for _, name := range catalog.Languages {
		if _, err := c.language(name); err != nil {
			return err
		}
	}
	return nil
}

func (c *catalogTx) language(name string) (*uint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	if id, ok := c.languages[name]; ok {
		return &id, nil
	}

	language, err := findOrCreateLanguage(c.tx, name)
	if err != nil {
		return nil, fmt.Errorf("seed language %q: %w", name, err)
	}
	c.languages[name] = language.ID
	c.counts.Languages++
	return &language.ID, nil
}

func (c *catalogTx) seedSounds(catalog Catalog) error {
	for _, name := range catalog.Sounds {
		if _, err := c.sound(name); err != nil {
			return err
		}
	}
	return nil
}

func (c *catalogTx) sound(name string) (*uint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	if id, ok := c.sounds[name]; ok {
		return &id, nil
	}

	candidate := models.Sound{Name: name}
	if err := c.tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&candidate).Error; err != nil {
		return nil, fmt.Errorf("seed sound %q: %w", name, err)
	}

	var sound models.Sound
	if err := c.tx.Where("name = ?", name).First(&sound).Error; err != nil {
		return nil, translateNotFound(err)
	}
	c.sounds[name] = sound.ID
	c.counts.Sounds++
	return &sound.ID, nil
}

func (c *catalogTx) seedColors(catalog Catalog) error {
	for _, color := range catalog.Colors {
		record := models.Color{}
		if err := c.tx.Where(models.Color{Code: color.Code, Name: color.Name}).FirstOrCreate(&record).Error; err != nil {
			return fmt.Errorf("seed color %q: %w", color.Code, err)
		}
		c.counts.Colors++
	}
	return nil
}

func (c *catalogTx) seedDrawings(catalog Catalog) error {
	for _, spec := range catalog.Drawings {
		drawingID, err := c.drawing(spec.Name)
		if err != nil {
			return err
		}

		for _, areaName := range spec.Areas {
			area := models.Area{Name: strings.TrimSpace(areaName), DrawingID: drawingID}
			if err := c.tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}, {Name: "drawing_id"}},
				DoNothing: true,
			}).Create(&area).Error; err != nil {
				return fmt.Errorf("seed area %q of %q: %w", areaName, spec.Name, err)
			}
			c.counts.Areas++
		}
	}
	return nil
}

func (c *catalogTx) drawing(name string) (uint, error) {
	name = strings.TrimSpace(name)
	if id, ok := c.drawings[name]; ok {
		return id, nil
	}

	candidate := models.Drawing{Name: name}
	if err := c.tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&candidate).Error; err != nil {
		return 0, fmt.Errorf("seed drawing %q: %w", name, err)
	}

	var drawing models.Drawing
	if err := c.tx.Where("name = ?", name).First(&drawing).Error; err != nil {
		return 0, translateNotFound(err)
	}
	c.drawings[name] = drawing.ID
	c.counts.Drawings++
	return drawing.ID, nil
}

func (c *catalogTx) area(drawingID uint, name string) (uint, error) {
	if cached, ok := c.areas[drawingID][name]; ok {
		return cached, nil
	}

	area, err := findExactlyOne[models.Area](c.tx.Where("drawing_id = ? AND name = ?", drawingID, name))
	if err != nil {
		return 0, err
	}
	if c.areas[drawingID] == nil {
		c.areas[drawingID] = map[string]uint{}
	}
	c.areas[drawingID][name] = area.ID
	return area.ID, nil
}

func (c *catalogTx) seedPages(catalog Catalog) error {
	for _, spec := range catalog.Pages {
		drawingID, err := c.drawing(spec.Drawing)
		if err != nil {
			return err
		}
		soundID, err := c.sound(spec.Sound)
		if err != nil {
			return err
		}
		languageID, err := c.language(spec.Language)
		if err != nil {
			return err
		}

		page, err := findExactlyOne[models.Page](c.tx.Where("name = ?", spec.Name))
		switch {
		case errors.Is(err, ErrNotFound):
			page = models.Page{Name: spec.Name}
		case err != nil:
			return fmt.Errorf("lookup page %q: %w", spec.Name, err)
		}

		page.DrawingID = drawingID
		page.SoundID = soundID
		page.LanguageID = languageID
		page.Text = spec.Text
		if err := c.tx.Omit(clause.Associations).Save(&page).Error; err != nil {
			return fmt.Errorf("seed page %q: %w", spec.Name, err)
		}
		c.counts.Pages++

		for _, expectation := range spec.Expectations {
			if err := c.seedExpectation(page, expectation); err != nil {
				return fmt.Errorf("seed expectation on page %q: %w", spec.Name, err)
			}
		}
	}
	return nil
}

func (c *catalogTx) seedExpectation(page models.Page, spec ExpectationSpec) error {
	areaID, err := c.area(page.DrawingID, spec.Area)
	if err != nil {
		return fmt.Errorf("area %q: %w", spec.Area, err)
	}

	color, err := findExactlyOne[models.Color](c.tx.Where("code = ?", spec.ColorCode))
	if err != nil {
		return fmt.Errorf("color %q: %w", spec.ColorCode, err)
	}

	expectation := models.Expectation{
		PageID:     page.ID,
		AreaID:     areaID,
		ColorID:    color.ID,
		Here:       spec.Here,
		Motivation: spec.Motivation,
	}
	if err := c.tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "page_id"}, {Name: "area_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"color_id", "here", "motivation"}),
	}).Create(&expectation).Error; err != nil {
		return err
	}
	c.counts.Expectations++
	return nil
}

func (c *catalogTx) seedSurveys(catalog Catalog) error {
	for _, spec := range catalog.Surveys {
		languageID, err := c.language(spec.Language)
		if err != nil {
			return err
		}

		survey := spec.Survey
		survey.ID = 0
		survey.LanguageID = languageID
		survey.Pages = nil
		if err := c.tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"language_id", "begins_at", "ends_at", "information", "simultaneous", "duration", "email_address",
			}),
		}).Create(&survey).Error; err != nil {
			return fmt.Errorf("seed survey %q: %w", spec.Survey.Name, err)
		}

		var stored models.Survey
		if err := c.tx.Where("name = ?", survey.Name).First(&stored).Error; err != nil {
			return translateNotFound(err)
		}

		if err := c.tx.Where("survey_id = ?", stored.ID).Delete(&models.SurveyPage{}).Error; err != nil {
			return fmt.Errorf("reset pages of survey %q: %w", stored.Name, err)
		}

		for index, pageName := range spec.Pages {
			page, err := findExactlyOne[models.Page](c.tx.Where("name = ?", pageName))
			if err != nil {
				return fmt.Errorf("page %q of survey %q: %w", pageName, stored.Name, err)
			}
			link := models.SurveyPage{SurveyID: stored.ID, PageID: page.ID, Ordering: index + 1}
			if err := c.tx.Omit(clause.Associations).Create(&link).Error; err != nil {
				return fmt.Errorf("link page %q to survey %q: %w", pageName, stored.Name, err)
			}
		}
		c.counts.Surveys++
	}
	return nil
}
