package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Survey is a prepared series of Pages presented to Subjects.
type Survey struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"size:100;not null;uniqueIndex" json:"name"`
	LanguageID   *uint        `json:"language_id"`
	Begin        *time.Time   `gorm:"column:begins_at" json:"begin"`
	End          *time.Time   `gorm:"column:ends_at" json:"end"`
	Information  string       `gorm:"size:500" json:"information"`
	Simultaneous bool         `gorm:"not null;default:false" json:"simultaneous"`
	Duration     int          `gorm:"not null;default:6000" json:"duration"`
	EmailAddress string       `gorm:"size:500" json:"email_address"`
	Language     *Language    `json:"language,omitempty"`
	Pages        []SurveyPage `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"pages,omitempty"`
}

// Recipients splits the semicolon separated EmailAddress field.
func (s Survey) Recipients() []string {
	parts := strings.Split(s.EmailAddress, ";")
	recipients := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			recipients = append(recipients, trimmed)
		}
	}
	return recipients
}

// SurveyPage places a Page at a position within a Survey.
type SurveyPage struct {
	SurveyID uint `gorm:"primaryKey;autoIncrement:false" json:"survey_id"`
	PageID   uint `gorm:"primaryKey;autoIncrement:false" json:"page_id"`
	Ordering int  `gorm:"not null" json:"ordering"`
	Page     Page `json:"page"`
}

// SurveySubject records that a Subject took a Survey, along with the
// answers from the closing evaluation form.
type SurveySubject struct {
	SurveyID   uint           `gorm:"primaryKey;autoIncrement:false" json:"survey_id"`
	SubjectID  uint           `gorm:"primaryKey;autoIncrement:false" json:"subject_id"`
	Difficulty *int           `json:"difficulty"`
	Topic      string         `gorm:"size:200" json:"topic"`
	Comments   string         `gorm:"type:text" json:"comments"`
	Summary    datatypes.JSON `gorm:"type:json" json:"-"`
	CreatedAt  time.Time      `json:"created_at"`
	Survey     Survey         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Subject    Subject        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"subject"`
}
