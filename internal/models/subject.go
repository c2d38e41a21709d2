package models

import "time"

// Subject holds the personal information of a test person.
type Subject struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	Name      string            `gorm:"size:50;not null" json:"name"`
	Numeral   *int              `json:"numeral"`
	Birth     time.Time         `gorm:"type:date;not null" json:"birth"`
	Eyesight  string            `gorm:"size:100" json:"eyesight"`
	Languages []SubjectLanguage `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"languages"`
	CreatedAt time.Time         `json:"created_at"`
}

// SubjectLanguage associates a Subject with a Language at a skill level,
// where 10 means native.
type SubjectLanguage struct {
	SubjectID  uint     `gorm:"primaryKey;autoIncrement:false" json:"subject_id"`
	LanguageID uint     `gorm:"primaryKey;autoIncrement:false" json:"language_id"`
	Level      int      `json:"level"`
	Language   Language `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"language"`
}

// Language may be associated with a Subject, Survey or Page.
type Language struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:30;not null;uniqueIndex" json:"name"`
}

// BirthDate renders the birth date in the YYYY-MM-DD form used by clients.
func (s Subject) BirthDate() string {
	return s.Birth.Format(DateLayout)
}

// DateLayout is the calendar date format exchanged with the browser client.
const DateLayout = "2006-01-02"
