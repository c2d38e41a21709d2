package models

// PageAction is one timestamped event a Subject produced on a Page. It is
// implemented by *Fill and *Action only.
type PageAction interface {
	// Millis returns the time of the event in milliseconds from page start.
	Millis() int
	pageAction()
}

// Fill is the Color a Subject filled an Area of a Page in a Survey with,
// Time milliseconds after the page started.
type Fill struct {
	SurveyID  uint    `gorm:"primaryKey;autoIncrement:false" json:"survey_id"`
	PageID    uint    `gorm:"primaryKey;autoIncrement:false" json:"page_id"`
	AreaID    uint    `gorm:"primaryKey;autoIncrement:false" json:"area_id"`
	SubjectID uint    `gorm:"primaryKey;autoIncrement:false" json:"subject_id"`
	Time      int     `gorm:"primaryKey;autoIncrement:false" json:"time"`
	ColorID   uint    `gorm:"not null" json:"color_id"`
	Survey    Survey  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Page      Page    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Area      Area    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"area"`
	Subject   Subject `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Color     Color   `json:"color"`
}

// Action is any other event, such as resuming after a pause. It is not tied
// to an area or a color.
type Action struct {
	SurveyID  uint    `gorm:"primaryKey;autoIncrement:false" json:"survey_id"`
	PageID    uint    `gorm:"primaryKey;autoIncrement:false" json:"page_id"`
	SubjectID uint    `gorm:"primaryKey;autoIncrement:false" json:"subject_id"`
	Time      int     `gorm:"primaryKey;autoIncrement:false" json:"time"`
	Name      string  `gorm:"column:action;size:30;primaryKey" json:"action"`
	Survey    Survey  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Page      Page    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Subject   Subject `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// ActionFill is the action name the client sends for coloring events.
const ActionFill = "fill"

func (f *Fill) Millis() int { return f.Time }
func (*Fill) pageAction()   {}

func (a *Action) Millis() int { return a.Time }
func (*Action) pageAction()   {}

// All lists every model for schema migration.
func All() []interface{} {
	return []interface{}{
		&Language{},
		&Subject{},
		&SubjectLanguage{},
		&Drawing{},
		&Area{},
		&Sound{},
		&Color{},
		&Page{},
		&Expectation{},
		&Survey{},
		&SurveyPage{},
		&SurveySubject{},
		&Fill{},
		&Action{},
	}
}
