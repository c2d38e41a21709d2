package models

// Page combines a sentence with a Drawing.
type Page struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	Name         string        `gorm:"size:30;not null" json:"name"`
	LanguageID   *uint         `json:"language_id"`
	Text         string        `gorm:"size:200" json:"text"`
	SoundID      *uint         `json:"sound_id"`
	DrawingID    uint          `gorm:"not null" json:"drawing_id"`
	Language     *Language     `json:"language,omitempty"`
	Sound        *Sound        `json:"sound,omitempty"`
	Drawing      Drawing       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"drawing"`
	Expectations []Expectation `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"expectations,omitempty"`
}

// Color may be associated with a Fill or an Expectation. Code is the RGB
// code used on the client side, Name a mnemonic.
type Color struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"size:25;not null;index" json:"code"`
	Name string `gorm:"size:20;not null" json:"name"`
}

// Expectation is the expected Color for a particular Area on a Page. When
// Here is false the color is expected in another area.
type Expectation struct {
	PageID     uint   `gorm:"primaryKey;autoIncrement:false" json:"page_id"`
	AreaID     uint   `gorm:"primaryKey;autoIncrement:false" json:"area_id"`
	ColorID    uint   `gorm:"not null" json:"color_id"`
	Here       bool   `gorm:"not null" json:"here"`
	Motivation string `gorm:"size:200" json:"motivation"`
	Area       Area   `json:"area"`
	Color      Color  `json:"color"`
}

// ExpectsArea reports whether any expectation on the page targets the area.
func (p Page) ExpectsArea(areaID uint) bool {
	for _, expectation := range p.Expectations {
		if expectation.AreaID == areaID {
			return true
		}
	}
	return false
}
