package models

// Drawing is a proxy to a colorable SVG, stored by file name without extension.
type Drawing struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:30;not null;uniqueIndex" json:"name"`
	Areas []Area `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"areas,omitempty"`
}

// Area is a colorable part of a Drawing. Its name is the id of the
// corresponding <path> element in the SVG.
type Area struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:20;not null;uniqueIndex:idx_area_drawing_name" json:"name"`
	DrawingID uint   `gorm:"not null;uniqueIndex:idx_area_drawing_name" json:"drawing_id"`
}

// Sound is a proxy to an audio file played alongside a page.
type Sound struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:30;not null;uniqueIndex" json:"name"`
}
