package dto

import "time"

// CatalogSeedRequest loads colors, drawings, pages and surveys in one go.
// Related records are referenced by name; expectation colors by code.
type CatalogSeedRequest struct {
	Languages []string      `json:"languages" validate:"dive,required,max=30"`
	Sounds    []string      `json:"sounds" validate:"dive,required,max=30"`
	Colors    []ColorSeed   `json:"colors" validate:"dive"`
	Drawings  []DrawingSeed `json:"drawings" validate:"dive"`
	Pages     []PageSeed    `json:"pages" validate:"dive"`
	Surveys   []SurveySeed  `json:"surveys" validate:"dive"`
}

// ColorSeed is a client color code with its mnemonic.
type ColorSeed struct {
	Code string `json:"code" validate:"required,max=25"`
	Name string `json:"name" validate:"required,max=20"`
}

// DrawingSeed is a drawing with the ids of its colorable SVG paths.
type DrawingSeed struct {
	Name  string   `json:"name" validate:"required,max=30"`
	Areas []string `json:"areas" validate:"dive,required,max=20"`
}

// PageSeed is a page and what the subject is expected to color on it.
type PageSeed struct {
	Name         string            `json:"name" validate:"required,max=30"`
	Drawing      string            `json:"drawing" validate:"required,max=30"`
	Text         string            `json:"text" validate:"max=200"`
	Sound        string            `json:"sound" validate:"max=30"`
	Language     string            `json:"language" validate:"max=30"`
	Expectations []ExpectationSeed `json:"expectations" validate:"dive"`
}

// ExpectationSeed expects Color in Area, or elsewhere when Here is false.
type ExpectationSeed struct {
	Area       string `json:"area" validate:"required,max=20"`
	Color      string `json:"color" validate:"required,max=25"`
	Here       bool   `json:"here"`
	Motivation string `json:"motivation" validate:"max=200"`
}

// SurveySeed is a survey with its page names in presentation order.
type SurveySeed struct {
	Name         string     `json:"name" validate:"required,max=100"`
	Language     string     `json:"language" validate:"max=30"`
	Begin        *time.Time `json:"begin"`
	End          *time.Time `json:"end"`
	Information  string     `json:"information" validate:"max=500"`
	Simultaneous bool       `json:"simultaneous"`
	Duration     int        `json:"duration" validate:"gte=0"`
	EmailAddress string     `json:"email_address" validate:"max=500"`
	Pages        []string   `json:"pages" validate:"dive,required"`
}
