package dto

import "github.com/noah-isme/coloringbook-api/internal/models"

// SurveyDefinitionResponse is what the browser client loads before showing
// the first page.
type SurveyDefinitionResponse struct {
	Name         string               `json:"name"`
	Information  string               `json:"information"`
	Simultaneous bool                 `json:"simultaneous"`
	Duration     int                  `json:"duration"`
	Images       []string             `json:"images"`
	Sounds       []string             `json:"sounds"`
	Pages        []SurveyPageResponse `json:"pages"`
}

// SurveyPageResponse describes one page in presentation order.
type SurveyPageResponse struct {
	Name    string `json:"name"`
	Text    string `json:"text"`
	Drawing string `json:"drawing"`
	Sound   string `json:"sound,omitempty"`
}

// NewSurveyDefinitionResponse converts a survey and its ordered pages. Images
// and sounds are listed once each, in order of first use.
func NewSurveyDefinitionResponse(survey models.Survey, pages []models.Page) SurveyDefinitionResponse {
	response := SurveyDefinitionResponse{
		Name:         survey.Name,
		Information:  survey.Information,
		Simultaneous: survey.Simultaneous,
		Duration:     survey.Duration,
		Images:       []string{},
		Sounds:       []string{},
		Pages:        make([]SurveyPageResponse, 0, len(pages)),
	}

	seenImages := make(map[string]struct{})
	seenSounds := make(map[string]struct{})
	for _, page := range pages {
		item := SurveyPageResponse{
			Name:    page.Name,
			Text:    page.Text,
			Drawing: page.Drawing.Name,
		}
		if _, ok := seenImages[page.Drawing.Name]; !ok && page.Drawing.Name != "" {
			seenImages[page.Drawing.Name] = struct{}{}
			response.Images = append(response.Images, page.Drawing.Name)
		}
		if page.Sound != nil && page.Sound.Name != "" {
			item.Sound = page.Sound.Name
			if _, ok := seenSounds[page.Sound.Name]; !ok {
				seenSounds[page.Sound.Name] = struct{}{}
				response.Sounds = append(response.Sounds, page.Sound.Name)
			}
		}
		response.Pages = append(response.Pages, item)
	}

	return response
}
