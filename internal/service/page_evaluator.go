package service

import (
	"strings"

	"github.com/noah-isme/coloringbook-api/internal/dto"
	"github.com/noah-isme/coloringbook-api/internal/models"
)

const skippedMarker = "-"

// EvaluatePageActions judges one page. A skipped page scores 0. Otherwise
// the first fill whose area carries an expectation scores 1, whatever color
// was used and whatever the expectation's Here flag says. Without such a
// fill the page scores 0 and every fill's area and color is reported.
// Generic actions are ignored.
func EvaluatePageActions(actions []models.PageAction, page models.Page) dto.PageEvaluation {
	if len(actions) == 0 {
		return dto.PageEvaluation{
			Page:    page.Name,
			Target:  skippedMarker,
			Color:   skippedMarker,
			Correct: 0,
		}
	}

	for _, action := range actions {
		fill, ok := action.(*models.Fill)
		if !ok {
			continue
		}
		if page.ExpectsArea(fill.AreaID) {
			return dto.PageEvaluation{
				Page:    page.Name,
				Target:  fill.Area.Name,
				Color:   fill.Color.Name,
				Correct: 1,
			}
		}
	}

	targets := make([]string, 0, len(actions))
	colors := make([]string, 0, len(actions))
	for _, action := range actions {
		if fill, ok := action.(*models.Fill); ok {
			targets = append(targets, fill.Area.Name)
			colors = append(colors, fill.Color.Name)
		}
	}

	return dto.PageEvaluation{
		Page:    page.Name,
		Target:  strings.Join(targets, ", "),
		Color:   strings.Join(colors, ", "),
		Correct: 0,
	}
}
