package service

import (
	"context"
	"fmt"

	"github.com/noah-isme/coloringbook-api/internal/dto"
	"github.com/noah-isme/coloringbook-api/internal/models"
)

// ParseActions turns one page's raw action log into typed records, in the
// original order. Fill targets are resolved among the areas of the page's
// drawing and colors by their client code; both must match exactly one
// record. The first failing entry is logged with its index and aborts the
// whole page.
func (p *Pipeline) ParseActions(ctx context.Context, survey models.Survey, page models.Page, subject models.Subject, data []dto.ActionPayload) ([]models.PageAction, error) {
	actions := make([]models.PageAction, 0, len(data))
	for index, datum := range data {
		action, err := p.parseAction(ctx, survey, page, subject, datum)
		if err != nil {
			p.logger.Error().
				Err(err).
				Str("survey", survey.Name).
				Str("page", page.Name).
				Int("action_index", index).
				Msg("failed to parse action of the current page")
			return nil, &ActionError{Page: page.Name, Index: index, Err: err}
		}
		actions = append(actions, action)
	}
	return actions, nil
}

func (p *Pipeline) parseAction(ctx context.Context, survey models.Survey, page models.Page, subject models.Subject, datum dto.ActionPayload) (models.PageAction, error) {
	if !datum.Time.Valid {
		return nil, fmt.Errorf("%w: time is required", ErrInvalidAction)
	}

	if datum.Action != models.ActionFill {
		if datum.Action == "" {
			return nil, fmt.Errorf("%w: action name is required", ErrInvalidAction)
		}
		return &models.Action{
			SurveyID:  survey.ID,
			PageID:    page.ID,
			SubjectID: subject.ID,
			Time:      datum.Time.Value,
			Name:      datum.Action,
		}, nil
	}

	area, err := p.areas.FindInDrawing(ctx, page.DrawingID, datum.Target)
	if err != nil {
		return nil, fmt.Errorf("target %q: %w", datum.Target, err)
	}

	color, err := p.colors.FindByCode(ctx, datum.Color)
	if err != nil {
		return nil, fmt.Errorf("color %q: %w", datum.Color, err)
	}

	return &models.Fill{
		SurveyID:  survey.ID,
		PageID:    page.ID,
		AreaID:    area.ID,
		SubjectID: subject.ID,
		Time:      datum.Time.Value,
		ColorID:   color.ID,
		Area:      area,
		Color:     color,
	}, nil
}
