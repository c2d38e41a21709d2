package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coloringbook-api/internal/dto"
	"github.com/noah-isme/coloringbook-api/internal/handler"
	"github.com/noah-isme/coloringbook-api/internal/middleware"
	"github.com/noah-isme/coloringbook-api/internal/service"
)

const validSubmission = `{
	"subject": {
		"name": "Bob",
		"birth": "2000-01-01",
		"languages": [["German", 10], ["Dutch", "3"]],
		"numeral": "",
		"eyesight": ""
	},
	"results": [
		[{"action": "fill", "color": "#ff0000", "target": "door", "time": 1000}],
		[]
	],
	"evaluation": {"difficulty": "3", "topic": "kleuren", "comments": ""}
}`

type mockSurveyService struct {
	definition dto.SurveyDefinitionResponse
	err        error
}

func (m *mockSurveyService) Definition(_ context.Context, name string) (dto.SurveyDefinitionResponse, error) {
	if m.err != nil {
		return dto.SurveyDefinitionResponse{}, m.err
	}
	return m.definition, nil
}

type mockSubmissionService struct {
	lastSurvey    string
	lastPayload   dto.SubjectSubmission
	lastBatch     []dto.SubjectSubmission
	response      dto.SubmissionResponse
	batchResponse dto.BatchSubmissionResponse
	err           error
}

func (m *mockSubmissionService) Submit(_ context.Context, surveyName string, submission dto.SubjectSubmission) (dto.SubmissionResponse, error) {
	m.lastSurvey = surveyName
	m.lastPayload = submission
	if m.err != nil {
		return dto.SubmissionResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockSubmissionService) SubmitBatch(_ context.Context, surveyName string, submissions []dto.SubjectSubmission) (dto.BatchSubmissionResponse, error) {
	m.lastSurvey = surveyName
	m.lastBatch = submissions
	if m.err != nil {
		return dto.BatchSubmissionResponse{}, m.err
	}
	return m.batchResponse, nil
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Details string          `json:"details"`
}

func newSurveyApp(surveys service.SurveyService, submissions service.SubmissionService, limiter fiber.Handler) *fiber.App {
	app := fiber.New()
	handler.NewSurveyHandler(surveys, submissions, limiter, zerolog.New(io.Discard)).Register(app.Group("/api/v1/surveys"))
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func sampleSummary() dto.SubjectSummary {
	return dto.SubjectSummary{
		SurveyName:  "pilot",
		SubjectName: "Bob",
		SubjectDOB:  "2000-01-01",
		Evaluations: []dto.PageEvaluation{
			{Page: "p1", Target: "door", Color: "red", Correct: 1},
			{Page: "p2", Target: "-", Color: "-", Correct: 0},
		},
		TotalPages:        2,
		TotalCorrect:      1,
		PercentageCorrect: 50,
	}
}

func TestSurveyHandler_Definition(t *testing.T) {
	surveys := &mockSurveyService{definition: dto.SurveyDefinitionResponse{
		Name:     "pilot",
		Duration: 6000,
		Images:   []string{"house"},
		Sounds:   []string{},
		Pages:    []dto.SurveyPageResponse{{Name: "p1", Text: "Kleur de deur rood", Drawing: "house"}},
	}}
	app := newSurveyApp(surveys, &mockSubmissionService{}, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/surveys/pilot", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body apiResponse
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)

	var definition dto.SurveyDefinitionResponse
	require.NoError(t, json.Unmarshal(body.Data, &definition))
	require.Equal(t, surveys.definition, definition)
}

func TestSurveyHandler_DefinitionNotFound(t *testing.T) {
	app := newSurveyApp(&mockSurveyService{err: service.ErrSurveyNotFound}, &mockSubmissionService{}, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/surveys/missing", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body apiResponse
	decodeResponse(t, resp, &body)
	require.False(t, body.Success)
	require.Equal(t, "Error", body.Message)
	require.Equal(t, "survey not found", body.Details)
}

func TestSurveyHandler_SubmitMatchesContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("schemas", "submit_response.schema.json"))
	require.NoError(t, err)
	schema, err := jsonschema.NewCompiler().Compile("file://" + schemaPath)
	require.NoError(t, err)

	submissions := &mockSubmissionService{response: dto.SubmissionResponse{SubjectID: 12, Summary: sampleSummary()}}
	app := newSurveyApp(&mockSurveyService{}, submissions, nil)

	resp := postJSON(t, app, "/api/v1/surveys/pilot/submit", validSubmission)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload interface{}
	decodeResponse(t, resp, &payload)
	require.NoError(t, schema.Validate(payload))

	require.Equal(t, "pilot", submissions.lastSurvey)
	require.Equal(t, "Bob", submissions.lastPayload.Subject.Name)
	require.Len(t, submissions.lastPayload.Results, 2)
	require.Equal(t, 3, submissions.lastPayload.Subject.Languages[1].Level)
	require.Equal(t, dto.NewLooseInt(3), submissions.lastPayload.Evaluation.Difficulty)
}

func TestSurveyHandler_SubmitRejectsInvalidBodies(t *testing.T) {
	cases := map[string]string{
		"malformed json":   `{"subject":`,
		"missing results":  `{"subject": {"name": "Bob", "birth": "2000-01-01", "languages": []}}`,
		"action sans time": `{"subject": {"name": "Bob", "birth": "2000-01-01", "languages": []}, "results": [[{"action": "fill"}]]}`,
		"not an object":    `[]`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			submissions := &mockSubmissionService{}
			app := newSurveyApp(&mockSurveyService{}, submissions, nil)

			resp := postJSON(t, app, "/api/v1/surveys/pilot/submit", body)
			require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

			var response apiResponse
			decodeResponse(t, resp, &response)
			require.Equal(t, "Error", response.Message)
			require.NotEmpty(t, response.Details)
			require.Empty(t, submissions.lastSurvey)
		})
	}
}

func TestSurveyHandler_SubmitErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"unknown survey", service.ErrSurveyNotFound, fiber.StatusNotFound},
		{"duplicate", service.ErrDuplicateSubmission, fiber.StatusConflict},
		{"invalid subject", fmt.Errorf("%w: name must be non-empty", service.ErrInvalidSubject), fiber.StatusUnprocessableEntity},
		{"page count", fmt.Errorf("%w: got 1 results for 2 pages", service.ErrPageCountMismatch), fiber.StatusUnprocessableEntity},
		{"action", &service.ActionError{Page: "p1", Index: 0, Err: service.ErrInvalidAction}, fiber.StatusUnprocessableEntity},
		{"internal", errors.New("connection reset"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newSurveyApp(&mockSurveyService{}, &mockSubmissionService{err: tc.err}, nil)

			resp := postJSON(t, app, "/api/v1/surveys/pilot/submit", validSubmission)
			require.Equal(t, tc.status, resp.StatusCode)

			var body apiResponse
			decodeResponse(t, resp, &body)
			require.False(t, body.Success)
			require.Equal(t, "Error", body.Message)
			if tc.status == fiber.StatusInternalServerError {
				require.Equal(t, "internal server error", body.Details)
			}
		})
	}
}

func TestSurveyHandler_BatchReportsFailures(t *testing.T) {
	summary := sampleSummary()
	submissions := &mockSubmissionService{batchResponse: dto.BatchSubmissionResponse{
		Survey: "pilot",
		Stored: 1,
		Failed: 1,
		Outcomes: []dto.SubjectOutcomeResponse{
			{Index: 0, Subject: "Bob", Status: dto.OutcomeStored, SubjectID: 3, Summary: &summary},
			{Index: 1, Subject: "", Status: dto.OutcomeFailed, Error: "invalid subject: name must be non-empty"},
		},
	}}
	app := newSurveyApp(&mockSurveyService{}, submissions, nil)

	resp := postJSON(t, app, "/api/v1/surveys/pilot/batch", "["+validSubmission+","+validSubmission+"]")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body apiResponse
	decodeResponse(t, resp, &body)
	require.Equal(t, "completed with failures", body.Message)
	require.Len(t, submissions.lastBatch, 2)

	var batch dto.BatchSubmissionResponse
	require.NoError(t, json.Unmarshal(body.Data, &batch))
	require.Equal(t, 1, batch.Failed)
	require.Equal(t, dto.OutcomeFailed, batch.Outcomes[1].Status)

	resp = postJSON(t, app, "/api/v1/surveys/pilot/batch", validSubmission)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSurveyHandler_SubmitIsRateLimited(t *testing.T) {
	submissions := &mockSubmissionService{response: dto.SubmissionResponse{SubjectID: 1, Summary: sampleSummary()}}
	app := newSurveyApp(&mockSurveyService{}, submissions, middleware.RateLimit("submit", 1, time.Minute))

	resp := postJSON(t, app, "/api/v1/surveys/pilot/submit", validSubmission)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = postJSON(t, app, "/api/v1/surveys/pilot/submit", validSubmission)
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}
