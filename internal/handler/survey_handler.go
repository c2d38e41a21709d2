package handler

import (
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/noah-isme/coloringbook-api/internal/dto"
	"github.com/noah-isme/coloringbook-api/internal/service"
	"github.com/noah-isme/coloringbook-api/internal/utils"
)

// Response messages the browser client compares against.
const (
	messageSuccess = "Success"
	messageError   = "Error"
)

// SurveyHandler serves survey definitions and accepts finished surveys.
type SurveyHandler struct {
	surveys     service.SurveyService
	submissions service.SubmissionService
	limiter     fiber.Handler
	logger      zerolog.Logger
}

// NewSurveyHandler builds a survey handler. limiter guards the submission
// routes and may be nil.
func NewSurveyHandler(surveys service.SurveyService, submissions service.SubmissionService, limiter fiber.Handler, logger zerolog.Logger) *SurveyHandler {
	if err := loadSchemas(); err != nil {
		panic(err)
	}
	if limiter == nil {
		limiter = func(c *fiber.Ctx) error { return c.Next() }
	}
	return &SurveyHandler{
		surveys:     surveys,
		submissions: submissions,
		limiter:     limiter,
		logger:      logger.With().Str("component", "survey_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *SurveyHandler) Register(router fiber.Router) {
	router.Get("/:name", h.definition)
	router.Post("/:name/submit", h.limiter, h.submit)
	router.Post("/:name/batch", h.limiter, h.batch)
}

func (h *SurveyHandler) definition(c *fiber.Ctx) error {
	definition, err := h.surveys.Definition(c.UserContext(), c.Params("name"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "survey retrieved", definition)
}

func (h *SurveyHandler) submit(c *fiber.Ctx) error {
	body := c.Body()
	if err := validatePayload(submissionSchema, body); err != nil {
		return h.handleError(c, err)
	}

	var payload dto.SubjectSubmission
	if err := json.Unmarshal(body, &payload); err != nil {
		return utils.SendErrorWithDetails(c, fiber.StatusBadRequest, messageError, err.Error())
	}

	response, err := h.submissions.Submit(c.UserContext(), c.Params("name"), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, messageSuccess, response)
}

func (h *SurveyHandler) batch(c *fiber.Ctx) error {
	body := c.Body()
	if err := validatePayload(batchSchema, body); err != nil {
		return h.handleError(c, err)
	}

	var payload []dto.SubjectSubmission
	if err := json.Unmarshal(body, &payload); err != nil {
		return utils.SendErrorWithDetails(c, fiber.StatusBadRequest, messageError, err.Error())
	}

	response, err := h.submissions.SubmitBatch(c.UserContext(), c.Params("name"), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	message := messageSuccess
	if response.Failed > 0 {
		message = "completed with failures"
	}
	return utils.SendSuccess(c, message, response)
}

func (h *SurveyHandler) handleError(c *fiber.Ctx, err error) error {
	var (
		validationErrors validator.ValidationErrors
		schemaErr        *jsonschema.ValidationError
		actionErr        *service.ActionError
	)

	status := fiber.StatusUnprocessableEntity
	details := err.Error()
	switch {
	case errors.Is(err, service.ErrSurveyNotFound):
		status, details = fiber.StatusNotFound, "survey not found"
	case errors.Is(err, service.ErrDuplicateSubmission):
		status, details = fiber.StatusConflict, "duplicate submission"
	case errors.Is(err, errMalformedJSON), errors.As(err, &schemaErr):
		status = fiber.StatusBadRequest
	case errors.As(err, &validationErrors):
		details = validationErrors.Error()
	case errors.Is(err, service.ErrInvalidSubject),
		errors.Is(err, service.ErrPageCountMismatch),
		errors.As(err, &actionErr):
	default:
		requestLogger(h.logger, c).Error().Err(err).Str("survey", c.Params("name")).Msg("internal server error")
		return utils.SendErrorWithDetails(c, fiber.StatusInternalServerError, messageError, "internal server error")
	}

	requestLogger(h.logger, c).Warn().Err(err).Str("survey", c.Params("name")).Int("status", status).Msg("survey request rejected")
	return utils.SendErrorWithDetails(c, status, messageError, details)
}
