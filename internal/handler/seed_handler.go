package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coloringbook-api/internal/dto"
	"github.com/noah-isme/coloringbook-api/internal/repository"
	"github.com/noah-isme/coloringbook-api/internal/service"
	"github.com/noah-isme/coloringbook-api/internal/utils"
)

// SeedHandler exposes tooling endpoints for loading survey material.
type SeedHandler struct {
	service service.SeedService
	logger  zerolog.Logger
}

// NewSeedHandler constructs a seed handler.
func NewSeedHandler(service service.SeedService, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		service: service,
		logger:  logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Register wires seed routes.
func (h *SeedHandler) Register(router fiber.Router) {
	router.Post("/catalog", h.catalog)
}

func (h *SeedHandler) catalog(c *fiber.Ctx) error {
	token := c.Get("X-Seed-Token")
	var payload dto.CatalogSeedRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	counts, err := h.service.SeedCatalog(c.UserContext(), token, payload)
	if err != nil {
		return h.seedError(c, err)
	}

	return utils.SendSuccess(c, "catalog seeded", counts)
}

func (h *SeedHandler) seedError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrSeedDisabled):
		return utils.SendError(c, fiber.StatusForbidden, "seeding disabled")
	case errors.Is(err, service.ErrSeedUnauthorized):
		return utils.SendError(c, fiber.StatusForbidden, "invalid token")
	case errors.As(err, &validationErrors):
		return utils.SendErrorWithDetails(c, fiber.StatusBadRequest, "invalid payload", validationErrors.Error())
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrAmbiguous):
		return utils.SendErrorWithDetails(c, fiber.StatusUnprocessableEntity, "unresolved reference", err.Error())
	default:
		h.logger.Error().Err(err).Msg("seed operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "seed operation failed")
	}
}
