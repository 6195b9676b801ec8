package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"cardbazaar/internal/domain"
	"cardbazaar/internal/services"
)

func jsonError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// fail maps the service error taxonomy onto HTTP statuses without leaking
// internals: validation 400, missing rows 404, ownership 403, business rule
// conflicts 409, drained stock 410, exhausted retries 503.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidRequest):
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrListingNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrCollectionNotFound),
		errors.Is(err, services.ErrDeckNotFound),
		errors.Is(err, services.ErrCardSetNotFound),
		errors.Is(err, services.ErrBuyerNotFound),
		errors.Is(err, services.ErrSellerNotFound):
		return jsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrSelfTrade),
		errors.Is(err, services.ErrNotSeller):
		return jsonError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrOutOfStock):
		return jsonError(c, fiber.StatusGone, err.Error())
	case errors.Is(err, services.ErrDuplicateRequest),
		errors.Is(err, services.ErrNotInCollection),
		errors.Is(err, services.ErrNotInDeck),
		errors.Is(err, services.ErrFormatLimitExceeded),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, domain.ErrQuantityUnderflow):
		return jsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrRetryExhausted):
		return jsonError(c, fiber.StatusServiceUnavailable, "temporary conflict, retry later")
	}
	return jsonError(c, fiber.StatusInternalServerError, "internal error")
}
