package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "cardbazaar/internal/log"
	"cardbazaar/internal/repos"
	"cardbazaar/internal/services"
	"cardbazaar/internal/validate"
)

type CollectionHandler struct {
	Collection  *services.CollectionService
	Collections *repos.CollectionRepo
}

type adjustItemBody struct {
	CardSetID     string   `json:"cardSetId"`
	Delta         int      `json:"delta"`
	Condition     *string  `json:"condition"`
	PurchasePrice *float64 `json:"purchasePrice"`
}

func (h *CollectionHandler) Adjust(c *fiber.Ctx) error {
	collectionID, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid collection id")
	}
	var body adjustItemBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if _, ok := validate.ID(body.CardSetID); !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid cardSetId")
	}
	if !validate.Delta(body.Delta) {
		return jsonError(c, fiber.StatusBadRequest, "delta must be a non-zero value between -99 and 99")
	}
	if body.Condition != nil {
		cond, ok := validate.Condition(*body.Condition)
		if !ok {
			return jsonError(c, fiber.StatusBadRequest, "invalid condition")
		}
		body.Condition = &cond
	}

	it, err := h.Collection.Adjust(c.Context(), services.AdjustRequest{
		CollectionID:  collectionID,
		CardSetID:     body.CardSetID,
		Delta:         body.Delta,
		Condition:     body.Condition,
		PurchasePrice: body.PurchasePrice,
	})
	if err != nil {
		applog.Security(c, "collection.adjust.fail", map[string]any{
			"collection_id": collectionID, "card_set_id": body.CardSetID, "error": err.Error(),
		})
		return fail(c, err)
	}
	applog.Audit(c, "collection.adjust", map[string]any{
		"collection_id": collectionID, "card_set_id": body.CardSetID, "delta": body.Delta,
	})
	if it == nil {
		// Quantity hit zero; the slot is gone.
		return c.JSON(fiber.Map{"removed": true})
	}
	return c.JSON(it)
}

func (h *CollectionHandler) Items(c *fiber.Ctx) error {
	collectionID, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid collection id")
	}
	items, err := h.Collections.Items(collectionID)
	if err != nil {
		applog.Error(c, "collection.items", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal error")
	}
	return c.JSON(fiber.Map{"items": items})
}
