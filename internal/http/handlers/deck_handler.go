package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "cardbazaar/internal/log"
	"cardbazaar/internal/repos"
	"cardbazaar/internal/services"
	"cardbazaar/internal/validate"
)

type DeckHandler struct {
	Deck  *services.DeckService
	Decks *repos.DeckRepo
}

type slotBody struct {
	CardSetID string `json:"cardSetId"`
	Section   string `json:"section"`
	Delta     int    `json:"delta"`
}

func (h *DeckHandler) AddSlot(c *fiber.Ctx) error {
	deckID, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid deck id")
	}
	var body slotBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if _, ok := validate.ID(body.CardSetID); !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid cardSetId")
	}
	section, ok := validate.Section(body.Section)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid section")
	}
	if !validate.Delta(body.Delta) {
		return jsonError(c, fiber.StatusBadRequest, "delta must be a non-zero value between -99 and 99")
	}

	slot, err := h.Deck.AddToSlot(c.Context(), services.SlotRequest{
		DeckID:    deckID,
		CardSetID: body.CardSetID,
		Section:   section,
		Delta:     body.Delta,
	})
	if err != nil {
		applog.Security(c, "deck.slot.fail", map[string]any{
			"deck_id": deckID, "card_set_id": body.CardSetID, "error": err.Error(),
		})
		return fail(c, err)
	}
	applog.Audit(c, "deck.slot", map[string]any{
		"deck_id": deckID, "card_set_id": body.CardSetID, "section": section, "delta": body.Delta,
	})
	if slot == nil {
		return c.JSON(fiber.Map{"removed": true})
	}
	return c.JSON(slot)
}

func (h *DeckHandler) Slots(c *fiber.Ctx) error {
	deckID, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid deck id")
	}
	slots, err := h.Decks.Slots(deckID)
	if err != nil {
		applog.Error(c, "deck.slots", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal error")
	}
	return c.JSON(fiber.Map{"slots": slots})
}
