package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "cardbazaar/internal/log"
	"cardbazaar/internal/domain"
	"cardbazaar/internal/repos"
	"cardbazaar/internal/validate"
)

type CardHandler struct {
	Cards *repos.CardRepo
}

// Detail returns a card with its printings and their latest market prices.
func (h *CardHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid card id")
	}
	card, err := h.Cards.Card(id)
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "card not found")
	}
	printings, err := h.Cards.Printings(id)
	if err != nil {
		applog.Error(c, "card.printings", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal error")
	}

	type printing struct {
		domain.CardSet
		MarketPrice *domain.PricePoint `json:"marketPrice,omitempty"`
	}
	out := make([]printing, 0, len(printings))
	for _, cs := range printings {
		p := printing{CardSet: cs}
		if pp, err := h.Cards.LatestPrice(cs.ID); err == nil {
			p.MarketPrice = pp
		}
		out = append(out, p)
	}
	return c.JSON(fiber.Map{"card": card, "printings": out})
}
