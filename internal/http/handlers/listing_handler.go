package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "cardbazaar/internal/log"
	"cardbazaar/internal/repos"
	"cardbazaar/internal/services"
	"cardbazaar/internal/validate"
)

type ListingHandler struct {
	Market   *services.MarketService
	Listings *repos.ListingRepo
	Cards    *repos.CardRepo
}

// Browse lists active listings for one printing, cheapest first.
func (h *ListingHandler) Browse(c *fiber.Ctx) error {
	cardSetID, ok := validate.ID(c.Query("cardSetId"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "missing or invalid cardSetId")
	}
	listings, err := h.Listings.ByCardSet(cardSetID)
	if err != nil {
		applog.Error(c, "listing.browse", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal error")
	}
	applog.Info(c, "listing.browse", map[string]any{"card_set_id": cardSetID, "count": len(listings)})
	return c.JSON(fiber.Map{"listings": listings})
}

func (h *ListingHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid listing id")
	}
	l, err := h.Listings.ByID(id)
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "listing not found")
	}
	avail, err := h.Market.Availability(id)
	if err != nil {
		return fail(c, err)
	}
	resp := fiber.Map{"listing": l, "availability": avail}
	// Market context is best-effort; a listing without price history still renders.
	if p, err := h.Cards.LatestPrice(l.CardSetID); err == nil && p != nil {
		resp["marketPrice"] = p
	}
	return c.JSON(resp)
}

type createListingBody struct {
	SellerID  string  `json:"sellerId"`
	CardSetID string  `json:"cardSetId"`
	Condition string  `json:"condition"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

func (h *ListingHandler) Create(c *fiber.Ctx) error {
	var body createListingBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if _, ok := validate.ID(body.SellerID); !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid sellerId")
	}
	if _, ok := validate.ID(body.CardSetID); !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid cardSetId")
	}
	if !validate.Qty(body.Quantity) {
		return jsonError(c, fiber.StatusBadRequest, "quantity must be between 1 and 99")
	}
	if !validate.Price(body.Price) {
		return jsonError(c, fiber.StatusBadRequest, "invalid price")
	}
	if body.Condition != "" {
		cond, ok := validate.Condition(body.Condition)
		if !ok {
			return jsonError(c, fiber.StatusBadRequest, "invalid condition")
		}
		body.Condition = cond
	}

	l, err := h.Market.CreateListing(c.Context(), services.CreateListingRequest{
		SellerID:  body.SellerID,
		CardSetID: body.CardSetID,
		Condition: body.Condition,
		Price:     body.Price,
		Quantity:  body.Quantity,
	})
	if err != nil {
		applog.Security(c, "listing.create.fail", map[string]any{"error": err.Error()})
		return fail(c, err)
	}
	applog.Audit(c, "listing.create", map[string]any{
		"listing_id": l.ID, "seller_id": l.SellerID, "quantity": l.Quantity, "price": l.Price,
	})
	return c.Status(fiber.StatusCreated).JSON(l)
}

type cancelListingBody struct {
	SellerID string `json:"sellerId"`
}

func (h *ListingHandler) Cancel(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid listing id")
	}
	var body cancelListingBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if _, ok := validate.ID(body.SellerID); !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid sellerId")
	}

	if err := h.Market.CancelListing(c.Context(), id, body.SellerID); err != nil {
		applog.Security(c, "listing.cancel.fail", map[string]any{"listing_id": id, "error": err.Error()})
		return fail(c, err)
	}
	applog.Audit(c, "listing.cancel", map[string]any{"listing_id": id})
	return c.JSON(fiber.Map{"ok": true})
}
