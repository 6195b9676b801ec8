package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "cardbazaar/internal/log"
	"cardbazaar/internal/repos"
	"cardbazaar/internal/services"
	"cardbazaar/internal/validate"
)

type OrderHandler struct {
	Order  *services.OrderService
	Orders *repos.OrderRepo
}

type placeOrderBody struct {
	RequestID string `json:"requestId"`
	BuyerID   string `json:"buyerId"`
	Quantity  int    `json:"quantity"`
}

func (h *OrderHandler) Place(c *fiber.Ctx) error {
	listingID, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid listing id")
	}
	var body placeOrderBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if _, ok := validate.ID(body.BuyerID); !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid buyerId")
	}
	if !validate.Qty(body.Quantity) {
		return jsonError(c, fiber.StatusBadRequest, "quantity must be between 1 and 99")
	}

	o, err := h.Order.Place(c.Context(), services.PlaceOrderRequest{
		RequestID: body.RequestID,
		BuyerID:   body.BuyerID,
		ListingID: listingID,
		Quantity:  body.Quantity,
	})
	if err != nil {
		applog.Security(c, "order.place.fail", map[string]any{
			"listing_id": listingID, "buyer_id": body.BuyerID, "error": err.Error(),
		})
		return fail(c, err)
	}
	applog.Audit(c, "order.place", map[string]any{
		"order_id": o.ID, "listing_id": listingID, "quantity": o.Quantity, "total": o.Total,
	})
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, "cancel")
}

func (h *OrderHandler) Complete(c *fiber.Ctx) error {
	return h.transition(c, "complete")
}

func (h *OrderHandler) Refund(c *fiber.Ctx) error {
	return h.transition(c, "refund")
}

func (h *OrderHandler) transition(c *fiber.Ctx, action string) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid order id")
	}

	var err error
	var o any
	switch action {
	case "cancel":
		o, err = h.Order.Cancel(c.Context(), id)
	case "complete":
		o, err = h.Order.Complete(c.Context(), id)
	case "refund":
		o, err = h.Order.Refund(c.Context(), id)
	}
	if err != nil {
		applog.Security(c, "order."+action+".fail", map[string]any{"order_id": id, "error": err.Error()})
		return fail(c, err)
	}
	applog.Audit(c, "order."+action, map[string]any{"order_id": id})
	return c.JSON(o)
}

func (h *OrderHandler) History(c *fiber.Ctx) error {
	buyerID, ok := validate.ID(c.Query("buyerId"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "missing or invalid buyerId")
	}
	orders, err := h.Orders.ListByBuyer(buyerID)
	if err != nil {
		applog.Error(c, "order.history", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal error")
	}
	return c.JSON(fiber.Map{"orders": orders})
}
