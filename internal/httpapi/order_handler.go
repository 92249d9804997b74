package httpapi

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"driverDispatch/internal/notify"
	"driverDispatch/models"
	"driverDispatch/repository"
)

// OrderHandler serves order creation and lookup. The web-app menu posts here
// after checkout; the summary with the pay/cancel buttons goes to the
// customer's chat right after the order is stored.
type OrderHandler struct {
	users    *repository.UserRepository
	products *repository.ProductRepository
	orders   *repository.OrderRepository
	gateway  notify.Gateway
	log      *slog.Logger
}

type orderItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required"`
	Quantity  int   `json:"quantity" validate:"gt=0"`
}

type createOrderRequest struct {
	UserID int64              `json:"user_id" validate:"required"`
	Items  []orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *OrderHandler) List(c echo.Context) error {
	list, err := h.orders.List(c.Request().Context())
	if err != nil {
		h.log.Error("list orders", "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Error interno"})
	}
	if list == nil {
		list = []models.Order{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *OrderHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	o, err := h.orders.GetWithItems(c.Request().Context(), id)
	if err != nil {
		h.log.Error("get order", "order_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Error interno"})
	}
	if o == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Message: "Pedido no encontrado"})
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) Create(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Cuerpo de solicitud inválido"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Pedido inválido: usuario y al menos un producto son requeridos"})
	}

	ctx := c.Request().Context()
	u, err := h.users.GetByID(ctx, req.UserID)
	if err != nil {
		h.log.Error("load order user", "user_id", req.UserID, "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Error interno"})
	}
	if u == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Message: "Usuario no encontrado"})
	}

	ids := make([]int64, 0, len(req.Items))
	for _, it := range req.Items {
		ids = append(ids, it.ProductID)
	}
	active, err := h.products.GetActiveByIDs(ctx, ids)
	if err != nil {
		h.log.Error("load order products", "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Error interno"})
	}
	prices := make(map[int64]float64, len(active))
	for _, p := range active {
		prices[p.ID] = p.Price
	}

	var total float64
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		price, ok := prices[it.ProductID]
		if !ok {
			return c.JSON(http.StatusBadRequest, errorResponse{Message: "El pedido contiene productos no disponibles"})
		}
		total += price * float64(it.Quantity)
		items = append(items, models.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	o, err := h.orders.CreateWithItems(ctx, &models.Order{UserID: u.ID, Total: total}, items)
	if err != nil {
		h.log.Error("create order", "user_id", u.ID, "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Error interno"})
	}

	if u.TelegramID != nil {
		summary := notify.OrderSummaryMessage(o)
		if err := h.gateway.SendMessageMarkdown(*u.TelegramID, summary, notify.PayCancelKeyboard(o.ID)); err != nil {
			h.log.Error("send order summary", "order_id", o.ID, "error", err)
		}
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req updateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Cuerpo de solicitud inválido"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Estado requerido"})
	}
	status := models.OrderStatus(req.Status)
	switch status {
	case models.OrderStatusPending, models.OrderStatusConfirmed, models.OrderStatusDelivered, models.OrderStatusCancelled:
	default:
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Estado de pedido desconocido"})
	}

	if err := h.orders.UpdateStatus(c.Request().Context(), id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, errorResponse{Message: "Pedido no encontrado"})
		}
		h.log.Error("update order status", "order_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Error interno"})
	}
	o, err := h.orders.GetByID(c.Request().Context(), id)
	if err != nil {
		h.log.Error("reload order", "order_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Error interno"})
	}
	return c.JSON(http.StatusOK, o)
}
