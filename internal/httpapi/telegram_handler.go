package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"

	"driverDispatch/internal/config"
	"driverDispatch/internal/dispatch"
	"driverDispatch/internal/notify"
	"driverDispatch/models"
	"driverDispatch/repository"
)

// TelegramHandler receives bot updates from the Telegram webhook and the
// payment-confirmed callback from the payment frontend. Webhook processing
// always answers 200: Telegram retries non-2xx replies and a retried update
// would re-run side effects.
type TelegramHandler struct {
	svc      *dispatch.Service
	users    *repository.UserRepository
	orders   *repository.OrderRepository
	gateway  notify.Gateway
	telegram config.TelegramConfig
	log      *slog.Logger
}

func (h *TelegramHandler) Webhook(c echo.Context) error {
	var update tgbotapi.Update
	if err := c.Bind(&update); err != nil {
		h.log.Warn("undecodable telegram update", "error", err)
		return c.NoContent(http.StatusOK)
	}
	ctx := c.Request().Context()

	switch {
	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	}
	return c.NoContent(http.StatusOK)
}

func (h *TelegramHandler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil || msg.From == nil {
		return
	}
	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	name := strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName)

	if msg.Location != nil {
		if _, err := h.users.UpsertLocationByTelegramID(ctx, chatID, name, msg.Location.Latitude, msg.Location.Longitude); err != nil {
			h.log.Error("store customer location", "chat_id", chatID, "error", err)
			return
		}
		h.send(chatID, notify.LocationReceivedMessage())
		return
	}

	if !msg.IsCommand() {
		return
	}
	switch msg.Command() {
	case "start":
		h.registerCustomer(ctx, chatID, name)
		h.send(chatID, notify.WelcomeMessage(msg.From.FirstName))
	case "menu":
		h.sendMarkdown(chatID, "Mirá nuestro menú y armá tu pedido 👇", notify.MenuKeyboard(h.telegram.FrontendURL))
	case "ubicacion":
		h.sendMarkdown(chatID, "Compartinos tu ubicación para la entrega 👇", notify.ShareLocationKeyboard())
	}
}

func (h *TelegramHandler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.Message.Chat == nil {
		return
	}
	chatID := strconv.FormatInt(cb.Message.Chat.ID, 10)

	prefix, orderID, ok := parseCallbackData(cb.Data)
	if !ok {
		h.log.Warn("unknown callback data", "data", cb.Data)
		return
	}

	switch prefix {
	case "pay":
		h.sendMarkdown(chatID, "¿Cómo querés pagar tu pedido?", notify.PaymentMethodKeyboard(orderID))
	case "cancel":
		if err := h.svc.CancelOrder(ctx, orderID); err != nil {
			h.log.Error("cancel order from chat", "order_id", orderID, "error", err)
			h.send(chatID, notify.OrderCancelFailedMessage(orderID))
			return
		}
		h.send(chatID, notify.OrderCancelledMessage(orderID))
	case "payqr":
		h.sendMarkdown(chatID, "Escaneá el QR para completar el pago 👇", notify.QRPaymentKeyboard(h.telegram.FrontendQRURL, orderID))
	case "paycash":
		h.send(chatID, notify.CashChosenMessage(orderID))
		// Cash on delivery confirms the order immediately.
		if err := h.orders.UpdateStatus(ctx, orderID, models.OrderStatusConfirmed); err != nil {
			h.log.Error("confirm cash order", "order_id", orderID, "error", err)
			return
		}
		if _, err := h.svc.AssignNearestDriver(ctx, orderID); err != nil {
			h.log.Error("assign driver for cash order", "order_id", orderID, "error", err)
		}
	}
}

// PaymentConfirmed is called by the payment frontend once a QR payment went
// through. Matching problems are reported to the customer chat, so the
// frontend only sees an error when the order itself is unknown.
func (h *TelegramHandler) PaymentConfirmed(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Id de pedido inválido"})
	}
	if err := h.svc.HandlePaymentConfirmed(c.Request().Context(), orderID); err != nil {
		if errors.Is(err, dispatch.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Message: "Pedido no encontrado"})
		}
		h.log.Error("payment confirmed", "order_id", orderID, "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Error interno"})
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// registerCustomer creates the user on first /start; later /start calls keep
// the stored record (and its location) untouched.
func (h *TelegramHandler) registerCustomer(ctx context.Context, chatID, name string) {
	existing, err := h.users.GetByTelegramID(ctx, chatID)
	if err != nil {
		h.log.Error("lookup customer", "chat_id", chatID, "error", err)
		return
	}
	if existing != nil {
		return
	}
	if _, err := h.users.Create(ctx, &models.User{TelegramID: &chatID, Name: name}); err != nil {
		h.log.Error("register customer", "chat_id", chatID, "error", err)
	}
}

func (h *TelegramHandler) send(chatID, text string) {
	if err := h.gateway.SendMessage(chatID, text); err != nil {
		h.log.Error("send chat message", "chat_id", chatID, "error", err)
	}
}

func (h *TelegramHandler) sendMarkdown(chatID, text string, markup any) {
	if err := h.gateway.SendMessageMarkdown(chatID, text, markup); err != nil {
		h.log.Error("send chat message with markup", "chat_id", chatID, "error", err)
	}
}

// parseCallbackData splits button payloads of the form "<prefix>_<orderID>".
func parseCallbackData(data string) (string, int64, bool) {
	i := strings.LastIndex(data, "_")
	if i <= 0 {
		return "", 0, false
	}
	id, err := strconv.ParseInt(data[i+1:], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return data[:i], id, true
}
