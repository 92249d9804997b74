package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Inline keyboards and reply keyboards shown to customers. Callback data
// prefixes (pay_, cancel_, payqr_, paycash_) are parsed by the webhook
// handler.

// PayCancelKeyboard offers paying or cancelling a freshly created order.
func PayCancelKeyboard(orderID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🟩 Pagar", fmt.Sprintf("pay_%d", orderID)),
			tgbotapi.NewInlineKeyboardButtonData("🟥 Cancelar", fmt.Sprintf("cancel_%d", orderID)),
		),
	)
}

// PaymentMethodKeyboard offers QR or cash payment.
func PaymentMethodKeyboard(orderID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📲 Pago QR", fmt.Sprintf("payqr_%d", orderID)),
			tgbotapi.NewInlineKeyboardButtonData("💵 Efectivo", fmt.Sprintf("paycash_%d", orderID)),
		),
	)
}

// MenuKeyboard opens the menu frontend.
func MenuKeyboard(frontendURL string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🍔 Abrir menú", frontendURL),
		),
	)
}

// QRPaymentKeyboard opens the QR payment page for the order.
func QRPaymentKeyboard(frontendQRURL string, orderID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📱 Abrir QR de pago", fmt.Sprintf("%s?orderId=%d", frontendQRURL, orderID)),
		),
	)
}

// ShareLocationKeyboard asks the customer to share a live location.
func ShareLocationKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonLocation("📍 Enviar ubicación"),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}
