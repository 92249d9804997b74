package notify

import (
	"fmt"

	"driverDispatch/models"
)

// Message texts live here as pure functions so the dispatch flow can be
// tested without a messaging backend. Texts keep the deployment's customer
// language.

// StatusMessage returns the customer-facing text for a delivery status
// change. driverName may be empty when the driver record carries no name.
func StatusMessage(orderID int64, status models.DeliveryStatus, driverName string) string {
	name := driverName
	if name == "" {
		name = "El conductor asignado"
	}
	switch status {
	case models.DeliveryStatusRouteToPickup:
		return fmt.Sprintf("🚚 %s va camino al local para recoger tu pedido #%d.", name, orderID)
	case models.DeliveryStatusWaitRestaurant:
		return fmt.Sprintf("⌛ %s ya llegó al local y está esperando que tu pedido #%d esté listo.", name, orderID)
	case models.DeliveryStatusRouteToCustomer:
		return fmt.Sprintf("📦 %s ya tiene tu pedido #%d y se dirige hacia tu ubicación.", name, orderID)
	case models.DeliveryStatusWaitCustomer:
		return fmt.Sprintf("📍 %s ya llegó a tu ubicación y está esperándote con el pedido #%d.", name, orderID)
	case models.DeliveryStatusDelivered:
		return fmt.Sprintf("✅ Tu pedido #%d fue entregado. ¡Buen provecho!", orderID)
	case models.DeliveryStatusCancelled:
		return fmt.Sprintf("⚠️ El envío del pedido #%d fue cancelado. Si necesitás ayuda, escribinos.", orderID)
	default:
		return fmt.Sprintf("Tu pedido #%d tuvo una actualización de estado.", orderID)
	}
}

// DriverAssignedMessage announces the matched driver to the customer,
// tolerating missing plate and missing messaging handle.
func DriverAssignedMessage(orderID int64, driver *models.Driver) string {
	plateLine := "• Placa no registrada"
	if driver.Plate != nil && *driver.Plate != "" {
		plateLine = "• Placa: " + *driver.Plate
	}
	userLine := "• Usuario sin Telegram"
	if driver.Username != "" {
		userLine = "• Usuario: @" + driver.Username
	}
	return fmt.Sprintf("🚚 Tu pedido #%d fue asignado a %s.\n%s\n%s\nEl conductor ya está en camino al local para recoger tu pedido.",
		orderID, driver.Name, plateLine, userLine)
}

// LocationNeededMessage asks the customer to share a location before a driver
// can be assigned.
func LocationNeededMessage() string {
	return "Necesitamos tu ubicación antes de asignar un conductor. Usá /ubicacion para compartirla."
}

// NoDriverAvailableMessage tells the customer to wait for a free driver.
func NoDriverAvailableMessage() string {
	return "Por ahora no hay conductores disponibles. Te avisaremos apenas uno quede libre."
}

// WelcomeMessage greets a customer starting the bot.
func WelcomeMessage(firstName string) string {
	return fmt.Sprintf("¡Hola %s! 🍔\nBienvenido a SuperSuperBurger.\nUsá /menu para ver nuestras hamburguesas.", firstName)
}

// LocationReceivedMessage confirms a stored customer location.
func LocationReceivedMessage() string {
	return "✅ Recibimos tu ubicación. Gracias por compartirla."
}

// PaymentReceivedMessage confirms a paid order.
func PaymentReceivedMessage(orderID int64) string {
	return fmt.Sprintf("Hemos recibido el pago de tu pedido #%d. ¡Gracias por tu compra! 🍔🎉", orderID)
}

// CashChosenMessage confirms the cash-on-delivery choice.
func CashChosenMessage(orderID int64) string {
	return fmt.Sprintf("Has elegido pagar el pedido #%d en efectivo al momento de la entrega. ¡Gracias por tu compra!", orderID)
}

// OrderCancelledMessage confirms an order cancellation to the customer.
func OrderCancelledMessage(orderID int64) string {
	return fmt.Sprintf("Tu pedido #%d ha sido cancelado. Si querés, podés hacer un nuevo pedido usando /menu.", orderID)
}

// OrderCancelFailedMessage reports a failed cancellation attempt.
func OrderCancelFailedMessage(orderID int64) string {
	return fmt.Sprintf("Hubo un error al cancelar tu pedido #%d. Por favor, intentá nuevamente.", orderID)
}

// OrderSummaryMessage renders the order confirmation shown before payment.
func OrderSummaryMessage(o *models.Order) string {
	msg := "🧾 *Resumen de tu pedido*\n\n"
	for _, it := range o.Items {
		msg += fmt.Sprintf("- %s: $%g x %d\n", it.Product.Name, it.Product.Price, it.Quantity)
	}
	msg += fmt.Sprintf("\n*Total: $%g*", o.Total)
	return msg
}
