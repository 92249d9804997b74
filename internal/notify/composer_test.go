package notify

import (
	"strings"
	"testing"

	"driverDispatch/models"
)

func TestStatusMessage_PerStatus(t *testing.T) {
	cases := []struct {
		status models.DeliveryStatus
		want   string
	}{
		{models.DeliveryStatusRouteToPickup, "camino al local"},
		{models.DeliveryStatusWaitRestaurant, "esperando que tu pedido"},
		{models.DeliveryStatusRouteToCustomer, "se dirige hacia tu ubicación"},
		{models.DeliveryStatusWaitCustomer, "está esperándote"},
		{models.DeliveryStatusDelivered, "fue entregado"},
		{models.DeliveryStatusCancelled, "fue cancelado"},
	}
	for _, tc := range cases {
		got := StatusMessage(42, tc.status, "Marco")
		if !strings.Contains(got, tc.want) {
			t.Errorf("StatusMessage(%s) = %q, want substring %q", tc.status, got, tc.want)
		}
		if !strings.Contains(got, "#42") {
			t.Errorf("StatusMessage(%s) = %q, missing order number", tc.status, got)
		}
	}
}

func TestStatusMessage_DefaultDriverName(t *testing.T) {
	got := StatusMessage(7, models.DeliveryStatusRouteToPickup, "")
	if !strings.Contains(got, "El conductor asignado") {
		t.Fatalf("StatusMessage without name = %q, want default driver name", got)
	}
}

func TestStatusMessage_UnknownStatusFallsBack(t *testing.T) {
	got := StatusMessage(7, models.DeliveryStatus("RARO"), "Marco")
	if !strings.Contains(got, "actualización de estado") {
		t.Fatalf("unknown status message = %q", got)
	}
}

func TestDriverAssignedMessage_Fallbacks(t *testing.T) {
	d := &models.Driver{Name: "Marco"}
	got := DriverAssignedMessage(42, d)
	if !strings.Contains(got, "Placa no registrada") {
		t.Errorf("missing plate fallback: %q", got)
	}
	if !strings.Contains(got, "Usuario sin Telegram") {
		t.Errorf("missing handle fallback: %q", got)
	}

	plate := "ABC-123"
	d = &models.Driver{Name: "Marco", Username: "marco", Plate: &plate}
	got = DriverAssignedMessage(42, d)
	if !strings.Contains(got, "Placa: ABC-123") || !strings.Contains(got, "@marco") {
		t.Errorf("DriverAssignedMessage = %q, want plate and handle", got)
	}
}

func TestOrderSummaryMessage(t *testing.T) {
	o := &models.Order{
		ID:    1,
		Total: 25,
		Items: []models.OrderItem{
			{Quantity: 2, Product: models.Product{Name: "SuperBurger", Price: 10}},
			{Quantity: 1, Product: models.Product{Name: "Papas", Price: 5}},
		},
	}
	got := OrderSummaryMessage(o)
	if !strings.Contains(got, "SuperBurger: $10 x 2") {
		t.Errorf("summary missing item line: %q", got)
	}
	if !strings.Contains(got, "*Total: $25*") {
		t.Errorf("summary missing total: %q", got)
	}
}
