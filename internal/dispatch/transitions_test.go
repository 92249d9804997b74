package dispatch

import (
	"testing"

	"driverDispatch/models"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.DeliveryStatus
		want     bool
	}{
		// Forward moves.
		{models.DeliveryStatusRouteToPickup, models.DeliveryStatusWaitRestaurant, true},
		{models.DeliveryStatusRouteToPickup, models.DeliveryStatusRouteToCustomer, true},
		{models.DeliveryStatusWaitRestaurant, models.DeliveryStatusRouteToCustomer, true},
		{models.DeliveryStatusRouteToCustomer, models.DeliveryStatusWaitCustomer, true},
		{models.DeliveryStatusRouteToCustomer, models.DeliveryStatusDelivered, true},
		{models.DeliveryStatusWaitCustomer, models.DeliveryStatusDelivered, true},

		// Re-sending the current status is a no-op, not an error.
		{models.DeliveryStatusRouteToPickup, models.DeliveryStatusRouteToPickup, true},
		{models.DeliveryStatusWaitRestaurant, models.DeliveryStatusWaitRestaurant, true},
		{models.DeliveryStatusRouteToCustomer, models.DeliveryStatusRouteToCustomer, true},
		{models.DeliveryStatusWaitCustomer, models.DeliveryStatusWaitCustomer, true},

		// Cancellation is reachable from every active state.
		{models.DeliveryStatusRouteToPickup, models.DeliveryStatusCancelled, true},
		{models.DeliveryStatusWaitRestaurant, models.DeliveryStatusCancelled, true},
		{models.DeliveryStatusRouteToCustomer, models.DeliveryStatusCancelled, true},
		{models.DeliveryStatusWaitCustomer, models.DeliveryStatusCancelled, true},

		// No going backwards.
		{models.DeliveryStatusWaitRestaurant, models.DeliveryStatusRouteToPickup, false},
		{models.DeliveryStatusRouteToCustomer, models.DeliveryStatusRouteToPickup, false},
		{models.DeliveryStatusRouteToCustomer, models.DeliveryStatusWaitRestaurant, false},
		{models.DeliveryStatusWaitCustomer, models.DeliveryStatusRouteToCustomer, false},

		// Skipping the delivery leg entirely is not allowed.
		{models.DeliveryStatusRouteToPickup, models.DeliveryStatusDelivered, false},
		{models.DeliveryStatusRouteToPickup, models.DeliveryStatusWaitCustomer, false},
		{models.DeliveryStatusWaitRestaurant, models.DeliveryStatusDelivered, false},

		// Terminal states have no outgoing edges, not even to themselves.
		{models.DeliveryStatusDelivered, models.DeliveryStatusDelivered, false},
		{models.DeliveryStatusDelivered, models.DeliveryStatusRouteToPickup, false},
		{models.DeliveryStatusCancelled, models.DeliveryStatusCancelled, false},
		{models.DeliveryStatusCancelled, models.DeliveryStatusRouteToCustomer, false},

		// Unknown source state.
		{models.DeliveryStatus("NOPE"), models.DeliveryStatusDelivered, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}
