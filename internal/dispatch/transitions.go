package dispatch

import "driverDispatch/models"

// AllowedTransitions represents the delivery state flow as code. A status may
// be re-sent (self-transition) while the delivery is in progress, which keeps
// repeated driver-app submissions harmless; ENTREGADO and CANCELADO are
// terminal and have no outgoing edges, so a delivery can neither regress nor
// leave a terminal state.
var AllowedTransitions = map[models.DeliveryStatus][]models.DeliveryStatus{
	models.DeliveryStatusRouteToPickup: {
		models.DeliveryStatusRouteToPickup,
		models.DeliveryStatusWaitRestaurant,
		models.DeliveryStatusRouteToCustomer,
		models.DeliveryStatusCancelled,
	},
	models.DeliveryStatusWaitRestaurant: {
		models.DeliveryStatusWaitRestaurant,
		models.DeliveryStatusRouteToCustomer,
		models.DeliveryStatusCancelled,
	},
	models.DeliveryStatusRouteToCustomer: {
		models.DeliveryStatusRouteToCustomer,
		models.DeliveryStatusWaitCustomer,
		models.DeliveryStatusDelivered,
		models.DeliveryStatusCancelled,
	},
	models.DeliveryStatusWaitCustomer: {
		models.DeliveryStatusWaitCustomer,
		models.DeliveryStatusDelivered,
		models.DeliveryStatusCancelled,
	},
}

// CanTransition reports whether a delivery may move from one status to
// another.
func CanTransition(from, to models.DeliveryStatus) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}
