package dispatch

import (
	"context"
	"math"
	"time"

	"driverDispatch/internal/geo"
	"driverDispatch/internal/notify"
	"driverDispatch/models"
)

// Outcome classifies the result of a matching pass. Everything except
// OutcomeAssigned is a normal, non-error result: the customer is told what
// happened and the caller gets no assignment.
type Outcome string

const (
	OutcomeAssigned                Outcome = "assigned"
	OutcomeNoDriverAvailable       Outcome = "no_driver_available"
	OutcomeMissingCustomerLocation Outcome = "missing_customer_location"
	OutcomeNoRecipient             Outcome = "no_recipient"
)

// Assignment is the result of a successful or attempted matching pass.
type Assignment struct {
	Outcome        Outcome
	Delivery       *models.Delivery
	Driver         *models.Driver
	DistanceMeters float64
}

// AssignNearestDriver selects the nearest free driver for the order and
// creates (or replaces) its delivery record. Each invocation re-runs
// selection, so re-calling for the same order is the operational override
// that reassigns a delivery.
//
// The eligible-driver read and the delivery upsert run under one transaction
// and a service-level lock: matching volume is low, so serializing the
// sequence is cheaper than untangling a double-booked driver.
func (s *Service) AssignNearestDriver(ctx context.Context, orderID int64) (*Assignment, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	u, err := s.users.GetByID(ctx, o.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil || u.TelegramID == nil {
		s.log.Warn("cannot assign driver: order has no reachable customer", "order_id", orderID)
		return &Assignment{Outcome: OutcomeNoRecipient}, nil
	}
	chatID := *u.TelegramID

	if !u.HasLocation() {
		if err := s.gateway.SendMessage(chatID, notify.LocationNeededMessage()); err != nil {
			s.log.Error("location request message failed", "order_id", orderID, "error", err)
		}
		return &Assignment{Outcome: OutcomeMissingCustomerLocation}, nil
	}

	s.matchMu.Lock()
	result, err := s.selectAndAssign(ctx, o, u)
	s.matchMu.Unlock()
	if err != nil {
		return nil, err
	}

	switch result.Outcome {
	case OutcomeNoDriverAvailable:
		if err := s.gateway.SendMessage(chatID, notify.NoDriverAvailableMessage()); err != nil {
			s.log.Error("no-driver message failed", "order_id", orderID, "error", err)
		}
	case OutcomeAssigned:
		if err := s.gateway.SendMessage(chatID, notify.DriverAssignedMessage(orderID, result.Driver)); err != nil {
			s.log.Error("driver-assigned message failed", "order_id", orderID, "error", err)
		}
		s.log.Info("driver assigned",
			"order_id", orderID, "driver_id", result.Driver.ID, "distance_meters", result.DistanceMeters)
	}
	return result, nil
}

// selectAndAssign runs the nearest-free-driver selection and the delivery
// upsert as a single atomic unit.
func (s *Service) selectAndAssign(ctx context.Context, o *models.Order, u *models.User) (*Assignment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	candidates, err := s.drivers.WithTx(tx).ListEligibleForDispatch(ctx)
	if err != nil {
		return nil, err
	}

	// Strictly minimal distance from the restaurant pickup point; ties break
	// on input order (first encountered wins), which the directory keeps
	// stable by ordering on driver id.
	var best *models.EligibleDriver
	bestDistance := math.Inf(1)
	for i := range candidates {
		c := &candidates[i]
		if c.Busy {
			continue
		}
		d := geo.HaversineMeters(*c.Lat, *c.Lng, s.restaurant.Lat, s.restaurant.Lng)
		if d < bestDistance {
			best = c
			bestDistance = d
		}
	}
	if best == nil {
		return &Assignment{Outcome: OutcomeNoDriverAvailable}, nil
	}

	dropoffName := u.Name
	if dropoffName == "" {
		dropoffName = "Cliente SuperBurger"
	}

	now := time.Now().UTC()
	del := &models.Delivery{
		OrderID:        o.ID,
		DriverID:       &best.ID,
		Status:         models.DeliveryStatusRouteToPickup,
		PickupLat:      s.restaurant.Lat,
		PickupLng:      s.restaurant.Lng,
		PickupName:     s.restaurant.Name,
		DropoffLat:     *u.LocationLat,
		DropoffLng:     *u.LocationLng,
		DropoffName:    dropoffName,
		DistanceMeters: int64(math.Round(bestDistance)),
		AssignedAt:     now,
		UpdatedAt:      now,
	}
	stored, err := s.deliveries.WithTx(tx).UpsertForOrder(ctx, del)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &Assignment{
		Outcome:        OutcomeAssigned,
		Delivery:       stored,
		Driver:         &best.Driver,
		DistanceMeters: bestDistance,
	}, nil
}
