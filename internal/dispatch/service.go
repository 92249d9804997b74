package dispatch

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"time"

	"driverDispatch/internal/auth"
	"driverDispatch/internal/config"
	"driverDispatch/internal/notify"
	"driverDispatch/models"
	"driverDispatch/repository"
)

// Service implements the dispatch core: driver session and location handling,
// nearest-driver matching and the delivery status state machine. State writes
// commit before any notification is attempted; notification failures are
// logged, never surfaced to the flow that triggered them.
type Service struct {
	db         *sql.DB
	users      *repository.UserRepository
	orders     *repository.OrderRepository
	drivers    *repository.DriverRepository
	deliveries *repository.DeliveryRepository
	gateway    notify.Gateway
	restaurant config.RestaurantConfig
	log        *slog.Logger

	// matchMu serializes the read-eligible-then-upsert sequence so two
	// near-simultaneous payment confirmations cannot pick the same driver.
	matchMu sync.Mutex
}

func NewService(db *sql.DB, repos *repository.Repositories, gateway notify.Gateway, restaurant config.RestaurantConfig, log *slog.Logger) *Service {
	return &Service{
		db:         db,
		users:      repos.Users,
		orders:     repos.Orders,
		drivers:    repos.Drivers,
		deliveries: repos.Deliveries,
		gateway:    gateway,
		restaurant: restaurant,
		log:        log,
	}
}

// Login verifies driver credentials against the stored bcrypt hash.
func (s *Service) Login(ctx context.Context, username, password string) (*models.Driver, error) {
	d, err := s.drivers.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if d == nil || !auth.CheckPassword(d.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return d, nil
}

// RecordLocation overwrites the driver's live position and last-seen
// timestamp.
func (s *Service) RecordLocation(ctx context.Context, driverID int64, lat, lng float64) (*models.Driver, error) {
	d, err := s.drivers.UpdateLocation(ctx, driverID, lat, lng)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDriverNotFound
	}
	return d, nil
}

// ActiveDelivery is the driver's current-work lookup result.
type ActiveDelivery struct {
	HasDelivery bool             `json:"hasDelivery"`
	Delivery    *models.Delivery `json:"delivery"`
}

// GetActiveDelivery returns the driver's most recently assigned delivery in
// the active status set, if any.
func (s *Service) GetActiveDelivery(ctx context.Context, driverID int64) (*ActiveDelivery, error) {
	d, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDriverNotFound
	}
	del, err := s.deliveries.GetActiveByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	return &ActiveDelivery{HasDelivery: del != nil, Delivery: del}, nil
}

// SetStatus validates and applies a driver-initiated status change.
// Validation order: requested status must be driver-settable, the driver must
// exist, the delivery must exist and belong to the caller, and the move must
// be allowed by the transition table. The status write, the timestamp stamps
// and the order sync commit in one transaction; the customer notification is
// sent afterwards.
func (s *Service) SetStatus(ctx context.Context, driverID, deliveryID int64, newStatus models.DeliveryStatus) (*models.Delivery, error) {
	if !newStatus.IsUpdatable() {
		return nil, ErrStatusNotAllowed
	}

	driver, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, ErrDriverNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	deliveries := s.deliveries.WithTx(tx)
	del, err := deliveries.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if del == nil || del.DriverID == nil || *del.DriverID != driverID {
		return nil, ErrDeliveryNotFound
	}
	if !CanTransition(del.Status, newStatus) {
		return nil, ErrInvalidTransition
	}

	now := time.Now().UTC()
	del.Status = newStatus
	del.UpdatedAt = now
	// The delivery leg transition doubles as the pickup moment; there is no
	// dedicated "picked up" status. Only the first transition stamps it.
	if newStatus == models.DeliveryStatusRouteToCustomer && del.PickedUpAt == nil {
		del.PickedUpAt = &now
	}
	if newStatus == models.DeliveryStatusDelivered {
		del.DeliveredAt = &now
	}

	if err := deliveries.UpdateStatus(ctx, del); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeliveryNotFound
		}
		return nil, err
	}
	if newStatus == models.DeliveryStatusDelivered {
		if err := s.orders.WithTx(tx).UpdateStatus(ctx, del.OrderID, models.OrderStatusDelivered); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.notifyStatus(ctx, del, driver)
	return del, nil
}

// notifyStatus sends the per-transition customer message. Customers without a
// messaging handle are skipped silently.
func (s *Service) notifyStatus(ctx context.Context, del *models.Delivery, driver *models.Driver) {
	chatID, ok := s.customerChat(ctx, del.OrderID)
	if !ok {
		return
	}
	msg := notify.StatusMessage(del.OrderID, del.Status, driver.Name)
	if err := s.gateway.SendMessage(chatID, msg); err != nil {
		s.log.Error("status notification failed", "order_id", del.OrderID, "status", del.Status, "error", err)
	}
}

// customerChat resolves the messaging handle of the order's customer.
func (s *Service) customerChat(ctx context.Context, orderID int64) (string, bool) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil || o == nil {
		if err != nil {
			s.log.Error("load order for notification", "order_id", orderID, "error", err)
		}
		return "", false
	}
	u, err := s.users.GetByID(ctx, o.UserID)
	if err != nil || u == nil || u.TelegramID == nil {
		if err != nil {
			s.log.Error("load user for notification", "order_id", orderID, "error", err)
		}
		return "", false
	}
	return *u.TelegramID, true
}

// HandlePaymentConfirmed marks the order as paid and runs matching. Matching
// failures are reported to the customer chat, never to the caller.
func (s *Service) HandlePaymentConfirmed(ctx context.Context, orderID int64) error {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o == nil {
		return ErrOrderNotFound
	}
	if err := s.orders.UpdateStatus(ctx, orderID, models.OrderStatusConfirmed); err != nil {
		return err
	}
	if chatID, ok := s.customerChat(ctx, orderID); ok {
		if err := s.gateway.SendMessage(chatID, notify.PaymentReceivedMessage(orderID)); err != nil {
			s.log.Error("payment confirmation message failed", "order_id", orderID, "error", err)
		}
	}
	if _, err := s.AssignNearestDriver(ctx, orderID); err != nil {
		s.log.Error("driver assignment failed", "order_id", orderID, "error", err)
	}
	return nil
}

// CancelOrder marks the order as cancelled. Any existing delivery record is
// left as-is.
func (s *Service) CancelOrder(ctx context.Context, orderID int64) error {
	if err := s.orders.UpdateStatus(ctx, orderID, models.OrderStatusCancelled); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		return err
	}
	return nil
}
