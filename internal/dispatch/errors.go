package dispatch

import "errors"

var (
	ErrDriverNotFound     = errors.New("driver not found")
	ErrDeliveryNotFound   = errors.New("delivery not found or not assigned to this driver")
	ErrOrderNotFound      = errors.New("order not found")
	ErrStatusNotAllowed   = errors.New("status not permitted for driver role")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
