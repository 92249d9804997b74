package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"driverDispatch/internal/auth"
	"driverDispatch/internal/dispatch"
	"driverDispatch/models"
)

// DriverHandler serves the driver app REST API.
type DriverHandler struct {
	svc    *dispatch.Service
	secret string
	log    *slog.Logger
}

type driverLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type driverLoginResponse struct {
	Ok       bool   `json:"ok"`
	DriverID int64  `json:"driverId"`
	Name     string `json:"name"`
	Token    string `json:"token"`
}

type driverLocationRequest struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" validate:"min=-180,max=180"`
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *DriverHandler) Login(c echo.Context) error {
	var req driverLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Cuerpo de solicitud inválido"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Usuario y contraseña son requeridos"})
	}

	d, err := h.svc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, dispatch.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, errorResponse{Message: "Credenciales inválidas"})
		}
		h.log.Error("driver login", "username", req.Username, "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Error interno"})
	}

	token, err := auth.IssueDriverToken(h.secret, d.ID, d.Name)
	if err != nil {
		h.log.Error("issue driver token", "driver_id", d.ID, "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Error interno"})
	}
	return c.JSON(http.StatusOK, driverLoginResponse{Ok: true, DriverID: d.ID, Name: d.Name, Token: token})
}

func (h *DriverHandler) UpdateLocation(c echo.Context) error {
	driverID, err := h.callerDriverID(c, "driverId")
	if err != nil {
		return err
	}
	var req driverLocationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Cuerpo de solicitud inválido"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Coordenadas inválidas"})
	}

	d, err := h.svc.RecordLocation(c.Request().Context(), driverID, req.Lat, req.Lng)
	if err != nil {
		if errors.Is(err, dispatch.ErrDriverNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Message: "Conductor no encontrado"})
		}
		h.log.Error("record driver location", "driver_id", driverID, "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Error interno"})
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DriverHandler) ActiveDelivery(c echo.Context) error {
	driverID, err := h.callerDriverID(c, "driverId")
	if err != nil {
		return err
	}
	res, err := h.svc.GetActiveDelivery(c.Request().Context(), driverID)
	if err != nil {
		if errors.Is(err, dispatch.ErrDriverNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Message: "Conductor no encontrado"})
		}
		h.log.Error("active delivery lookup", "driver_id", driverID, "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Error interno"})
	}
	return c.JSON(http.StatusOK, res)
}

func (h *DriverHandler) SetStatus(c echo.Context) error {
	driverID, err := h.callerDriverID(c, "driverId")
	if err != nil {
		return err
	}
	deliveryID, err := strconv.ParseInt(c.Param("deliveryId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Id de entrega inválido"})
	}
	var req setStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Cuerpo de solicitud inválido"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Estado requerido"})
	}

	del, err := h.svc.SetStatus(c.Request().Context(), driverID, deliveryID, models.DeliveryStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, dispatch.ErrStatusNotAllowed):
			return c.JSON(http.StatusBadRequest, errorResponse{Message: "Estado no permitido para el conductor"})
		case errors.Is(err, dispatch.ErrInvalidTransition):
			return c.JSON(http.StatusBadRequest, errorResponse{Message: "Transición de estado inválida"})
		case errors.Is(err, dispatch.ErrDriverNotFound):
			return c.JSON(http.StatusNotFound, errorResponse{Message: "Conductor no encontrado"})
		case errors.Is(err, dispatch.ErrDeliveryNotFound):
			return c.JSON(http.StatusNotFound, errorResponse{Message: "Entrega no encontrada o no asignada a este conductor"})
		}
		h.log.Error("set delivery status", "driver_id", driverID, "delivery_id", deliveryID, "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Error interno"})
	}
	return c.JSON(http.StatusOK, del)
}

// callerDriverID parses the driver id path parameter and checks it against
// the authenticated principal so a driver cannot act on another's behalf.
// Failures come back as *echo.HTTPError for echo to render.
func (h *DriverHandler) callerDriverID(c echo.Context, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Id de conductor inválido")
	}
	p, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "No autenticado")
	}
	if p.DriverID != id {
		return 0, echo.NewHTTPError(http.StatusForbidden, "No autorizado para este conductor")
	}
	return id, nil
}
