package httpapi

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"driverDispatch/models"
	"driverDispatch/repository"
)

// UserHandler serves the customer records. Most users are created by the bot
// on first contact; this API covers operator corrections and phone orders.
type UserHandler struct {
	users *repository.UserRepository
	log   *slog.Logger
}

type userRequest struct {
	Name        string   `json:"name" validate:"required"`
	TelegramID  *string  `json:"telegram_id"`
	LocationLat *float64 `json:"location_lat" validate:"omitempty,min=-90,max=90"`
	LocationLng *float64 `json:"location_lng" validate:"omitempty,min=-180,max=180"`
}

func (h *UserHandler) List(c echo.Context) error {
	list, err := h.users.List(c.Request().Context())
	if err != nil {
		h.log.Error("list users", "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Error interno"})
	}
	if list == nil {
		list = []models.User{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *UserHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	u, err := h.users.GetByID(c.Request().Context(), id)
	if err != nil {
		h.log.Error("get user", "user_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Error interno"})
	}
	if u == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Message: "Usuario no encontrado"})
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHandler) Create(c echo.Context) error {
	var req userRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Cuerpo de solicitud inválido"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Nombre es requerido"})
	}
	u, err := h.users.Create(c.Request().Context(), &models.User{
		Name:        req.Name,
		TelegramID:  req.TelegramID,
		LocationLat: req.LocationLat,
		LocationLng: req.LocationLng,
	})
	if err != nil {
		h.log.Error("create user", "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Error interno"})
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *UserHandler) Update(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req userRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Cuerpo de solicitud inválido"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Nombre es requerido"})
	}

	ctx := c.Request().Context()
	u, err := h.users.GetByID(ctx, id)
	if err != nil {
		h.log.Error("load user", "user_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Error interno"})
	}
	if u == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Message: "Usuario no encontrado"})
	}
	u.Name = req.Name
	if req.LocationLat != nil && req.LocationLng != nil {
		u.LocationLat = req.LocationLat
		u.LocationLng = req.LocationLng
	}
	if err := h.users.Update(ctx, u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, errorResponse{Message: "Usuario no encontrado"})
		}
		h.log.Error("update user", "user_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Error interno"})
	}
	return c.JSON(http.StatusOK, u)
}
