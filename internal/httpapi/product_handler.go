package httpapi

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"driverDispatch/models"
	"driverDispatch/repository"
)

// ProductHandler serves the menu CRUD used by the web-app frontend and the
// restaurant operator.
type ProductHandler struct {
	products *repository.ProductRepository
	log      *slog.Logger
}

type productRequest struct {
	Name  string  `json:"name" validate:"required"`
	Price float64 `json:"price" validate:"gt=0"`
}

func (h *ProductHandler) List(c echo.Context) error {
	list, err := h.products.ListActive(c.Request().Context())
	if err != nil {
		h.log.Error("list products", "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Error interno"})
	}
	if list == nil {
		list = []models.Product{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ProductHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	p, err := h.products.GetByID(c.Request().Context(), id)
	if err != nil {
		h.log.Error("get product", "product_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Error interno"})
	}
	if p == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Message: "Producto no encontrado"})
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Create(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Cuerpo de solicitud inválido"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Nombre y precio positivo son requeridos"})
	}
	p, err := h.products.Create(c.Request().Context(), &models.Product{Name: req.Name, Price: req.Price, Active: true})
	if err != nil {
		h.log.Error("create product", "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Error interno"})
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) Update(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Cuerpo de solicitud inválido"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Nombre y precio positivo son requeridos"})
	}

	ctx := c.Request().Context()
	p, err := h.products.GetByID(ctx, id)
	if err != nil {
		h.log.Error("load product", "product_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Error interno"})
	}
	if p == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Message: "Producto no encontrado"})
	}
	p.Name = req.Name
	p.Price = req.Price
	if err := h.products.Update(ctx, p); err != nil {
		h.log.Error("update product", "product_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Error interno"})
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.products.Deactivate(c.Request().Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, errorResponse{Message: "Producto no encontrado"})
		}
		h.log.Error("deactivate product", "product_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Error interno"})
	}
	return c.NoContent(http.StatusNoContent)
}

// parseIDParam parses a numeric path parameter. The returned error is an
// *echo.HTTPError, so handlers hand it straight back and echo renders the
// 400 reply.
func parseIDParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Id inválido")
	}
	return id, nil
}
