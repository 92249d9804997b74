package httpapi

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"driverDispatch/internal/auth"
	"driverDispatch/internal/config"
	"driverDispatch/internal/dispatch"
	"driverDispatch/internal/notify"
	"driverDispatch/repository"
)

// errorResponse is the JSON body of every non-2xx reply.
type errorResponse struct {
	Message string `json:"message"`
}

// requestValidator adapts go-playground/validator to echo's Validator hook so
// handlers can call c.Validate after binding.
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

// Server wires the HTTP surface: the driver app REST API, the Telegram
// webhook, and the admin CRUD endpoints.
type Server struct {
	echo *echo.Echo
	cfg  *config.Config
	log  *slog.Logger
}

func NewServer(cfg *config.Config, svc *dispatch.Service, repos *repository.Repositories, gateway notify.Gateway, log *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}
	e.Use(middleware.Recover())

	drivers := &DriverHandler{svc: svc, secret: cfg.Auth.JWTSecret, log: log}
	telegram := &TelegramHandler{
		svc:      svc,
		users:    repos.Users,
		orders:   repos.Orders,
		gateway:  gateway,
		telegram: cfg.Telegram,
		log:      log,
	}
	products := &ProductHandler{products: repos.Products, log: log}
	users := &UserHandler{users: repos.Users, log: log}
	orders := &OrderHandler{
		users:    repos.Users,
		products: repos.Products,
		orders:   repos.Orders,
		gateway:  gateway,
		log:      log,
	}

	e.POST("/drivers/login", drivers.Login)
	protected := e.Group("/drivers", auth.DriverAuth(cfg.Auth.JWTSecret))
	protected.PUT("/:driverId/location", drivers.UpdateLocation)
	protected.GET("/:driverId/delivery", drivers.ActiveDelivery)
	protected.PATCH("/:driverId/delivery/:deliveryId/status", drivers.SetStatus)

	e.POST("/telegram/webhook", telegram.Webhook)
	e.POST("/telegram/payment-confirmed/:orderId", telegram.PaymentConfirmed)

	e.GET("/products", products.List)
	e.GET("/products/:id", products.Get)
	e.POST("/products", products.Create)
	e.PATCH("/products/:id", products.Update)
	e.DELETE("/products/:id", products.Delete)

	e.GET("/users", users.List)
	e.GET("/users/:id", users.Get)
	e.POST("/users", users.Create)
	e.PATCH("/users/:id", users.Update)

	e.GET("/orders", orders.List)
	e.GET("/orders/:id", orders.Get)
	e.POST("/orders", orders.Create)
	e.PATCH("/orders/:id/status", orders.UpdateStatus)

	return &Server{echo: e, cfg: cfg, log: log}
}

// Start blocks serving HTTP until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	s.log.Info("http server listening", "address", s.cfg.HTTP.Address)
	return s.echo.Start(s.cfg.HTTP.Address)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
