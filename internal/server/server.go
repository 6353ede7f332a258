package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"kalamitraah/internal/config"
	"kalamitraah/internal/handler"
	"kalamitraah/internal/logger"
	"kalamitraah/internal/validator"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

type Handlers struct {
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
	Payment *handler.PaymentHandler
	Product *handler.ProductHandler
}

type Server struct {
	echo *echo.Echo
	addr string
	log  *zap.Logger
}

// New builds the echo instance with the shared middleware chain and every route.
func New(cfg config.Config, log *zap.Logger, h Handlers) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.New()
	e.HTTPErrorHandler = errorHandler(log)

	e.Use(echomw.Recover())
	e.Use(logger.RequestLogger(log))
	e.Use(echomw.BodyLimit("1M"))
	if cfg.FrontendURL != "" {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     []string{cfg.FrontendURL},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
			AllowCredentials: true,
		}))
	}
	e.Use(echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		// Stripe retries on 429, so webhooks are never throttled here
		Skipper: func(c echo.Context) bool { return c.Path() == handler.WebhookPath },
		Store:   echomw.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimitRPS)),
	}))

	registerRoutes(e, cfg.JWTSecret, h)

	return &Server{echo: e, addr: ":" + cfg.Port, log: log}
}

func (s *Server) Handler() http.Handler { return s.echo }

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("http server listening", zap.String("addr", s.addr))
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.echo.Shutdown(ctx)
}

// errorHandler renders framework errors (unknown route, 405, 413, 429, panics)
// in the same envelope the handlers use.
func errorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "internal server error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(status)
			}
		}
		if status >= http.StatusInternalServerError {
			log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
			message = "internal server error"
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, handler.ErrorResponse{Success: false, Message: message})
	}
}
