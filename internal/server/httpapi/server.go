// Package httpapi exposes the backend over REST (echo) and answers the
// standard grpc.health.v1 service that agents use as a readiness signal.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/posync/internal/common"
	"github.com/dmitrijs2005/posync/internal/logging"
	"github.com/dmitrijs2005/posync/internal/models"
	"github.com/dmitrijs2005/posync/internal/server/repositories/local"
	"github.com/dmitrijs2005/posync/internal/server/services"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const shutdownTimeout = 5 * time.Second

type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*services.AuthResult, error)
}

type Catalog interface {
	Enabled() bool
	Products(ctx context.Context) ([]models.Product, error)
	Barcodes(ctx context.Context) ([]models.ProductBarcode, error)
	Descriptions(ctx context.Context) ([]models.ProductDescription, error)
}

type OrderPusher interface {
	Push(ctx context.Context) (*services.OrderPushResult, error)
}

type StatusReporter interface {
	Summary(ctx context.Context) (*services.SyncSummary, error)
	PendingCount(ctx context.Context) (int64, error)
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Auth    Authenticator
	Catalog Catalog
	Status  StatusReporter
	Orders  OrderPusher
	Local   *local.Repositories
}

type Server struct {
	echo    *echo.Echo
	address string
	logger  logging.Logger

	auth    Authenticator
	catalog Catalog
	status  StatusReporter
	orders  OrderPusher
	local   *local.Repositories
	now     func() time.Time
}

func NewServer(address string, d Deps, l logging.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		address: address,
		logger:  l.With("module", "http_server"),
		auth:    d.Auth,
		catalog: d.Catalog,
		status:  d.Status,
		orders:  d.Orders,
		local:   d.Local,
		now:     time.Now,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug(c.Request().Context(), "request",
				"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	s.registerRoutes()
	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) registerRoutes() {
	s.echo.GET(common.HealthPath, s.handleHealth)
	s.echo.GET("/api/users/authenticate", s.handleAuthenticate)

	// authoritative catalog
	s.echo.GET("/api/products", s.handleRemoteProducts)
	s.echo.GET("/api/product-barcodes", s.handleRemoteBarcodes)
	s.echo.GET("/api/product-descriptions", s.handleRemoteDescriptions)

	// local mirror
	p := s.echo.Group("/api/local-products")
	p.GET("", s.handleListProducts)
	p.GET("/count", s.countHandler(s.local.Products))
	p.GET("/:id", s.handleGetProduct)
	p.POST("", s.handleCreateProduct)
	p.PUT("/:id", s.handleUpdateProduct)
	p.DELETE("/:id", s.handleDeleteProduct)

	b := s.echo.Group("/api/local-product-barcodes")
	b.GET("", s.handleListBarcodes)
	b.GET("/count", s.countHandler(s.local.Barcodes))
	b.GET("/:productId/:barcode", s.handleGetBarcode)
	b.POST("", s.handleCreateBarcode)
	b.PUT("/:productId/:barcode", s.handleUpdateBarcode)
	b.DELETE("/:productId/:barcode", s.handleDeleteBarcode)

	d := s.echo.Group("/api/local-product-descriptions")
	d.GET("", s.handleListDescriptions)
	d.GET("/count", s.countHandler(s.local.Descriptions))
	d.GET("/:productId/:siteId/:languageId", s.handleGetDescription)
	d.POST("", s.handleCreateDescription)
	d.PUT("/:productId/:siteId/:languageId", s.handleUpdateDescription)
	d.DELETE("/:productId/:siteId/:languageId", s.handleDeleteDescription)

	o := s.echo.Group("/api/local-orders")
	o.GET("", s.handleListOrders)
	o.GET("/count", s.countHandler(s.local.Orders))
	o.GET("/:id", s.handleGetOrder)
	o.POST("", s.handleCreateOrder)
	o.PUT("/:id/sync-status", s.handleSetOrderSyncStatus)

	// offline status
	s.echo.GET("/api/offline/sync/status", s.handleSyncStatus)
	s.echo.GET("/api/offline/sync/pending-count", s.handlePendingCount)
	s.echo.POST("/api/offline/sync/force", s.handleForceSync)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	s.echo.Listener = listen

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())
	if err := s.echo.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
