package httpapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/posync/internal/common"
	"github.com/dmitrijs2005/posync/internal/models"
	"github.com/dmitrijs2005/posync/internal/server/repositories/local"
	"github.com/labstack/echo/v4"
)

type healthResponse struct {
	Status        string `json:"status"`
	Service       string `json:"service"`
	RemoteEnabled bool   `json:"remoteEnabled"`
	Timestamp     int64  `json:"timestamp"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:        "UP",
		Service:       "posync-backend",
		RemoteEnabled: s.catalog.Enabled(),
		Timestamp:     s.now().UnixMilli(),
	})
}

func (s *Server) handleAuthenticate(c echo.Context) error {
	res, err := s.auth.Authenticate(c.Request().Context(), c.QueryParam("username"), c.QueryParam("password"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleRemoteProducts(c echo.Context) error {
	items, err := s.catalog.Products(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) handleRemoteBarcodes(c echo.Context) error {
	items, err := s.catalog.Barcodes(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) handleRemoteDescriptions(c echo.Context) error {
	items, err := s.catalog.Descriptions(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// countHandler answers with a bare integer, as agents expect.
func (s *Server) countHandler(counter local.Counter) echo.HandlerFunc {
	return func(c echo.Context) error {
		status, err := statusQuery(c)
		if err != nil {
			return s.fail(c, err)
		}
		n, err := counter.CountByStatus(c.Request().Context(), status)
		if err != nil {
			return s.fail(c, err)
		}
		return c.JSON(http.StatusOK, n)
	}
}

func (s *Server) handleSyncStatus(c echo.Context) error {
	sum, err := s.status.Summary(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, sum)
}

func (s *Server) handlePendingCount(c echo.Context) error {
	n, err := s.status.PendingCount(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"count": n})
}

// handleForceSync pushes outstanding local orders to the remote store.
func (s *Server) handleForceSync(c echo.Context) error {
	if s.orders == nil {
		return s.fail(c, common.ErrorRemoteDisabled)
	}
	res, err := s.orders.Push(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// statusQuery reads ?status=. Absent means "any".
func statusQuery(c echo.Context) (models.SyncStatus, error) {
	raw := c.QueryParam("status")
	if raw == "" {
		return "", nil
	}
	st, err := models.ParseSyncStatus(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	return st, nil
}

func int64Param(c echo.Context, name string) (int64, error) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", common.ErrorValidation, name, c.Param(name))
	}
	return v, nil
}

func intParam(c echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", common.ErrorValidation, name, c.Param(name))
	}
	return v, nil
}

// stringParam returns a decoded path parameter. Echo matches on RawPath when
// the request path carries escapes such as %2F, and then leaves them in place.
func stringParam(c echo.Context, name string) (string, error) {
	v := c.Param(name)
	if c.Request().URL.RawPath == "" {
		return v, nil
	}
	u, err := url.PathUnescape(v)
	if err != nil {
		return "", fmt.Errorf("%w: invalid %s %q", common.ErrorValidation, name, v)
	}
	return u, nil
}

func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return fmt.Errorf("%w: malformed body", common.ErrorValidation)
	}
	return nil
}
