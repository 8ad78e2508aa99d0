package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/posync/internal/models"
	"github.com/labstack/echo/v4"
)

func (s *Server) handleListProducts(c echo.Context) error {
	status, err := statusQuery(c)
	if err != nil {
		return s.fail(c, err)
	}
	items, err := s.local.Products.List(c.Request().Context(), status)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) handleGetProduct(c echo.Context) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	p, err := s.local.Products.Get(c.Request().Context(), id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleCreateProduct(c echo.Context) error {
	var p models.Product
	if err := bind(c, &p); err != nil {
		return s.fail(c, err)
	}
	if err := s.local.Products.Create(c.Request().Context(), &p); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (s *Server) handleUpdateProduct(c echo.Context) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	var p models.Product
	if err := bind(c, &p); err != nil {
		return s.fail(c, err)
	}
	p.ProductID = id
	if err := s.local.Products.Update(c.Request().Context(), &p); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleDeleteProduct(c echo.Context) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	if err := s.local.Products.Delete(c.Request().Context(), id); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleListBarcodes(c echo.Context) error {
	status, err := statusQuery(c)
	if err != nil {
		return s.fail(c, err)
	}
	items, err := s.local.Barcodes.List(c.Request().Context(), status)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) handleGetBarcode(c echo.Context) error {
	pid, code, err := barcodeKey(c)
	if err != nil {
		return s.fail(c, err)
	}
	b, err := s.local.Barcodes.Get(c.Request().Context(), pid, code)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (s *Server) handleCreateBarcode(c echo.Context) error {
	var b models.ProductBarcode
	if err := bind(c, &b); err != nil {
		return s.fail(c, err)
	}
	if err := s.local.Barcodes.Create(c.Request().Context(), &b); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (s *Server) handleUpdateBarcode(c echo.Context) error {
	pid, code, err := barcodeKey(c)
	if err != nil {
		return s.fail(c, err)
	}
	var b models.ProductBarcode
	if err := bind(c, &b); err != nil {
		return s.fail(c, err)
	}
	b.ProductID, b.Barcode = pid, code
	if err := s.local.Barcodes.Update(c.Request().Context(), &b); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (s *Server) handleDeleteBarcode(c echo.Context) error {
	pid, code, err := barcodeKey(c)
	if err != nil {
		return s.fail(c, err)
	}
	if err := s.local.Barcodes.Delete(c.Request().Context(), pid, code); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// barcodeKey reads the (productId, barcode) path pair.
func barcodeKey(c echo.Context) (int64, string, error) {
	pid, err := int64Param(c, "productId")
	if err != nil {
		return 0, "", err
	}
	code, err := stringParam(c, "barcode")
	if err != nil {
		return 0, "", err
	}
	return pid, code, nil
}

// descriptionKey reads the (productId, siteId, languageId) path triple.
func descriptionKey(c echo.Context) (int64, int, int, error) {
	pid, err := int64Param(c, "productId")
	if err != nil {
		return 0, 0, 0, err
	}
	site, err := intParam(c, "siteId")
	if err != nil {
		return 0, 0, 0, err
	}
	lang, err := intParam(c, "languageId")
	if err != nil {
		return 0, 0, 0, err
	}
	return pid, site, lang, nil
}

func (s *Server) handleListDescriptions(c echo.Context) error {
	status, err := statusQuery(c)
	if err != nil {
		return s.fail(c, err)
	}
	items, err := s.local.Descriptions.List(c.Request().Context(), status)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) handleGetDescription(c echo.Context) error {
	pid, site, lang, err := descriptionKey(c)
	if err != nil {
		return s.fail(c, err)
	}
	d, err := s.local.Descriptions.Get(c.Request().Context(), pid, site, lang)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (s *Server) handleCreateDescription(c echo.Context) error {
	var d models.ProductDescription
	if err := bind(c, &d); err != nil {
		return s.fail(c, err)
	}
	if err := s.local.Descriptions.Create(c.Request().Context(), &d); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (s *Server) handleUpdateDescription(c echo.Context) error {
	pid, site, lang, err := descriptionKey(c)
	if err != nil {
		return s.fail(c, err)
	}
	var d models.ProductDescription
	if err := bind(c, &d); err != nil {
		return s.fail(c, err)
	}
	d.ProductID, d.SiteID, d.LanguageID = pid, site, lang
	if err := s.local.Descriptions.Update(c.Request().Context(), &d); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (s *Server) handleDeleteDescription(c echo.Context) error {
	pid, site, lang, err := descriptionKey(c)
	if err != nil {
		return s.fail(c, err)
	}
	if err := s.local.Descriptions.Delete(c.Request().Context(), pid, site, lang); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleListOrders(c echo.Context) error {
	status, err := statusQuery(c)
	if err != nil {
		return s.fail(c, err)
	}
	items, err := s.local.Orders.List(c.Request().Context(), status)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) handleGetOrder(c echo.Context) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	o, err := s.local.Orders.Get(c.Request().Context(), id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (s *Server) handleCreateOrder(c echo.Context) error {
	var o models.Order
	if err := bind(c, &o); err != nil {
		return s.fail(c, err)
	}
	if err := s.local.Orders.Create(c.Request().Context(), &o); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, o)
}

type syncStatusRequest struct {
	Status models.SyncStatus `json:"status"`
}

func (s *Server) handleSetOrderSyncStatus(c echo.Context) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	var req syncStatusRequest
	if err := bind(c, &req); err != nil {
		return s.fail(c, err)
	}
	if err := s.local.Orders.SetSyncStatus(c.Request().Context(), id, req.Status); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
