package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo"

	"sales-request-api/internal/service"
)

type catalogRoutesHandler struct {
	catalogService service.Catalog
}

func newCatalogRoutesHandler(outer *echo.Group, services *service.Services) *catalogRoutesHandler {
	h := &catalogRoutesHandler{catalogService: services.Catalog}

	outer.GET("/catalog/contacts", h.GetContacts)
	outer.GET("/catalog/products", h.GetProducts)
	outer.POST("/catalog/refresh", h.Refresh)

	return h
}

// /catalog/contacts
func (h *catalogRoutesHandler) GetContacts(c echo.Context) error {
	catalog, err := h.catalogService.Contacts(c.Request().Context())
	if err != nil {
		return h.writeCatalogError(c, err)
	}

	return c.JSON(http.StatusOK, catalog)
}

// /catalog/products
func (h *catalogRoutesHandler) GetProducts(c echo.Context) error {
	catalog, err := h.catalogService.Products(c.Request().Context())
	if err != nil {
		return h.writeCatalogError(c, err)
	}

	return c.JSON(http.StatusOK, catalog)
}

// /catalog/refresh
func (h *catalogRoutesHandler) Refresh(c echo.Context) error {
	if err := h.catalogService.Refresh(c.Request().Context()); err != nil {
		if e := c.JSON(http.StatusBadGateway, errorResponse{"Failed to refresh catalog from CRM"}); e != nil {
			return e
		}

		return nil
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *catalogRoutesHandler) writeCatalogError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrCatalogNotLoaded):
		if e := c.JSON(http.StatusNotFound, errorResponse{"Catalog has not been loaded yet, refresh it first"}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusInternalServerError, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return nil
}
