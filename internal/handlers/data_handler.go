package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/anonto42/vaxtop/backend/internal/auth"
	"github.com/anonto42/vaxtop/backend/internal/models"
	"github.com/anonto42/vaxtop/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// DataHandler handles the product catalogue, app settings and backups
type DataHandler struct {
	data    repositories.DataRepository
	manager *auth.Manager
}

// NewDataHandler creates a new DataHandler
func NewDataHandler(data repositories.DataRepository, manager *auth.Manager) *DataHandler {
	return &DataHandler{data: data, manager: manager}
}

// RegisterDataRoutes registers product, settings and backup routes
func (h *DataHandler) RegisterDataRoutes(public, api *echo.Group) {
	public.GET("/products", h.GetProducts)

	api.POST("/products", h.CreateProduct)
	api.DELETE("/products/:id", h.DeleteProduct)
	api.POST("/products/:id/publish", h.PublishProduct)

	api.GET("/settings", h.GetSettings)
	api.PUT("/settings", h.SaveSettings)

	api.GET("/data/export", h.Export)
	api.POST("/data/import", h.Import)
}

func (h *DataHandler) GetProducts(c echo.Context) error {
	products, err := h.data.GetProducts(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": products})
}

// CreateProduct stores a product owned by the caller
func (h *DataHandler) CreateProduct(c echo.Context) error {
	var product models.Product
	if err := c.Bind(&product); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	product.UserID = getUserIDFromContext(c)
	if product.Likes == nil {
		product.Likes = []string{}
	}
	if product.Comments == nil {
		product.Comments = []models.ProductComment{}
	}
	if err := c.Validate(&product); err != nil {
		return err
	}

	if err := h.data.AddProduct(c.Request().Context(), &product); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": product})
}

func (h *DataHandler) DeleteProduct(c echo.Context) error {
	productID := c.Param("id")
	if productOwner(c, h.data, productID) != getUserIDFromContext(c) {
		return echo.NewHTTPError(http.StatusForbidden, "Only the product owner can delete it")
	}
	if err := h.data.DeleteProduct(c.Request().Context(), productID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// PublishProduct marks the caller's product as published
func (h *DataHandler) PublishProduct(c echo.Context) error {
	productID := c.Param("id")
	if productOwner(c, h.data, productID) != getUserIDFromContext(c) {
		return echo.NewHTTPError(http.StatusForbidden, "Only the product owner can publish it")
	}
	product, err := h.data.UpdateProduct(c.Request().Context(), productID, func(p *models.Product) {
		p.IsPublished = true
		p.PublishedAt = time.Now().UTC().Format(time.RFC3339)
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": product})
}

func (h *DataHandler) GetSettings(c echo.Context) error {
	settings, err := h.data.GetSettings(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": settings})
}

func (h *DataHandler) SaveSettings(c echo.Context) error {
	settings := map[string]any{}
	if err := c.Bind(&settings); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := h.data.SaveSettings(c.Request().Context(), settings); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": settings})
}

// Export returns a backup of the stored user, products and settings
func (h *DataHandler) Export(c echo.Context) error {
	backup, err := h.data.ExportData(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, backup)
}

// Import restores a backup produced by Export. A user record in the backup
// must be the caller's own and is applied through the auth manager.
func (h *DataHandler) Import(c echo.Context) error {
	var backup models.Backup
	if err := c.Bind(&backup); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid backup payload")
	}
	ctx := c.Request().Context()

	var user *models.User
	if backup.User != nil && *backup.User != "" {
		user = &models.User{}
		if err := json.Unmarshal([]byte(*backup.User), user); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid user record in backup")
		}
		if user.ID != getUserIDFromContext(c) {
			return echo.NewHTTPError(http.StatusForbidden, "Backup belongs to another user")
		}
		backup.User = nil
	}

	if err := h.data.ImportData(ctx, &backup); err != nil {
		return httpError(err)
	}
	if user != nil && !h.manager.UpdateUser(ctx, *user) {
		return echo.NewHTTPError(http.StatusConflict, "User is not signed in on this device")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
