package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"migrator/internal/logger"
	"migrator/internal/migration"
	"migrator/internal/models"
)

type MigrationHandler struct {
	engine *migration.Engine
	logger *logger.Logger
}

func NewMigrationHandler(engine *migration.Engine, logger *logger.Logger) *MigrationHandler {
	return &MigrationHandler{
		engine: engine,
		logger: logger,
	}
}

type exportRequest struct {
	StoreID string `json:"store_id" binding:"required"`
}

func (h *MigrationHandler) Export(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.engine.ExportCatalog(req.StoreID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": doc})
}

type importRequest struct {
	OperatorID string                  `json:"operator_id" binding:"required"`
	StoreID    string                  `json:"store_id" binding:"required"`
	Catalog    *models.CatalogDocument `json:"catalog"`
	Products   *models.CatalogDocument `json:"products"`
}

func (h *MigrationHandler) Import(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.engine.ImportCatalog(req.OperatorID, req.StoreID, req.Catalog, req.Products)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

type runRequest struct {
	OperatorID  string `json:"operator_id" binding:"required"`
	FromStoreID string `json:"from_store_id" binding:"required"`
	ToStoreID   string `json:"to_store_id" binding:"required"`
}

func (h *MigrationHandler) Run(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.engine.Run(req.OperatorID, req.FromStoreID, req.ToStoreID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

func (h *MigrationHandler) Records(c *gin.Context) {
	operatorID := c.Query("operator_id")
	fromStoreID := c.Query("from_store_id")
	if operatorID == "" || fromStoreID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "operator_id and from_store_id are required"})
		return
	}

	records, err := h.engine.Ledger().List(operatorID, fromStoreID, c.Query("to_store_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch migration records"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (h *MigrationHandler) respondError(c *gin.Context, err error) {
	switch {
	case migration.IsAuthError(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case migration.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Migration request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
