package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appinv "github.com/hazchem/backend/internal/application/inventory"
	"github.com/shopspring/decimal"
)

// StockTotal is the on-hand total of one chemical
type StockTotal struct {
	ChemicalID  uuid.UUID       `json:"chemicalId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// InventoryHandler serves /inventory
type InventoryHandler struct {
	BaseHandler
	service *appinv.Service
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(service *appinv.Service) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/inventory")
	g.POST("/add", h.Create)
	g.PUT("/update/:id", h.Update)
	g.PUT("/update/:id/amount", h.SetAmount)
	g.DELETE("/delete/:id", h.Delete)
	g.GET("/get/:id", h.Get)
	g.GET("/list", h.List)
	g.GET("/below-threshold", h.BelowThreshold)
	g.PUT("/batch", h.BatchUpdate)
	g.GET("/getTotalAmount", h.TotalAmount)
	g.POST("/storage-in", h.StorageIn)
	g.POST("/storage-out", h.StorageOut)
	g.GET("/statistics", h.Statistics)
	g.GET("/trend", h.Trend)
	g.GET("/inventory-check", h.Check)
	g.GET("/:id/history", h.History)
}

// Create registers stock for a chemical
// @Summary      Create an inventory row
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body appinv.CreateRequest true "库存信息"
// @Success      200 {object} dto.Response{data=inventory.Inventory}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/add [post]
func (h *InventoryHandler) Create(c *gin.Context) {
	var req appinv.CreateRequest
	if !h.BindJSON(c, &req) {
		return
	}
	inv, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Update changes location and unit
// @Summary      Update location and unit
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id path string true "库存 ID" format(uuid)
// @Param        request body appinv.UpdateRequest true "库存信息"
// @Success      200 {object} dto.Response{data=inventory.Inventory}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/update/{id} [put]
func (h *InventoryHandler) Update(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req appinv.UpdateRequest
	if !h.BindJSON(c, &req) {
		return
	}
	inv, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// SetAmount overwrites the on-hand amount
// @Summary      Set the on-hand amount
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id path string true "库存 ID" format(uuid)
// @Param        request body appinv.SetAmountRequest true "库存数量"
// @Success      200 {object} dto.Response{data=inventory.Inventory}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/update/{id}/amount [put]
func (h *InventoryHandler) SetAmount(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req appinv.SetAmountRequest
	if !h.BindJSON(c, &req) {
		return
	}
	inv, err := h.service.SetAmount(c.Request.Context(), id, req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Delete removes an inventory row
// @Summary      Delete an empty inventory row
// @Tags         inventory
// @Produce      json
// @Param        id path string true "库存 ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/delete/{id} [delete]
func (h *InventoryHandler) Delete(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, nil)
}

// Get returns one inventory row
// @Summary      Get an inventory row
// @Tags         inventory
// @Produce      json
// @Param        id path string true "库存 ID" format(uuid)
// @Success      200 {object} dto.Response{data=inventory.Inventory}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/get/{id} [get]
func (h *InventoryHandler) Get(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	inv, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

func (h *InventoryHandler) bindFilter(c *gin.Context) (appinv.ListFilter, bool) {
	var f appinv.ListFilter
	if !h.BindQuery(c, &f) {
		return f, false
	}
	id, ok := h.QueryID(c, "chemicalId")
	if !ok {
		return f, false
	}
	f.ChemicalID = id
	return f, true
}

// List returns a page of inventory rows
// @Summary      List inventory rows
// @Tags         inventory
// @Produce      json
// @Param        chemicalId query string false "化学品ID" format(uuid)
// @Param        query query appinv.ListFilter false "查询条件"
// @Success      200 {object} dto.Response{data=shared.Paginated[inventory.Inventory]}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/list [get]
func (h *InventoryHandler) List(c *gin.Context) {
	f, ok := h.bindFilter(c)
	if !ok {
		return
	}
	page, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, page)
}

// BelowThreshold lists rows under their chemical's warning threshold
// @Summary      List rows below the warning threshold
// @Tags         inventory
// @Produce      json
// @Success      200 {object} dto.Response{data=[]inventory.Inventory}
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/below-threshold [get]
func (h *InventoryHandler) BelowThreshold(c *gin.Context) {
	list, err := h.service.BelowThreshold(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// BatchUpdate applies several updates in one transaction
// @Summary      Update several rows
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body []appinv.BatchUpdateItem true "更新列表"
// @Success      200 {object} dto.Response{data=object}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/batch [put]
func (h *InventoryHandler) BatchUpdate(c *gin.Context) {
	var items []appinv.BatchUpdateItem
	if !h.BindJSON(c, &items) {
		return
	}
	n, err := h.service.BatchUpdate(c.Request.Context(), items)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"updated": n})
}

// TotalAmount returns a chemical's on-hand total
// @Summary      Get a chemical's on-hand total
// @Tags         inventory
// @Produce      json
// @Param        chemicalId query string true "化学品ID" format(uuid)
// @Success      200 {object} dto.Response{data=StockTotal}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/getTotalAmount [get]
func (h *InventoryHandler) TotalAmount(c *gin.Context) {
	id, ok := h.QueryID(c, "chemicalId")
	if !ok {
		return
	}
	if id == nil {
		h.Fail(c, http.StatusBadRequest, "chemicalId不能为空")
		return
	}
	total, err := h.service.TotalAmount(c.Request.Context(), *id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, StockTotal{ChemicalID: *id, TotalAmount: total})
}

// StorageIn increases a chemical's stock without a movement record
// @Summary      Increase stock
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body appinv.AdjustRequest true "化学品和数量"
// @Success      200 {object} dto.Response{data=StockTotal}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/storage-in [post]
func (h *InventoryHandler) StorageIn(c *gin.Context) {
	h.adjust(c, h.service.StorageIn)
}

// StorageOut decreases a chemical's stock without a movement record
// @Summary      Decrease stock
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body appinv.AdjustRequest true "化学品和数量"
// @Success      200 {object} dto.Response{data=StockTotal}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response{data=dto.StockShortage}
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/storage-out [post]
func (h *InventoryHandler) StorageOut(c *gin.Context) {
	h.adjust(c, h.service.StorageOut)
}

func (h *InventoryHandler) adjust(c *gin.Context, apply func(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)) {
	var req appinv.AdjustRequest
	if !h.BindJSON(c, &req) {
		return
	}
	total, err := apply(c.Request.Context(), req.ChemicalID, req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, StockTotal{ChemicalID: req.ChemicalID, TotalAmount: total})
}

// Statistics summarizes stock levels
// @Summary      Get stock statistics
// @Tags         inventory
// @Produce      json
// @Success      200 {object} dto.Response{data=appinv.Statistics}
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/statistics [get]
func (h *InventoryHandler) Statistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Trend returns end-of-day totals for the last days
// @Summary      Get the daily stock trend
// @Tags         inventory
// @Produce      json
// @Param        chemicalId query string false "化学品ID" format(uuid)
// @Param        days query int false "天数" default(7)
// @Success      200 {object} dto.Response{data=[]appinv.TrendPoint}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/trend [get]
func (h *InventoryHandler) Trend(c *gin.Context) {
	id, ok := h.QueryID(c, "chemicalId")
	if !ok {
		return
	}
	days, ok := h.QueryInt(c, "days")
	if !ok {
		return
	}
	points, err := h.service.Trend(c.Request.Context(), id, days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, points)
}

// Check returns the inventory check sheet
// @Summary      Get the inventory check sheet
// @Tags         inventory
// @Produce      json
// @Param        chemicalId query string false "化学品ID" format(uuid)
// @Param        query query appinv.ListFilter false "查询条件"
// @Success      200 {object} dto.Response{data=[]appinv.CheckItem}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/inventory-check [get]
func (h *InventoryHandler) Check(c *gin.Context) {
	f, ok := h.bindFilter(c)
	if !ok {
		return
	}
	items, err := h.service.Check(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// History lists the movements of a row's chemical
// @Summary      List a row's movements
// @Tags         inventory
// @Produce      json
// @Param        id path string true "库存 ID" format(uuid)
// @Param        limit query int false "条数"
// @Success      200 {object} dto.Response{data=[]movement.Entry}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/{id}/history [get]
func (h *InventoryHandler) History(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	limit, ok := h.QueryInt(c, "limit")
	if !ok {
		return
	}
	entries, err := h.service.History(c.Request.Context(), id, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}
