package handler

import (
	"github.com/gin-gonic/gin"
	appmov "github.com/hazchem/backend/internal/application/movement"
)

// UsageHandler serves /usage
type UsageHandler struct {
	BaseHandler
	service *appmov.UsageService
}

// NewUsageHandler creates a new UsageHandler
func NewUsageHandler(service *appmov.UsageService) *UsageHandler {
	return &UsageHandler{service: service}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *UsageHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/usage")
	g.POST("/add", h.Create)
	g.PUT("/update/:id", h.Update)
	g.DELETE("/delete/:id", h.Delete)
	g.GET("/get/:id", h.Get)
	g.GET("/list", h.List)
	g.GET("/statistics", h.Statistics)
	g.GET("/statistics/:chemicalId", h.ChemicalStatistics)
	g.GET("/amount", h.Amount)
}

// Create records a usage if enough stock is on hand. Without a user the
// caller is recorded.
// @Summary      Create a usage record
// @Tags         usage
// @Accept       json
// @Produce      json
// @Param        request body appmov.UsageRequest true "记录信息"
// @Success      200 {object} dto.Response{data=movement.UsageRecord}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response{data=dto.StockShortage}
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /usage/add [post]
func (h *UsageHandler) Create(c *gin.Context) {
	var req appmov.UsageRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.UserID == nil && req.UserName == "" {
		req.UserID = h.CurrentUserID(c)
	}
	rec, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rec)
}

// Update changes a usage and re-checks stock
// @Summary      Update a usage record
// @Tags         usage
// @Accept       json
// @Produce      json
// @Param        id path string true "记录 ID" format(uuid)
// @Param        request body appmov.UsageRequest true "记录信息"
// @Success      200 {object} dto.Response{data=movement.UsageRecord}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /usage/update/{id} [put]
func (h *UsageHandler) Update(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req appmov.UsageRequest
	if !h.BindJSON(c, &req) {
		return
	}
	rec, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rec)
}

// Delete removes a usage and returns its amount to stock
// @Summary      Delete a usage record
// @Tags         usage
// @Produce      json
// @Param        id path string true "记录 ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /usage/delete/{id} [delete]
func (h *UsageHandler) Delete(c *gin.Context) {
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

// Get returns one usage record
// @Summary      Get a usage record
// @Tags         usage
// @Produce      json
// @Param        id path string true "记录 ID" format(uuid)
// @Success      200 {object} dto.Response{data=movement.UsageRecord}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /usage/get/{id} [get]
func (h *UsageHandler) Get(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	rec, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rec)
}

// List returns a page of usage records
// @Summary      List usage records
// @Tags         usage
// @Produce      json
// @Param        chemicalId query string false "化学品ID" format(uuid)
// @Param        operatorId query string false "操作人ID" format(uuid)
// @Param        userId query string false "使用人ID" format(uuid)
// @Param        query query appmov.ListQuery false "查询条件"
// @Success      200 {object} dto.Response{data=shared.Paginated[movement.UsageRecord]}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /usage/list [get]
func (h *UsageHandler) List(c *gin.Context) {
	q, ok := h.bindRecordQuery(c)
	if !ok {
		return
	}
	page, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, page)
}

// Statistics returns daily, monthly and overall totals
// @Summary      Get usage statistics
// @Tags         usage
// @Produce      json
// @Param        chemicalId query string false "化学品ID" format(uuid)
// @Success      200 {object} dto.Response{data=appmov.Statistics}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /usage/statistics [get]
func (h *UsageHandler) Statistics(c *gin.Context) {
	id, ok := h.QueryID(c, "chemicalId")
	if !ok {
		return
	}
	stats, err := h.service.Statistics(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// ChemicalStatistics totals one chemical's usage over an optional period
// @Summary      Total one chemical's usage
// @Tags         usage
// @Produce      json
// @Param        chemicalId path string true "化学品ID" format(uuid)
// @Param        startTime query string false "开始时间 yyyy-MM-dd HH:mm:ss"
// @Param        endTime query string false "结束时间 yyyy-MM-dd HH:mm:ss"
// @Success      200 {object} dto.Response{data=appmov.ChemicalUsage}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /usage/statistics/{chemicalId} [get]
func (h *UsageHandler) ChemicalStatistics(c *gin.Context) {
	id, ok := h.PathID(c, "chemicalId")
	if !ok {
		return
	}
	start, end, ok := h.QueryTimeRange(c)
	if !ok {
		return
	}
	usage, err := h.service.ChemicalStatistics(c.Request.Context(), id, start, end)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, usage)
}

// Amount totals the usage of a chemical looked up by name
// @Summary      Total usage by chemical name
// @Tags         usage
// @Produce      json
// @Param        chemicalName query string true "化学品名称"
// @Param        startTime query string false "开始时间 yyyy-MM-dd HH:mm:ss"
// @Param        endTime query string false "结束时间 yyyy-MM-dd HH:mm:ss"
// @Success      200 {object} dto.Response{data=appmov.ChemicalUsage}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /usage/amount [get]
func (h *UsageHandler) Amount(c *gin.Context) {
	start, end, ok := h.QueryTimeRange(c)
	if !ok {
		return
	}
	usage, err := h.service.AmountByChemicalName(c.Request.Context(), c.Query("chemicalName"), start, end)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, usage)
}
