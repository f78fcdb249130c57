package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appmov "github.com/hazchem/backend/internal/application/movement"
	"github.com/hazchem/backend/internal/infrastructure/transfer"
	"github.com/hazchem/backend/internal/interfaces/http/dto"
)

// spreadsheets is implemented by the record services that support file
// export and import
type spreadsheets interface {
	Export(ctx context.Context, w io.Writer, format transfer.Format, q appmov.ListQuery) error
	Template(w io.Writer, format transfer.Format) error
	Import(ctx context.Context, r io.Reader, format transfer.Format, operator *uuid.UUID) (*appmov.ImportResult, error)
}

// bindRecordQuery binds the shared query of the record lists
func (h *BaseHandler) bindRecordQuery(c *gin.Context) (appmov.ListQuery, bool) {
	var q appmov.ListQuery
	if !h.BindQuery(c, &q) {
		return q, false
	}
	var ok bool
	if q.ChemicalID, ok = h.QueryID(c, "chemicalId"); !ok {
		return q, false
	}
	if q.OperatorID, ok = h.QueryID(c, "operatorId"); !ok {
		return q, false
	}
	if q.UserID, ok = h.QueryID(c, "userId"); !ok {
		return q, false
	}
	return q, true
}

func (h *BaseHandler) exportRecords(c *gin.Context, svc spreadsheets, name string) {
	q, ok := h.bindRecordQuery(c)
	if !ok {
		return
	}
	format, ok := h.QueryFormat(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	h.SendFile(c, name, format, func(w io.Writer) error {
		return svc.Export(ctx, w, format, q)
	})
}

func (h *BaseHandler) recordTemplate(c *gin.Context, svc spreadsheets, name string) {
	format, ok := h.QueryFormat(c)
	if !ok {
		return
	}
	h.SendFile(c, name, format, func(w io.Writer) error {
		return svc.Template(w, format)
	})
}

// importRecords answers 400 with the row errors when any row is invalid;
// nothing is stored in that case.
func (h *BaseHandler) importRecords(c *gin.Context, svc spreadsheets) {
	file, format, ok := h.Upload(c)
	if !ok {
		return
	}
	defer file.Close()

	result, err := svc.Import(c.Request.Context(), file, format, h.CurrentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if len(result.Errors) > 0 {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithData(http.StatusBadRequest, "导入失败，请修正错误后重新导入", result))
		return
	}
	h.SuccessMessage(c, "导入成功", result)
}

// StorageHandler serves /storage
type StorageHandler struct {
	BaseHandler
	service *appmov.StorageService
}

// NewStorageHandler creates a new StorageHandler
func NewStorageHandler(service *appmov.StorageService) *StorageHandler {
	return &StorageHandler{service: service}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *StorageHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/storage")
	g.POST("/add", h.Create)
	g.POST("/batch", h.BatchCreate)
	g.PUT("/update/:id", h.Update)
	g.DELETE("/delete/:id", h.Delete)
	g.GET("/list", h.List)
	g.GET("/statistics", h.Statistics)
	g.GET("/export", h.Export)
	g.GET("/template", h.Template)
	g.POST("/import", h.Import)
	g.GET("/:id", h.Get)
}

// Create records a storage-in and increases stock
// @Summary      Create a storage-in record
// @Tags         storage
// @Accept       json
// @Produce      json
// @Param        request body appmov.StorageRequest true "记录信息"
// @Success      200 {object} dto.Response{data=movement.StorageRecord}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /storage/add [post]
func (h *StorageHandler) Create(c *gin.Context) {
	var req appmov.StorageRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.OperatorID == nil {
		req.OperatorID = h.CurrentUserID(c)
	}
	rec, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rec)
}

// BatchCreate records several storage-ins, all or none
// @Summary      Create several storage-in records
// @Tags         storage
// @Accept       json
// @Produce      json
// @Param        request body []appmov.StorageRequest true "记录列表"
// @Success      200 {object} dto.Response{data=[]movement.StorageRecord}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /storage/batch [post]
func (h *StorageHandler) BatchCreate(c *gin.Context) {
	var reqs []appmov.StorageRequest
	if !h.BindJSON(c, &reqs) {
		return
	}
	for i := range reqs {
		if reqs[i].OperatorID == nil {
			reqs[i].OperatorID = h.CurrentUserID(c)
		}
	}
	recs, err := h.service.BatchCreate(c.Request.Context(), reqs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, recs)
}

// Update changes a storage-in and moves the stock difference
// @Summary      Update a storage-in record
// @Tags         storage
// @Accept       json
// @Produce      json
// @Param        id path string true "记录 ID" format(uuid)
// @Param        request body appmov.StorageRequest true "记录信息"
// @Success      200 {object} dto.Response{data=movement.StorageRecord}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /storage/update/{id} [put]
func (h *StorageHandler) Update(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req appmov.StorageRequest
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

// Delete removes a storage-in and takes its amount back out of stock
// @Summary      Delete a storage-in record
// @Tags         storage
// @Produce      json
// @Param        id path string true "记录 ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /storage/delete/{id} [delete]
func (h *StorageHandler) Delete(c *gin.Context) {
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

// Get returns one storage-in record
// @Summary      Get a storage-in record
// @Tags         storage
// @Produce      json
// @Param        id path string true "记录 ID" format(uuid)
// @Success      200 {object} dto.Response{data=movement.StorageRecord}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /storage/{id} [get]
func (h *StorageHandler) Get(c *gin.Context) {
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

// List returns a page of storage-in records
// @Summary      List storage-in records
// @Tags         storage
// @Produce      json
// @Param        chemicalId query string false "化学品ID" format(uuid)
// @Param        operatorId query string false "操作人ID" format(uuid)
// @Param        userId query string false "使用人ID" format(uuid)
// @Param        query query appmov.ListQuery false "查询条件"
// @Success      200 {object} dto.Response{data=shared.Paginated[movement.StorageRecord]}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /storage/list [get]
func (h *StorageHandler) List(c *gin.Context) {
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
// @Summary      Get storage-in statistics
// @Tags         storage
// @Produce      json
// @Param        chemicalId query string false "化学品ID" format(uuid)
// @Success      200 {object} dto.Response{data=appmov.Statistics}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /storage/statistics [get]
func (h *StorageHandler) Statistics(c *gin.Context) {
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

// Export downloads the matching records
// @Summary      Export records
// @Tags         storage
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,text/csv
// @Param        chemicalId query string false "化学品ID" format(uuid)
// @Param        operatorId query string false "操作人ID" format(uuid)
// @Param        userId query string false "使用人ID" format(uuid)
// @Param        query query appmov.ListQuery false "查询条件"
// @Param        format query string false "文件格式" Enums(xlsx, csv) default(xlsx)
// @Success      200 {file} file
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /storage/export [get]
func (h *StorageHandler) Export(c *gin.Context) { h.exportRecords(c, h.service, "入库记录") }

// Template downloads an empty import sheet
// @Summary      Download the import template
// @Tags         storage
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,text/csv
// @Param        format query string false "文件格式" Enums(xlsx, csv) default(xlsx)
// @Success      200 {file} file
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /storage/template [get]
func (h *StorageHandler) Template(c *gin.Context) { h.recordTemplate(c, h.service, "入库导入模板") }

// Import stores the records of an uploaded sheet
// @Summary      Import records from a sheet
// @Tags         storage
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true ".xlsx 或 .csv 文件"
// @Success      200 {object} dto.Response{data=appmov.ImportResult}
// @Failure      400 {object} dto.Response{data=appmov.ImportResult}
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /storage/import [post]
func (h *StorageHandler) Import(c *gin.Context) { h.importRecords(c, h.service) }

// OutboundHandler serves /outbound
type OutboundHandler struct {
	BaseHandler
	service *appmov.OutboundService
}

// NewOutboundHandler creates a new OutboundHandler
func NewOutboundHandler(service *appmov.OutboundService) *OutboundHandler {
	return &OutboundHandler{service: service}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *OutboundHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/outbound")
	g.POST("/add", h.Create)
	g.POST("/batch", h.BatchCreate)
	g.PUT("/update/:id", h.Update)
	g.DELETE("/delete/:id", h.Delete)
	g.GET("/get/:id", h.Get)
	g.GET("/list", h.List)
	g.GET("/statistics", h.Statistics)
	g.GET("/inventory/:chemicalId", h.ChemicalInventory)
	g.GET("/export", h.Export)
	g.GET("/template", h.Template)
	g.POST("/import", h.Import)
}

// Create records an outbound if enough stock is on hand
// @Summary      Create a outbound record
// @Tags         outbound
// @Accept       json
// @Produce      json
// @Param        request body appmov.OutboundRequest true "记录信息"
// @Success      200 {object} dto.Response{data=movement.OutboundRecord}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response{data=dto.StockShortage}
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /outbound/add [post]
func (h *OutboundHandler) Create(c *gin.Context) {
	var req appmov.OutboundRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.OperatorID == nil {
		req.OperatorID = h.CurrentUserID(c)
	}
	rec, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rec)
}

// BatchCreate records several outbounds, all or none
// @Summary      Create several outbound records
// @Tags         outbound
// @Accept       json
// @Produce      json
// @Param        request body []appmov.OutboundRequest true "记录列表"
// @Success      200 {object} dto.Response{data=[]movement.OutboundRecord}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response{data=dto.StockShortage}
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /outbound/batch [post]
func (h *OutboundHandler) BatchCreate(c *gin.Context) {
	var reqs []appmov.OutboundRequest
	if !h.BindJSON(c, &reqs) {
		return
	}
	for i := range reqs {
		if reqs[i].OperatorID == nil {
			reqs[i].OperatorID = h.CurrentUserID(c)
		}
	}
	recs, err := h.service.BatchCreate(c.Request.Context(), reqs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, recs)
}

// Update changes an outbound and re-checks stock
// @Summary      Update a outbound record
// @Tags         outbound
// @Accept       json
// @Produce      json
// @Param        id path string true "记录 ID" format(uuid)
// @Param        request body appmov.OutboundRequest true "记录信息"
// @Success      200 {object} dto.Response{data=movement.OutboundRecord}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /outbound/update/{id} [put]
func (h *OutboundHandler) Update(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req appmov.OutboundRequest
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

// Delete removes an outbound and returns its amount to stock
// @Summary      Delete a outbound record
// @Tags         outbound
// @Produce      json
// @Param        id path string true "记录 ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /outbound/delete/{id} [delete]
func (h *OutboundHandler) Delete(c *gin.Context) {
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

// Get returns one outbound record
// @Summary      Get an outbound record
// @Tags         outbound
// @Produce      json
// @Param        id path string true "记录 ID" format(uuid)
// @Success      200 {object} dto.Response{data=movement.OutboundRecord}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /outbound/get/{id} [get]
func (h *OutboundHandler) Get(c *gin.Context) {
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

// List returns a page of outbound records
// @Summary      List outbound records
// @Tags         outbound
// @Produce      json
// @Param        chemicalId query string false "化学品ID" format(uuid)
// @Param        operatorId query string false "操作人ID" format(uuid)
// @Param        userId query string false "使用人ID" format(uuid)
// @Param        query query appmov.ListQuery false "查询条件"
// @Success      200 {object} dto.Response{data=shared.Paginated[movement.OutboundRecord]}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /outbound/list [get]
func (h *OutboundHandler) List(c *gin.Context) {
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
// @Summary      Get outbound statistics
// @Tags         outbound
// @Produce      json
// @Param        chemicalId query string false "化学品ID" format(uuid)
// @Success      200 {object} dto.Response{data=appmov.Statistics}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /outbound/statistics [get]
func (h *OutboundHandler) Statistics(c *gin.Context) {
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

// ChemicalInventory returns what can still be taken out of a chemical
// @Summary      Get a chemical's available stock
// @Tags         outbound
// @Produce      json
// @Param        chemicalId path string true "化学品ID" format(uuid)
// @Success      200 {object} dto.Response{data=appinv.ChemicalStock}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /outbound/inventory/{chemicalId} [get]
func (h *OutboundHandler) ChemicalInventory(c *gin.Context) {
	id, ok := h.PathID(c, "chemicalId")
	if !ok {
		return
	}
	stock, err := h.service.ChemicalInventory(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// Export downloads the matching records
// @Summary      Export records
// @Tags         outbound
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,text/csv
// @Param        chemicalId query string false "化学品ID" format(uuid)
// @Param        operatorId query string false "操作人ID" format(uuid)
// @Param        userId query string false "使用人ID" format(uuid)
// @Param        query query appmov.ListQuery false "查询条件"
// @Param        format query string false "文件格式" Enums(xlsx, csv) default(xlsx)
// @Success      200 {file} file
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /outbound/export [get]
func (h *OutboundHandler) Export(c *gin.Context) { h.exportRecords(c, h.service, "出库记录") }

// Template downloads an empty import sheet
// @Summary      Download the import template
// @Tags         outbound
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,text/csv
// @Param        format query string false "文件格式" Enums(xlsx, csv) default(xlsx)
// @Success      200 {file} file
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /outbound/template [get]
func (h *OutboundHandler) Template(c *gin.Context) { h.recordTemplate(c, h.service, "出库导入模板") }

// Import stores the records of an uploaded sheet
// @Summary      Import records from a sheet
// @Tags         outbound
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true ".xlsx 或 .csv 文件"
// @Success      200 {object} dto.Response{data=appmov.ImportResult}
// @Failure      400 {object} dto.Response{data=appmov.ImportResult}
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /outbound/import [post]
func (h *OutboundHandler) Import(c *gin.Context) { h.importRecords(c, h.service) }
