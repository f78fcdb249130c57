package handler

import (
	"github.com/gin-gonic/gin"
	appchem "github.com/hazchem/backend/internal/application/chemical"
)

// ChemicalHandler serves /chemical
type ChemicalHandler struct {
	BaseHandler
	service *appchem.Service
}

// NewChemicalHandler creates a new ChemicalHandler
func NewChemicalHandler(service *appchem.Service) *ChemicalHandler {
	return &ChemicalHandler{service: service}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *ChemicalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/chemical")
	g.POST("/add", h.Create)
	g.PUT("/update/:id", h.Update)
	g.DELETE("/delete/:id", h.Delete)
	g.GET("/get/:id", h.Get)
	g.GET("/list", h.List)
}

// Create registers a chemical
// @Summary      Create a chemical
// @Tags         chemical
// @Accept       json
// @Produce      json
// @Param        request body appchem.Request true "化学品信息"
// @Success      200 {object} dto.Response{data=chemical.Chemical}
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /chemical/add [post]
func (h *ChemicalHandler) Create(c *gin.Context) {
	var req appchem.Request
	if !h.BindJSON(c, &req) {
		return
	}
	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, created)
}

// Update changes a chemical's attributes
// @Summary      Update a chemical
// @Tags         chemical
// @Accept       json
// @Produce      json
// @Param        id path string true "化学品 ID" format(uuid)
// @Param        request body appchem.Request true "化学品信息"
// @Success      200 {object} dto.Response{data=chemical.Chemical}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /chemical/update/{id} [put]
func (h *ChemicalHandler) Update(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req appchem.Request
	if !h.BindJSON(c, &req) {
		return
	}
	updated, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, updated)
}

// Delete removes a chemical
// @Summary      Delete a chemical
// @Tags         chemical
// @Produce      json
// @Param        id path string true "化学品 ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /chemical/delete/{id} [delete]
func (h *ChemicalHandler) Delete(c *gin.Context) {
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

// Get returns one chemical
// @Summary      Get a chemical
// @Tags         chemical
// @Produce      json
// @Param        id path string true "化学品 ID" format(uuid)
// @Success      200 {object} dto.Response{data=chemical.Chemical}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /chemical/get/{id} [get]
func (h *ChemicalHandler) Get(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	found, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, found)
}

// List returns a page of chemicals
// @Summary      List chemicals
// @Tags         chemical
// @Produce      json
// @Param        query query appchem.ListQuery false "查询条件"
// @Success      200 {object} dto.Response{data=shared.Paginated[chemical.Chemical]}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /chemical/list [get]
func (h *ChemicalHandler) List(c *gin.Context) {
	var q appchem.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, page)
}
