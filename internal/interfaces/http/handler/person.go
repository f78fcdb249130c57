package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appid "github.com/hazchem/backend/internal/application/identity"
	"github.com/hazchem/backend/internal/interfaces/http/dto"
)

// PersonHandler serves /man
type PersonHandler struct {
	BaseHandler
	service *appid.PersonService
}

// NewPersonHandler creates a new PersonHandler
func NewPersonHandler(service *appid.PersonService) *PersonHandler {
	return &PersonHandler{service: service}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *PersonHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/man")
	g.GET("/list", h.List)
	g.GET("/get/:id", h.Get)
	g.POST("/add", h.Create)
	g.PUT("/update", h.Update)
	g.DELETE("/delete/:id", h.Delete)
	g.POST("/batchDelete", h.BatchDelete)
	g.GET("/export", h.Export)
}

// List returns a page of people
// @Summary      List people
// @Tags         man
// @Produce      json
// @Param        query query appid.PersonQuery false "查询条件"
// @Success      200 {object} dto.Response{data=shared.Paginated[identity.Person]}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /man/list [get]
func (h *PersonHandler) List(c *gin.Context) {
	var q appid.PersonQuery
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

// Get returns one person
// @Summary      Get a person
// @Tags         man
// @Produce      json
// @Param        id path string true "人员 ID" format(uuid)
// @Success      200 {object} dto.Response{data=identity.Person}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /man/get/{id} [get]
func (h *PersonHandler) Get(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Create adds a person
// @Summary      Create a person
// @Tags         man
// @Accept       json
// @Produce      json
// @Param        request body appid.PersonRequest true "人员信息"
// @Success      200 {object} dto.Response{data=identity.Person}
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /man/add [post]
func (h *PersonHandler) Create(c *gin.Context) {
	var req appid.PersonRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessMessage(c, "添加成功", p)
}

// Update replaces a person's profile; the ID travels in the body
// @Summary      Update a person
// @Tags         man
// @Accept       json
// @Produce      json
// @Param        request body appid.PersonRequest true "人员信息，包含ID"
// @Success      200 {object} dto.Response{data=identity.Person}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /man/update [put]
func (h *PersonHandler) Update(c *gin.Context) {
	var req appid.PersonRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.service.Update(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessMessage(c, "更新成功", p)
}

// Delete removes a person
// @Summary      Delete a person
// @Tags         man
// @Produce      json
// @Param        id path string true "人员 ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /man/delete/{id} [delete]
func (h *PersonHandler) Delete(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessMessage(c, "删除成功", nil)
}

// BatchDelete removes several people. When only some could be removed
// the envelope code is 207 and the data lists the failed IDs.
// @Summary      Delete several people
// @Tags         man
// @Accept       json
// @Produce      json
// @Param        request body dto.IDList true "人员ID列表"
// @Success      200 {object} dto.Response{data=appid.BatchDeleteResult}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /man/batchDelete [post]
func (h *PersonHandler) BatchDelete(c *gin.Context) {
	var req dto.IDList
	if !h.BindJSON(c, &req) {
		return
	}
	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.Fail(c, http.StatusBadRequest, "ID格式不正确: "+raw)
			return
		}
		ids = append(ids, id)
	}

	result, err := h.service.BatchDelete(c.Request.Context(), ids)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.Partial() {
		c.JSON(dto.CodePartial, dto.Response{Code: dto.CodePartial, Message: "部分删除成功", Data: result})
		return
	}
	h.SuccessMessage(c, "删除成功", result)
}

// Export downloads the matching people
// @Summary      Export people
// @Tags         man
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,text/csv
// @Param        query query appid.PersonQuery false "查询条件"
// @Param        format query string false "文件格式" Enums(xlsx, csv) default(xlsx)
// @Success      200 {file} file
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /man/export [get]
func (h *PersonHandler) Export(c *gin.Context) {
	var q appid.PersonQuery
	if !h.BindQuery(c, &q) {
		return
	}
	format, ok := h.QueryFormat(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	h.SendFile(c, "人员数据", format, func(w io.Writer) error {
		return h.service.Export(ctx, w, format, q)
	})
}
