// Package handler holds the gin handlers of the HTTP API.
package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hazchem/backend/internal/domain/shared"
	"github.com/hazchem/backend/internal/infrastructure/logger"
	"github.com/hazchem/backend/internal/infrastructure/transfer"
	"github.com/hazchem/backend/internal/interfaces/http/dto"
	"github.com/hazchem/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// maxUploadSize bounds imported spreadsheets
const maxUploadSize = 10 << 20

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success envelope
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessMessage sends a success envelope with a custom message
func (h *BaseHandler) SuccessMessage(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, dto.NewMessageResponse(message, data))
}

// Fail sends a failure envelope whose code equals the transport status
func (h *BaseHandler) Fail(c *gin.Context, status int, message string) {
	c.JSON(status, dto.NewErrorResponse(status, message))
}

// HandleError maps err onto an envelope. Internal errors are logged with
// the cause; the caller only sees a generic message.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	status, resp := dto.FromError(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		logger.FromContext(c.Request.Context()).Error("Request failed",
			zap.String("route", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, resp)
}

// BindJSON binds the body into obj and answers 400 on failure
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.bindFailed(c, err)
		return false
	}
	return true
}

// BindQuery binds the query string into obj and answers 400 on failure
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.bindFailed(c, err)
		return false
	}
	return true
}

func (h *BaseHandler) bindFailed(c *gin.Context, err error) {
	if details := middleware.ValidationDetails(err); details != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithData(http.StatusBadRequest, "参数校验失败", details))
		return
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		h.Fail(c, http.StatusRequestEntityTooLarge, "请求体过大")
		return
	}
	h.Fail(c, http.StatusBadRequest, "请求格式错误: "+err.Error())
}

// PathID parses the path parameter name as a UUID and answers 400 when it is not one
func (h *BaseHandler) PathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.Fail(c, http.StatusBadRequest, "ID格式不正确")
		return uuid.Nil, false
	}
	return id, true
}

// QueryID parses an optional UUID query parameter; nil when absent
func (h *BaseHandler) QueryID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.Fail(c, http.StatusBadRequest, name+"格式不正确")
		return nil, false
	}
	return &id, true
}

// QueryInt reads an optional integer query parameter; zero when absent
func (h *BaseHandler) QueryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		h.Fail(c, http.StatusBadRequest, name+"必须是整数")
		return 0, false
	}
	return n, true
}

// QueryTimeRange parses the startTime and endTime query parameters
func (h *BaseHandler) QueryTimeRange(c *gin.Context) (*time.Time, *time.Time, bool) {
	start, end, err := shared.ParseTimeRange(c.Query("startTime"), c.Query("endTime"))
	if err != nil {
		h.HandleError(c, err)
		return nil, nil, false
	}
	return start, end, true
}

// CurrentUserID returns the authenticated user, or nil on public routes
func (h *BaseHandler) CurrentUserID(c *gin.Context) *uuid.UUID {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		return nil
	}
	id, err := claims.UserUUID()
	if err != nil {
		return nil
	}
	return &id
}

// QueryFormat reads the format query parameter, defaulting to xlsx
func (h *BaseHandler) QueryFormat(c *gin.Context) (transfer.Format, bool) {
	format, err := transfer.ParseFormat(c.DefaultQuery("format", string(transfer.FormatXLSX)))
	if err != nil {
		h.Fail(c, http.StatusBadRequest, err.Error())
		return "", false
	}
	return format, true
}

// SendFile renders a download. The body is buffered so that a failure
// still produces an envelope instead of a truncated file.
func (h *BaseHandler) SendFile(c *gin.Context, name string, format transfer.Format, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		h.HandleError(c, err)
		return
	}
	filename := name + "_" + time.Now().Format("20060102150405") + format.Ext()
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// Upload opens the multipart "file" field and detects its format from the
// file name
func (h *BaseHandler) Upload(c *gin.Context) (io.ReadCloser, transfer.Format, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		h.Fail(c, http.StatusBadRequest, "请选择要导入的文件")
		return nil, "", false
	}
	if header.Size > maxUploadSize {
		h.Fail(c, http.StatusRequestEntityTooLarge, "文件过大")
		return nil, "", false
	}
	format, err := transfer.FormatOf(header.Filename)
	if err != nil {
		h.Fail(c, http.StatusBadRequest, err.Error())
		return nil, "", false
	}
	f, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return nil, "", false
	}
	return f, format, true
}
