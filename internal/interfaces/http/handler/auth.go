package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	appid "github.com/hazchem/backend/internal/application/identity"
	"github.com/hazchem/backend/internal/interfaces/http/middleware"
)

// AuthHandler serves /user
type AuthHandler struct {
	BaseHandler
	service *appid.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service *appid.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/user")
	g.POST("/login", h.Login)
	g.POST("/register", h.Register)
	g.GET("/check-token", h.CheckToken)
	g.POST("/logout", h.Logout)
}

// Login exchanges email and password for a token
// @Summary      Log in
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request body appid.LoginRequest true "邮箱和密码"
// @Success      200 {object} dto.Response{data=appid.LoginResult}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Router       /user/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req appid.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessMessage(c, "登录成功", result)
}

// Register creates an account. The client address is recorded unless the
// caller supplies one.
// @Summary      Register an account
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request body appid.RegisterRequest true "注册信息"
// @Success      200 {object} dto.Response{data=identity.Person}
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /user/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req appid.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.RegisterIP == "" {
		req.RegisterIP = c.ClientIP()
	}
	p, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessMessage(c, "注册成功", p)
}

// CheckToken returns the account of a bearer token or a token query parameter
// @Summary      Check a token
// @Tags         user
// @Produce      json
// @Param        token query string false "token，未携带 Authorization 时使用"
// @Success      200 {object} dto.Response{data=identity.Person}
// @Failure      401 {object} dto.Response
// @Router       /user/check-token [get]
func (h *AuthHandler) CheckToken(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		token = c.Query("token")
	}
	if token == "" {
		h.Fail(c, http.StatusUnauthorized, "token不能为空")
		return
	}
	p, err := h.service.CheckToken(c.Request.Context(), token)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Logout revokes the caller's token
// @Summary      Log out
// @Tags         user
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /user/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		h.Fail(c, http.StatusUnauthorized, "token不能为空")
		return
	}
	if err := h.service.Logout(c.Request.Context(), token); err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessMessage(c, "已退出登录", nil)
}
