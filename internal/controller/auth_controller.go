package controller

import (
	"errors"
	"net/http"

	"lingo_flow_backend/internal/config"
	"lingo_flow_backend/internal/model"
	"lingo_flow_backend/internal/service"
	"lingo_flow_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
	Cfg         *config.Config
}

func NewAuthController(authService *service.AuthService, cfg *config.Config) *AuthController {
	return &AuthController{
		AuthService: authService,
		Cfg:         cfg,
	}
}

// RegisterRequest 注册请求体
// swagger:model RegisterRequest
type RegisterRequest struct {
	Name              string   `json:"name" binding:"required"`
	Email             string   `json:"email" binding:"required,email"`
	Password          string   `json:"password" binding:"required,min=8"`
	NativeLanguage    string   `json:"nativeLanguage"`
	LearningLanguages []string `json:"learningLanguages"`
}

// Register godoc
// @Summary 注册新用户
// @Description 创建账号并自动登录，会话 JWT 写入 HttpOnly Cookie
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body RegisterRequest true "用户注册信息"
// @Success 201 {object} util.Response{data=model.User} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "邮箱已被注册"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /api/auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user := &model.User{
		Name:              req.Name,
		Email:             req.Email,
		Password:          req.Password,
		NativeLanguage:    req.NativeLanguage,
		LearningLanguages: req.LearningLanguages,
	}

	if err := c.AuthService.Register(user); err != nil {
		if errors.Is(err, util.ErrEmailRegistered) {
			util.Conflict(ctx, "该邮箱已被注册")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	// 注册即登录
	token, _, err := c.AuthService.Login(req.Email, req.Password)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	c.setSessionCookie(ctx, token)

	util.Created(ctx, user)
}

// LoginRequest 登录请求体
// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary 用户登录
// @Description 校验邮箱密码，会话 JWT 写入 HttpOnly Cookie
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "登录凭证"
// @Success 200 {object} util.Response{data=model.User} "登录成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "凭证无效"
// @Router /api/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, user, err := c.AuthService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			util.Unauthorized(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	c.setSessionCookie(ctx, token)
	util.Success(ctx, user)
}

// Logout godoc
// @Summary 退出登录
// @Description 清除会话 Cookie
// @Tags 认证
// @Produce  json
// @Success 200 {object} util.Response "已退出"
// @Router /api/auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	ctx.SetCookie(c.Cfg.JWT.CookieName, "", -1, "/", "", c.isRelease(), true)
	util.Success(ctx, gin.H{"message": "logged out"})
}

// Me godoc
// @Summary 当前登录用户
// @Description 返回会话对应的用户信息，含徽章
// @Tags 认证
// @Produce  json
// @Success 200 {object} util.Response{data=model.User} "用户信息"
// @Failure 401 {object} util.Response "未登录"
// @Router /api/auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	util.Success(ctx, user)
}

func (c *AuthController) setSessionCookie(ctx *gin.Context, token string) {
	maxAge := int(c.Cfg.JWT.ExpireTime.Seconds())
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.Cfg.JWT.CookieName, token, maxAge, "/", "", c.isRelease(), true)
}

func (c *AuthController) isRelease() bool {
	return c.Cfg.Server.Mode == "release"
}
