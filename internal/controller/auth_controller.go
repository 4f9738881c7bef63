package controller

import (
	"errors"

	"afri_portal_backend/internal/config"
	"afri_portal_backend/internal/service"
	"afri_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	State *service.StateService
	JWT   config.JWTConfig
}

func NewAuthController(state *service.StateService, jwtCfg config.JWTConfig) *AuthController {
	return &AuthController{
		State: state,
		JWT:   jwtCfg,
	}
}

// swagger:model LoginRequest
type LoginRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Login godoc
// @Summary Iniciar sesión
// @Description Valida el email contra la nómina del programa y devuelve un token JWT
// @Tags Autenticación
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "Email del estudiante"
// @Success 200 {object} util.Response{data=object} "Sesión iniciada"
// @Failure 400 {object} util.Response "Parámetros inválidos"
// @Failure 401 {object} util.Response "Email no registrado en el programa"
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.State.SignIn(req.Email)
	if err != nil {
		// The roster may not have arrived yet (cold start); try one
		// synchronous refresh before rejecting.
		if rerr := c.State.Refresh(ctx.Request.Context()); rerr == nil {
			user, err = c.State.SignIn(req.Email)
		}
	}
	if errors.Is(err, util.ErrRosterUnavailable) {
		util.Error(ctx, 503, "La nómina del programa no está disponible, intenta más tarde")
		return
	}
	if err != nil {
		util.Error(ctx, 401, "Email no registrado en el programa")
		return
	}

	token, err := util.GenerateJWT(user, c.JWT.Secret, c.JWT.ExpireTime)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"token": token,
		"user":  user,
	})
}

// GetProfile godoc
// @Summary Perfil del usuario actual
// @Description Devuelve el registro del usuario autenticado según la nómina más reciente
// @Tags Autenticación
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User} "Success"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/profile [get]
func (c *AuthController) GetProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	user := c.State.CurrentUser(claims.Email)
	if user == nil {
		// Valid token but the user fell off the roster.
		util.Unauthorized(ctx)
		return
	}

	util.Success(ctx, user)
}

// Logout godoc
// @Summary Cerrar sesión
// @Description Cierra la sesión y borra el progreso local; se repuebla desde la hoja al volver a entrar
// @Tags Autenticación
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response "Sesión cerrada"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	c.State.SignOut(claims.Email)
	util.Success(ctx, nil)
}
