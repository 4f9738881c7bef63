package controller

import (
	"errors"

	"afri_portal_backend/internal/model"
	"afri_portal_backend/internal/service"
	"afri_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	State *service.StateService
}

func NewProgressController(state *service.StateService) *ProgressController {
	return &ProgressController{State: state}
}

// swagger:model ToggleRequest
type ToggleRequest struct {
	Week    int `json:"week" binding:"required"`
	Session int `json:"session" binding:"required"`
}

// Toggle godoc
// @Summary Marcar o desmarcar una sesión
// @Description Invierte el estado de completitud de la sesión; el guardado remoto corre en segundo plano
// @Tags Progreso
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body ToggleRequest true "Semana y número de sesión"
// @Success 200 {object} util.Response{data=object} "Success"
// @Failure 400 {object} util.Response "Semana o sesión inválida"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/progress/toggle [post]
func (c *ProgressController) Toggle(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ToggleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	progress, status, err := c.State.ToggleCompletion(claims.Email, req.Week, req.Session)
	if errors.Is(err, util.ErrWeekNotFound) || errors.Is(err, util.ErrSessionNotFound) {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err != nil {
		util.Unauthorized(ctx)
		return
	}

	util.Success(ctx, gin.H{
		"key":       model.ProgressKey(req.Week, req.Session),
		"status":    status,
		"completed": model.CountCompleted(progress),
		"total":     model.TotalSessions,
		"progress":  progress,
	})
}
