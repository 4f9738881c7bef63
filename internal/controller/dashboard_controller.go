package controller

import (
	"errors"

	"afri_portal_backend/internal/service"
	"afri_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	Dashboard *service.DashboardService
}

func NewDashboardController(dashboard *service.DashboardService) *DashboardController {
	return &DashboardController{Dashboard: dashboard}
}

// GetDashboard godoc
// @Summary Panel del estudiante
// @Description Resumen del progreso global, habilidades y avance por semana
// @Tags Curso
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.Dashboard} "Success"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/dashboard [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	dashboard, err := c.Dashboard.GetDashboard(claims.Email)
	if errors.Is(err, util.ErrUserNotFound) {
		util.Unauthorized(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, dashboard)
}
