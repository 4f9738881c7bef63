package controller

import (
	"net/http"

	"afri_portal_backend/internal/service"
	"afri_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB    *gorm.DB
	State *service.StateService
}

func NewHealthController(db *gorm.DB, state *service.StateService) *HealthController {
	return &HealthController{DB: db, State: state}
}

// @Summary Health check
// @Description Estado del servicio y sus componentes
// @Tags Sistema
// @Produce json
// @Success 200 {object} util.Response
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	if err := sqlDB.Ping(); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	roster := "empty"
	if len(c.State.Users()) > 0 {
		roster = "loaded"
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"database": "up",
			"roster":   roster,
		},
	})
}
