package controller

import (
	"afri_portal_backend/internal/service"
	"afri_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StudentsController struct {
	State *service.StateService
}

func NewStudentsController(state *service.StateService) *StudentsController {
	return &StudentsController{State: state}
}

// GetStudents godoc
// @Summary Listado de estudiantes
// @Description Devuelve la nómina completa con el progreso de cada estudiante, en el orden de la hoja
// @Tags Curso
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object} "Success"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/students [get]
func (c *StudentsController) GetStudents(ctx *gin.Context) {
	util.Success(ctx, gin.H{"students": c.State.Users()})
}
