package controller

import (
	"afri_portal_backend/internal/model"
	"afri_portal_backend/internal/service"
	"afri_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TutorController struct {
	AI *service.AIService
}

func NewTutorController(ai *service.AIService) *TutorController {
	return &TutorController{AI: ai}
}

// swagger:model TutorChatRequest
type TutorChatRequest struct {
	History []model.ChatMessage `json:"history"`
	Message string              `json:"message" binding:"required"`
}

// Chat godoc
// @Summary Conversar con el tutor IA
// @Description Responde al mensaje del estudiante usando los últimos turnos de la conversación como contexto
// @Tags Tutor
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body TutorChatRequest true "Mensaje e historial de la conversación"
// @Success 200 {object} util.Response{data=object} "Success"
// @Failure 400 {object} util.Response "Parámetros inválidos"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/tutor/chat [post]
func (c *TutorController) Chat(ctx *gin.Context) {
	var req TutorChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	reply := c.AI.TutorReply(req.History, req.Message)
	util.Success(ctx, gin.H{
		"reply": model.ChatMessage{Role: model.ChatRoleModel, Text: reply},
	})
}
