package controller

import (
	"errors"
	"strconv"

	"afri_portal_backend/internal/model"
	"afri_portal_backend/internal/service"
	"afri_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// Transcript lookup outcomes. Missing and unreachable are distinct states the
// UI renders differently, so neither maps onto an HTTP error.
const (
	transcriptStatusOK       = "ok"
	transcriptStatusNotFound = "not_found"
	transcriptStatusError    = "error"
)

type SessionController struct {
	Transcripts *service.TranscriptService
	AI          *service.AIService
}

func NewSessionController(transcripts *service.TranscriptService, ai *service.AIService) *SessionController {
	return &SessionController{
		Transcripts: transcripts,
		AI:          ai,
	}
}

func sessionFromParams(ctx *gin.Context) (*model.Week, *model.Session, bool) {
	weekID, err := strconv.Atoi(ctx.Param("week"))
	if err != nil {
		util.BadRequest(ctx, "invalid week")
		return nil, nil, false
	}
	sessionNumber, err := strconv.Atoi(ctx.Param("session"))
	if err != nil {
		util.BadRequest(ctx, "invalid session")
		return nil, nil, false
	}

	week := model.WeekByID(weekID)
	if week == nil {
		util.NotFound(ctx)
		return nil, nil, false
	}
	session := week.SessionByNumber(sessionNumber)
	if session == nil {
		util.NotFound(ctx)
		return nil, nil, false
	}
	return week, session, true
}

// GetTranscript godoc
// @Summary Transcripción de una clase
// @Description Descarga la transcripción en markdown; con format=html la devuelve lista para renderizar
// @Tags Clases
// @Produce  json
// @Security ApiKeyAuth
// @Param   week path int true "Semana (1-6)"
// @Param   session path int true "Sesión (1-2)"
// @Param   format query string false "raw (por defecto) o html"
// @Success 200 {object} util.Response{data=object} "Success"
// @Failure 400 {object} util.Response "Parámetros inválidos"
// @Failure 404 {object} util.Response "Semana o sesión inexistente"
// @Router /api/classes/{week}/{session}/transcript [get]
func (c *SessionController) GetTranscript(ctx *gin.Context) {
	week, session, ok := sessionFromParams(ctx)
	if !ok {
		return
	}

	text, err := c.Transcripts.Fetch(ctx.Request.Context(), week.ID, session.DayLabel())
	if errors.Is(err, util.ErrTranscriptNotFound) {
		util.Success(ctx, gin.H{"status": transcriptStatusNotFound})
		return
	}
	if err != nil {
		util.Success(ctx, gin.H{"status": transcriptStatusError})
		return
	}

	data := gin.H{"status": transcriptStatusOK}
	if ctx.Query("format") == "html" {
		data["html"] = service.ToHTML(text)
	} else {
		data["content"] = text
	}
	util.Success(ctx, data)
}

// GenerateSummary godoc
// @Summary Resumen IA de una clase
// @Description Genera un resumen de la transcripción; si la transcripción no está disponible devuelve un aviso
// @Tags Clases
// @Produce  json
// @Security ApiKeyAuth
// @Param   week path int true "Semana (1-6)"
// @Param   session path int true "Sesión (1-2)"
// @Success 200 {object} util.Response{data=object} "Success"
// @Failure 400 {object} util.Response "Parámetros inválidos"
// @Failure 404 {object} util.Response "Semana o sesión inexistente"
// @Router /api/classes/{week}/{session}/summary [post]
func (c *SessionController) GenerateSummary(ctx *gin.Context) {
	week, session, ok := sessionFromParams(ctx)
	if !ok {
		return
	}

	text, err := c.Transcripts.Fetch(ctx.Request.Context(), week.ID, session.DayLabel())
	if err != nil {
		util.Success(ctx, gin.H{
			"status":  transcriptStatusNotFound,
			"summary": "Transcripción no disponible. Aún no se ha subido el archivo para esta clase.",
		})
		return
	}

	util.Success(ctx, gin.H{
		"status":  transcriptStatusOK,
		"summary": c.AI.Summarize(text),
	})
}

// GenerateQuiz godoc
// @Summary Quiz IA de una clase
// @Description Genera preguntas de opción múltiple a partir de la transcripción de la clase
// @Tags Clases
// @Produce  json
// @Security ApiKeyAuth
// @Param   week path int true "Semana (1-6)"
// @Param   session path int true "Sesión (1-2)"
// @Success 200 {object} util.Response{data=object} "Success"
// @Failure 400 {object} util.Response "Parámetros inválidos"
// @Failure 404 {object} util.Response "Semana o sesión inexistente"
// @Router /api/classes/{week}/{session}/quiz [post]
func (c *SessionController) GenerateQuiz(ctx *gin.Context) {
	week, session, ok := sessionFromParams(ctx)
	if !ok {
		return
	}

	text, err := c.Transcripts.Fetch(ctx.Request.Context(), week.ID, session.DayLabel())
	if err != nil {
		util.Success(ctx, gin.H{
			"status":    transcriptStatusNotFound,
			"questions": []model.QuizQuestion{},
		})
		return
	}

	util.Success(ctx, gin.H{
		"status":    transcriptStatusOK,
		"questions": c.AI.GenerateQuiz(text),
	})
}
