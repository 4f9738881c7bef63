package controller

import (
	"fmt"
	"strings"

	"afri_portal_backend/internal/config"
	"afri_portal_backend/internal/model"
	"afri_portal_backend/internal/service"
	"afri_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CurriculumController struct {
	State     *service.StateService
	Progress  *service.ProgressService
	Resources config.ResourcesConfig
}

func NewCurriculumController(state *service.StateService, progress *service.ProgressService, resources config.ResourcesConfig) *CurriculumController {
	return &CurriculumController{
		State:     state,
		Progress:  progress,
		Resources: resources,
	}
}

type sessionView struct {
	model.Session
	Day         string `json:"day"`
	IsCompleted bool   `json:"isCompleted"`
	VideoID     string `json:"videoId"`
	MaterialURL string `json:"materialUrl"`
	QuizURL     string `json:"quizUrl"`
}

type weekView struct {
	ID       int           `json:"id"`
	Title    string        `json:"title"`
	Sessions []sessionView `json:"sessions"`
}

func (c *CurriculumController) resourceLinks(weekID, sessionNumber int) (string, string) {
	num := fmt.Sprintf("%02d", model.ClassNumber(weekID, sessionNumber))
	base := strings.TrimRight(c.Resources.BaseURL, "/")
	return base + "/clase" + num + ".html", base + "/quiz" + num + ".html"
}

// GetCurriculum godoc
// @Summary Plan de estudios
// @Description Devuelve las 6 semanas con el estado de completitud del usuario y los videos asignados
// @Tags Curso
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object} "Success"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/curriculum [get]
func (c *CurriculumController) GetCurriculum(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	progress := c.Progress.Load(claims.Email)
	videos := c.State.Videos()

	weeks := make([]weekView, 0, len(model.Curriculum))
	for _, week := range model.Curriculum {
		wv := weekView{
			ID:       week.ID,
			Title:    week.Title,
			Sessions: make([]sessionView, 0, len(week.Sessions)),
		}
		for _, session := range week.Sessions {
			materialURL, quizURL := c.resourceLinks(week.ID, session.SessionNumber)
			wv.Sessions = append(wv.Sessions, sessionView{
				Session:     session,
				Day:         session.DayLabel(),
				IsCompleted: progress[model.ProgressKey(week.ID, session.SessionNumber)],
				VideoID:     model.ExtractVideoID(videos[model.VideoKey(week.ID, session.SessionNumber)]),
				MaterialURL: materialURL,
				QuizURL:     quizURL,
			})
		}
		weeks = append(weeks, wv)
	}

	util.Success(ctx, gin.H{"weeks": weeks})
}
