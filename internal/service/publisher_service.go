package service

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"afri_portal_backend/internal/config"
	"afri_portal_backend/internal/model"
	"afri_portal_backend/pkg/logger"
	"afri_portal_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// PublisherService pushes progress saves to the Apps Script endpoint. The
// endpoint is write-behind: delivery is best effort, the response body is
// opaque and discarded, and failures only ever surface as logs and metrics.
type PublisherService struct {
	cfg    config.ScriptConfig
	client *http.Client
}

func NewPublisherService(cfg config.ScriptConfig) *PublisherService {
	return &PublisherService{
		cfg:    cfg,
		client: &http.Client{},
	}
}

type progressSavePayload struct {
	Portal       string `json:"portal"`
	Email        string `json:"email"`
	Nombre       string `json:"nombre"`
	Rol          string `json:"rol"`
	Completadas  int    `json:"completadas"`
	ProgresoJSON string `json:"progresoJSON"`
}

// Publish sends the user's full progress snapshot. Callers run it in a
// goroutine; it never blocks the toggle that triggered it.
func (s *PublisherService) Publish(user model.User, progress map[string]bool) {
	if s.cfg.URL == "" {
		logger.Log.Debug("progress publish skipped, no script URL configured")
		return
	}

	payload := progressSavePayload{
		Portal:       s.cfg.PortalTag,
		Email:        user.Email,
		Nombre:       user.Name,
		Rol:          user.Role,
		Completadas:  model.CountCompleted(progress),
		ProgresoJSON: model.SerializeProgressMap(progress),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Log.Error("progress publish marshal failed",
			zap.String("email", user.Email), zap.Error(err))
		monitoring.ProgressPublishFailures.Inc()
		return
	}

	req, err := http.NewRequest(http.MethodPost, s.cfg.URL, bytes.NewReader(body))
	if err != nil {
		logger.Log.Error("progress publish request failed",
			zap.String("email", user.Email), zap.Error(err))
		monitoring.ProgressPublishFailures.Inc()
		return
	}
	// Apps Script web apps reject a JSON content type with a CORS preflight;
	// text/plain is the contract.
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Log.Warn("progress publish failed",
			zap.String("email", user.Email), zap.Error(err))
		monitoring.ProgressPublishFailures.Inc()
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		logger.Log.Warn("progress publish rejected",
			zap.String("email", user.Email),
			zap.Int("status", resp.StatusCode))
		monitoring.ProgressPublishFailures.Inc()
		return
	}

	logger.Log.Debug("progress published",
		zap.String("email", user.Email),
		zap.Int("completed", payload.Completadas))
}
