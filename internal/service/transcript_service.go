package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"afri_portal_backend/internal/config"
	"afri_portal_backend/internal/util"
	"afri_portal_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// TranscriptService fetches class transcripts from the static file host. The
// files are immutable once published, so successful fetches go through a
// read-through redis cache. A nil redis client disables caching.
type TranscriptService struct {
	cfg    config.TranscriptsConfig
	client *http.Client
	rdb    *redis.Client
}

func NewTranscriptService(cfg config.TranscriptsConfig, rdb *redis.Client) *TranscriptService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &TranscriptService{
		cfg:    cfg,
		client: &http.Client{},
		rdb:    rdb,
	}
}

// Fetch returns the raw markdown for a class. The day label ("Clase 1") is
// lowercased and trimmed into the file name, so "fase1-semana2-clase 1.md"
// for week 2 session 1.
func (s *TranscriptService) Fetch(ctx context.Context, weekID int, dayLabel string) (string, error) {
	day := strings.ToLower(strings.TrimSpace(dayLabel))
	endpoint := fmt.Sprintf("%s/fase1-semana%d-%s.md",
		strings.TrimRight(s.cfg.BaseURL, "/"), weekID, day)

	cacheKey := "transcript:" + endpoint
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			return cached, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", util.ErrTranscriptFetch
	}

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Log.Warn("transcript fetch failed", zap.String("url", endpoint), zap.Error(err))
		return "", util.ErrTranscriptFetch
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", util.ErrTranscriptNotFound
	}
	if resp.StatusCode != http.StatusOK {
		logger.Log.Warn("transcript fetch failed",
			zap.String("url", endpoint), zap.Int("status", resp.StatusCode))
		return "", util.ErrTranscriptFetch
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", util.ErrTranscriptFetch
	}
	text := string(body)

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, cacheKey, text, s.cfg.CacheTTL).Err(); err != nil {
			logger.Log.Warn("transcript cache write failed", zap.Error(err))
		}
	}
	return text, nil
}

var (
	transcriptH3   = regexp.MustCompile(`(?m)^### (.*)$`)
	transcriptH2   = regexp.MustCompile(`(?m)^## (.*)$`)
	transcriptH1   = regexp.MustCompile(`(?m)^# (.*)$`)
	transcriptBold = regexp.MustCompile(`\*\*(.*?)\*\*`)
)

// ToHTML converts transcript markdown into the portal's styled HTML. The
// substitutions run in a fixed order: headings deepest first, then bold, then
// double newlines into paragraph breaks and single newlines into <br />.
func ToHTML(raw string) string {
	html := transcriptH3.ReplaceAllString(raw, `<h3 class="text-lg font-bold text-primary mt-6 mb-2">$1</h3>`)
	html = transcriptH2.ReplaceAllString(html, `<h2 class="text-xl font-bold text-white mt-8 mb-4 border-b border-slate-700 pb-2">$1</h2>`)
	html = transcriptH1.ReplaceAllString(html, `<h1 class="text-2xl font-bold text-white mt-2 mb-6">$1</h1>`)
	html = transcriptBold.ReplaceAllString(html, `<strong class="text-white">$1</strong>`)
	html = strings.ReplaceAll(html, "\n\n", `</p><p class="mb-4 text-slate-300 leading-relaxed">`)
	html = strings.ReplaceAll(html, "\n", "<br />")

	return `<div class="transcript-content"><p class="mb-4 text-slate-300 leading-relaxed">` + html + `</p></div>`
}
