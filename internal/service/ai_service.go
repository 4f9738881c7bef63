package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"afri_portal_backend/internal/config"
	"afri_portal_backend/internal/model"
	"afri_portal_backend/pkg/logger"

	"go.uber.org/zap"
)

const (
	tutorSystemPrompt = "Eres un tutor experto y amigable del programa de educación 'AFRI'. " +
		"Ayudas a los estudiantes a entender conceptos de IA, Python, y Automatización. " +
		"Tus respuestas son concisas, motivadoras y usan emojis ocasionalmente."

	tutorHistoryWindow = 5
	transcriptLimit    = 8000
	quizQuestionCount  = 3
)

// Canned replies for demo mode (no API key) and for upstream failures. The
// portal keeps working either way; AI features degrade, never error out.
const (
	demoTutorReply = "🤖 Modo Demo: Para respuestas reales de IA, por favor configura tu API KEY. " +
		"Mientras tanto: ¡Esa es una excelente pregunta sobre el curso! " +
		"Te recomiendo revisar la clase del Martes de la Semana 1."
	tutorFailureReply   = "Tuve un problema conectando con mi cerebro digital. Por favor intenta de nuevo."
	tutorEmptyReply     = "Lo siento, no pude generar una respuesta en este momento."
	summaryFailureReply = "No se pudo generar el resumen en este momento. Intenta de nuevo más tarde."
	demoSummaryReply    = "🤖 Modo Demo: Configura tu API KEY para obtener resúmenes reales. " +
		"Esta clase cubre los conceptos fundamentales del programa; revisa la transcripción completa para los detalles."
)

// AIService talks to an OpenAI-compatible chat completions endpoint. With an
// empty API key it runs in demo mode and serves the canned replies.
type AIService struct {
	mu     sync.RWMutex
	cfg    config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		cfg:    cfg,
		client: &http.Client{},
	}
}

// SetConfig swaps credentials on config reload.
func (s *AIService) SetConfig(cfg config.AIConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func (s *AIService) config() config.AIConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *AIService) demoMode() bool {
	return s.config().APIKey == ""
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []AIChatMessage `json:"messages"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *AIService) chat(messages []AIChatMessage) (string, error) {
	cfg := s.config()

	reqBody := ChatCompletionRequest{
		Model:    cfg.Model,
		Messages: messages,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, cfg.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", fmt.Errorf("AI API error: %s", result.Error.Message)
	}
	if len(result.Choices) > 0 {
		return result.Choices[0].Message.Content, nil
	}
	return "", fmt.Errorf("AI returned no choices")
}

// TutorReply answers a student message with the last turns of the
// conversation as context. It always returns something displayable.
func (s *AIService) TutorReply(history []model.ChatMessage, message string) string {
	if s.demoMode() {
		return demoTutorReply
	}

	messages := []AIChatMessage{
		{Role: "system", Content: tutorSystemPrompt},
	}
	start := len(history) - tutorHistoryWindow
	if start < 0 {
		start = 0
	}
	for _, h := range history[start:] {
		role := "user"
		if h.Role == model.ChatRoleModel {
			role = "assistant"
		}
		messages = append(messages, AIChatMessage{Role: role, Content: h.Text})
	}
	messages = append(messages, AIChatMessage{Role: "user", Content: message})

	reply, err := s.chat(messages)
	if err != nil {
		logger.Log.Warn("tutor reply failed", zap.Error(err))
		return tutorFailureReply
	}
	if reply == "" {
		return tutorEmptyReply
	}
	return reply
}

// Summarize condenses a class transcript into key ideas.
func (s *AIService) Summarize(transcript string) string {
	if s.demoMode() {
		return demoSummaryReply
	}

	prompt := fmt.Sprintf(
		"Resume la siguiente transcripción de una clase del programa AFRI en español. "+
			"Estructura el resumen con las ideas clave, los conceptos principales y una conclusión breve.\n\n"+
			"Transcripción: \"%s\"",
		truncateRunes(transcript, transcriptLimit),
	)

	messages := []AIChatMessage{
		{Role: "system", Content: tutorSystemPrompt},
		{Role: "user", Content: prompt},
	}

	summary, err := s.chat(messages)
	if err != nil {
		logger.Log.Warn("summary generation failed", zap.Error(err))
		return summaryFailureReply
	}
	if summary == "" {
		return summaryFailureReply
	}
	return summary
}

// GenerateQuiz builds multiple-choice questions from a transcript. It returns
// an empty slice on any failure so the caller renders "no quiz" rather than
// an error.
func (s *AIService) GenerateQuiz(transcript string) []model.QuizQuestion {
	if s.demoMode() {
		return demoQuiz()
	}

	prompt := fmt.Sprintf(
		"Basado en el siguiente texto de transcripción de una clase, genera %d preguntas de opción múltiple "+
			"para evaluar la comprensión del estudiante.\n\n"+
			"Texto: \"%s...\" (recortado para brevedad)\n\n"+
			"Devuelve UNICAMENTE un array JSON válido con este formato, sin markdown extra:\n"+
			"[\n"+
			"    {\n"+
			"        \"question\": \"Pregunta aquí\",\n"+
			"        \"options\": [\"Opción A\", \"Opción B\", \"Opción C\", \"Opción D\"],\n"+
			"        \"correctAnswerIndex\": 0,\n"+
			"        \"explanation\": \"Breve explicación de por qué es correcta\"\n"+
			"    }\n"+
			"]",
		quizQuestionCount,
		truncateRunes(transcript, transcriptLimit),
	)

	messages := []AIChatMessage{
		{Role: "user", Content: prompt},
	}

	raw, err := s.chat(messages)
	if err != nil {
		logger.Log.Warn("quiz generation failed", zap.Error(err))
		return []model.QuizQuestion{}
	}

	var questions []model.QuizQuestion
	if err := json.Unmarshal([]byte(stripJSONFences(raw)), &questions); err != nil {
		logger.Log.Warn("quiz response was not valid JSON", zap.Error(err))
		return []model.QuizQuestion{}
	}
	return questions
}

// stripJSONFences unwraps a ```json ... ``` block when the model ignores the
// no-markdown instruction.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func demoQuiz() []model.QuizQuestion {
	return []model.QuizQuestion{
		{
			Question:           "¿Cuál es el componente principal mencionado en la clase (Modo Demo)?",
			Options:            []string{"Python", "JavaScript", "Excel", "PowerPoint"},
			CorrectAnswerIndex: 0,
			Explanation:        "Python es el lenguaje base para la IA (Respuesta simulada).",
		},
		{
			Question:           "¿Qué es un prompt?",
			Options:            []string{"Un comando de voz", "Una instrucción de texto para la IA", "Un error de código", "Una base de datos"},
			CorrectAnswerIndex: 1,
			Explanation:        "Los prompts son las instrucciones que guían a los modelos de lenguaje.",
		},
	}
}
